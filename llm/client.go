// Package llm wraps the external text-generation service behind a
// provider-agnostic client with rate-limit pacing, bounded retry, and a
// repair pipeline for malformed structured replies.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/assessortools/covmap/metrics"
)

// maxResponseSize limits the response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// maxPromptChars caps embedded source text before prompt assembly.
const maxPromptChars = 6000

// truncationMarker is appended when prompt text is cut at maxPromptChars.
const truncationMarker = "\n[TRUNCATED]"

// DefaultCallDelay is the mandatory pause before every service call to
// respect the provider's rate limit.
const DefaultCallDelay = 500 * time.Millisecond

// DefaultCallTimeout bounds a single round trip.
const DefaultCallTimeout = 30 * time.Second

// Endpoint identifies a concrete service backend.
type Endpoint struct {
	// Provider is the registered provider name.
	Provider string

	// URL is the service base URL. Empty uses the provider default.
	URL string

	// Model is the model identifier sent to the service.
	Model string
}

// GenerationParams are the sampling controls sent with every request.
// Low-randomness defaults favor determinism-friendly output.
type GenerationParams struct {
	// Temperature controls randomness. nil uses the provider default.
	Temperature *float64

	// TopP is the nucleus-sampling width. nil uses the provider default.
	TopP *float64

	// TopK bounds candidate sampling. nil uses the provider default.
	TopK *int

	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int
}

// DefaultGenerationParams returns the low-randomness settings used for
// extraction and mapping prompts.
func DefaultGenerationParams() GenerationParams {
	temp := 0.1
	topP := 0.8
	topK := 40
	return GenerationParams{
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &topK,
		MaxTokens:   2000,
	}
}

// Request defines a completion request.
type Request struct {
	// Prompt is the full instruction text. Callers cap embedded document
	// text with TruncatePrompt before assembly.
	Prompt string

	// Params are the sampling controls. Zero value uses provider defaults.
	Params GenerationParams
}

// Response contains the completion result.
type Response struct {
	// Content is the generated text.
	Content string

	// Model is the model that produced the reply.
	Model string

	// TokensUsed is the total tokens consumed, when reported.
	TokensUsed int

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// Completer is the minimal completion interface consumed by the
// extraction and mapping stages. Satisfied by *Client.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Client calls the text-generation service with pacing and retry.
type Client struct {
	endpoint    Endpoint
	httpClient  *http.Client
	retryConfig RetryConfig
	callDelay   time.Duration
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithCallDelay sets the mandatory pre-call delay. Zero disables pacing.
func WithCallDelay(d time.Duration) ClientOption {
	return func(client *Client) {
		client.callDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a client for the given endpoint.
func NewClient(endpoint Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		retryConfig: DefaultRetryConfig(),
		callDelay:   DefaultCallDelay,
		httpClient: &http.Client{
			Timeout: DefaultCallTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TruncatePrompt caps text at the prompt budget, marking the cut.
func TruncatePrompt(text string) string {
	if len(text) <= maxPromptChars {
		return text
	}
	return text[:maxPromptChars] + truncationMarker
}

// Complete sends a completion request, pacing and retrying as configured.
// Transient failures are retried with exponential backoff; fatal failures
// and exhausted retries surface to the caller.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if c.callDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.callDelay):
		}
	}

	started := time.Now()
	resp, err := c.completeWithRetry(ctx, req)
	metrics.LLMCallDuration.WithLabelValues(c.endpoint.Provider).Observe(time.Since(started).Seconds())

	if err != nil {
		metrics.LLMCalls.WithLabelValues(c.endpoint.Provider, "error").Inc()
		return nil, err
	}

	metrics.LLMCalls.WithLabelValues(c.endpoint.Provider, "ok").Inc()
	return resp, nil
}

// completeWithRetry attempts a request with bounded retry.
func (c *Client) completeWithRetry(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", c.retryConfig.MaxAttempts, lastErr)
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	// Add jitter: +/- 25% to prevent synchronized retries
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes a single HTTP round trip.
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	provider := GetProvider(c.endpoint.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", c.endpoint.Provider))
	}

	url := provider.BuildURL(c.endpoint.URL, c.endpoint.Model)

	body, err := provider.BuildRequestBody(c.endpoint.Model, req.Prompt, req.Params)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending completion request",
		"provider", c.endpoint.Provider,
		"model", c.endpoint.Model,
		"prompt_chars", len(req.Prompt))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	// Read response body with size limit to prevent memory exhaustion
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody, c.endpoint.Model)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("service error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode >= 500:
		// Server errors are transient
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		// Auth errors are fatal
		return NewFatalError(err)
	case statusCode == http.StatusBadRequest:
		// Bad requests are fatal
		return NewFatalError(err)
	default:
		// Unknown errors default to fatal
		return NewFatalError(err)
	}
}
