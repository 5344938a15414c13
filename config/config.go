// Package config provides configuration loading and management for covmap.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/assessortools/covmap/export"
	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/llm"
	"github.com/assessortools/covmap/mapping"
)

// Config represents the complete covmap configuration
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Mapping    MappingConfig    `yaml:"mapping"`
	NATS       NATSConfig       `yaml:"nats"`
	Export     ExportConfig     `yaml:"export"`
}

// ModelConfig configures the language model used for extraction and mapping
type ModelConfig struct {
	// Provider selects the registered provider ("ollama" or "gemini")
	Provider string `yaml:"provider"`
	// Endpoint is the provider's base URL
	Endpoint string `yaml:"endpoint"`
	// Model is the model identifier
	Model string `yaml:"model"`
	// Temperature controls randomness (default: 0.1)
	Temperature float64 `yaml:"temperature"`
	// TopP is the nucleus sampling cutoff
	TopP float64 `yaml:"top_p"`
	// TopK caps sampling candidates (ignored by providers without top-k)
	TopK int `yaml:"top_k"`
	// MaxTokens caps the reply length
	MaxTokens int `yaml:"max_tokens"`
	// Timeout is the maximum time to wait for one model response
	Timeout time.Duration `yaml:"timeout"`
	// CallDelay is the pacing delay before each model call
	CallDelay time.Duration `yaml:"call_delay"`
}

// ExtractionConfig configures document chunking
type ExtractionConfig struct {
	// ChunkThreshold is the document size above which chunking applies
	ChunkThreshold int `yaml:"chunk_threshold"`
	// MaxChunkSize caps each chunk
	MaxChunkSize int `yaml:"max_chunk_size"`
	// MinFragment discards fragments below this size
	MinFragment int `yaml:"min_fragment"`
}

// MappingConfig configures the mapping engine
type MappingConfig struct {
	// Policy is the batch failure policy ("degrade" or "fail-fast")
	Policy string `yaml:"policy"`
}

// NATSConfig configures session persistence
type NATSConfig struct {
	// URL is the NATS server URL (empty = in-memory sessions only)
	URL string `yaml:"url"`
	// SessionTTL is how long stored sessions are retained
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// ExportConfig configures report output
type ExportConfig struct {
	// Format is the default export format ("json" or "csv")
	Format string `yaml:"format"`
	// OutputDir is where exported files are written
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Endpoint:    "http://localhost:11434/v1",
			Model:       "qwen2.5:32b",
			Temperature: 0.1,
			TopP:        0.8,
			TopK:        40,
			MaxTokens:   2000,
			Timeout:     30 * time.Second,
			CallDelay:   500 * time.Millisecond,
		},
		Extraction: ExtractionConfig{
			ChunkThreshold: 5000,
			MaxChunkSize:   3500,
			MinFragment:    10,
		},
		Mapping: MappingConfig{
			Policy: "degrade",
		},
		NATS: NATSConfig{
			URL:        "",
			SessionTTL: 30 * 24 * time.Hour,
		},
		Export: ExportConfig{
			Format:    "json",
			OutputDir: ".",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model.model is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be between 0 and 2")
	}
	if _, err := mapping.ParsePolicy(c.Mapping.Policy); err != nil {
		return fmt.Errorf("mapping.policy: %w", err)
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if err := c.Extraction.ChunkConfig().Validate(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	return nil
}

// GenerationParams converts the model settings to request parameters.
func (m ModelConfig) GenerationParams() llm.GenerationParams {
	temp := m.Temperature
	topP := m.TopP
	return llm.GenerationParams{
		Temperature: &temp,
		TopP:        &topP,
		TopK:        &m.TopK,
		MaxTokens:   m.MaxTokens,
	}
}

// ChunkConfig converts the extraction settings to a chunk planner config.
func (e ExtractionConfig) ChunkConfig() extract.ChunkConfig {
	return extract.ChunkConfig{
		Threshold:    e.ChunkThreshold,
		MaxChunkSize: e.MaxChunkSize,
		MinFragment:  e.MinFragment,
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Model != "" {
		c.Model.Model = other.Model.Model
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.TopP != 0 {
		c.Model.TopP = other.Model.TopP
	}
	if other.Model.TopK != 0 {
		c.Model.TopK = other.Model.TopK
	}
	if other.Model.MaxTokens != 0 {
		c.Model.MaxTokens = other.Model.MaxTokens
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}
	if other.Model.CallDelay != 0 {
		c.Model.CallDelay = other.Model.CallDelay
	}

	if other.Extraction.ChunkThreshold != 0 {
		c.Extraction.ChunkThreshold = other.Extraction.ChunkThreshold
	}
	if other.Extraction.MaxChunkSize != 0 {
		c.Extraction.MaxChunkSize = other.Extraction.MaxChunkSize
	}
	if other.Extraction.MinFragment != 0 {
		c.Extraction.MinFragment = other.Extraction.MinFragment
	}

	if other.Mapping.Policy != "" {
		c.Mapping.Policy = other.Mapping.Policy
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.SessionTTL != 0 {
		c.NATS.SessionTTL = other.NATS.SessionTTL
	}

	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
	if other.Export.OutputDir != "" {
		c.Export.OutputDir = other.Export.OutputDir
	}
}
