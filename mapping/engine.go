package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/llm"
	"github.com/assessortools/covmap/metrics"
	"github.com/assessortools/covmap/standard"
)

// Policy decides how a per-question mapping failure propagates. The policy
// is fixed at engine construction and applied uniformly to the whole
// batch; mixing policies within a batch is not supported.
type Policy int

const (
	// PolicyDegrade substitutes a low-confidence placeholder mapping so
	// the pipeline still produces analyzable data. This is the default.
	PolicyDegrade Policy = iota

	// PolicyFailFast aborts the batch on the first failure, producing
	// zero mappings.
	PolicyFailFast
)

// String returns the policy's configuration name.
func (p Policy) String() string {
	if p == PolicyFailFast {
		return "fail-fast"
	}
	return "degrade"
}

// ParsePolicy reads a policy from its configuration name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "degrade":
		return PolicyDegrade, nil
	case "fail-fast", "failfast":
		return PolicyFailFast, nil
	default:
		return PolicyDegrade, fmt.Errorf("unknown mapping policy %q", s)
	}
}

// Engine produces exactly one Mapping per Question, or fails the batch
// under the fail-fast policy.
type Engine struct {
	completer llm.Completer
	policy    Policy
	params    llm.GenerationParams
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPolicy sets the batch failure policy.
func WithPolicy(p Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithGenerationParams sets the sampling controls for mapping prompts.
func WithGenerationParams(p llm.GenerationParams) EngineOption {
	return func(e *Engine) {
		e.params = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a mapping engine around a completion client.
func NewEngine(completer llm.Completer, opts ...EngineOption) *Engine {
	e := &Engine{
		completer: completer,
		policy:    PolicyDegrade,
		params:    llm.DefaultGenerationParams(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MapQuestions maps every question in sequence. Under fail-fast, any
// single failure aborts with zero mappings. Under degrade, failures yield
// placeholder mappings. Cancellation between questions preserves the
// mappings already computed.
func (e *Engine) MapQuestions(ctx context.Context, set *standard.Set, questions []extract.Question) ([]Mapping, error) {
	var mappings []Mapping

	for i := range questions {
		q := &questions[i]

		if err := ctx.Err(); err != nil {
			return mappings, err
		}

		m, err := e.mapOne(ctx, set, q)
		if err != nil {
			if e.policy == PolicyFailFast {
				metrics.MappingFailures.WithLabelValues("abort").Inc()
				return nil, fmt.Errorf("map question %s: %w", q.ID, err)
			}

			metrics.MappingFailures.WithLabelValues("degrade").Inc()
			e.logger.Warn("Mapping failed, substituting placeholder",
				"question", q.ID,
				"error", err)
			m = placeholderMapping(set, q)
		}

		mappings = append(mappings, *m)
	}

	return mappings, nil
}

// mappingReply is the structured reply expected from the service. Pointer
// slices distinguish a missing list from an empty one; a missing list is
// a validation failure.
type mappingReply struct {
	Elements            *[]replyItem `json:"mapped_elements"`
	PerformanceCriteria *[]replyItem `json:"mapped_performance_criteria"`
	PerformanceEvidence *[]replyItem `json:"mapped_performance_evidence"`
	KnowledgeEvidence   *[]replyItem `json:"mapped_knowledge_evidence"`
	CognitiveLevel      string       `json:"cognitive_level"`
}

type replyItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Strength    string  `json:"strength"`
	Confidence  float64 `json:"confidence"`
}

// mapOne maps a single question via the service.
func (e *Engine) mapOne(ctx context.Context, set *standard.Set, q *extract.Question) (*Mapping, error) {
	resp, err := e.completer.Complete(ctx, llm.Request{
		Prompt: buildMappingPrompt(set, q),
		Params: e.params,
	})
	if err != nil {
		return nil, fmt.Errorf("mapping call: %w", err)
	}

	var reply mappingReply
	if err := llm.DecodeObject(resp.Content, &reply); err != nil {
		return nil, fmt.Errorf("mapping reply: %w", err)
	}

	// A reply missing any of the four lists is treated the same as an
	// unparseable one.
	if reply.Elements == nil || reply.PerformanceCriteria == nil ||
		reply.PerformanceEvidence == nil || reply.KnowledgeEvidence == nil {
		return nil, fmt.Errorf("mapping reply incomplete: %w", llm.ErrNoStructuredResult)
	}

	m := &Mapping{
		QuestionID:          q.ID,
		QuestionText:        q.Text,
		Elements:            e.convertItems(standard.KindElement, *reply.Elements),
		PerformanceCriteria: e.convertItems(standard.KindPerformanceCriterion, *reply.PerformanceCriteria),
		PerformanceEvidence: e.convertItems(standard.KindPerformanceEvidence, *reply.PerformanceEvidence),
		KnowledgeEvidence:   e.convertItems(standard.KindKnowledgeEvidence, *reply.KnowledgeEvidence),
		CognitiveTier:       normalizeTier(reply.CognitiveLevel, q.Text),
		Method:              MethodForQuestion(q.Type),
	}
	m.recomputeStats()

	return m, nil
}

// convertItems normalizes reply items for one kind. Items lacking both an
// id and a description are dropped, as are items whose code still fails
// the canonical grammar after normalization.
func (e *Engine) convertItems(kind standard.Kind, items []replyItem) []Item {
	result := make([]Item, 0, len(items))
	for _, ri := range items {
		if strings.TrimSpace(ri.ID) == "" && strings.TrimSpace(ri.Description) == "" {
			continue
		}

		code := standard.NormalizeCode(kind, ri.ID)
		if !standard.ValidCode(kind, code) {
			e.logger.Debug("Dropping mapping item with unusable code",
				"kind", kind,
				"raw", ri.ID,
				"normalized", code)
			continue
		}

		strength := normalizeStrength(ri.Strength)
		confidence := clampConfidence(ri.Confidence)
		result = append(result, Item{
			Code:        code,
			Description: ri.Description,
			Strength:    strength,
			Confidence:  confidence,
			Compliance:  classifyCompliance(strength, confidence),
		})
	}
	return result
}

// clampConfidence normalizes a confidence score into [0,1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// placeholderMapping builds the degrade-policy substitute: the first two
// elements and first two performance criteria at PARTIAL strength with
// 0.8 confidence, marked degraded.
func placeholderMapping(set *standard.Set, q *extract.Question) *Mapping {
	m := &Mapping{
		QuestionID:    q.ID,
		QuestionText:  q.Text,
		CognitiveTier: ClassifyTier(q.Text),
		Method:        MethodForQuestion(q.Type),
		Degraded:      true,
	}

	m.Elements = placeholderItems(set.Elements, 2)
	m.PerformanceCriteria = placeholderItems(set.PerformanceCriteria, 2)
	m.PerformanceEvidence = []Item{}
	m.KnowledgeEvidence = []Item{}

	m.recomputeStats()
	return m
}

func placeholderItems(comps []standard.Component, limit int) []Item {
	items := make([]Item, 0, limit)
	for i, c := range comps {
		if i >= limit {
			break
		}
		items = append(items, Item{
			Code:        c.Code,
			Description: c.Description,
			Strength:    StrengthPartial,
			Confidence:  0.8,
			Compliance:  classifyCompliance(StrengthPartial, 0.8),
		})
	}
	return items
}
