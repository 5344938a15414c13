package extract

import (
	"fmt"
	"strings"
)

// Chunking defaults, in characters.
const (
	// DefaultChunkThreshold is the document size above which chunking kicks in.
	DefaultChunkThreshold = 5000

	// DefaultMaxChunkSize caps a single chunk.
	DefaultMaxChunkSize = 3500

	// DefaultMinFragment discards split fragments below this length.
	DefaultMinFragment = 10
)

// ChunkConfig holds chunk planning configuration.
type ChunkConfig struct {
	// Threshold is the document size above which chunking applies.
	Threshold int

	// MaxChunkSize caps a chunk. A single fragment exceeding the cap is
	// kept whole rather than split mid-group.
	MaxChunkSize int

	// MinFragment discards fragments shorter than this after splitting.
	MinFragment int
}

// DefaultChunkConfig returns the standard chunking settings.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Threshold:    DefaultChunkThreshold,
		MaxChunkSize: DefaultMaxChunkSize,
		MinFragment:  DefaultMinFragment,
	}
}

// Validate checks if the configuration is valid.
func (c ChunkConfig) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("Threshold must be positive, got %d", c.Threshold)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("MaxChunkSize must be positive, got %d", c.MaxChunkSize)
	}
	if c.MinFragment < 0 {
		return fmt.Errorf("MinFragment must not be negative, got %d", c.MinFragment)
	}
	if c.MaxChunkSize > c.Threshold {
		return fmt.Errorf("MaxChunkSize (%d) must not exceed Threshold (%d)", c.MaxChunkSize, c.Threshold)
	}
	return nil
}

// ChunkPlanner splits oversized documents into order-preserving chunks
// that never break a question-number group.
type ChunkPlanner struct {
	config ChunkConfig
}

// NewChunkPlanner creates a planner with the given configuration.
// Returns an error if the configuration is invalid.
func NewChunkPlanner(cfg ChunkConfig) (*ChunkPlanner, error) {
	if cfg.Threshold == 0 {
		cfg = DefaultChunkConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ChunkPlanner{config: cfg}, nil
}

// MustNewChunkPlanner creates a planner, panicking on invalid config.
// Use for known-good configurations.
func MustNewChunkPlanner(cfg ChunkConfig) *ChunkPlanner {
	p, err := NewChunkPlanner(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// NewDefaultChunkPlanner creates a planner with default configuration.
func NewDefaultChunkPlanner() *ChunkPlanner {
	return MustNewChunkPlanner(DefaultChunkConfig())
}

// NeedsChunking reports whether the document exceeds the threshold.
func (p *ChunkPlanner) NeedsChunking(text string) bool {
	return len(text) > p.config.Threshold
}

// Plan splits the document into chunks. Text at or under the threshold is
// returned as a single chunk. Splits happen immediately before top-level
// question-number tokens, so concatenating the chunks in order reproduces
// every question-number group exactly once.
func (p *ChunkPlanner) Plan(text string) []string {
	if !p.NeedsChunking(text) {
		return []string{text}
	}

	fragments := p.splitFragments(text)
	if len(fragments) == 0 {
		return []string{text}
	}

	return p.packFragments(fragments)
}

// splitFragments cuts the text before every top-level "N." token and drops
// fragments below the minimum length.
func (p *ChunkPlanner) splitFragments(text string) []string {
	starts := topLevelNumberPattern.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return []string{text}
	}

	var bounds []int
	if starts[0][0] > 0 {
		bounds = append(bounds, 0)
	}
	for _, loc := range starts {
		bounds = append(bounds, loc[0])
	}
	bounds = append(bounds, len(text))

	var fragments []string
	for i := 0; i+1 < len(bounds); i++ {
		fragment := text[bounds[i]:bounds[i+1]]
		if len(strings.TrimSpace(fragment)) < p.config.MinFragment {
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

// packFragments greedily packs consecutive fragments into chunks, starting
// a new chunk only when appending the next fragment would exceed the cap.
// Fragments are never split; one fragment alone over the cap stays whole.
func (p *ChunkPlanner) packFragments(fragments []string) []string {
	var chunks []string
	var current strings.Builder

	for _, fragment := range fragments {
		if current.Len() > 0 && current.Len()+len(fragment) > p.config.MaxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(fragment)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
