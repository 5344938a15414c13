// Package standard models the competency standard a document is assessed
// against: elements, performance criteria, performance evidence, and
// knowledge evidence, each identified by a canonical code.
package standard

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Kind identifies a component category within a standard.
type Kind string

const (
	KindElement              Kind = "element"
	KindPerformanceCriterion Kind = "performance_criterion"
	KindPerformanceEvidence  Kind = "performance_evidence"
	KindKnowledgeEvidence    Kind = "knowledge_evidence"
)

// Kinds lists all component kinds in canonical order.
var Kinds = []Kind{
	KindElement,
	KindPerformanceCriterion,
	KindPerformanceEvidence,
	KindKnowledgeEvidence,
}

// Prefix returns the code prefix for this kind ("E", "PC", "PE", "KE").
func (k Kind) Prefix() string {
	switch k {
	case KindElement:
		return "E"
	case KindPerformanceCriterion:
		return "PC"
	case KindPerformanceEvidence:
		return "PE"
	case KindKnowledgeEvidence:
		return "KE"
	default:
		return ""
	}
}

// Component is a single requirement within a standard.
// Components are supplied externally and read-only to the pipeline.
type Component struct {
	Kind        Kind   `json:"kind"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ElementNumber returns the owning element number for a performance
// criterion code (PC2.3 -> 2). Returns 0 for other kinds or unparseable
// codes.
func (c Component) ElementNumber() int {
	if c.Kind != KindPerformanceCriterion {
		return 0
	}
	rest := strings.TrimPrefix(c.Code, "PC")
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:dot])
	if err != nil {
		return 0
	}
	return n
}

// Set is a complete standard: a unit code, title, and the four component
// collections.
type Set struct {
	Code                string      `json:"code"`
	Title               string      `json:"title"`
	Elements            []Component `json:"elements"`
	PerformanceCriteria []Component `json:"performance_criteria"`
	PerformanceEvidence []Component `json:"performance_evidence"`
	KnowledgeEvidence   []Component `json:"knowledge_evidence"`
}

// ByKind returns the component slice for a kind.
func (s *Set) ByKind(k Kind) []Component {
	switch k {
	case KindElement:
		return s.Elements
	case KindPerformanceCriterion:
		return s.PerformanceCriteria
	case KindPerformanceEvidence:
		return s.PerformanceEvidence
	case KindKnowledgeEvidence:
		return s.KnowledgeEvidence
	default:
		return nil
	}
}

// TotalComponents returns the count across all four kinds.
func (s *Set) TotalComponents() int {
	return len(s.Elements) + len(s.PerformanceCriteria) +
		len(s.PerformanceEvidence) + len(s.KnowledgeEvidence)
}

// Validate checks that every component carries a canonical code for its
// kind and that the set has a unit code.
func (s *Set) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("standard code is required")
	}
	for _, k := range Kinds {
		for _, c := range s.ByKind(k) {
			if !ValidCode(k, c.Code) {
				return fmt.Errorf("%s component has non-canonical code %q", k, c.Code)
			}
		}
	}
	return nil
}

// LoadSet reads a standard set from a JSON file.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read standard file: %w", err)
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse standard file: %w", err)
	}

	// Backfill kinds so callers can load files that omit them.
	for _, k := range Kinds {
		comps := set.ByKind(k)
		for i := range comps {
			comps[i].Kind = k
		}
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("validate standard: %w", err)
	}

	return &set, nil
}
