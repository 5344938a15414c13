// Package extract recovers hierarchical question structure from noisy
// assessment text, degrading from structured extraction through pattern
// matching to heuristic scanning.
package extract

import (
	"strings"
)

// QuestionType classifies how a question expects to be answered.
type QuestionType string

const (
	TypeMCQ         QuestionType = "mcq"
	TypeTrueFalse   QuestionType = "true_false"
	TypeShortAnswer QuestionType = "short_answer"
	TypeEssay       QuestionType = "essay"
	TypeScenario    QuestionType = "scenario"
	TypePractical   QuestionType = "practical"
	TypeQuestion    QuestionType = "question"
	TypeUnknown     QuestionType = "unknown"
)

// Confidence tags how the question was recovered: structured extraction
// yields high, pattern matching medium, heuristic scanning low.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Question is one extracted assessment question. Questions are immutable
// once emitted by the extractor.
type Question struct {
	// ID uniquely identifies the question within a document (Q1, Q2, ...).
	ID string `json:"id"`

	// Text is the question body, including captured continuation lines.
	Text string `json:"text"`

	// Number is the dotted sequence number from the source ("3" or "3.1").
	Number string `json:"question_number"`

	// ParentID links a sub-question to its main question.
	ParentID string `json:"parent_id,omitempty"`

	// Type is the classified question type.
	Type QuestionType `json:"type"`

	// Choices holds answer options for multiple-choice questions.
	Choices []string `json:"choices,omitempty"`

	// Confidence tags the extraction strategy that produced this record.
	Confidence Confidence `json:"confidence"`

	// Line is the 1-based source line the question started on.
	Line int `json:"line"`
}

// IsSub reports whether the question is a sub-question (dotted number).
func (q *Question) IsSub() bool {
	return strings.Contains(q.Number, ".")
}

// ParentNumber returns the main question number a sub-question belongs to,
// or "" for main questions.
func (q *Question) ParentNumber() string {
	dot := strings.IndexByte(q.Number, '.')
	if dot < 0 {
		return ""
	}
	return q.Number[:dot]
}

// Stats summarizes an extraction run.
type Stats struct {
	Total        int                  `json:"total"`
	SubQuestions int                  `json:"sub_questions"`
	ByType       map[QuestionType]int `json:"by_type"`
	ByConfidence map[Confidence]int   `json:"by_confidence"`
}

// ComputeStats aggregates per-document question statistics.
func ComputeStats(questions []Question) Stats {
	stats := Stats{
		Total:        len(questions),
		ByType:       make(map[QuestionType]int),
		ByConfidence: make(map[Confidence]int),
	}
	for i := range questions {
		q := &questions[i]
		stats.ByType[q.Type]++
		stats.ByConfidence[q.Confidence]++
		if q.IsSub() {
			stats.SubQuestions++
		}
	}
	return stats
}
