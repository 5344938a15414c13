// Package session persists complete pipeline runs so a coverage map can
// be reloaded, re-analyzed and exported without re-running extraction or
// mapping.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/assessortools/covmap/coverage"
	"github.com/assessortools/covmap/extract"
	"github.com/assessortools/covmap/mapping"
	"github.com/assessortools/covmap/standard"
)

// Session is one assessment analyzed against one standard: the inputs,
// every intermediate artifact and the final analysis.
type Session struct {
	// ID uniquely identifies this session.
	ID string `json:"session_id"`

	// StandardCode is the competency standard analyzed against.
	StandardCode string `json:"standard_code"`

	// AssessmentType labels the source document (e.g. "written", "practical").
	AssessmentType string `json:"assessment_type"`

	// Filename is the source document's name, for audit trails.
	Filename string `json:"filename"`

	// CreatedAt is when the session was created, in UTC.
	CreatedAt time.Time `json:"created_at"`

	// Standard is the full component set the questions were mapped against.
	Standard *standard.Set `json:"standard"`

	Questions []extract.Question `json:"questions"`
	Mappings  []mapping.Mapping  `json:"mappings"`

	// Stats summarizes the extracted question set.
	Stats extract.Stats `json:"statistics"`

	// Report and Tasks hold the coverage analysis, present once the
	// session has been analyzed.
	Report *coverage.Report `json:"report,omitempty"`
	Tasks  []coverage.Task  `json:"remediation_tasks,omitempty"`
}

// New creates a session for one assessment document.
func New(standardSet *standard.Set, assessmentType, filename string) *Session {
	s := &Session{
		ID:             uuid.NewString(),
		AssessmentType: assessmentType,
		Filename:       filename,
		CreatedAt:      time.Now().UTC(),
		Standard:       standardSet,
	}
	if standardSet != nil {
		s.StandardCode = standardSet.Code
	}
	return s
}

// Validate checks the session is storable.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.Standard == nil {
		return fmt.Errorf("session %s: standard set is required", s.ID)
	}
	if err := s.Standard.Validate(); err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}
	return nil
}
