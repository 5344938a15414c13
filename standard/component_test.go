package standard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSet() *Set {
	return &Set{
		Code:  "HLTINF006",
		Title: "Apply basic principles and practices of infection prevention and control",
		Elements: []Component{
			{Kind: KindElement, Code: "E1", Description: "Follow standard precautions"},
			{Kind: KindElement, Code: "E2", Description: "Recognise infection hazards"},
		},
		PerformanceCriteria: []Component{
			{Kind: KindPerformanceCriterion, Code: "PC1.1", Description: "Perform hand hygiene"},
			{Kind: KindPerformanceCriterion, Code: "PC2.1", Description: "Identify hazards"},
		},
		PerformanceEvidence: []Component{
			{Kind: KindPerformanceEvidence, Code: "PE1", Description: "Performed hand hygiene"},
		},
		KnowledgeEvidence: []Component{
			{Kind: KindKnowledgeEvidence, Code: "KE1", Description: "Chain of infection"},
		},
	}
}

func TestSetValidate(t *testing.T) {
	s := validSet()
	require.NoError(t, s.Validate())
	assert.Equal(t, 6, s.TotalComponents())

	s.Code = ""
	assert.Error(t, s.Validate())

	s = validSet()
	s.PerformanceCriteria[0].Code = "PC1"
	assert.Error(t, s.Validate(), "criterion without element.criterion form")
}

func TestElementNumber(t *testing.T) {
	assert.Equal(t, 2, Component{Kind: KindPerformanceCriterion, Code: "PC2.3"}.ElementNumber())
	assert.Equal(t, 0, Component{Kind: KindElement, Code: "E2"}.ElementNumber())
	assert.Equal(t, 0, Component{Kind: KindPerformanceCriterion, Code: "PC9"}.ElementNumber())
}

func TestKindPrefix(t *testing.T) {
	assert.Equal(t, "E", KindElement.Prefix())
	assert.Equal(t, "PC", KindPerformanceCriterion.Prefix())
	assert.Equal(t, "PE", KindPerformanceEvidence.Prefix())
	assert.Equal(t, "KE", KindKnowledgeEvidence.Prefix())
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standard.json")

	// Kinds omitted on purpose; the loader backfills them.
	content := `{
		"code": "HLTINF006",
		"title": "Apply basic principles and practices of infection prevention and control",
		"elements": [{"code": "E1", "description": "Follow standard precautions"}],
		"performance_criteria": [{"code": "PC1.1", "description": "Perform hand hygiene"}],
		"performance_evidence": [{"code": "PE1", "description": "Performed hand hygiene"}],
		"knowledge_evidence": [{"code": "KE1", "description": "Chain of infection"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadSet(path)
	require.NoError(t, err)
	assert.Equal(t, "HLTINF006", set.Code)
	assert.Equal(t, KindElement, set.Elements[0].Kind)
	assert.Equal(t, KindKnowledgeEvidence, set.KnowledgeEvidence[0].Kind)
}

func TestLoadSetRejectsBadCodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standard.json")
	content := `{"code": "HLTINF006", "elements": [{"code": "X1", "description": "bad"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadSet(path)
	assert.Error(t, err)
}
