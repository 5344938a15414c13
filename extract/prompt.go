package extract

import (
	"fmt"

	"github.com/assessortools/covmap/llm"
)

// buildExtractionPrompt assembles the structured-extraction instruction.
// Document text is capped before embedding so oversized chunks cannot blow
// the prompt budget.
func buildExtractionPrompt(text string) string {
	return fmt.Sprintf(`You are analysing an assessment document. Extract every assessment question, preserving the numbering hierarchy (main questions "1." and sub-questions "1.1").

Return ONLY a JSON object in exactly this shape, with no commentary:
{
  "questions": [
    {
      "question_number": "1.1",
      "text": "the full question text",
      "type": "mcq|true_false|short_answer|essay|scenario|practical|question|unknown",
      "choices": ["option text"],
      "confidence": "high|medium|low"
    }
  ]
}

Rules:
- keep questions in document order
- include choices only for multiple-choice questions
- do not invent questions that are not in the document

Document:
%s`, llm.TruncatePrompt(text))
}

// extractionReply is the structured reply expected from the service.
type extractionReply struct {
	Questions []extractedQuestion `json:"questions"`
}

type extractedQuestion struct {
	Number     string   `json:"question_number"`
	Text       string   `json:"text"`
	Type       string   `json:"type"`
	Choices    []string `json:"choices"`
	Confidence string   `json:"confidence"`
}
