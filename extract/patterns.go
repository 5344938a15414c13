package extract

import "regexp"

// Line recognizers, tried in fixed priority by the pattern extractor.
var (
	// mainHeadingPattern matches a top-level question heading: "3. <text>".
	mainHeadingPattern = regexp.MustCompile(`^(\d+)\.\s+(.+)$`)

	// subQuestionPattern matches a dotted sub-question: "3.1 <text>".
	subQuestionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.?\s+(.+)$`)
)

// genericPattern is one fallback question recognizer.
type genericPattern struct {
	name string
	re   *regexp.Regexp
	// numberGroup is the capture index of the sequence number, 0 if none.
	numberGroup int
	// textGroup is the capture index of the question text.
	textGroup int
}

// genericPatterns are the ordered fallback recognizers applied when a line
// is neither a main heading nor a sub-question.
var genericPatterns = []genericPattern{
	{name: "numbered", re: regexp.MustCompile(`^(\d+)[.)]\s+(.+)$`), numberGroup: 1, textGroup: 2},
	{name: "lettered", re: regexp.MustCompile(`^([a-zA-Z])[.)]\s+(.+)$`), numberGroup: 0, textGroup: 2},
	{name: "question_label", re: regexp.MustCompile(`(?i)^question\s+(\d+)\s*[:.]?\s*(.+)$`), numberGroup: 1, textGroup: 2},
	{name: "q_number", re: regexp.MustCompile(`(?i)^q(\d+)[.:)]\s*(.+)$`), numberGroup: 1, textGroup: 2},
}

// choicePatterns are the ordered choice-line recognizers used for
// multiple-choice option extraction. First pattern to match a line wins.
var choicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Da-d])\.\s*(.+)$`),   // A. option
	regexp.MustCompile(`^(\d)\.\s*(.+)$`),         // 1. option
	regexp.MustCompile(`^[-•*]\s+(.+)$`),          // - option
	regexp.MustCompile(`^([A-Da-d])\)\s*(.+)$`),   // A) option
	regexp.MustCompile(`^(\d)\)\s*(.+)$`),         // 1) option
	regexp.MustCompile(`^\(([A-Da-d\d])\)\s*(.+)$`), // (A) option
}

// minChoiceLength is the shortest option text accepted.
const minChoiceLength = 3

// inlineChoicePattern detects choice markers embedded in question text,
// used by the classifier to spot multiple-choice questions.
var inlineChoicePattern = regexp.MustCompile(`(?:^|\s)\(?[A-Da-d][.)]\s+\S`)

// interrogativePattern spots question openers for heuristic detection.
var interrogativePattern = regexp.MustCompile(`(?i)\b(what|when|where|which|who|why|how)\b`)

// topLevelNumberPattern finds top-level question-number tokens for chunk
// split points.
var topLevelNumberPattern = regexp.MustCompile(`(?m)^\s*\d+\.\s`)

// duplicatedChoicePrefixPattern matches a repeated option marker left over
// from copy-paste artifacts ("A. A. text").
var duplicatedChoicePrefixPattern = regexp.MustCompile(`^([A-Da-d\d])[.)]\s*`)
