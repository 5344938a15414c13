package extract

import (
	"regexp"
	"strings"
)

// classificationRule pairs a question type with its matcher. Rules are
// evaluated in order; the first match wins.
type classificationRule struct {
	Type  QuestionType
	Match func(text string) bool
}

// keywordMatcher builds a matcher from a word-boundary alternation.
func keywordMatcher(pattern string) func(string) bool {
	re := regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`)
	return re.MatchString
}

// classificationRules is the ordered rule table. Priority mirrors how
// assessors read questions: explicit option lists dominate, then stated
// formats, then verb cues, with bare "?" as the weakest signal.
var classificationRules = []classificationRule{
	{TypeMCQ, hasInlineChoices},
	{TypeMCQ, keywordMatcher(`multiple choice|select|choose`)},
	{TypeTrueFalse, keywordMatcher(`true or false|true/false|t/f`)},
	{TypeEssay, keywordMatcher(`describe|explain|discuss|analyse|analyze|evaluate|compare|justify`)},
	{TypeShortAnswer, keywordMatcher(`list|name|identify|state|define|outline|give`)},
	{TypeShortAnswer, func(text string) bool {
		return strings.Contains(text, "?") && interrogativePattern.MatchString(text)
	}},
	{TypeScenario, keywordMatcher(`scenario|case study|consider the following|a client|a patient|you are working`)},
	{TypePractical, keywordMatcher(`demonstrate|perform|show how|complete the|conduct|carry out|simulate`)},
	{TypeQuestion, func(text string) bool {
		return strings.Contains(text, "?")
	}},
}

// Classify assigns a question type from the rule table.
func Classify(text string) QuestionType {
	for _, rule := range classificationRules {
		if rule.Match(text) {
			return rule.Type
		}
	}
	return TypeUnknown
}

// hasInlineChoices reports whether the text embeds at least two option
// markers ("A. ", "b) ", "(C) ").
func hasInlineChoices(text string) bool {
	return len(inlineChoicePattern.FindAllStringIndex(text, 3)) >= 2
}

// extractChoices scans a captured question span line by line against the
// ordered choice patterns. Only called for multiple-choice questions.
func extractChoices(span string) []string {
	var choices []string
	for _, line := range strings.Split(span, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, pattern := range choicePatterns {
			m := pattern.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			choice := cleanChoice(m[len(m)-1])
			if len(choice) >= minChoiceLength {
				choices = append(choices, choice)
			}
			break
		}
	}
	return choices
}

// cleanChoice strips duplicated option-marker artifacts from choice text.
func cleanChoice(text string) string {
	text = strings.TrimSpace(text)
	// "A. A. the option" leaves a second marker after the pattern match.
	for duplicatedChoicePrefixPattern.MatchString(text) {
		stripped := duplicatedChoicePrefixPattern.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = strings.TrimSpace(stripped)
	}
	return text
}
