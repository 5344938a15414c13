package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/assessortools/covmap/metrics"
)

// Pre-compiled regex patterns for structured reply repair.
var (
	// codeFencePattern matches JSON inside markdown code blocks: ```json { ... } ```
	codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\s*```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	// adjacentObjectsPattern matches object boundaries missing a comma.
	adjacentObjectsPattern = regexp.MustCompile(`\}\s*\{`)
	// adjacentArraysPattern matches array boundaries missing a comma.
	adjacentArraysPattern = regexp.MustCompile(`\]\s*\[`)
	// controlCharPattern matches control characters that break JSON parsing.
	controlCharPattern = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f]")
)

// RepairObject coerces a service reply into a single valid JSON object,
// attempting repairs in order and stopping at the first success:
//
//  1. parse the substring from the first "{" to the last "}"
//  2. strip markdown code fences, then retry
//  3. apply textual repairs (comments, trailing commas, adjacent
//     object/array boundaries, control characters), then retry
//  4. scan for balanced-brace substrings and try parsing each
//
// Returns ErrNoStructuredResult when every attempt fails.
func RepairObject(content string) (string, error) {
	if raw := braceSpan(content); raw != "" && json.Valid([]byte(raw)) {
		metrics.RepairOutcomes.WithLabelValues("direct").Inc()
		return raw, nil
	}

	unfenced := stripCodeFences(content)
	if raw := braceSpan(unfenced); raw != "" && json.Valid([]byte(raw)) {
		metrics.RepairOutcomes.WithLabelValues("fenced").Inc()
		return raw, nil
	}

	if raw := braceSpan(unfenced); raw != "" {
		repaired := repairText(raw)
		if json.Valid([]byte(repaired)) {
			metrics.RepairOutcomes.WithLabelValues("textual").Inc()
			return repaired, nil
		}
	}

	for _, candidate := range balancedObjects(unfenced) {
		repaired := repairText(candidate)
		if json.Valid([]byte(repaired)) {
			metrics.RepairOutcomes.WithLabelValues("scan").Inc()
			return repaired, nil
		}
	}

	metrics.RepairOutcomes.WithLabelValues("failed").Inc()
	return "", ErrNoStructuredResult
}

// DecodeObject repairs a reply and unmarshals the result into v.
func DecodeObject(content string, v any) error {
	raw, err := RepairObject(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return ErrNoStructuredResult
	}
	return nil
}

// braceSpan returns the substring from the first "{" to the last "}".
func braceSpan(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// stripCodeFences unwraps markdown code fences, keeping the inner text.
func stripCodeFences(content string) string {
	if matches := codeFencePattern.FindStringSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	return strings.ReplaceAll(content, "```", "")
}

// repairText applies textual fixes for the defects LLMs commonly produce.
func repairText(raw string) string {
	// Strip // comments outside string values, line by line.
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	result = trailingCommaPattern.ReplaceAllString(result, "$1")
	result = adjacentObjectsPattern.ReplaceAllString(result, "},{")
	result = adjacentArraysPattern.ReplaceAllString(result, "],[")
	result = controlCharPattern.ReplaceAllString(result, "")

	return result
}

// stripLineComment removes a // comment from a JSON line, respecting string
// values so URLs like "http://example.com" survive.
func stripLineComment(line string) string {
	// Fast path: no // at all
	if !strings.Contains(line, "//") {
		return line
	}

	// Walk the line character by character, tracking whether we're inside a string.
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

// balancedObjects collects every top-level balanced-brace substring,
// tracking string literals so embedded braces don't confuse the scan.
func balancedObjects(content string) []string {
	var candidates []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(content); i++ {
		ch := content[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					candidates = append(candidates, content[start:i+1])
					start = -1
				}
			}
		}
	}

	return candidates
}
