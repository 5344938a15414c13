package standard

import (
	"regexp"
	"strings"
)

// Canonical code grammars per kind.
var (
	elementCodePattern   = regexp.MustCompile(`^E\d+$`)
	criterionCodePattern = regexp.MustCompile(`^PC\d+\.\d+$`)
	evidenceCodePattern  = regexp.MustCompile(`^PE\d+$`)
	knowledgeCodePattern = regexp.MustCompile(`^KE\d+$`)

	digitPattern = regexp.MustCompile(`\d`)
)

// ValidCode reports whether code matches the canonical grammar for kind.
func ValidCode(k Kind, code string) bool {
	switch k {
	case KindElement:
		return elementCodePattern.MatchString(code)
	case KindPerformanceCriterion:
		return criterionCodePattern.MatchString(code)
	case KindPerformanceEvidence:
		return evidenceCodePattern.MatchString(code)
	case KindKnowledgeEvidence:
		return knowledgeCodePattern.MatchString(code)
	default:
		return false
	}
}

// NormalizeCode coerces a component identifier returned by the extraction
// service into the canonical grammar for its kind. The fix-up is idempotent:
// an already-canonical code is returned unchanged.
//
// Repairs applied, in order:
//   - uppercase and strip surrounding whitespace
//   - collapse a duplicated prefix (PCPC1.1 -> PC1.1)
//   - insert the prefix when the remainder starts with a digit (1.1 -> PC1.1)
//   - append "1" when the remainder carries no digit at all (E -> E1)
func NormalizeCode(k Kind, raw string) string {
	prefix := k.Prefix()
	if prefix == "" {
		return strings.TrimSpace(raw)
	}

	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return ""
	}

	for strings.HasPrefix(code, prefix+prefix) {
		code = strings.TrimPrefix(code, prefix)
	}

	if !strings.HasPrefix(code, prefix) {
		code = prefix + code
	}

	rest := strings.TrimPrefix(code, prefix)
	if !digitPattern.MatchString(rest) {
		code += "1"
	}

	return code
}
