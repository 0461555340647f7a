package gate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// Gate defines the interface for quality gates.
type Gate interface {
	// Evaluate checks a model response against quality criteria for category.
	Evaluate(text string, category schema.Category) *GateResult

	// Name returns the gate identifier.
	Name() string
}

// GateResult contains the outcome of a gate evaluation.
type GateResult struct {
	Passed      bool        `json:"passed"`
	Score       int         `json:"score"`
	Violations  []Violation `json:"violations,omitempty"`
	RepairHints []string    `json:"repair_hints,omitempty"`
}

// Violation describes a specific quality issue.
type Violation struct {
	Rule       string `json:"rule"`
	Severity   string `json:"severity"` // "error", "warning", "info"
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Rule identifiers reported in violations.
const (
	RuleTooShort    = "too_short"
	RuleMissingCode = "missing_code"
)

// NewPassingResult creates a result indicating the gate passed.
func NewPassingResult(score int) *GateResult {
	return &GateResult{
		Passed: true,
		Score:  score,
	}
}

// NewFailingResult creates a result indicating the gate failed.
func NewFailingResult(score int, violations []Violation, hints []string) *GateResult {
	return &GateResult{
		Passed:      false,
		Score:       score,
		Violations:  violations,
		RepairHints: hints,
	}
}

// DefaultCodeIndicators are substrings that mark a response as containing code.
var DefaultCodeIndicators = []string{
	"def ", "class ", "import ", "print(", "return ", "try:",
	"func ", "function ", "function(", "=>", "#include",
	"public static", "console.log", "```",
}

// AdequacyGate rejects responses that are too short for their category or,
// for coding, carry no code. Lengths are counted in runes and a response
// must be strictly longer than the category minimum.
type AdequacyGate struct {
	Floor          int
	DefaultMin     int
	CodingMin      int
	ResearchMin    int
	CodeIndicators []string
}

// NewAdequacyGate returns the gate with the built-in thresholds.
func NewAdequacyGate() *AdequacyGate {
	return &AdequacyGate{
		Floor:          50,
		DefaultMin:     100,
		CodingMin:      100,
		ResearchMin:    200,
		CodeIndicators: DefaultCodeIndicators,
	}
}

// Name returns the gate identifier.
func (g *AdequacyGate) Name() string {
	return "adequacy"
}

// Evaluate applies the length and code rules.
func (g *AdequacyGate) Evaluate(text string, category schema.Category) *GateResult {
	length := utf8.RuneCountInString(text)
	required := g.minFor(category)
	score := 100
	if length <= required {
		score = length * 100 / (required + 1)
	}

	var violations []Violation
	var hints []string

	if length < g.Floor || length <= required {
		violations = append(violations, Violation{
			Rule:       RuleTooShort,
			Severity:   "error",
			Message:    fmt.Sprintf("response has %d characters, need more than %d", length, required),
			Suggestion: "answer completely and in detail",
		})
		hints = append(hints, "expand the answer")
	}

	if category == schema.CategoryCoding && !g.hasCode(text) {
		violations = append(violations, Violation{
			Rule:       RuleMissingCode,
			Severity:   "error",
			Message:    "coding response contains no code",
			Suggestion: "include the complete code in a fenced block",
		})
		hints = append(hints, "include runnable code")
	}

	if len(violations) > 0 {
		return NewFailingResult(score, violations, hints)
	}
	return NewPassingResult(score)
}

func (g *AdequacyGate) minFor(category schema.Category) int {
	switch category {
	case schema.CategoryCoding:
		return g.CodingMin
	case schema.CategoryResearch, schema.CategoryWebSearch:
		return g.ResearchMin
	case schema.CategoryChat, schema.CategoryReasoning, schema.CategoryLightweight, schema.CategoryUnknown:
		return g.DefaultMin
	default:
		return g.DefaultMin
	}
}

func (g *AdequacyGate) hasCode(text string) bool {
	for _, indicator := range g.CodeIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

var defaultGate = NewAdequacyGate()

// IsAdequate reports whether text passes the built-in adequacy gate.
func IsAdequate(text string, category schema.Category) bool {
	return defaultGate.Evaluate(text, category).Passed
}
