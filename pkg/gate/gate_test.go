package gate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

func pad(prefix string, n int) string {
	if len(prefix) >= n {
		return prefix
	}
	return prefix + strings.Repeat("a", n-len(prefix))
}

func TestIsAdequate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category schema.Category
		want     bool
	}{
		{"empty", "", schema.CategoryChat, false},
		{"below floor", pad("", 49), schema.CategoryLightweight, false},
		{"chat exactly 100", pad("", 100), schema.CategoryChat, false},
		{"chat 101", pad("", 101), schema.CategoryChat, true},
		{"chat 40", pad("", 40), schema.CategoryChat, false},
		{"reasoning 150", pad("", 150), schema.CategoryReasoning, true},
		{"unknown uses chat rule", pad("", 101), schema.CategoryUnknown, true},
		{"research 200", pad("", 200), schema.CategoryResearch, false},
		{"research 201", pad("", 201), schema.CategoryResearch, true},
		{"web search 150", pad("", 150), schema.CategoryWebSearch, false},
		{"coding with def", pad("def solve():\n    return 1\n", 150), schema.CategoryCoding, true},
		{"coding without code", pad("", 150), schema.CategoryCoding, false},
		{"coding fence", pad("```\nx = 1\n```\n", 120), schema.CategoryCoding, true},
		{"coding arrow", pad("const f = (x) => x * 2;", 120), schema.CategoryCoding, true},
		{"coding short with code", pad("def f(): pass", 90), schema.CategoryCoding, false},
		{"coding prose with if", pad("if you want to sort, first read the list ", 150), schema.CategoryCoding, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdequate(tt.text, tt.category))
		})
	}
}

func TestLengthCountsRunes(t *testing.T) {
	// 60 Vietnamese characters are 60 runes but far more bytes.
	text := strings.Repeat("ệ", 60)
	require.Greater(t, len(text), 100)
	assert.False(t, IsAdequate(text, schema.CategoryChat))
}

func TestEvaluateViolations(t *testing.T) {
	g := NewAdequacyGate()
	assert.Equal(t, "adequacy", g.Name())

	res := g.Evaluate("short", schema.CategoryCoding)
	require.False(t, res.Passed)
	rules := make([]string, 0, len(res.Violations))
	for _, v := range res.Violations {
		rules = append(rules, v.Rule)
	}
	assert.Equal(t, []string{RuleTooShort, RuleMissingCode}, rules)
	assert.Len(t, res.RepairHints, 2)
	assert.Less(t, res.Score, 100)

	ok := g.Evaluate(pad("", 300), schema.CategoryChat)
	assert.True(t, ok.Passed)
	assert.Equal(t, 100, ok.Score)
	assert.Empty(t, ok.Violations)
}

func TestCustomThresholds(t *testing.T) {
	g := &AdequacyGate{Floor: 5, DefaultMin: 10, CodingMin: 10, ResearchMin: 20, CodeIndicators: []string{"SELECT"}}

	assert.True(t, g.Evaluate("hello world!", schema.CategoryChat).Passed)
	assert.True(t, g.Evaluate("SELECT * FROM t", schema.CategoryCoding).Passed)
	assert.False(t, g.Evaluate("def f(): return 1", schema.CategoryCoding).Passed)
}
