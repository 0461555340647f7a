package router

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// Trigger maps a keyword or phrase to an intent.
type Trigger struct {
	Phrase string
	Intent schema.Intent
}

// DefaultCommandTriggers are the chat control keywords. A command only
// matches when it is the whole input, optionally prefixed with "/".
func DefaultCommandTriggers() []Trigger {
	return []Trigger{
		{"chế độ", schema.IntentCommandMode},
		{"mode", schema.IntentCommandMode},
		{"model", schema.IntentCommandModel},
		{"models", schema.IntentCommandModel},
		{"mô hình", schema.IntentCommandModel},
		{"thoát", schema.IntentCommandExit},
		{"exit", schema.IntentCommandExit},
		{"quit", schema.IntentCommandExit},
		{"trợ giúp", schema.IntentCommandHelp},
		{"help", schema.IntentCommandHelp},
		{"test", schema.IntentCommandTest},
		{"kiểm tra", schema.IntentCommandTest},
	}
}

// DefaultIntentTriggers are the keyword lists per intent, in match order.
func DefaultIntentTriggers() []Trigger {
	groups := []struct {
		intent  schema.Intent
		phrases []string
	}{
		{schema.IntentWebSearch, []string{"tìm kiếm", "google", "tra cứu", "search", "web", "mạng"}},
		{schema.IntentResearch, []string{"nghiên cứu", "thông tin", "tài liệu", "bài báo", "research"}},
		{schema.IntentCoding, []string{"code", "lập trình", "python", "viết mã", "debug", "sửa lỗi", "function", "script"}},
		{schema.IntentPlanning, []string{"kế hoạch", "lập kế hoạch", "sắp xếp", "tổ chức", "plan", "schedule"}},
		{schema.IntentSummary, []string{"tóm tắt", "tổng hợp", "trích yếu", "summarize", "summary", "tldr"}},
		{schema.IntentReasoning, []string{"phân tích", "suy luận", "tại sao", "vì sao", "nguyên nhân", "analyze", "why"}},
	}

	var out []Trigger
	for _, g := range groups {
		for _, p := range g.phrases {
			out = append(out, Trigger{Phrase: p, Intent: g.intent})
		}
	}
	return out
}

// RuleSet holds the command and intent keyword rules.
type RuleSet struct {
	commands []Trigger
	intents  []Trigger
	order    map[schema.Intent]int
}

// NewRuleSet compiles command and intent triggers. Phrases are lower-cased;
// intent triggers keep their order, which decides ties.
func NewRuleSet(commands, intents []Trigger) *RuleSet {
	rs := &RuleSet{order: make(map[schema.Intent]int)}
	for _, t := range commands {
		rs.commands = append(rs.commands, Trigger{Phrase: strings.ToLower(t.Phrase), Intent: t.Intent})
	}
	for _, t := range intents {
		rs.intents = append(rs.intents, Trigger{Phrase: strings.ToLower(t.Phrase), Intent: t.Intent})
		if _, seen := rs.order[t.Intent]; !seen {
			rs.order[t.Intent] = len(rs.order)
		}
	}
	return rs
}

// MatchCommand returns the command intent when text is a bare command.
func (rs *RuleSet) MatchCommand(text string) (schema.Intent, bool) {
	normalized := normalizeCommand(text)
	if normalized == "" {
		return "", false
	}
	for _, t := range rs.commands {
		if normalized == t.Phrase {
			return t.Intent, true
		}
	}
	return "", false
}

// Candidates scores every intent with at least one matching trigger. The
// first candidate is the intent whose group comes first in rule order, so
// the earliest group wins regardless of score.
func (rs *RuleSet) Candidates(text string) []Candidate {
	lower := strings.ToLower(text)

	byIntent := make(map[schema.Intent]*Candidate)
	var order []schema.Intent
	for _, t := range rs.intents {
		if !containsTrigger(lower, t.Phrase) {
			continue
		}
		c, ok := byIntent[t.Intent]
		if !ok {
			c = &Candidate{Intent: t.Intent}
			byIntent[t.Intent] = c
			order = append(order, t.Intent)
		}
		c.Score++
		c.Triggers = append(c.Triggers, t.Phrase)
	}

	out := make([]Candidate, 0, len(order))
	for _, intent := range order {
		out = append(out, *byIntent[intent])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rs.order[out[i].Intent] < rs.order[out[j].Intent]
	})
	return out
}

func normalizeCommand(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

// containsTrigger reports whether trigger occurs in text on word boundaries.
// Boundaries are rune-aware so Vietnamese letters count as word characters.
func containsTrigger(text, trigger string) bool {
	if trigger == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		idx := strings.Index(text[offset:], trigger)
		if idx == -1 {
			return false
		}
		start := offset + idx
		end := start + len(trigger)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
