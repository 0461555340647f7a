package schema

import (
	"strings"
	"time"
)

// Language is the detected natural language of a request.
type Language string

const (
	LanguageVietnamese Language = "vi"
	LanguageEnglish    Language = "en"
	LanguageOther      Language = "other"
)

// ParseLanguage maps a language code to a Language. Unknown codes become LanguageOther.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageVietnamese:
		return LanguageVietnamese
	case LanguageEnglish:
		return LanguageEnglish
	default:
		return LanguageOther
	}
}

// Intent is the coarse purpose of a user request.
type Intent string

const (
	IntentChat       Intent = "chat"
	IntentCoding     Intent = "coding"
	IntentCodeReview Intent = "code_review"
	IntentResearch   Intent = "research"
	IntentWebSearch  Intent = "web_search"
	IntentPlanning   Intent = "planning"
	IntentReasoning  Intent = "reasoning"
	IntentSummary    Intent = "summary"
	IntentReview     Intent = "review"
	IntentSecurity   Intent = "security"
	IntentFileRead   Intent = "file_read"

	IntentCommandMode  Intent = "command_mode"
	IntentCommandModel Intent = "command_model"
	IntentCommandExit  Intent = "command_exit"
	IntentCommandHelp  Intent = "command_help"
	IntentCommandTest  Intent = "command_test"

	IntentUnknown Intent = "unknown"
)

var knownIntents = map[Intent]struct{}{
	IntentChat: {}, IntentCoding: {}, IntentCodeReview: {}, IntentResearch: {},
	IntentWebSearch: {}, IntentPlanning: {}, IntentReasoning: {}, IntentSummary: {},
	IntentReview: {}, IntentSecurity: {}, IntentFileRead: {},
	IntentCommandMode: {}, IntentCommandModel: {}, IntentCommandExit: {},
	IntentCommandHelp: {}, IntentCommandTest: {},
}

// ParseIntent maps an intent tag to an Intent. Unrecognized tags become IntentUnknown.
func ParseIntent(s string) Intent {
	i := Intent(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownIntents[i]; ok {
		return i
	}
	return IntentUnknown
}

// IsCommand reports whether the intent is one of the command_* control intents.
func (i Intent) IsCommand() bool {
	return strings.HasPrefix(string(i), "command_")
}

// Category (llm_type) decides which model and prompt template serve a plan.
type Category string

const (
	CategoryChat        Category = "chat"
	CategoryCoding      Category = "coding"
	CategoryReasoning   Category = "reasoning"
	CategoryLightweight Category = "lightweight"
	CategoryResearch    Category = "research"
	CategoryWebSearch   Category = "web_search"
	CategoryUnknown     Category = "unknown"
)

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryChat,
		CategoryCoding,
		CategoryReasoning,
		CategoryLightweight,
		CategoryResearch,
		CategoryWebSearch,
	}
}

// ParseCategory maps an llm_type string to a Category. Unrecognized values become CategoryUnknown.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c
		}
	}
	return CategoryUnknown
}

// Task is a normalized user request produced by the intent and language detectors.
type Task struct {
	Text       string   `json:"content"`
	Language   Language `json:"language"`
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source,omitempty"`
}

// Plan is the dispatch-ready description of a task.
type Plan struct {
	Intent            Intent   `json:"intent"`
	Language          Language `json:"language"`
	Category          Category `json:"llm_type"`
	Tools             []string `json:"tools"`
	Agent             string   `json:"agent,omitempty"`
	UserInput         string   `json:"user_input"`
	RequiresWebSearch bool     `json:"requires_web_search"`
	RequiresCode      bool     `json:"requires_code"`
}

// Mode records how an envelope's response was produced.
type Mode string

const (
	ModeReal         Mode = "real"
	ModeMock         Mode = "mock"
	ModeMockFallback Mode = "mock-fallback"
)

// Quality is the coarse quality tag of a response.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
)

// Sentinel model identifiers used when the response was synthesized locally.
const (
	ModelMock         = "mock"
	ModelMockFallback = "mock-fallback"
)

// CallReport captures metadata for a single backend call made during a dispatch.
type CallReport struct {
	Model          string `json:"model"`
	Outcome        string `json:"outcome"`
	Retries        int    `json:"retries"`
	Backup         bool   `json:"backup"`
	DurationMillis int64  `json:"duration_ms"`
	Error          string `json:"error,omitempty"`
}

// Envelope is the result of one dispatch. It is never mutated after it is returned.
type Envelope struct {
	ID        string       `json:"id"`
	Model     string       `json:"model"`
	Response  string       `json:"response"`
	Mode      Mode         `json:"mode"`
	Quality   Quality      `json:"quality"`
	Attempts  []CallReport `json:"attempts,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
