// Package prompt renders the text sent to a backend model for a plan.
package prompt

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// languageHint matches fragments anywhere in the text and words only
// between non-letters, so "js" does not fire on "json".
type languageHint struct {
	name      string
	fragments []string
	words     []string
}

// Scanned in order; the first language with a matching keyword wins.
var languageHints = []languageHint{
	{"python", []string{"python", "pandas", "numpy", "def ", "import "}, nil},
	{"javascript", []string{"javascript", "react", "function("}, []string{"js", "node"}},
	{"java", []string{"class ", "public static"}, []string{"java"}},
	{"html", []string{"html", "<div>", "<p>", "website"}, nil},
	{"sql", []string{"sql", "database", "select ", "insert "}, nil},
	{"go", []string{"golang", "goroutine", "go func", "package main"}, nil},
}

// Build renders the prompt for plan addressed to model. It is deterministic.
func Build(plan schema.Plan, model string) string {
	if IsCodingModel(model) {
		return buildCoding(plan)
	}
	return buildGeneral(plan)
}

// IsCodingModel reports whether model is a code-specialized model.
func IsCodingModel(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "code") || strings.Contains(m, "coder")
}

// ProgrammingLanguage guesses the target language of a coding request.
func ProgrammingLanguage(text string) string {
	lower := strings.ToLower(text)
	for _, hint := range languageHints {
		for _, kw := range hint.fragments {
			if strings.Contains(lower, kw) {
				return hint.name
			}
		}
		for _, w := range hint.words {
			if containsWord(lower, w) {
				return hint.name
			}
		}
	}
	return "python"
}

func containsWord(text, word string) bool {
	notLetter := func(r rune) bool { return !unicode.IsLetter(r) }
	for _, field := range strings.FieldsFunc(text, notLetter) {
		if field == word {
			return true
		}
	}
	return false
}

func buildCoding(plan schema.Plan) string {
	lang := strings.ToUpper(ProgrammingLanguage(plan.UserInput))

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert programming assistant. Write complete, runnable code in %s.\n\n", lang)
	fmt.Fprintf(&sb, "USER REQUEST: %s\n\n", plan.UserInput)
	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString("1. Write FULL, COMPLETE, RUNNABLE code\n")
	sb.WriteString("2. Include comprehensive comments explaining the logic\n")
	sb.WriteString("3. Include error handling\n")
	sb.WriteString("4. Include example usage with test cases\n")
	sb.WriteString("5. Use best practices and clean code principles\n\n")
	sb.WriteString("RESPONSE FORMAT:\n")
	sb.WriteString("- Start with a brief explanation of the solution\n")
	sb.WriteString("- Then provide the complete code in a code block\n")
	sb.WriteString("- End with example usage and expected output\n\n")
	fmt.Fprintf(&sb, "Complete %s code:", lang)
	return sb.String()
}

type template struct {
	language     string
	rules        string
	question     string
	begin        string
	codeList     string
	researchList string
}

var templates = map[schema.Language]template{
	schema.LanguageVietnamese: {
		language:     "Trả lời bằng TIẾNG VIỆT 100%.",
		rules:        "YÊU CẦU QUAN TRỌNG:\n1. Trả lời ĐẦY ĐỦ, CHI TIẾT, không cắt ngang\n2. Tổ chức thông tin có cấu trúc rõ ràng\n3. Đưa ví dụ cụ thể khi có thể",
		question:     "CÂU HỎI/ YÊU CẦU: ",
		begin:        "BẮT ĐẦU TRẢ LỜI:",
		codeList:     "[YÊU CẦU CODE]\n- Code phải đầy đủ, có thể chạy được\n- Có comment giải thích\n- Có ví dụ sử dụng\n- Có xử lý lỗi",
		researchList: "[YÊU CẦU NGHIÊN CỨU]\n- Cung cấp thông tin chi tiết, có cấu trúc\n- Đưa ra các khía cạnh quan trọng\n- Kết thúc với tóm tắt",
	},
	schema.LanguageEnglish: {
		language:     "Answer in ENGLISH 100%.",
		rules:        "IMPORTANT REQUIREMENTS:\n1. Answer COMPLETELY and in DETAIL, never stop mid-sentence\n2. Organize the information with a clear structure\n3. Give concrete examples where possible",
		question:     "QUESTION/ REQUEST: ",
		begin:        "BEGIN ANSWER:",
		codeList:     "[CODE REQUIREMENTS]\n- Code must be complete and runnable\n- Include explanatory comments\n- Include example usage\n- Include error handling",
		researchList: "[RESEARCH REQUIREMENTS]\n- Provide detailed, structured information\n- Cover the important aspects\n- End with a summary",
	},
}

func templateFor(lang schema.Language) template {
	switch lang {
	case schema.LanguageEnglish:
		return templates[schema.LanguageEnglish]
	case schema.LanguageVietnamese, schema.LanguageOther:
		return templates[schema.LanguageVietnamese]
	default:
		return templates[schema.LanguageVietnamese]
	}
}

func buildGeneral(plan schema.Plan) string {
	t := templateFor(plan.Language)

	var sb strings.Builder
	sb.WriteString(t.language)
	sb.WriteString("\n\n")
	sb.WriteString(t.rules)
	sb.WriteString("\n\n")
	sb.WriteString(t.question)
	sb.WriteString(plan.UserInput)
	sb.WriteString("\n\n")
	sb.WriteString(t.begin)

	switch {
	case isCodingPlan(plan):
		sb.WriteString("\n\n")
		sb.WriteString(t.codeList)
	case isResearchPlan(plan):
		sb.WriteString("\n\n")
		sb.WriteString(t.researchList)
	}
	return sb.String()
}

func isCodingPlan(plan schema.Plan) bool {
	return plan.Intent == schema.IntentCoding || plan.Category == schema.CategoryCoding
}

func isResearchPlan(plan schema.Plan) bool {
	switch plan.Intent {
	case schema.IntentResearch, schema.IntentWebSearch:
		return true
	}
	return plan.Category == schema.CategoryResearch || plan.Category == schema.CategoryWebSearch
}
