package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

func TestBuildCodingModel(t *testing.T) {
	plan := schema.Plan{
		Intent:    schema.IntentCoding,
		Language:  schema.LanguageVietnamese,
		Category:  schema.CategoryCoding,
		UserInput: "viết hàm sắp xếp bằng javascript",
	}

	p := Build(plan, "deepseek-coder:6.7b")

	assert.True(t, strings.HasPrefix(p, "You are an expert programming assistant."))
	assert.Contains(t, p, "code in JAVASCRIPT")
	assert.Contains(t, p, "USER REQUEST: viết hàm sắp xếp bằng javascript")
	assert.Contains(t, p, "Include error handling")
	assert.Contains(t, p, "example usage and expected output")
	assert.NotContains(t, p, "TIẾNG VIỆT")
}

func TestProgrammingLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"sort a list", "python"},
		{"use pandas to read csv", "python"},
		{"a react component", "javascript"},
		{"public static void main", "java"},
		{"build a website landing page", "html"},
		{"query the database for users", "sql"},
		{"spawn a goroutine per request", "go"},
		{"write golang and python", "python"},
		{"parse this json into sql rows", "sql"},
		{"parse this json payload", "python"},
		{"a small js helper", "javascript"},
		{"an express server on node.js", "javascript"},
		{"a java app", "java"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgrammingLanguage(tt.text))
		})
	}
}

func TestIsCodingModel(t *testing.T) {
	assert.True(t, IsCodingModel("deepseek-coder:6.7b"))
	assert.True(t, IsCodingModel("CodeLlama:7b"))
	assert.False(t, IsCodingModel("qwen2.5:14b"))
	assert.False(t, IsCodingModel("llama3:8b"))
}

func TestBuildGeneralTemplates(t *testing.T) {
	tests := []struct {
		name     string
		plan     schema.Plan
		contains []string
		excludes []string
	}{
		{
			name:     "vietnamese chat",
			plan:     schema.Plan{Intent: schema.IntentChat, Language: schema.LanguageVietnamese, Category: schema.CategoryChat, UserInput: "xin chào"},
			contains: []string{"Trả lời bằng TIẾNG VIỆT 100%.", "CÂU HỎI/ YÊU CẦU: xin chào", "BẮT ĐẦU TRẢ LỜI:"},
			excludes: []string{"[YÊU CẦU CODE]", "[YÊU CẦU NGHIÊN CỨU]"},
		},
		{
			name:     "english chat",
			plan:     schema.Plan{Intent: schema.IntentChat, Language: schema.LanguageEnglish, Category: schema.CategoryChat, UserInput: "hello"},
			contains: []string{"Answer in ENGLISH 100%.", "QUESTION/ REQUEST: hello"},
			excludes: []string{"TIẾNG VIỆT", "[CODE REQUIREMENTS]"},
		},
		{
			name:     "other language uses vietnamese",
			plan:     schema.Plan{Intent: schema.IntentChat, Language: schema.LanguageOther, UserInput: "bonjour"},
			contains: []string{"Trả lời bằng TIẾNG VIỆT 100%."},
		},
		{
			name:     "coding checklist on general model",
			plan:     schema.Plan{Intent: schema.IntentCoding, Language: schema.LanguageEnglish, Category: schema.CategoryCoding, UserInput: "fizzbuzz"},
			contains: []string{"[CODE REQUIREMENTS]", "Include error handling"},
			excludes: []string{"[RESEARCH REQUIREMENTS]"},
		},
		{
			name:     "research checklist by intent",
			plan:     schema.Plan{Intent: schema.IntentResearch, Language: schema.LanguageVietnamese, Category: schema.CategoryReasoning, UserInput: "xu hướng AI"},
			contains: []string{"[YÊU CẦU NGHIÊN CỨU]", "Kết thúc với tóm tắt"},
		},
		{
			name:     "web search checklist by category",
			plan:     schema.Plan{Intent: schema.IntentChat, Language: schema.LanguageEnglish, Category: schema.CategoryWebSearch, UserInput: "news"},
			contains: []string{"[RESEARCH REQUIREMENTS]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Build(tt.plan, "qwen2.5:14b")
			for _, s := range tt.contains {
				assert.Contains(t, p, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, p, s)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	plan := schema.Plan{Intent: schema.IntentResearch, Language: schema.LanguageEnglish, Category: schema.CategoryReasoning, UserInput: "AI trends"}
	for _, model := range []string{"mixtral:latest", "deepseek-coder:6.7b"} {
		assert.Equal(t, Build(plan, model), Build(plan, model))
	}
}
