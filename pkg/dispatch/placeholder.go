package dispatch

import (
	"fmt"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

const placeholderVI = `**ORCHESTRATOR AI - CHẾ ĐỘ DEMO**

**Câu hỏi của bạn:** %s

**Trạng thái hệ thống:**
- ORCHESTRATOR đang chạy ở chế độ DEMO, chưa có phản hồi từ mô hình thật
- Bộ phân tích ý định và ngôn ngữ đang hoạt động
- Tài liệu phân quyền đã được nạp

**Để nhận phản hồi từ mô hình thật:**
1. Khởi động Ollama: ` + "`ollama serve`" + `
2. Tải một mô hình: ` + "`ollama pull qwen2.5:14b`" + `
3. Chạy lệnh ` + "`test`" + ` hoặc khởi động lại ORCHESTRATOR

**Gợi ý mô hình:**
- qwen2.5:14b hỗ trợ tiếng Việt tốt nhất
- llama3:8b nhanh và ổn định
- deepseek-coder:6.7b chuyên cho lập trình

Hãy kết nối Ollama để có trải nghiệm đầy đủ.`

const placeholderEN = `**ORCHESTRATOR AI - DEMO MODE**

**Your question:** %s

**System status:**
- ORCHESTRATOR is running in DEMO mode, no real model answered
- Intent and language analysis is operational
- The permissions document is loaded

**To get real model responses:**
1. Start Ollama: ` + "`ollama serve`" + `
2. Pull a model: ` + "`ollama pull qwen2.5:14b`" + `
3. Run the ` + "`test`" + ` command or restart ORCHESTRATOR

**Model suggestions:**
- qwen2.5:14b has the best Vietnamese support
- llama3:8b is fast and stable
- deepseek-coder:6.7b specializes in programming

Connect Ollama for the full experience.`

// Placeholder renders the synthesized response for plan in its language.
func Placeholder(plan schema.Plan) string {
	switch plan.Language {
	case schema.LanguageEnglish:
		return fmt.Sprintf(placeholderEN, plan.UserInput)
	case schema.LanguageVietnamese, schema.LanguageOther:
		return fmt.Sprintf(placeholderVI, plan.UserInput)
	default:
		return fmt.Sprintf(placeholderVI, plan.UserInput)
	}
}
