package planner

import (
	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/policy"
	"github.com/zen-systems/orchestrator/pkg/schema"
)

var categoryByIntent = map[schema.Intent]schema.Category{
	schema.IntentChat:       schema.CategoryChat,
	schema.IntentReasoning:  schema.CategoryReasoning,
	schema.IntentCoding:     schema.CategoryCoding,
	schema.IntentCodeReview: schema.CategoryCoding,
	schema.IntentResearch:   schema.CategoryReasoning,
	schema.IntentSummary:    schema.CategoryLightweight,
}

var toolsByIntent = map[schema.Intent][]string{
	schema.IntentWebSearch: {"web_search"},
	schema.IntentResearch:  {"web_search", "memory_read"},
	schema.IntentCoding:    {"code_executor"},
	schema.IntentFileRead:  {"file_reader"},
}

var agentByIntent = map[schema.Intent]string{
	schema.IntentPlanning: "planner",
	schema.IntentResearch: "research",
	schema.IntentCoding:   "coding",
	schema.IntentReview:   "reviewer",
	schema.IntentSecurity: "security",
}

// Planner turns a detected task into a dispatch plan.
type Planner struct {
	permissions *policy.Registry
	logger      *zap.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPermissions sets the permissions document directly.
func WithPermissions(r *policy.Registry) Option {
	return func(p *Planner) {
		p.permissions = r
	}
}

// New creates a planner, loading permissions from permissionsPath.
// A load failure leaves an empty permission set and logs a warning.
func New(permissionsPath string, opts ...Option) *Planner {
	p := &Planner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	if p.permissions == nil {
		r, err := policy.Load(permissionsPath)
		if err != nil {
			p.logger.Warn("permissions unavailable, continuing with none",
				zap.String("path", permissionsPath), zap.Error(err))
			r = policy.NewRegistry()
		}
		p.permissions = r
	}
	return p
}

// Analyze builds the plan for task. It never fails: unmapped intents get the
// chat category, no tools and no agent.
func (p *Planner) Analyze(task schema.Task) schema.Plan {
	intent := task.Intent
	if intent == "" {
		intent = schema.IntentChat
	}
	language := task.Language
	if language == "" {
		language = schema.LanguageVietnamese
	}

	plan := schema.Plan{
		Intent:            intent,
		Language:          language,
		Category:          CategoryFor(intent),
		Tools:             ToolsFor(intent),
		Agent:             agentByIntent[intent],
		UserInput:         task.Text,
		RequiresWebSearch: intent == schema.IntentResearch || intent == schema.IntentWebSearch,
		RequiresCode:      intent == schema.IntentCoding || intent == schema.IntentCodeReview,
	}

	if plan.Agent != "" {
		for _, tool := range plan.Tools {
			if !p.permissions.Allows(plan.Agent, tool) {
				p.logger.Debug("tool not permitted for agent",
					zap.String("agent", plan.Agent), zap.String("tool", tool))
			}
		}
	}

	p.logger.Debug("plan created",
		zap.String("intent", string(plan.Intent)),
		zap.String("llm_type", string(plan.Category)),
		zap.Strings("tools", plan.Tools),
		zap.String("agent", plan.Agent))
	return plan
}

// CategoryFor returns the model category serving intent.
func CategoryFor(intent schema.Intent) schema.Category {
	if c, ok := categoryByIntent[intent]; ok {
		return c
	}
	return schema.CategoryChat
}

// ToolsFor returns a fresh copy of the tools needed for intent.
func ToolsFor(intent schema.Intent) []string {
	tools := toolsByIntent[intent]
	out := make([]string, len(tools))
	copy(out, tools)
	return out
}
