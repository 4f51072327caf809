package chat

import (
	"context"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to invoke a named tool.
// Arguments holds the JSON-encoded arguments exactly as the model produced them.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a callable function to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Model completes a transcript, optionally requesting tool calls.
type Model interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (Message, error)
}

// Toolbox advertises tools and dispatches calls to them.
type Toolbox interface {
	Tools(ctx context.Context) ([]Tool, error)
	Call(ctx context.Context, name string, arguments string) (string, error)
	Close() error
}

const (
	DefaultSystemPrompt string = "你是一个专业的医学助手，请根据提供的医学文档回答问题。如果用户的问题需要查询医学知识，请使用列表中的工具来获取相关信息。"

	// Apology is returned to the user when a query fails.
	Apology string = "抱歉，处理您的请求时出现了问题。"

	DefaultMaxTurns int = 10
)

type Config struct {
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"baseURL"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	MaxTurns     int           `yaml:"maxTurns"`
	Timeout      time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Model:        "Qwen2.5-7B-Instruct-AWQ",
		BaseURL:      "http://127.0.0.1:8000/v1",
		SystemPrompt: DefaultSystemPrompt,
		MaxTurns:     DefaultMaxTurns,
	}
}
