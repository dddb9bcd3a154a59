package ports

import "context"

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type ChatMessage struct {
	Role    MessageRole
	Content string
}

type ToolParameter struct {
	Type        string
	Description string
	Enum        []string
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]ToolParameter
	Required    []string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

type CompletionRequest struct {
	Messages    []ChatMessage
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature float64
}

type CompletionResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatModel is the language-model provider the assistant forwards turns to.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	ModelName() string
}
