// Package llm holds helpers shared by the chat model adapters.
package llm

import (
	"strings"

	"github.com/bnema/taskmate/internal/ports"
)

// Properties renders tool parameters as a JSON schema properties object.
func Properties(params map[string]ports.ToolParameter) map[string]any {
	props := make(map[string]any, len(params))
	for name, param := range params {
		prop := map[string]any{"type": param.Type}
		if param.Description != "" {
			prop["description"] = param.Description
		}
		if len(param.Enum) > 0 {
			prop["enum"] = param.Enum
		}
		props[name] = prop
	}
	return props
}

// Required never returns nil so providers see an empty array.
func Required(required []string) []string {
	if required == nil {
		return []string{}
	}
	return required
}

// SplitSystem pulls system messages out and merges consecutive turns of the
// same role, so the result alternates and starts with a user turn.
func SplitSystem(messages []ports.ChatMessage) (string, []ports.ChatMessage) {
	var system []string
	merged := make([]ports.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == ports.MessageRoleSystem {
			system = append(system, content)
			continue
		}
		if n := len(merged); n > 0 && merged[n-1].Role == msg.Role {
			merged[n-1].Content += "\n\n" + content
			continue
		}
		if len(merged) == 0 && msg.Role != ports.MessageRoleUser {
			merged = append(merged, ports.ChatMessage{Role: ports.MessageRoleUser, Content: "(conversation resumed)"})
		}
		merged = append(merged, ports.ChatMessage{Role: msg.Role, Content: content})
	}

	return strings.Join(system, "\n\n"), merged
}

// Flatten renders a conversation as one prompt for single-input APIs.
func Flatten(messages []ports.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case ports.MessageRoleSystem:
			parts = append(parts, "System: "+content)
		case ports.MessageRoleAssistant:
			parts = append(parts, "Assistant: "+content)
		default:
			parts = append(parts, "User: "+content)
		}
	}
	return strings.Join(parts, "\n\n")
}
