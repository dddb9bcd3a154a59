package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/ports"
)

func TestCompleteParsesTextAndToolUse(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [
				{"type": "text", "text": "Looking that up."},
				{"type": "tool_use", "id": "tu_1", "name": "read_tasks", "input": {"assignee": "Ravi"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 3, "output_tokens": 4}
		}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient("test-key", "claude-test", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	resp, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: ports.MessageRoleSystem, Content: "You manage tasks."},
			{Role: ports.MessageRoleUser, Content: "What is Ravi working on?"},
		},
		Tools: []ports.ToolDefinition{{
			Name:        "read_tasks",
			Description: "List tasks",
			Parameters:  map[string]ports.ToolParameter{"assignee": {Type: "string"}},
		}},
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "Looking that up.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "read_tasks", resp.ToolCalls[0].Name)
	assert.Equal(t, "Ravi", resp.ToolCalls[0].Arguments["assignee"])

	assert.Equal(t, "claude-test", captured["model"])
	assert.EqualValues(t, 256, captured["max_tokens"])
	assert.NotNil(t, captured["system"])
	assert.Len(t, captured["messages"], 1)
	assert.Len(t, captured["tools"], 1)
}

func TestCompleteRequiresUserMessage(t *testing.T) {
	t.Parallel()

	client := NewClient("test-key", "", option.WithBaseURL("http://127.0.0.1:1"), option.WithMaxRetries(0))
	_, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.ChatMessage{{Role: ports.MessageRoleSystem, Content: "only rules"}},
	})

	require.Error(t, err)
	assert.Equal(t, DefaultModel, client.ModelName())
}
