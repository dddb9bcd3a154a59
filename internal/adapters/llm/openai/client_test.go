package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/ports"
)

func TestCompleteParsesFunctionCalls(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "resp_1",
			"object": "response",
			"created_at": 1700000000,
			"model": "gpt-test",
			"status": "completed",
			"output": [
				{
					"type": "function_call",
					"id": "fc_1",
					"call_id": "call_1",
					"name": "create_task",
					"arguments": "{\"title\":\"Write docs\",\"assignee\":\"Ravi\"}",
					"status": "completed"
				}
			]
		}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient("test-key", "gpt-test", option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	resp, err := client.Complete(context.Background(), ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: ports.MessageRoleSystem, Content: "You manage tasks."},
			{Role: ports.MessageRoleUser, Content: "Create a docs task for Ravi"},
		},
		Tools: []ports.ToolDefinition{{
			Name:        "create_task",
			Description: "Create a task",
			Parameters:  map[string]ports.ToolParameter{"title": {Type: "string"}},
			Required:    []string{"title"},
		}},
		MaxTokens: 128,
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "create_task", resp.ToolCalls[0].Name)
	assert.Equal(t, "Write docs", resp.ToolCalls[0].Arguments["title"])
	assert.Empty(t, resp.Content)

	assert.Equal(t, "gpt-test", captured["model"])
	input, _ := captured["input"].(string)
	assert.True(t, strings.HasPrefix(input, "System: You manage tasks."))
	assert.Len(t, captured["tools"], 1)
}

func TestDefaultModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultModel, NewClient("k", "").ModelName())
}
