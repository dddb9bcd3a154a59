package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bnema/taskmate/internal/adapters/llm"
	"github.com/bnema/taskmate/internal/ports"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Client talks to the Anthropic Messages API.
type Client struct {
	client sdk.Client
	model  sdk.Model
}

var _ ports.ChatModel = (*Client)(nil)

func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Client{client: sdk.NewClient(opts...), model: sdk.Model(model)}
}

func (c *Client) ModelName() string {
	return string(c.model)
}

func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	params, err := c.params(req)
	if err != nil {
		return ports.CompletionResponse{}, err
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return ports.CompletionResponse{}, fmt.Errorf("anthropic messages: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return ports.CompletionResponse{}, errors.New("empty response from anthropic")
	}

	var out ports.CompletionResponse
	for i := range resp.Content {
		block := &resp.Content[i]
		switch block.Type {
		case "text":
			out.Content += block.AsText().Text
		case "tool_use":
			toolUse := block.AsToolUse()
			args := map[string]any{}
			if len(toolUse.Input) > 0 {
				if err := json.Unmarshal(toolUse.Input, &args); err != nil {
					return ports.CompletionResponse{}, fmt.Errorf("decode %s input: %w", toolUse.Name, err)
				}
			}
			out.ToolCalls = append(out.ToolCalls, ports.ToolCall{ID: toolUse.ID, Name: toolUse.Name, Arguments: args})
		}
	}

	return out, nil
}

func (c *Client) params(req ports.CompletionRequest) (sdk.MessageNewParams, error) {
	system, turns := llm.SplitSystem(req.Messages)
	if len(turns) == 0 {
		return sdk.MessageNewParams{}, errors.New("anthropic request needs at least one user message")
	}

	messages := make([]sdk.MessageParam, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, sdk.MessageParam{
			Role:    sdk.MessageParamRole(turn.Role),
			Content: []sdk.ContentBlockParamUnion{sdk.NewTextBlock(turn.Content)},
		})
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(req.Temperature),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system, Type: "text"}}
	}

	if len(req.Tools) > 0 {
		tools := make([]sdk.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			schema := sdk.ToolInputSchemaParam{
				Type:       "object",
				Properties: llm.Properties(tool.Parameters),
				Required:   llm.Required(tool.Required),
			}
			union := sdk.ToolUnionParamOfTool(schema, tool.Name)
			if union.OfTool != nil {
				union.OfTool.Description = sdk.String(tool.Description)
			}
			tools = append(tools, union)
		}
		params.Tools = tools
		params.ToolChoice = sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
	}

	return params, nil
}
