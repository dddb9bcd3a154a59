package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/bnema/taskmate/internal/adapters/llm"
	"github.com/bnema/taskmate/internal/ports"
)

const DefaultModel = "gpt-4o-mini"

// Client talks to the OpenAI Responses API. The conversation is flattened into
// a single input string.
type Client struct {
	client sdk.Client
	model  string
}

var _ ports.ChatModel = (*Client)(nil)

func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Client{client: sdk.NewClient(opts...), model: model}
}

func (c *Client) ModelName() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	resp, err := c.client.Responses.New(ctx, c.params(req))
	if err != nil {
		return ports.CompletionResponse{}, fmt.Errorf("openai responses: %w", err)
	}
	if resp == nil {
		return ports.CompletionResponse{}, errors.New("empty response from openai")
	}

	var out ports.CompletionResponse
	for i := range resp.Output {
		item := &resp.Output[i]
		if item.Type != "function_call" {
			continue
		}

		call := item.AsFunctionCall()
		args := map[string]any{}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return ports.CompletionResponse{}, fmt.Errorf("decode %s arguments: %w", call.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, ports.ToolCall{ID: call.ID, Name: call.Name, Arguments: args})
	}
	out.Content = resp.OutputText()

	return out, nil
}

func (c *Client) params(req ports.CompletionRequest) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: sdk.String(llm.Flatten(req.Messages))},
	}
	if req.MaxTokens > 0 {
		params.MaxOutputTokens = sdk.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	if len(req.Tools) > 0 {
		tools := make([]responses.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, responses.ToolUnionParam{
				OfFunction: &responses.FunctionToolParam{
					Name:        tool.Name,
					Description: sdk.String(tool.Description),
					Parameters: sdk.FunctionParameters(map[string]any{
						"type":       "object",
						"properties": llm.Properties(tool.Parameters),
						"required":   llm.Required(tool.Required),
					}),
				},
			})
		}
		params.Tools = tools
	}

	return params
}
