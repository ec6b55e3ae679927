package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

// AnthropicClient implements Completer over the Anthropic Messages API, or
// any compatible provider via a base-URL override.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient builds a client for the given credential and model
// identifier. baseURL is optional and points the SDK at a compatible proxy.
func NewAnthropicClient(apiKey, model, baseURL string) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Model returns the configured model identifier.
func (c *AnthropicClient) Model() string { return c.model }

// Complete performs one blocking round trip.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages:  anthropic.F(convertMessages(req.Messages)),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(req.System),
		})
	}

	// ToolChoiceNone means the model gets no tools at all, which is how a
	// free-text final answer is forced.
	if req.ToolChoice.Mode != ToolChoiceNone && len(req.Tools) > 0 {
		toolParams := make([]anthropic.ToolUnionUnionParam, len(req.Tools))
		for i, t := range req.Tools {
			schema := map[string]interface{}{
				"type": "object",
			}
			if props, ok := t.InputSchema["properties"]; ok {
				schema["properties"] = props
			}
			if required, ok := t.InputSchema["required"]; ok {
				schema["required"] = required
			}
			toolParams[i] = anthropic.ToolParam{
				Name:        anthropic.String(t.Name),
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.F[interface{}](schema),
			}
		}
		params.Tools = anthropic.F(toolParams)

		if req.ToolChoice.Mode == ToolChoiceTool {
			params.ToolChoice = anthropic.F[anthropic.ToolChoiceUnionParam](
				anthropic.ToolChoiceToolParam{
					Type: anthropic.F(anthropic.ToolChoiceToolTypeTool),
					Name: anthropic.F(req.ToolChoice.Name),
				},
			)
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	msg := Message{Role: RoleAssistant}
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			msg.Content += b.Text
		case anthropic.ToolUseBlock:
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: b.Input,
			})
		}
	}

	return &Response{
		Message:    msg,
		StopReason: string(resp.StopReason),
	}, nil
}

// convertMessages maps the neutral conversation onto Anthropic params. Tool
// results become user messages carrying tool_result blocks, per the
// Messages API shape.
func convertMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError),
			))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.ToolUseBlockParam{
					Type:  anthropic.F(anthropic.ToolUseBlockParamTypeToolUse),
					ID:    anthropic.F(tc.ID),
					Name:  anthropic.F(tc.Name),
					Input: anthropic.F[interface{}](tc.Arguments),
				})
			}
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.F(anthropic.MessageParamRoleAssistant),
				Content: anthropic.F(blocks),
			})
		default:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewTextBlock(m.Content),
			))
		}
	}
	return out
}
