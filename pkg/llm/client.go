// Package llm wraps the Anthropic SDK behind the narrow, tool-call-forced
// contract every RootSignal LLM consumer (extraction, weaving, story
// synthesis) actually needs: send a prompt plus a JSON schema, get back one
// validated tool-call argument blob.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// Client is the Go-side interface every caller depends on, so tests can
// substitute a fake without touching the network.
type Client interface {
	// CallTool sends system+user prompts with a single forced tool, and
	// returns the tool call's raw JSON arguments.
	CallTool(ctx context.Context, req ToolRequest) (json.RawMessage, error)
}

// ToolRequest describes one forced-tool-call completion.
type ToolRequest struct {
	System      string
	User        string
	ToolName    string
	Description string
	Schema      map[string]any // JSON Schema, same shape anthropic's tool input_schema expects
	MaxTokens   int64
}

type anthropicClient struct {
	sdk   anthropic.Client
	model anthropic.Model
}

// NewClient builds a Client from config.LLMConfig, reading the API key from
// the configured environment variable.
func NewClient(cfg *config.LLMConfig) (Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: environment variable %s is not set", cfg.APIKeyEnv)
	}
	return &anthropicClient{
		sdk:   anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(cfg.MaxRetries)),
		model: anthropic.Model(cfg.Model),
	}, nil
}

func (c *anthropicClient) CallTool(ctx context.Context, req ToolRequest) (json.RawMessage, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	resp, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Tools: []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        req.ToolName,
					Description: anthropic.String(req.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: req.Schema["properties"],
						Required:   toStringSlice(req.Schema["required"]),
					},
				},
			},
		},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ToolName},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: messages.new: %w", err)
	}

	for _, block := range resp.Content {
		if tu, ok := block.AsAny().(anthropic.ToolUseBlock); ok && tu.Name == req.ToolName {
			return json.RawMessage(tu.Input), nil
		}
	}
	return nil, fmt.Errorf("llm: response contained no %q tool call", req.ToolName)
}

func toStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
