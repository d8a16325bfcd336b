package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/fourthplaces/rootsignal/pkg/llm"
)

const systemPrompt = `You extract community-relevant signals from scraped web pages for a local
mutual-aid and civic-information tracker. Read the page markdown and emit
zero or more signals: gatherings, aid offers, needs, notices, or tensions.
Only report firsthand information actually present on the page; never
invent details. If the page failed to load or has nothing reportable,
return an empty signals list.`

// Extractor wraps the LLM tool-call contract for per-source extraction.
type Extractor struct {
	client   llm.Client
	validate *validator.Validate
	logger   *slog.Logger
}

func New(client llm.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, validate: validator.New(), logger: logger}
}

// Extract runs the extraction tool call against markdown (the page's
// rendered body) and returns the signals surviving the boundary filters:
// malformed rows, junk-title rows, and is_firsthand=false rows are dropped
// and logged rather than returned.
func (e *Extractor) Extract(ctx context.Context, sourceURL, markdown string) ([]Signal, error) {
	raw, err := e.client.CallTool(ctx, llm.ToolRequest{
		System:      systemPrompt,
		User:        fmt.Sprintf("Source URL: %s\n\n%s", sourceURL, markdown),
		ToolName:    "report_signals",
		Description: "Report the signals found on this page.",
		Schema:      toolSchema(),
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: llm call: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("extract: decode tool response: %w", err)
	}

	out := make([]Signal, 0, len(resp.Signals))
	for i, s := range resp.Signals {
		if err := e.validate.Struct(s); err != nil {
			e.logger.Warn("extract: dropping malformed signal", "source_url", sourceURL, "index", i, "error", err)
			continue
		}
		if s.isJunk() {
			e.logger.Debug("extract: dropping junk-title row", "source_url", sourceURL, "title", s.Title)
			continue
		}
		if s.droppedFirsthand() {
			e.logger.Debug("extract: dropping non-firsthand row", "source_url", sourceURL, "title", s.Title)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
