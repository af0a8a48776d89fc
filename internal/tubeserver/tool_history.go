package tubeserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

func registerHistory(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolutil.KindHistory,
		Description: "List recent tool calls (transcripts, metadata, channels, summaries), newest first. Optionally filter by kind: transcript, metadata, channel, summary.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		out, err := svc.ListHistory(ctx, input)
		return nil, out, err
	})
}

// ListHistory returns recorded tool calls, newest first.
func (s *Service) ListHistory(ctx context.Context, input engine.HistoryInput) (HistoryOutput, error) {
	if s.History == nil {
		return HistoryOutput{}, errHistoryDisabled
	}
	entries, err := s.History.List(ctx, toolutil.NormKind(input.Kind), input.Limit)
	if err != nil {
		return HistoryOutput{}, err
	}
	items := historyItems(entries)
	return HistoryOutput{Entries: items, Count: len(items)}, nil
}
