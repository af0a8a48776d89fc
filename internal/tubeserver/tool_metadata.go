package tubeserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/youtube"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

func registerMetadata(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolutil.KindMetadata,
		Description: "Read best-effort metadata of a YouTube video from its watch page: title, author, view count and duration. Fields that cannot be found are \"Unknown\".",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.MetadataInput) (*mcp.CallToolResult, MetadataOutput, error) {
		out, err := svc.Metadata(ctx, input)
		return nil, out, err
	})
}

// Metadata reads the watch page of input.Video.
func (s *Service) Metadata(ctx context.Context, input engine.MetadataInput) (MetadataOutput, error) {
	id, err := youtube.ParseVideoID(input.Video)
	if err != nil {
		return MetadataOutput{}, err
	}

	cacheKey := engine.CacheKey(toolutil.KindMetadata, id.String())
	if out, ok := engine.CacheLoadJSON[MetadataOutput](ctx, cacheKey); ok {
		return out, nil
	}

	if err := s.Pacer.Wait(ctx); err != nil {
		return MetadataOutput{}, err
	}
	meta := s.Extractor.FetchMetadata(ctx, id)
	out := MetadataOutput{
		VideoID:   id.String(),
		Title:     meta.Title,
		Author:    meta.Author,
		ViewCount: meta.ViewCount,
		Duration:  meta.Duration,
		WatchURL:  youtube.WatchURL(s.Extractor.BaseURL(), id),
	}

	status := history.StatusOK
	if meta == youtube.UnknownMetadata() {
		status = history.StatusPlaceholder
	} else {
		engine.CacheStoreJSON(ctx, cacheKey, out)
	}
	toolutil.Record(ctx, s.History, toolutil.KindMetadata, id.String(), status, meta.Title)
	return out, nil
}
