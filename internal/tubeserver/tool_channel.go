package tubeserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/youtube"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

func registerChannel(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolutil.KindChannel,
		Description: "Look up a YouTube channel by URL (/@handle, /c/name, /channel/UC..., /user/name). Returns id, name, thumbnail, display-formatted subscriber count (e.g. \"4.1M subscribers\") and verification badge. Unreadable fields are \"Unknown\"; avatar_url always holds a usable image.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelInput) (*mcp.CallToolResult, ChannelOutput, error) {
		out, err := svc.Channel(ctx, input)
		return nil, out, err
	})
}

// Channel reads channel details for input.URL.
func (s *Service) Channel(ctx context.Context, input engine.ChannelInput) (ChannelOutput, error) {
	rawURL := strings.TrimSpace(input.URL)
	if rawURL == "" {
		return ChannelOutput{}, errors.New("url is required")
	}

	cacheKey := engine.CacheKey(toolutil.KindChannel, rawURL)
	if !input.Fresh {
		if out, ok := engine.CacheLoadJSON[ChannelOutput](ctx, cacheKey); ok {
			return out, nil
		}
	}

	if err := s.Pacer.Wait(ctx); err != nil {
		return ChannelOutput{}, err
	}
	info := s.Channels.Extract(ctx, rawURL)
	out := channelOutput(info)

	status := history.StatusOK
	if info.Name == youtube.Unknown && info.SubscriberCount == youtube.Unknown {
		status = history.StatusPlaceholder
	} else {
		engine.CacheStoreJSON(ctx, cacheKey, out)
	}
	toolutil.Record(ctx, s.History, toolutil.KindChannel, rawURL, status, info.SubscriberCount)
	return out, nil
}
