// go_tubesum is a YouTube transcript, metadata and summary MCP server.
//
// Exposes five MCP tools: youtube_transcript, youtube_video_metadata,
// youtube_channel_info, transcript_summarize, task_history.
// The same operations are available locally through cmd/tubesum.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/tubeserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	svc, cleanup, err := tubeserver.Setup(context.Background())
	if err != nil {
		slog.Error("setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	slog.Info("starting go_tubesum",
		slog.String("port", mcpPort),
		slog.String("config", svc.Describe()),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tubesum",
		Version: version,
	}, nil)

	tubeserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", tubeserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tubesum",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
