// Package tubeserver exposes transcript extraction, video metadata, channel
// lookup, summarization and task history as MCP tools.
package tubeserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 5

// RegisterTools registers youtube_transcript, youtube_video_metadata,
// youtube_channel_info, transcript_summarize and task_history.
func RegisterTools(server *mcp.Server, svc *Service) {
	registerTranscript(server, svc)
	registerMetadata(server, svc)
	registerChannel(server, svc)
	registerSummarize(server, svc)
	registerHistory(server, svc)
}
