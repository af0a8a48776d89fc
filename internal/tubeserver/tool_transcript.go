package tubeserver

import (
	"context"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/youtube"
	"github.com/anatolykoptev/go_tubesum/internal/toolutil"
)

func registerTranscript(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolutil.KindTranscript,
		Description: "Extract the transcript of a YouTube video. Tries several strategies in order (subtitle tool, player API, embedded page data, direct page parse) and prefers English manual captions. Never fails for a valid video: when nothing can be extracted the text is an explanatory placeholder and placeholder=true.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		out, err := svc.Transcript(ctx, input)
		return nil, out, err
	})
}

// Transcript extracts the transcript of input.Video. Only an unparseable
// video reference is an error.
func (s *Service) Transcript(ctx context.Context, input engine.TranscriptInput) (TranscriptOutput, error) {
	id, err := youtube.ParseVideoID(input.Video)
	if err != nil {
		return TranscriptOutput{}, err
	}

	cacheKey := engine.CacheKey(toolutil.KindTranscript, id.String())
	if !input.Fresh {
		if out, ok := engine.CacheLoadJSON[TranscriptOutput](ctx, cacheKey); ok {
			return out, nil
		}
	}

	if err := s.Pacer.Wait(ctx); err != nil {
		return TranscriptOutput{}, err
	}
	res := s.Extractor.Extract(ctx, id)
	out := transcriptOutput(id, res)
	out.Chars = utf8.RuneCountInString(res.Text)

	status := history.StatusOK
	if out.Placeholder {
		status = history.StatusPlaceholder
	} else {
		engine.CacheStoreJSON(ctx, cacheKey, out)
	}
	toolutil.Record(ctx, s.History, toolutil.KindTranscript, id.String(), status, res.Strategy)
	return out, nil
}
