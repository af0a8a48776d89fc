package youtube

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

// DirectPageStrategy fetches the watch page without browser headers and
// reads the raw timedtext XML of the best track with its own line parser.
type DirectPageStrategy struct {
	BaseURL string
}

func (s *DirectPageStrategy) Name() string { return "direct_page" }

func (s *DirectPageStrategy) Attempt(ctx context.Context, id VideoID) (TranscriptResult, error) {
	page, err := engine.FetchPage(ctx, WatchURL(s.BaseURL, id), map[string]string{
		"User-Agent":      engine.UserAgentChrome,
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("watch page: %w", err)
	}
	tree, err := jsontree.DecodeAfter([]byte(page), playerResponseMarker)
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("%w: %v", ErrBlobNotFound, err)
	}
	track, ok := RankTracks(tracksFromTree(tree))
	if !ok {
		return TranscriptResult{}, ErrNoCaptions
	}

	raw, err := engine.FetchPage(ctx, captionURL(s.BaseURL, track.BaseURL, ""), nil)
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("timedtext: %w", err)
	}
	text := parseTimedTextLines(raw)
	if !usable(text) {
		return TranscriptResult{}, ErrEmptyTranscript
	}
	return TranscriptResult{
		Text:            text,
		LanguageCode:    track.LanguageCode,
		IsAutoGenerated: track.Kind == KindAuto,
	}, nil
}
