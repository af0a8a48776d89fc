package youtube

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/captions"
)

// InnertubeStrategy reads caption tracks from the ANDROID /player endpoint.
type InnertubeStrategy struct {
	BaseURL string
}

func (s *InnertubeStrategy) Name() string { return "innertube" }

func (s *InnertubeStrategy) Attempt(ctx context.Context, id VideoID) (TranscriptResult, error) {
	player, err := fetchPlayer(ctx, s.BaseURL, id)
	if err != nil {
		return TranscriptResult{}, err
	}
	tracks := tracksFromTree(player)
	if len(tracks) == 0 {
		if reason := playabilityReason(player); reason != "" {
			return TranscriptResult{}, fmt.Errorf("%w: %s", ErrNoCaptions, reason)
		}
		return TranscriptResult{}, ErrNoCaptions
	}
	track, _ := RankTracks(tracks)
	return fetchTrack(ctx, s.BaseURL, track)
}

// fetchTrack downloads track as srv3 and normalizes it.
func fetchTrack(ctx context.Context, base string, track CaptionTrack) (TranscriptResult, error) {
	raw, err := engine.FetchPage(ctx, captionURL(base, track.BaseURL, "srv3"), nil)
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("caption track %s: %w", track.LanguageCode, err)
	}
	text := captions.Normalize(raw, "text/xml")
	if !usable(text) {
		return TranscriptResult{}, ErrEmptyTranscript
	}
	return TranscriptResult{
		Text:            text,
		LanguageCode:    track.LanguageCode,
		IsAutoGenerated: track.Kind == KindAuto,
	}, nil
}
