package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

const captionTracksKey = `"captionTracks":`

// configMarkers introduce page config blobs that may carry a player response.
var configMarkers = []string{"ytcfg.set(", "ytInitialData = ", "ytplayer.config = "}

// EmbeddedDataStrategy fetches the watch page like a browser and looks for
// caption tracks in data embedded in its scripts.
type EmbeddedDataStrategy struct {
	BaseURL string
}

func (s *EmbeddedDataStrategy) Name() string { return "embedded_data" }

type trackTechnique struct {
	name string
	find func(page string) []CaptionTrack
}

func (s *EmbeddedDataStrategy) Attempt(ctx context.Context, id VideoID) (TranscriptResult, error) {
	page, err := engine.FetchPage(ctx, WatchURL(s.BaseURL, id), engine.BrowserHeaders())
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("watch page: %w", err)
	}

	techniques := []trackTechnique{
		{"player_response", tracksFromPlayerResponse},
		{"script_scan", tracksFromScripts},
		{"config_scan", tracksFromConfig},
	}
	var errs []error
	for _, tq := range techniques {
		if err := ctx.Err(); err != nil {
			return TranscriptResult{}, err
		}
		tracks := tq.find(page)
		if len(tracks) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", tq.name, ErrNoCaptions))
			continue
		}
		track, _ := RankTracks(tracks)
		res, err := fetchTrack(ctx, s.BaseURL, track)
		if err == nil {
			return res, nil
		}
		slog.Debug("youtube: embedded technique failed",
			slog.String("id", string(id)), slog.String("technique", tq.name), slog.Any("err", err))
		errs = append(errs, fmt.Errorf("%s: %w", tq.name, err))
	}
	return TranscriptResult{}, errors.Join(errs...)
}

func tracksFromPlayerResponse(page string) []CaptionTrack {
	tree, err := jsontree.DecodeAfter([]byte(page), playerResponseMarker)
	if err != nil {
		return nil
	}
	return tracksFromTree(tree)
}

// tracksFromScripts scans every <script> body mentioning captionTracks.
func tracksFromScripts(page string) []CaptionTrack {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}
	var tracks []CaptionTrack
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		body := sel.Text()
		if !strings.Contains(body, captionTracksKey) {
			return true
		}
		arr := jsontree.ExtractArray([]byte(body), captionTracksKey)
		if arr == nil {
			return true
		}
		list, err := jsontree.Decode(arr)
		if err != nil {
			return true
		}
		tracks = tracksFromTree(map[string]any{"captionTracks": list})
		return len(tracks) == 0
	})
	return tracks
}

// tracksFromConfig decodes config blobs and searches them with the locator,
// including player responses serialized as JSON strings inside the config.
func tracksFromConfig(page string) []CaptionTrack {
	for _, marker := range configMarkers {
		tree, err := jsontree.DecodeAfter([]byte(page), marker)
		if err != nil {
			continue
		}
		if tracks := tracksFromTree(tree); len(tracks) > 0 {
			return tracks
		}
		for _, holder := range jsontree.FindAll(tree, hasEmbeddedCaptions) {
			for _, v := range holder {
				s, ok := v.(string)
				if !ok || !strings.Contains(s, captionTracksKey) {
					continue
				}
				if inner, err := jsontree.Decode([]byte(s)); err == nil {
					if tracks := tracksFromTree(inner); len(tracks) > 0 {
						return tracks
					}
				}
			}
		}
	}
	return nil
}

func hasEmbeddedCaptions(m map[string]any) bool {
	for _, v := range m {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "{") && strings.Contains(s, captionTracksKey) {
			return true
		}
	}
	return false
}
