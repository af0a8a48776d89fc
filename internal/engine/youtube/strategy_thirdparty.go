package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var errFetcherUnavailable = errors.New("transcript integration not available")

// thirdPartyVariants is the fixed order in which the integration is asked.
var thirdPartyVariants = []TranscriptVariant{
	{Languages: []string{"en"}, Kind: KindManual},
	{Languages: []string{"en"}, Kind: KindAuto},
	{Languages: []string{"en-US", "en-GB"}, Kind: KindManual},
	{Languages: []string{"en-US", "en-GB"}, Kind: KindAuto},
	{Languages: []string{"en.*"}},
	{},
}

// ThirdPartyStrategy opens the video's listing through an external
// TranscriptFetcher once, then asks it for each variant in turn. Delay is
// paused after every variant whose download failed; a variant the listing
// has no track for costs no request and is followed without a pause.
type ThirdPartyStrategy struct {
	Fetcher TranscriptFetcher
	Delay   time.Duration
}

func (s *ThirdPartyStrategy) Name() string { return "third_party" }

func (s *ThirdPartyStrategy) Attempt(ctx context.Context, id VideoID) (TranscriptResult, error) {
	if s.Fetcher == nil || !s.Fetcher.Available() {
		return TranscriptResult{}, errFetcherUnavailable
	}
	set, err := s.Fetcher.Open(ctx, id)
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("open listing: %w", err)
	}

	var lastErr error
	for _, v := range thirdPartyVariants {
		if lastErr != nil && !errors.Is(lastErr, ErrNoMatchingSubs) {
			if err := sleepCtx(ctx, s.Delay); err != nil {
				return TranscriptResult{}, err
			}
		} else if err := ctx.Err(); err != nil {
			return TranscriptResult{}, err
		}
		got, err := set.Fetch(ctx, v)
		if err == nil && usable(got.Text) {
			return TranscriptResult{
				Text:            got.Text,
				LanguageCode:    got.LanguageCode,
				IsAutoGenerated: got.Kind == KindAuto,
			}, nil
		}
		if err == nil {
			err = ErrEmptyTranscript
		}
		slog.Debug("youtube: third-party variant failed",
			slog.String("id", string(id)), slog.String("variant", v.String()), slog.Any("err", err))
		lastErr = err
	}
	return TranscriptResult{}, fmt.Errorf("all %d variants failed: %w", len(thirdPartyVariants), lastErr)
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
