// Package toolutil provides shared helpers for go_tubesum tool handlers.
package toolutil

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
)

// Tool names, also used as history kinds.
const (
	KindTranscript = "youtube_transcript"
	KindMetadata   = "youtube_video_metadata"
	KindChannel    = "youtube_channel_info"
	KindSummary    = "transcript_summarize"
	KindHistory    = "task_history"
)

var kindAliases = map[string]string{
	"transcript": KindTranscript,
	"metadata":   KindMetadata,
	"channel":    KindChannel,
	"summary":    KindSummary,
	"summarize":  KindSummary,
}

// NormKind maps short kind aliases to tool names; empty stays empty (all kinds).
func NormKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if full, ok := kindAliases[kind]; ok {
		return full
	}
	return kind
}

// Pacer spaces outbound requests to the video platform. A nil Pacer or a
// non-positive rate never waits.
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer allows rps requests per second with the given burst.
func NewPacer(rps float64, burst int) *Pacer {
	if rps <= 0 {
		return &Pacer{}
	}
	return &Pacer{lim: rate.NewLimiter(rate.Limit(rps), max(burst, 1))}
}

// Wait blocks until a request may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.lim == nil {
		return nil
	}
	return p.lim.Wait(ctx)
}

const historyWriteTimeout = 3 * time.Second

// Record stores a history entry. Failures are logged and counted, never
// returned: history must not fail a tool call. A nil store is a no-op.
func Record(ctx context.Context, store history.Store, kind, subject, status, detail string) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	e := history.NewEntry(kind, subject, status, engine.TruncateRunes(detail, 300, "..."))
	if err := store.Record(ctx, e); err != nil {
		engine.IncrHistoryWrite(false)
		slog.Warn("history: record failed", slog.String("kind", kind), slog.Any("error", err))
		return
	}
	engine.IncrHistoryWrite(true)
}
