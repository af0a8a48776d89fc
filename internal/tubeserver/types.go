package tubeserver

import (
	"time"

	"github.com/anatolykoptev/go_tubesum/internal/engine/history"
	"github.com/anatolykoptev/go_tubesum/internal/engine/youtube"
)

// --- Tool output types ---

type TranscriptOutput struct {
	VideoID         string `json:"video_id"`
	Text            string `json:"text"`
	LanguageCode    string `json:"language_code"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
	Strategy        string `json:"strategy"`
	Placeholder     bool   `json:"placeholder"`
	Chars           int    `json:"chars"`
}

type MetadataOutput struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	ViewCount string `json:"view_count"`
	Duration  string `json:"duration"`
	WatchURL  string `json:"watch_url"`
}

type ChannelOutput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	SubscriberCount string `json:"subscriber_count"`
	Verified        bool   `json:"verified"`
	SourceURL       string `json:"source_url"`
	AvatarURL       string `json:"avatar_url"` // ThumbnailURL, or a generated fallback
}

type SummaryOutput struct {
	Summary            string `json:"summary"`
	Provider           string `json:"provider"`
	Format             string `json:"format"`
	VideoID            string `json:"video_id,omitempty"`
	TranscriptStrategy string `json:"transcript_strategy,omitempty"`
	TranscriptChars    int    `json:"transcript_chars"`
}

type HistoryItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

type HistoryOutput struct {
	Entries []HistoryItem `json:"entries"`
	Count   int           `json:"count"`
}

func transcriptOutput(id youtube.VideoID, r youtube.TranscriptResult) TranscriptOutput {
	return TranscriptOutput{
		VideoID:         id.String(),
		Text:            r.Text,
		LanguageCode:    r.LanguageCode,
		IsAutoGenerated: r.IsAutoGenerated,
		Strategy:        r.Strategy,
		Placeholder:     youtube.IsPlaceholder(r),
	}
}

func channelOutput(info youtube.ChannelInfo) ChannelOutput {
	out := ChannelOutput{
		ID:              info.ID,
		Name:            info.Name,
		ThumbnailURL:    info.ThumbnailURL,
		SubscriberCount: info.SubscriberCount,
		Verified:        info.Verified,
		SourceURL:       info.SourceURL,
		AvatarURL:       info.ThumbnailURL,
	}
	if out.AvatarURL == "" {
		out.AvatarURL = youtube.FallbackThumbnail(info.Name)
	}
	return out
}

func historyItems(entries []history.Entry) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			ID:        e.ID,
			Kind:      e.Kind,
			Subject:   e.Subject,
			Status:    e.Status,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}
