package youtube

import "errors"

// Unknown is the sentinel every best-effort field falls back to.
const Unknown = "Unknown"

var (
	ErrInvalidVideoID  = errors.New("invalid video identifier")
	ErrNoCaptions      = errors.New("no caption tracks")
	ErrBlobNotFound    = errors.New("embedded JSON blob not found")
	ErrEmptyTranscript = errors.New("transcript text too short")
)

// Kind distinguishes uploaded caption tracks from speech recognition.
type Kind string

const (
	KindManual Kind = "manual"
	KindAuto   Kind = "asr"
)

// CaptionTrack is one selectable caption stream of a video.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         Kind   `json:"kind"`
}

// IsEnglish reports whether the track language is en or en-*.
func (t CaptionTrack) IsEnglish() bool {
	return t.LanguageCode == "en" || len(t.LanguageCode) > 3 && t.LanguageCode[:3] == "en-"
}

// TranscriptResult is the outcome of one extraction call. Text is never
// missing: when nothing could be extracted it holds an explanatory placeholder.
type TranscriptResult struct {
	Text            string `json:"text"`
	LanguageCode    string `json:"language_code"`
	IsAutoGenerated bool   `json:"is_auto_generated"`
	Strategy        string `json:"strategy"`
}

// VideoMetadata is best-effort page metadata; absent fields hold Unknown.
type VideoMetadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	ViewCount string `json:"view_count"`
	Duration  string `json:"duration"`
}

// UnknownMetadata returns metadata with every field set to Unknown.
func UnknownMetadata() VideoMetadata {
	return VideoMetadata{Title: Unknown, Author: Unknown, ViewCount: Unknown, Duration: Unknown}
}

// ChannelInfo describes a channel. ThumbnailURL may be empty; callers that
// need an image use FallbackThumbnail.
type ChannelInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	SubscriberCount string `json:"subscriber_count"`
	Verified        bool   `json:"verified"`
	SourceURL       string `json:"source_url"`
}
