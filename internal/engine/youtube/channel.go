package youtube

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

// channelIDRules map URL shapes to identifiers, first match wins.
var channelIDRules = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|/)(@[A-Za-z0-9._-]+)`),
	regexp.MustCompile(`/c/([^/?#]+)`),
	regexp.MustCompile(`/channel/(UC[A-Za-z0-9_-]{22})`),
	regexp.MustCompile(`/user/([^/?#]+)`),
}

var channelTabRe = regexp.MustCompile(`/(featured|videos|shorts|streams|playlists|community|about|channels|search)/?$`)

// subscriberPaths are hand-picked locations tried after the locator.
var subscriberPaths = [][]any{
	{"header", "pageHeaderRenderer", "content", "pageHeaderViewModel", "metadata",
		"contentMetadataViewModel", "metadataRows", 1, "metadataParts", 0, "text", "content"},
	{"header", "c4TabbedHeaderRenderer", "subscriberCountText", "accessibility", "accessibilityData", "label"},
	{"onResponseReceivedEndpoints", 0, "showEngagementPanelEndpoint", "engagementPanel",
		"engagementPanelSectionListRenderer", "content", "sectionListRenderer", "contents", 0,
		"itemSectionRenderer", "contents", 0, "aboutChannelRenderer", "metadata",
		"aboutChannelViewModel", "subscriberCountText"},
}

var (
	ogTitleRe     = regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`)
	htmlTitleRe   = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	ogImageRe     = regexp.MustCompile(`<meta property="og:image" content="([^"]+)"`)
	rawSubsRe     = regexp.MustCompile(`(?i)"?(\d[\d,.]*\s*[KMB]?\s+subscribers?)`)
	rawVerifiedRe = regexp.MustCompile(`BADGE_STYLE_TYPE_VERIFIED|"CHECK_CIRCLE_FILLED"`)
)

// ChannelExtractor reads channel identity and audience size from channel pages.
type ChannelExtractor struct {
	baseURL string
}

// NewChannelExtractor creates an extractor; an empty base uses Cfg.SourceBaseURL.
func NewChannelExtractor(base string) *ChannelExtractor {
	if base == "" {
		base = engine.Cfg.SourceBaseURL
	}
	return &ChannelExtractor{baseURL: strings.TrimRight(base, "/")}
}

// channelFields is what one page yields; empty strings are unknown.
type channelFields struct {
	id, name, thumbnail, subscribers string
	verified                         bool
}

// ChannelID derives the identifier from a channel URL, or "unknown".
func ChannelID(rawURL string) string {
	for _, re := range channelIDRules {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			if id, err := url.PathUnescape(m[1]); err == nil {
				return id
			}
			return m[1]
		}
	}
	return "unknown"
}

// Extract returns channel details for rawURL. It always returns a value;
// fields that could not be read hold Unknown (or empty for ThumbnailURL).
func (c *ChannelExtractor) Extract(ctx context.Context, rawURL string) ChannelInfo {
	engine.IncrChannelRequests()
	rawURL = strings.TrimSpace(rawURL)
	info := ChannelInfo{
		ID:              ChannelID(rawURL),
		Name:            Unknown,
		SubscriberCount: Unknown,
		SourceURL:       rawURL,
	}
	pagePath := channelPath(rawURL)

	landing, err := c.readPage(ctx, c.baseURL+pagePath)
	if err != nil {
		slog.Warn("youtube: channel page failed", slog.String("url", rawURL), slog.Any("err", err))
	}
	merge(&info, landing)

	if info.Name == Unknown || info.SubscriberCount == Unknown {
		if ctx.Err() != nil {
			return info
		}
		about, err := c.readPage(ctx, c.baseURL+pagePath+"/about")
		if err != nil {
			slog.Warn("youtube: channel about page failed", slog.String("url", rawURL), slog.Any("err", err))
		}
		merge(&info, about)
	}
	return info
}

// merge copies fields of f that info still lacks.
func merge(info *ChannelInfo, f channelFields) {
	if info.ID == "unknown" && f.id != "" {
		info.ID = f.id
	}
	if info.Name == Unknown && f.name != "" {
		info.Name = f.name
	}
	if info.ThumbnailURL == "" && f.thumbnail != "" {
		info.ThumbnailURL = f.thumbnail
	}
	if info.SubscriberCount == Unknown && f.subscribers != "" {
		if s := FormatSubscriberCount(f.subscribers); s != Unknown {
			info.SubscriberCount = s
		}
	}
	info.Verified = info.Verified || f.verified
}

func (c *ChannelExtractor) readPage(ctx context.Context, pageURL string) (channelFields, error) {
	body, err := engine.FetchPage(ctx, pageURL, engine.BrowserHeaders())
	if err != nil {
		return channelFields{}, err
	}
	return parseChannelPage(body), nil
}

// channelPath returns the URL path of the channel root, without a tab suffix.
func channelPath(rawURL string) string {
	s := rawURL
	if strings.HasPrefix(s, "@") {
		s = "/" + s
	}
	if !strings.HasPrefix(s, "/") {
		if !strings.Contains(s, "://") {
			s = "https://" + s
		}
		if u, err := url.Parse(s); err == nil {
			s = u.EscapedPath()
		}
	}
	s = strings.TrimRight(s, "/")
	return channelTabRe.ReplaceAllString(s, "")
}

// parseChannelPage reads a channel or About page.
func parseChannelPage(body string) channelFields {
	tree, err := jsontree.DecodeAfter([]byte(body), initialDataMarker)
	if err != nil {
		return parseChannelHTML(body)
	}
	var f channelFields

	meta := jsontree.Get(tree, "metadata", "channelMetadataRenderer")
	f.name = jsontree.String(meta, "title")
	f.thumbnail = jsontree.String(meta, "avatar", "thumbnails", -1, "url")
	f.id = jsontree.String(meta, "externalId")

	if h := jsontree.Get(tree, "header", "c4TabbedHeaderRenderer"); h != nil {
		f.subscribers = jsontree.String(h, "subscriberCountText")
		f.verified = jsontree.Find(jsontree.Get(h, "badges"), isVerifiedBadge) != nil
		if f.name == "" {
			f.name = jsontree.String(h, "title")
		}
		if f.thumbnail == "" {
			f.thumbnail = jsontree.String(h, "avatar", "thumbnails", -1, "url")
		}
	}
	if h := jsontree.Get(tree, "header", "pageHeaderRenderer"); h != nil {
		if f.name == "" {
			f.name = jsontree.String(h, "pageTitle")
		}
		if f.subscribers == "" {
			for _, part := range jsontree.FindAll(h, jsontree.HasKey("content")) {
				if s, ok := part["content"].(string); ok && strings.Contains(strings.ToLower(s), "subscriber") {
					f.subscribers = s
					break
				}
			}
		}
		f.verified = f.verified || jsontree.Find(h, isVerifiedBadge) != nil
	}

	if mf := jsontree.Get(tree, "microformat", "microformatDataRenderer"); mf != nil {
		if f.name == "" {
			f.name = jsontree.String(mf, "title")
		}
		if f.thumbnail == "" {
			f.thumbnail = jsontree.String(mf, "thumbnail", "thumbnails", -1, "url")
		}
	}

	if FormatSubscriberCount(f.subscribers) == Unknown {
		f.subscribers = locateSubscribers(tree)
	}
	f.name = strings.TrimSpace(f.name)
	return f
}

// locateSubscribers searches the whole tree for any key mentioning
// subscribers whose text parses, then tries subscriberPaths.
func locateSubscribers(tree any) string {
	var found string
	jsontree.Find(tree, func(m map[string]any) bool {
		for k, v := range m {
			if !strings.Contains(strings.ToLower(k), "subscriber") {
				continue
			}
			if s := jsontree.DisplayText(v); FormatSubscriberCount(s) != Unknown {
				found = s
				return true
			}
		}
		return false
	})
	if found != "" {
		return found
	}
	for _, p := range subscriberPaths {
		if s := jsontree.String(tree, p...); FormatSubscriberCount(s) != Unknown {
			return s
		}
	}
	return ""
}

func isVerifiedBadge(m map[string]any) bool {
	if style, ok := m["style"].(string); ok && strings.HasPrefix(style, "BADGE_STYLE_TYPE_VERIFIED") {
		return true
	}
	if icon, ok := m["iconName"].(string); ok && icon == "CHECK_CIRCLE_FILLED" {
		return true
	}
	return false
}

// parseChannelHTML is the regex-only fallback for pages without ytInitialData.
func parseChannelHTML(body string) channelFields {
	var f channelFields
	if m := ogTitleRe.FindStringSubmatch(body); m != nil {
		f.name = html.UnescapeString(m[1])
	} else if m := htmlTitleRe.FindStringSubmatch(body); m != nil {
		f.name = cleanTitle(m[1])
	}
	f.name = strings.TrimSpace(f.name)
	if m := ogImageRe.FindStringSubmatch(body); m != nil {
		f.thumbnail = html.UnescapeString(m[1])
	}
	for _, m := range rawSubsRe.FindAllStringSubmatch(body, 5) {
		if FormatSubscriberCount(m[1]) != Unknown {
			f.subscribers = m[1]
			break
		}
	}
	f.verified = rawVerifiedRe.MatchString(body)
	return f
}
