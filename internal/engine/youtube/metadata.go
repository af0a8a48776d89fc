package youtube

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

const (
	playerResponseMarker = "ytInitialPlayerResponse = "
	initialDataMarker    = "ytInitialData = "
	siteName             = "YouTube"
)

// authorRules are tried in order against the raw page; the first capture
// that passes acceptAuthor wins.
var authorRules = []*regexp.Regexp{
	regexp.MustCompile(`"ownerChannelName":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"videoDetails":\{[^{}]{0,1000}?"author":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`<link itemprop="name" content="([^"]+)"`),
	regexp.MustCompile(`<meta name="author" content="([^"]+)"`),
	regexp.MustCompile(`"ownerText":\{"runs":\[\{"text":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"shortBylineText":\{"runs":\[\{"text":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"longBylineText":\{"runs":\[\{"text":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"videoOwnerRenderer":\{.{0,1000}?"title":\{"runs":\[\{"text":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"channelName":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"author":"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`"author"\s*:\s*\{[^{}]*?"name"\s*:\s*"((?:[^"\\]|\\.)+)"`),
	regexp.MustCompile(`<span itemprop="author"[^>]*>\s*([^<\s][^<]*)<`),
	regexp.MustCompile(`<a[^>]+href="/@[^"]+"[^>]*>\s*([^<\s][^<]*)</a>`),
	regexp.MustCompile(`"ownerProfileUrl":"[^"]*/@((?:[^"\\/]|\\.)+)"`),
	regexp.MustCompile(`"channel":"((?:[^"\\]|\\.)+)"`),
}

var (
	viewCountRe     = regexp.MustCompile(`"viewCount":"(\d+)"`)
	lengthSecondsRe = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	titleSuffixRe   = regexp.MustCompile(`\s*[-|]\s*YouTube\s*$`)
)

// ExtractMetadata reads title, author, views and duration from a watch page.
// It never fails; missing fields hold Unknown.
func ExtractMetadata(pageBody string) VideoMetadata {
	meta := UnknownMetadata()
	if strings.TrimSpace(pageBody) == "" {
		return meta
	}

	var blobs []any
	for _, marker := range []string{playerResponseMarker, initialDataMarker} {
		if tree, err := jsontree.DecodeAfter([]byte(pageBody), marker); err == nil {
			blobs = append(blobs, tree)
		}
	}

	if title := pageTitle(pageBody, blobs); title != "" {
		meta.Title = title
	}
	if author := pageAuthor(pageBody, meta.Title, blobs); author != "" {
		meta.Author = author
	}
	if m := viewCountRe.FindStringSubmatch(pageBody); m != nil {
		meta.ViewCount = FormatViews(m[1])
	}
	if m := lengthSecondsRe.FindStringSubmatch(pageBody); m != nil {
		meta.Duration = FormatDuration(m[1])
	}
	return meta
}

// FetchMetadata downloads the watch page of id and extracts its metadata.
func (e *Extractor) FetchMetadata(ctx context.Context, id VideoID) VideoMetadata {
	engine.IncrMetadataRequests()
	body, err := engine.FetchPage(ctx, WatchURL(e.baseURL, id), engine.BrowserHeaders())
	if err != nil {
		return UnknownMetadata()
	}
	return ExtractMetadata(body)
}

func pageTitle(body string, blobs []any) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		if t := cleanTitle(doc.Find("title").First().Text()); t != "" {
			return t
		}
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			if t := cleanTitle(og); t != "" {
				return t
			}
		}
	}
	for _, b := range blobs {
		if t := jsontree.String(b, "videoDetails", "title"); t != "" {
			return t
		}
	}
	return ""
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(html.UnescapeString(s))
	s = strings.TrimSpace(titleSuffixRe.ReplaceAllString(s, ""))
	if strings.EqualFold(s, siteName) {
		return ""
	}
	return s
}

func pageAuthor(body, title string, blobs []any) string {
	for _, re := range authorRules {
		for _, m := range re.FindAllStringSubmatch(body, 3) {
			if a := unescapeCapture(m[1]); acceptAuthor(a, title) {
				return a
			}
		}
	}

	for _, b := range blobs {
		candidates := []string{
			jsontree.String(b, "videoDetails", "author"),
			jsontree.String(b, "microformat", "playerMicroformatRenderer", "ownerChannelName"),
		}
		if owner := jsontree.Find(b, jsontree.HasKey("videoOwnerRenderer")); owner != nil {
			candidates = append(candidates, jsontree.String(owner, "videoOwnerRenderer", "title"))
		}
		for _, a := range candidates {
			if acceptAuthor(a, title) {
				return a
			}
		}
	}

	if title == Unknown {
		return ""
	}
	for _, sep := range []string{" - ", " | ", " by "} {
		if i := strings.LastIndex(title, sep); i > 0 {
			if a := strings.TrimSpace(title[i+len(sep):]); acceptAuthor(a, title) {
				return a
			}
		}
	}
	return ""
}

func acceptAuthor(a, title string) bool {
	if a == "" || a == title || strings.EqualFold(a, siteName) || a == Unknown {
		return false
	}
	lower := strings.ToLower(a)
	return !strings.HasPrefix(lower, "http") && !strings.Contains(lower, "://") && !strings.HasPrefix(lower, "www.")
}

// unescapeCapture decodes JSON string escapes and HTML entities in a regex capture.
func unescapeCapture(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		s = u
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

// FormatViews renders a raw count as "1,234,567 views".
func FormatViews(raw string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return Unknown
	}
	return humanize.Comma(n) + " views"
}

// FormatDuration renders seconds as minutes:seconds with zero-padded seconds.
func FormatDuration(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return Unknown
	}
	return fmt.Sprintf("%d:%02d", n/60, n%60)
}
