// Package captions turns raw caption documents into plain transcript text.
//
// Two dialects are understood: timed-text markup (YouTube timedtext/srv3,
// TTML) and cue text (WebVTT, SRT). Anything else goes through a generic
// tag stripper. Normalize never fails; an empty string means the payload
// held no usable text.
package captions

import (
	"html"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// Format is the caption dialect detected for a payload.
type Format int

const (
	FormatUnknown Format = iota
	FormatTimedText
	FormatCueText
)

func (f Format) String() string {
	switch f {
	case FormatTimedText:
		return "timedtext"
	case FormatCueText:
		return "cuetext"
	default:
		return "unknown"
	}
}

// minUseful is the length a selector's output must exceed to stop the scan.
const minUseful = 10

// timedTextSelectors are tried in order; the first yielding useful text wins.
var timedTextSelectors = []string{"text", "p", "s", "span", "[t]", "body"}

var (
	cueIndexRe  = regexp.MustCompile(`^\d+$`)
	cueMetaRe   = regexp.MustCompile(`^(Kind|Language|Style|Region):`)
	inlineTagRe = regexp.MustCompile(`<[^>]*>`)
	timeRangeRe = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d{1,3})?\s*-->\s*\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d{1,3})?`)
	headerRe    = regexp.MustCompile(`(?m)^\s*WEBVTT[^\n]*$`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Classify detects the dialect of raw, trusting contentType first and
// falling back to sniffing the payload.
func Classify(raw, contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "vtt"), strings.Contains(ct, "srt"), strings.Contains(ct, "subrip"):
		return FormatCueText
	case strings.Contains(ct, "xml"), strings.Contains(ct, "ttml"), strings.Contains(ct, "srv"):
		return FormatTimedText
	}

	head := strings.TrimSpace(raw)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(head)
	switch {
	case strings.HasPrefix(head, "WEBVTT"):
		return FormatCueText
	case strings.HasPrefix(lower, "<?xml"),
		strings.Contains(lower, "<transcript"),
		strings.Contains(lower, "<timedtext"),
		strings.Contains(lower, "<tt"):
		return FormatTimedText
	case strings.Contains(raw, "-->"):
		return FormatCueText
	}
	return FormatUnknown
}

// Normalize converts a raw caption payload into trimmed plain text.
func Normalize(raw, contentType string) (out string) {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("captions: normalizer panic, using generic fallback", slog.Any("panic", r))
			out = Generic(raw)
		}
	}()

	var text string
	switch Classify(raw, contentType) {
	case FormatTimedText:
		text = TimedText(raw)
	case FormatCueText:
		// a cue document without spoken lines has nothing the markup
		// parsers could recover except numbering and timings
		if text = CueText(raw); text == "" {
			return ""
		}
	}
	if text == "" {
		text = TimedText(raw)
	}
	if text == "" {
		text = CueText(raw)
	}
	if text == "" {
		text = Generic(raw)
	}
	return strings.TrimSpace(text)
}

// TimedText extracts text from timed-text markup using the prioritized
// selector list. Repeated fragments are kept once.
func TimedText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	best := ""
	for _, sel := range timedTextSelectors {
		seen := make(map[string]bool)
		var parts []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			frag := collapse(html.UnescapeString(s.Text()))
			if frag == "" || seen[frag] {
				return
			}
			seen[frag] = true
			parts = append(parts, frag)
		})
		joined := strings.Join(parts, " ")
		if len(joined) > minUseful {
			return joined
		}
		if best == "" {
			best = joined
		}
	}
	return best
}

// CueText extracts spoken lines from WebVTT or SRT text. Blank lines,
// sequence numbers, headers, metadata and time ranges are dropped; a line
// repeating the previous one is kept once.
func CueText(raw string) string {
	var parts []string
	prev := ""
	inNote := false
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			inNote = false
			continue
		}
		if inNote {
			continue
		}
		switch {
		case strings.HasPrefix(line, "WEBVTT"):
			continue
		case strings.HasPrefix(line, "NOTE"), strings.HasPrefix(line, "STYLE"):
			inNote = true
			continue
		case cueIndexRe.MatchString(line),
			cueMetaRe.MatchString(line),
			strings.Contains(line, "-->"):
			continue
		}
		line = collapse(html.UnescapeString(inlineTagRe.ReplaceAllString(line, "")))
		if line == "" || line == prev {
			continue
		}
		prev = line
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// Generic keeps only text tokens of any markup, then removes time ranges
// and file headers.
func Generic(raw string) string {
	var sb strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if z.Err() != io.EOF {
				slog.Debug("captions: tokenizer stopped", slog.Any("err", z.Err()))
			}
			break
		}
		if tt == xhtml.TextToken {
			sb.Write(z.Text())
			sb.WriteByte(' ')
		}
	}
	text := timeRangeRe.ReplaceAllString(sb.String(), " ")
	text = headerRe.ReplaceAllString(text, " ")
	return collapse(text)
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
