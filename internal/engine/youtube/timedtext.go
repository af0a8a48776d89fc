package youtube

import (
	"regexp"
	"strings"
)

var (
	timedTextLineRe = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)
	innerTagRe      = regexp.MustCompile(`<[^>]+>`)
)

// timedTextEntities is the fixed entity table of timedtext documents. It runs
// after a first &amp; pass so double-encoded &amp;#39; resolves fully.
var timedTextEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&#160;", " ",
	"&#10;", " ",
	"&amp;", "&",
)

// parseTimedTextLines reads the <text> elements of a raw timedtext document.
func parseTimedTextLines(raw string) string {
	var parts []string
	for _, m := range timedTextLineRe.FindAllStringSubmatch(raw, -1) {
		line := innerTagRe.ReplaceAllString(m[1], "")
		line = timedTextEntities.Replace(strings.ReplaceAll(line, "&amp;", "&"))
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
