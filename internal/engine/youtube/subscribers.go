package youtube

import (
	"fmt"
	"hash/fnv"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	subscriberRe = regexp.MustCompile(`(?i)(\d[\d,.]*?)\s*([KMB])?\s*subscribers?\b`)
	bareCountRe  = regexp.MustCompile(`(?i)^(\d[\d,.]*)\s*([KMB])?$`)
	decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)
)

var magnitudes = map[string]float64{"": 1, "K": 1e3, "M": 1e6, "B": 1e9}

// FormatSubscriberCount turns free text such as "1.23M subscribers" into
// "1.2M subscribers". Bare magnitudes ("950", "4.1K") are accepted too.
// Anything unparseable yields Unknown.
func FormatSubscriberCount(text string) string {
	n, ok := ParseSubscriberCount(text)
	if !ok {
		return Unknown
	}
	return FormatSubscriberNumber(n)
}

// ParseSubscriberCount extracts the numeric subscriber count from text.
func ParseSubscriberCount(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	var num, suffix string
	if m := subscriberRe.FindStringSubmatch(text); m != nil {
		num, suffix = m[1], m[2]
	} else if m := bareCountRe.FindStringSubmatch(text); m != nil {
		num, suffix = m[1], m[2]
	} else {
		return 0, false
	}

	if decimalComma.MatchString(num) && suffix != "" {
		num = strings.Replace(num, ",", ".", 1)
	} else {
		num = strings.ReplaceAll(num, ",", "")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	scaled := math.Round(v * magnitudes[strings.ToUpper(suffix)])
	if scaled >= math.MaxInt64 {
		return 0, false
	}
	return int64(scaled), true
}

// FormatSubscriberNumber renders n with one decimal and a K/M/B suffix, or
// as a bare integer below one thousand.
func FormatSubscriberNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d subscribers", n)
	}
	units := []struct {
		div    float64
		suffix string
	}{{1e3, "K"}, {1e6, "M"}, {1e9, "B"}}
	for i, u := range units {
		v := math.Round(float64(n)*10/u.div) / 10
		// 999,950 rounds to 1000.0K; render it in the next unit instead
		if v < 1000 || i == len(units)-1 {
			return fmt.Sprintf("%.1f%s subscribers", v, u.suffix)
		}
	}
	return Unknown
}

// FallbackThumbnail returns a deterministic avatar URL for channels whose
// page carried no thumbnail.
func FallbackThumbnail(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == Unknown {
		name = "?"
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	color := fmt.Sprintf("%06x", h.Sum32()&0xffffff)
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&size=176&color=fff&background=" + color
}
