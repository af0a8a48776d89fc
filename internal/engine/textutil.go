package engine

import "github.com/anatolykoptev/go-kit/strutil"

// UserAgentChrome is sent when a caller supplies no User-Agent.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// CapTranscript applies Cfg.MaxTranscriptChars to a transcript before prompting.
func CapTranscript(s string) string {
	if cfg.MaxTranscriptChars <= 0 {
		return s
	}
	return TruncateAtWord(s, cfg.MaxTranscriptChars)
}
