package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// VideoID is a validated 11-character video identifier.
type VideoID string

func (id VideoID) String() string { return string(id) }

var (
	bareIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	pathIDRe = regexp.MustCompile(`^/(?:embed|shorts|live|v|e)/([A-Za-z0-9_-]{11})(?:[/?#]|$)`)
)

// ParseVideoID accepts watch URLs, youtu.be short links, /embed/, /shorts/,
// /live/ and /v/ paths, or a bare identifier.
func ParseVideoID(raw string) (VideoID, error) {
	raw = strings.TrimSpace(raw)
	if bareIDRe.MatchString(raw) {
		return VideoID(raw), nil
	}

	s := raw
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var candidate string
	switch {
	case host == "youtu.be":
		candidate = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtube-nocookie.com":
		if u.Path == "/watch" {
			candidate = u.Query().Get("v")
		} else if m := pathIDRe.FindStringSubmatch(u.Path); m != nil {
			candidate = m[1]
		}
	}
	if !bareIDRe.MatchString(candidate) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, raw)
	}
	return VideoID(candidate), nil
}

// WatchURL returns the watch page URL of id under base.
func WatchURL(base string, id VideoID) string {
	return strings.TrimRight(base, "/") + "/watch?v=" + url.QueryEscape(string(id))
}
