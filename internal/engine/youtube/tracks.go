package youtube

import (
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

// RankTracks picks one track: manual English, then auto English, then any
// manual track, then the first. ok is false only for an empty list.
func RankTracks(tracks []CaptionTrack) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	for _, t := range tracks {
		if t.IsEnglish() && t.Kind != KindAuto {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.IsEnglish() {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.Kind != KindAuto {
			return t, true
		}
	}
	return tracks[0], true
}

// tracksFromTree reads the first captionTracks list found anywhere in tree.
func tracksFromTree(tree any) []CaptionTrack {
	holder := jsontree.Find(tree, func(m map[string]any) bool {
		list, ok := m["captionTracks"].([]any)
		return ok && len(list) > 0
	})
	if holder == nil {
		return nil
	}
	var tracks []CaptionTrack
	for _, item := range holder["captionTracks"].([]any) {
		base := jsontree.String(item, "baseUrl")
		if base == "" {
			continue
		}
		kind := KindManual
		if jsontree.String(item, "kind") == string(KindAuto) {
			kind = KindAuto
		}
		tracks = append(tracks, CaptionTrack{
			BaseURL:      base,
			LanguageCode: jsontree.String(item, "languageCode"),
			Kind:         kind,
		})
	}
	return tracks
}

// captionURL resolves a track reference against origin and forces the
// serialization format. format "" strips any fmt parameter so the platform
// serves classic timedtext XML.
func captionURL(origin, baseURL, format string) string {
	u, err := url.Parse(strings.ReplaceAll(baseURL, `\u0026`, "&"))
	if err != nil {
		return baseURL
	}
	if !u.IsAbs() {
		if o, err := url.Parse(origin); err == nil {
			u = o.ResolveReference(u)
		}
	}
	q := u.Query()
	if format == "" {
		q.Del("fmt")
	} else {
		q.Set("fmt", format)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
