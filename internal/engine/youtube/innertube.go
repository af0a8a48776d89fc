package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
	"github.com/anatolykoptev/go_tubesum/internal/engine/jsontree"
)

// Innertube API: low-level constants, payload types and the /player call.

const (
	ytPlayerPath     = "/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"
)

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

// fetchPlayer POSTs the ANDROID client envelope to /player and returns the
// decoded response tree.
func fetchPlayer(ctx context.Context, base string, id VideoID) (any, error) {
	body, err := json.Marshal(innertubeReq{
		VideoID: string(id),
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(base, "/") + ytPlayerPath + "?prettyPrint=false"
	data, err := engine.Fetch(ctx, http.MethodPost, endpoint, body, map[string]string{
		"Content-Type":             "application/json",
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	tree, err := jsontree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return tree, nil
}

// playabilityReason returns the platform's explanation when a video cannot play.
func playabilityReason(player any) string {
	if jsontree.String(player, "playabilityStatus", "status") == "OK" {
		return ""
	}
	return jsontree.String(player, "playabilityStatus", "reason")
}
