package youtube

import (
	"strings"
	"testing"
)

func TestFormatSubscriberCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.23M subscribers", "1.2M subscribers"},
		{"1,234,000 subscribers", "1.2M subscribers"},
		{"950 subscribers", "950 subscribers"},
		{"1 subscriber", "1 subscribers"},
		{"2.5B subscribers", "2.5B subscribers"},
		{"45.6K subscribers", "45.6K subscribers"},
		{"12k Subscribers", "12.0K subscribers"},
		{"@handle • 3.4M subscribers • 812 videos", "3.4M subscribers"},
		{"1,5M subscribers", "1.5M subscribers"},
		{"4.1K", "4.1K subscribers"},
		{"999950 subscribers", "1.0M subscribers"},
		{"", Unknown},
		{"No subscribers", Unknown},
		{"subscribers hidden", Unknown},
		{"812 videos", Unknown},
		{"99999999999999999999 subscribers", Unknown},
		{"9999999999B subscribers", Unknown},
		{"9000000000B subscribers", "9000000000.0B subscribers"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatSubscriberCount(tt.in); got != tt.want {
				t.Errorf("FormatSubscriberCount(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSubscriberNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 subscribers"},
		{950, "950 subscribers"},
		{999, "999 subscribers"},
		{1000, "1.0K subscribers"},
		{1_234_000, "1.2M subscribers"},
		{999_950, "1.0M subscribers"},
		{2_500_000_000, "2.5B subscribers"},
		{1_500_000_000_000, "1500.0B subscribers"},
	}
	for _, tt := range tests {
		if got := FormatSubscriberNumber(tt.n); got != tt.want {
			t.Errorf("FormatSubscriberNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatSubscriberCountIdempotent(t *testing.T) {
	for _, n := range []int64{0, 7, 950, 1000, 1049, 12_345, 999_949, 999_950, 1_234_000, 45_000_000, 2_500_000_000, 7_777_777_777} {
		first := FormatSubscriberNumber(n)
		again := FormatSubscriberCount(first)
		if again != first {
			t.Errorf("n=%d: FormatSubscriberCount(%q) = %q, want unchanged", n, first, again)
		}
		parsed, ok := ParseSubscriberCount(first)
		if !ok {
			t.Fatalf("n=%d: %q did not parse", n, first)
		}
		if got := FormatSubscriberNumber(parsed); got != first {
			t.Errorf("n=%d: reformatting %d gave %q, want %q", n, parsed, got, first)
		}
	}
}

func TestFallbackThumbnail(t *testing.T) {
	a := FallbackThumbnail("Rick Astley")
	if a != FallbackThumbnail("Rick Astley") {
		t.Error("FallbackThumbnail is not deterministic")
	}
	if a == FallbackThumbnail("Someone Else") {
		t.Error("different names share a thumbnail")
	}
	if !strings.Contains(a, "name=Rick+Astley") {
		t.Errorf("FallbackThumbnail() = %q, want escaped name", a)
	}
	if !strings.Contains(FallbackThumbnail(""), "name=%3F") {
		t.Error("empty name should fall back to a placeholder glyph")
	}
}
