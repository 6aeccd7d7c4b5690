package render

import "testing"

func TestStripMarkdown(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "**important** point", "important point"},
		{"italic", "*soft* voice", "soft voice"},
		{"inline code", "run `go test` now", "run go test now"},
		{"heading", "## Study plan", "Study plan"},
		{"link keeps text", "[guide](https://example.com/guide)", "guide"},
		{"bullet becomes dot", "- first\n- second", "• first\n• second"},
		{"numbered list prefix removed", "1. first\n2. second", "first\nsecond"},
		{"plain text untouched", "no markdown here", "no markdown here"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMarkdown(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestLinkifySplitsURLs(t *testing.T) {
	segments := Linkify("see https://example.com/a for details")
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].URL != "" || segments[0].Text != "see " {
		t.Fatalf("unexpected prefix segment: %+v", segments[0])
	}
	if segments[1].URL != "https://example.com/a" {
		t.Fatalf("unexpected link segment: %+v", segments[1])
	}
	if segments[2].Text != " for details" {
		t.Fatalf("unexpected suffix segment: %+v", segments[2])
	}
}

func TestLinkifyNoURLs(t *testing.T) {
	segments := Linkify("plain text")
	if len(segments) != 1 || segments[0].URL != "" {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}
