package review

import "testing"

func TestFullURL(t *testing.T) {
	const origin = "https://pitchfork.com"

	tests := []struct {
		name, in, want string
	}{
		{"relative", "/reviews/123", "https://pitchfork.com/reviews/123"},
		{"relative without slash", "reviews/albums/abc", "https://pitchfork.com/reviews/albums/abc"},
		{"absolute https", "https://example.org/r/1", "https://example.org/r/1"},
		{"absolute http", "http://example.org/r/1", "http://example.org/r/1"},
		{"empty", "", "#"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FullURL(origin, tc.in); got != tc.want {
				t.Errorf("FullURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFullURL_OriginTrailingSlash(t *testing.T) {
	got := FullURL("https://pitchfork.com/", "/reviews/123")
	if got != "https://pitchfork.com/reviews/123" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestReview_Link(t *testing.T) {
	r := New("Blue", "Joni Mitchell", "A record.", 10, "/reviews/albums/joni-mitchell-blue/")
	if got := r.Link("https://pitchfork.com"); got != "https://pitchfork.com/reviews/albums/joni-mitchell-blue/" {
		t.Errorf("unexpected link %q", got)
	}
}
