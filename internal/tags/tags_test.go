package tags

import "testing"

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "mp3", path: "/music/song.mp3", expected: true},
		{name: "flac uppercase", path: "/music/SONG.FLAC", expected: true},
		{name: "opus", path: "/music/song.opus", expected: true},
		{name: "m4a", path: "/music/song.m4a", expected: true},
		{name: "wma", path: "/music/song.wma", expected: true},
		{name: "cue sheet", path: "/music/album.cue", expected: false},
		{name: "no extension", path: "/music/README", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMusicFile(tt.path); got != tt.expected {
				t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestParseNumberPair(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNum   int
		wantTotal int
	}{
		{name: "bare number", input: "3", wantNum: 3},
		{name: "with total", input: "3/12", wantNum: 3, wantTotal: 12},
		{name: "empty", input: ""},
		{name: "garbage", input: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, total := parseNumberPair(tt.input)
			if num != tt.wantNum || total != tt.wantTotal {
				t.Errorf("parseNumberPair(%q) = (%d, %d), want (%d, %d)",
					tt.input, num, total, tt.wantNum, tt.wantTotal)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "semicolons", input: "Rock; Electronic", expected: []string{"Rock", "Electronic"}},
		{name: "null separator", input: "Rock\x00Electronic", expected: []string{"Rock", "Electronic"}},
		{name: "single value", input: "Rock", expected: []string{"Rock"}},
		{name: "empty segments dropped", input: "Rock;;  ;Jazz", expected: []string{"Rock", "Jazz"}},
		{name: "empty", input: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitList(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "full date", input: "2011-03-04", expected: 2011},
		{name: "year only", input: "2011", expected: 2011},
		{name: "empty", input: "", expected: 0},
		{name: "garbage", input: "soon", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearOf(tt.input); got != tt.expected {
				t.Errorf("yearOf(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractURI(t *testing.T) {
	uri, rest := extractURI([]string{"great track", "spotify:track:abc123", "another note"})
	if uri != "spotify:track:abc123" {
		t.Errorf("uri = %q", uri)
	}
	if len(rest) != 2 || rest[0] != "great track" || rest[1] != "another note" {
		t.Errorf("rest = %v", rest)
	}

	uri, rest = extractURI([]string{"just a comment"})
	if uri != "" || len(rest) != 1 {
		t.Errorf("extractURI without uri = %q, %v", uri, rest)
	}

	uri, _ = extractURI(nil)
	if uri != "" {
		t.Errorf("extractURI(nil) = %q", uri)
	}

	// the unavailable marker is a regular URI comment, so rescans keep it
	uri, _ = extractURI([]string{UnavailableURI})
	if uri != UnavailableURI {
		t.Errorf("extractURI of unavailable marker = %q", uri)
	}
}

func TestTaglibTagsHelpers(t *testing.T) {
	tags := taglibTags{
		"TITLE":  {"Airbag"},
		"ARTIST": {"Radiohead", "Other"},
		"BPM":    {"120"},
		"RATING": {"4.5"},
	}

	if got := tags.get("TITLE"); got != "Airbag" {
		t.Errorf("get(TITLE) = %q", got)
	}
	if got := tags.get("MISSING", "TITLE"); got != "Airbag" {
		t.Errorf("get with fallback = %q", got)
	}
	if got := tags.get("MISSING"); got != "" {
		t.Errorf("get(MISSING) = %q", got)
	}
	if got := tags.all("ARTIST"); len(got) != 2 {
		t.Errorf("all(ARTIST) = %v", got)
	}
	if got := tags.getInt("BPM"); got != 120 {
		t.Errorf("getInt(BPM) = %d", got)
	}
	if got := tags.getInt("TITLE"); got != 0 {
		t.Errorf("getInt of non-number = %d", got)
	}
	if got := tags.getInt("TOTALTRACKS", "BPM"); got != 120 {
		t.Errorf("getInt with fallback = %d", got)
	}
	if got := tags.getInt("TITLE", "BPM"); got != 120 {
		t.Errorf("getInt skipping non-number = %d", got)
	}
	if got := tags.getFloat("RATING"); got != 4.5 {
		t.Errorf("getFloat(RATING) = %v", got)
	}
}
