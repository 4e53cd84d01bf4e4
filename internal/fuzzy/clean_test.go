package fuzzy

import (
	"testing"

	"github.com/llehouerou/undertow/internal/track"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Airbag", expected: "airbag"},
		{name: "bracketed qualifier", input: "Paranoid Android (Remastered 2011)", expected: "paranoid android"},
		{name: "square brackets", input: "Lucky [Live]", expected: "lucky"},
		{name: "featuring cut", input: "Close To Me feat. Somebody", expected: "close to me"},
		{name: "slash cut", input: "Medley / Reprise", expected: "medley"},
		{name: "part removed", input: "Dreams Part 2", expected: "dreams 2"},
		{name: "punctuation collapsed", input: "What's... Happening!?", expected: "what's happening"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.expected {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanArtist(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Radiohead", expected: "radiohead"},
		{name: "leading article removed", input: "A Tribe Called Quest", expected: "tribe called quest"},
		{name: "the removed", input: "Run The Jewels", expected: "run jewels"},
		{name: "featuring cut", input: "Major Artist feat. Guest", expected: "major artist"},
		{name: "vs cut", input: "Artist vs Remixer", expected: "artist"},
		{name: "ampersand removed", input: "Simon & Garfunkel", expected: "simon garfunkel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanArtist(tt.input); got != tt.expected {
				t.Errorf("CleanArtist(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanAlbum(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "OK Computer", expected: "ok computer"},
		{name: "dash suffix cut", input: "OK Computer - Collector's Edition", expected: "ok computer"},
		{name: "ep suffix removed", input: "Holy Fire EP", expected: "holy fire"},
		{name: "bracketed qualifier", input: "In Rainbows (Disk 2)", expected: "in rainbows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAlbum(tt.input); got != tt.expected {
				t.Errorf("CleanAlbum(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanTrack(t *testing.T) {
	tr := &track.Track{
		Title:   "Airbag (Remastered)",
		Artists: []string{"Radiohead", "The Invisible"},
		Album:   "OK Computer - Deluxe",
		Length:  284,
		Year:    1997,
	}

	tags := CleanTrack(tr)
	if tags.Name != "airbag" {
		t.Errorf("Name = %q", tags.Name)
	}
	if len(tags.Artists) != 2 || tags.Artists[0] != "radiohead" || tags.Artists[1] != "invisible" {
		t.Errorf("Artists = %v", tags.Artists)
	}
	if tags.Artist != "radiohead invisible" {
		t.Errorf("Artist = %q", tags.Artist)
	}
	if tags.Album != "ok computer" {
		t.Errorf("Album = %q", tags.Album)
	}
	if tags.Length != 284 || tags.Year != 1997 {
		t.Errorf("Length/Year = %v/%v", tags.Length, tags.Year)
	}
}

func TestCleanCandidateDropsEmptyArtists(t *testing.T) {
	c := &Candidate{Title: "Song", Artists: []string{"The A", "Radiohead"}}
	tags := CleanCandidate(c)
	// "The A" cleans away entirely and must not leave an empty entry
	if len(tags.Artists) != 1 || tags.Artists[0] != "radiohead" {
		t.Errorf("Artists = %v", tags.Artists)
	}
}
