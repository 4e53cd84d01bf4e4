package track

import (
	"testing"
	"time"
)

func TestArtist(t *testing.T) {
	tests := []struct {
		name     string
		artists  []string
		expected string
	}{
		{name: "single artist", artists: []string{"Radiohead"}, expected: "Radiohead"},
		{name: "multiple artists", artists: []string{"Run The Jewels", "DJ Shadow"}, expected: "Run The Jewels; DJ Shadow"},
		{name: "no artists", artists: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Track{Artists: tt.artists}
			if got := tr.Artist(); got != tt.expected {
				t.Errorf("Artist() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPathDerivedFields(t *testing.T) {
	tr := &Track{Path: "/music/Radiohead/OK Computer/01 Airbag.FLAC"}

	if got := tr.Folder(); got != "OK Computer" {
		t.Errorf("Folder() = %q, want %q", got, "OK Computer")
	}
	if got := tr.Filename(); got != "01 Airbag" {
		t.Errorf("Filename() = %q, want %q", got, "01 Airbag")
	}
	if got := tr.Ext(); got != ".flac" {
		t.Errorf("Ext() = %q, want %q", got, ".flac")
	}
}

func TestKey(t *testing.T) {
	a := &Track{Path: "/Music/A.mp3"}
	b := &Track{Path: "/music/a.mp3"}
	if Key(a) != Key(b) {
		t.Errorf("Key() should fold case: %q vs %q", Key(a), Key(b))
	}
}

func TestValue(t *testing.T) {
	added := time.Date(2023, 5, 1, 14, 30, 0, 0, time.UTC)
	tr := &Track{
		Title:       "Airbag",
		Artists:     []string{"Radiohead"},
		Album:       "OK Computer",
		TrackNumber: 1,
		Genres:      []string{"Rock", "Alternative"},
		Year:        1997,
		Length:      284.5,
		DateAdded:   added,
		PlayCount:   0,
		Path:        "/music/airbag.flac",
	}

	tests := []struct {
		name     string
		field    Field
		expected any
	}{
		{name: "title", field: FieldTitle, expected: "Airbag"},
		{name: "artist joined", field: FieldArtist, expected: "Radiohead"},
		{name: "track number", field: FieldTrackNumber, expected: 1},
		{name: "year", field: FieldYear, expected: 1997},
		{name: "length", field: FieldLength, expected: 284.5},
		{name: "date added", field: FieldDateAdded, expected: added},
		{name: "unset album artist is nil", field: FieldAlbumArtist, expected: nil},
		{name: "unset disc number is nil", field: FieldDiscNumber, expected: nil},
		{name: "unset last played is nil", field: FieldLastPlayed, expected: nil},
		{name: "unset uri is nil", field: FieldURI, expected: nil},
		{name: "zero play count is zero, not nil", field: FieldPlayCount, expected: 0},
		{name: "zero rating is zero, not nil", field: FieldRating, expected: 0.0},
		{name: "compilation defaults false", field: FieldCompilation, expected: false},
		{name: "unknown field", field: Field(9999), expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Value(tt.field)
			if got != tt.expected {
				t.Errorf("Value(%s) = %v (%T), want %v (%T)", tt.field, got, got, tt.expected, tt.expected)
			}
		})
	}
}

func TestValueListFields(t *testing.T) {
	tr := &Track{Genres: []string{"Rock", "Alternative"}}

	genres, ok := tr.Value(FieldGenres).([]string)
	if !ok {
		t.Fatalf("Value(FieldGenres) = %T, want []string", tr.Value(FieldGenres))
	}
	if len(genres) != 2 || genres[0] != "Rock" {
		t.Errorf("Value(FieldGenres) = %v", genres)
	}

	if got := (&Track{}).Value(FieldGenres); got != nil {
		t.Errorf("empty genres should be nil, got %v", got)
	}
}

func TestParseFieldName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Field
		wantErr  bool
	}{
		{name: "title", input: "Title", expected: FieldTitle},
		{name: "artist", input: "ArtistPeople", expected: FieldArtist},
		{name: "album artist with space", input: "Album Artist", expected: FieldAlbumArtist},
		{name: "track number", input: "TrackNo", expected: FieldTrackNumber},
		{name: "genres", input: "GenreSplits", expected: FieldGenres},
		{name: "last played", input: "FileLastPlayed", expected: FieldLastPlayed},
		{name: "unknown name", input: "Mood", wantErr: true},
		{name: "wrong case", input: "title", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFieldName(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldName(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseFieldName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMusicBeeFieldNameRoundTrip(t *testing.T) {
	for name, field := range musicBeeFieldNames {
		got, err := MusicBeeFieldName(field)
		if err != nil {
			t.Errorf("MusicBeeFieldName(%v) error = %v", field, err)
			continue
		}
		if got != name {
			t.Errorf("MusicBeeFieldName(%v) = %q, want %q", field, got, name)
		}
	}

	if _, err := MusicBeeFieldName(FieldURI); err == nil {
		t.Error("MusicBeeFieldName(FieldURI) expected error for unmapped field")
	}
}

func TestFieldByCode(t *testing.T) {
	f, err := FieldByCode(65)
	if err != nil {
		t.Fatalf("FieldByCode(65) error = %v", err)
	}
	if f != FieldTitle {
		t.Errorf("FieldByCode(65) = %v, want FieldTitle", f)
	}

	if _, err := FieldByCode(9999); err == nil {
		t.Error("FieldByCode(9999) expected error")
	}
}
