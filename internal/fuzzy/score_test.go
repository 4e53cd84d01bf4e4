package fuzzy

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		result   string
		expected float64
	}{
		{name: "identical", source: "paranoid android", result: "paranoid android", expected: 1},
		{name: "two of three words", source: "one two three", result: "one two four", expected: 2.0 / 3.0},
		{name: "no overlap", source: "airbag", result: "lucky", expected: 0},
		{name: "empty source", source: "", result: "lucky", expected: 0},
		{name: "empty result", source: "airbag", result: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchName(Tags{Name: tt.source}, Tags{Name: tt.result})
			if !almostEqual(got, tt.expected) {
				t.Errorf("MatchName = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatchArtist(t *testing.T) {
	tests := []struct {
		name     string
		source   Tags
		result   Tags
		expected float64
	}{
		{
			name:     "primary artist matches",
			source:   Tags{Artist: "radiohead"},
			result:   Tags{Artists: []string{"radiohead"}},
			expected: 1,
		},
		{
			name:     "match only on second listed artist is halved",
			source:   Tags{Artist: "foo bar"},
			result:   Tags{Artists: []string{"baz", "foo bar"}},
			expected: 0.5,
		},
		{
			name:     "no artists on candidate",
			source:   Tags{Artist: "radiohead"},
			result:   Tags{},
			expected: 0,
		},
		{
			name:     "no source artist",
			source:   Tags{},
			result:   Tags{Artists: []string{"radiohead"}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchArtist(tt.source, tt.result)
			if !almostEqual(got, tt.expected) {
				t.Errorf("MatchArtist = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatchLength(t *testing.T) {
	tests := []struct {
		name     string
		source   float64
		result   float64
		expected float64
	}{
		{name: "identical", source: 200, result: 200, expected: 1},
		{name: "twenty seconds off", source: 200, result: 180, expected: 0.9},
		{name: "way off clamps at zero", source: 200, result: 500, expected: 0},
		{name: "missing source length", source: 0, result: 200, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchLength(Tags{Length: tt.source}, Tags{Length: tt.result})
			if !almostEqual(got, tt.expected) {
				t.Errorf("MatchLength = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMatchYear(t *testing.T) {
	s := NewScorer() // YearRange 10

	tests := []struct {
		name     string
		source   int
		result   int
		expected float64
	}{
		{name: "same year", source: 1997, result: 1997, expected: 1},
		{name: "within half range", source: 1997, result: 2001, expected: 1},
		{name: "at half range", source: 1997, result: 2002, expected: 1},
		{name: "between half and full", source: 1997, result: 2004, expected: 0.6},
		{name: "at full range", source: 1997, result: 2007, expected: 0},
		{name: "beyond range", source: 1997, result: 2020, expected: 0},
		{name: "missing year", source: 0, result: 1997, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.MatchYear(Tags{Year: tt.source}, Tags{Year: tt.result})
			if !almostEqual(got, tt.expected) {
				t.Errorf("MatchYear = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKaraokeVeto(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name     string
		c        *Candidate
		expected bool
	}{
		{
			name:     "karaoke album with no artists",
			c:        &Candidate{Album: "Karaoke Backing Instrumental Hits"},
			expected: true,
		},
		{
			name: "karaoke album by karaoke artist",
			c: &Candidate{
				Album:   "Ultimate Karaoke Backing Instrumental Vol 3",
				Artists: []string{"Karaoke Backing Instrumental Band"},
			},
			expected: true,
		},
		{
			name: "karaoke album by real artist",
			c: &Candidate{
				Album:   "Karaoke Backing Instrumental Hits",
				Artists: []string{"Radiohead"},
			},
			expected: false,
		},
		{
			name:     "ordinary album",
			c:        &Candidate{Album: "OK Computer", Artists: []string{"Radiohead"}},
			expected: false,
		},
		{
			name:     "only some keywords present",
			c:        &Candidate{Album: "Instrumental Works"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.KaraokeVeto(tt.c); got != tt.expected {
				t.Errorf("KaraokeVeto = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScorePerfectMatch(t *testing.T) {
	s := NewScorer()
	tags := Tags{
		Name:    "airbag",
		Artist:  "radiohead",
		Artists: []string{"radiohead"},
		Album:   "ok computer",
		Length:  284,
		Year:    1997,
	}
	if got := s.Score(tags, tags); !almostEqual(got, 1) {
		t.Errorf("Score of identical tags = %v, want 1", got)
	}
}

func TestScoreMatch(t *testing.T) {
	s := NewScorer()
	source := Tags{
		Name:    "airbag",
		Artist:  "radiohead",
		Artists: []string{"radiohead"},
		Album:   "ok computer",
		Length:  284,
		Year:    1997,
	}

	perfect := &Candidate{
		URI:     "spotify:track:perfect",
		Title:   "Airbag",
		Artists: []string{"Radiohead"},
		Album:   "OK Computer",
		Length:  284,
		Year:    1997,
	}
	weak := &Candidate{
		URI:   "spotify:track:weak",
		Title: "Completely Different",
	}

	t.Run("best candidate returned", func(t *testing.T) {
		got := s.ScoreMatch(source, []*Candidate{weak, perfect})
		if got == nil || got.URI != perfect.URI {
			t.Errorf("ScoreMatch = %v, want perfect candidate", got)
		}
	})

	t.Run("stops at first candidate reaching max score", func(t *testing.T) {
		twin := &Candidate{URI: "spotify:track:twin", Title: "Airbag",
			Artists: []string{"Radiohead"}, Album: "OK Computer", Length: 284, Year: 1997}
		got := s.ScoreMatch(source, []*Candidate{perfect, twin})
		if got == nil || got.URI != perfect.URI {
			t.Errorf("ScoreMatch = %v, want the first perfect candidate", got)
		}
	})

	t.Run("nothing above min score", func(t *testing.T) {
		if got := s.ScoreMatch(source, []*Candidate{weak}); got != nil {
			t.Errorf("ScoreMatch = %v, want nil", got)
		}
	})

	t.Run("vetoed candidate skipped despite perfect tags", func(t *testing.T) {
		karaoke := &Candidate{
			URI:     "spotify:track:karaoke",
			Title:   "Airbag",
			Artists: []string{"Karaoke Backing Instrumental Band"},
			Album:   "Karaoke Backing Instrumental Radiohead",
			Length:  284,
			Year:    1997,
		}
		if got := s.ScoreMatch(source, []*Candidate{karaoke}); got != nil {
			t.Errorf("ScoreMatch = %v, want nil for vetoed candidate", got)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if got := s.ScoreMatch(source, nil); got != nil {
			t.Errorf("ScoreMatch = %v, want nil", got)
		}
	})
}
