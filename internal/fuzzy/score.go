package fuzzy

import (
	"math"
	"strings"
)

// Weights sets the contribution of each tag comparison to the total score.
type Weights struct {
	Title  float64
	Artist float64
	Album  float64
	Length float64
	Year   float64
}

// DefaultWeights favours title and artist agreement, with album, length and
// year acting as tie breakers.
func DefaultWeights() Weights {
	return Weights{Title: 0.4, Artist: 0.25, Album: 0.15, Length: 0.1, Year: 0.1}
}

// Scorer ranks remote candidates against a local track.
//
// MinScore is the acceptance floor for ScoreMatch; MaxScore short-circuits
// the scan as soon as a candidate reaches it. YearRange is the year
// difference at which MatchYear reaches zero. A candidate whose album and
// artists carry every word in KaraokeWords is rejected outright.
type Scorer struct {
	Weights      Weights
	MinScore     float64
	MaxScore     float64
	YearRange    float64
	KaraokeWords []string
}

// NewScorer returns a scorer with the defaults used across the resolver.
func NewScorer() *Scorer {
	return &Scorer{
		Weights:      DefaultWeights(),
		MinScore:     0.1,
		MaxScore:     0.8,
		YearRange:    10,
		KaraokeWords: []string{"karaoke", "backing", "instrumental"},
	}
}

// matchWords returns the fraction of words in source found as substrings of
// result. Zero when either side is empty.
func matchWords(source, result string) float64 {
	if source == "" || result == "" {
		return 0
	}
	words := strings.Fields(source)
	found := 0
	for _, word := range words {
		if strings.Contains(result, word) {
			found++
		}
	}
	return float64(found) / float64(len(words))
}

// MatchName scores title similarity between 0 and 1.
func MatchName(source, result Tags) float64 {
	return matchWords(source.Name, result.Name)
}

// MatchAlbum scores album similarity between 0 and 1.
func MatchAlbum(source, result Tags) float64 {
	return matchWords(source.Album, result.Album)
}

// MatchArtist scores artist similarity between 0 and 1. The i-th listed
// candidate artist is scaled by 1/i so agreement with the primary artist
// dominates.
func MatchArtist(source, result Tags) float64 {
	if source.Artist == "" || len(result.Artists) == 0 {
		return 0
	}
	total := float64(len(strings.Fields(source.Artist)))
	var score float64
	for i, artist := range result.Artists {
		found := 0
		for _, word := range strings.Fields(artist) {
			if strings.Contains(source.Artist, word) {
				found++
			}
		}
		score += float64(found) / total / float64(i+1)
	}
	return score
}

// MatchLength scores length similarity: 1 for identical lengths, falling
// linearly to 0 as the difference approaches the source length.
func MatchLength(source, result Tags) float64 {
	if source.Length == 0 || result.Length == 0 {
		return 0
	}
	return math.Max(source.Length-math.Abs(source.Length-result.Length), 0) / source.Length
}

// MatchYear scores release year proximity: 1 within half the configured
// range, 0 beyond the full range, linear in between.
func (s *Scorer) MatchYear(source, result Tags) float64 {
	if source.Year == 0 || result.Year == 0 {
		return 0
	}
	diff := math.Abs(float64(source.Year - result.Year))
	half := s.YearRange / 2
	switch {
	case diff <= half:
		return 1
	case diff >= s.YearRange:
		return 0
	default:
		return (s.YearRange - diff) / (s.YearRange - half)
	}
}

// KaraokeVeto reports whether the candidate should be rejected regardless
// of score: every karaoke keyword appears in its album name and, when it
// lists artists, in at least one artist's cleaned name.
func (s *Scorer) KaraokeVeto(c *Candidate) bool {
	if len(s.KaraokeWords) == 0 {
		return false
	}
	album := strings.ToLower(c.Album)
	for _, word := range s.KaraokeWords {
		if !strings.Contains(album, word) {
			return false
		}
	}
	if len(c.Artists) == 0 {
		return true
	}
	for _, artist := range c.Artists {
		cleaned := CleanArtist(artist)
		all := true
		for _, word := range s.KaraokeWords {
			if !strings.Contains(cleaned, word) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Score computes the weighted sum of all tag comparisons.
func (s *Scorer) Score(source, result Tags) float64 {
	w := s.Weights
	return w.Title*MatchName(source, result) +
		w.Artist*MatchArtist(source, result) +
		w.Album*MatchAlbum(source, result) +
		w.Length*MatchLength(source, result) +
		w.Year*s.MatchYear(source, result)
}

// ScoreMatch scans candidates in order, skipping vetoed ones, and returns
// the best scorer if it reaches MinScore. The scan stops early the moment
// a candidate reaches MaxScore.
func (s *Scorer) ScoreMatch(source Tags, candidates []*Candidate) *Candidate {
	var best *Candidate
	var bestScore float64

	for _, c := range candidates {
		if s.KaraokeVeto(c) {
			continue
		}
		score := s.Score(source, CleanCandidate(c))
		if score > bestScore {
			best, bestScore = c, score
		}
		if bestScore >= s.MaxScore {
			break
		}
	}
	if bestScore >= s.MinScore {
		return best
	}
	return nil
}
