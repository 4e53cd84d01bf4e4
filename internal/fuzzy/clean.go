// Package fuzzy scores how closely a remote catalog candidate matches a
// local track. Tag values are normalised before comparison so that
// qualifiers like "(Remastered 2011)" or "feat. X" do not defeat a match.
package fuzzy

import (
	"regexp"
	"strings"

	"github.com/llehouerou/undertow/internal/track"
)

// Candidate is a track returned by a remote catalog search.
type Candidate struct {
	URI     string
	Title   string
	Artists []string
	Album   string
	Length  float64
	Year    int
}

// Tags holds the cleaned values of one side of a comparison.
type Tags struct {
	Name    string
	Artist  string
	Artists []string
	Album   string
	Length  float64
	Year    int
}

var (
	bracketedRe = regexp.MustCompile(`[(\[].*?[)\]]`)
	nonWordRe   = regexp.MustCompile(`[^\w']+`)
)

// removeAll applies to every tag; each tag adds its own remove and split
// words on top.
var removeAll = []string{"the", "a", "&", "and"}

type cleanRule struct {
	removeRes  []*regexp.Regexp
	split      []string
	preprocess func(string) string
}

func newCleanRule(remove, split []string, preprocess func(string) string) cleanRule {
	rule := cleanRule{split: split, preprocess: preprocess}
	for _, word := range append(remove, removeAll...) {
		w := regexp.QuoteMeta(word)
		rule.removeRes = append(rule.removeRes, regexp.MustCompile(`\s`+w+`\s|^`+w+`\s|\s`+w+`$`))
	}
	return rule
}

var (
	titleRule  = newCleanRule([]string{"part"}, []string{"featuring", "feat.", "ft.", "/"}, nil)
	artistRule = newCleanRule(nil, []string{"featuring", "feat.", "ft.", "vs"}, nil)
	albumRule  = newCleanRule([]string{"ep"}, nil,
		func(s string) string { v, _, _ := strings.Cut(s, "-"); return v })
)

func (r cleanRule) apply(value string) string {
	if r.preprocess != nil {
		value = r.preprocess(value)
	}
	value = bracketedRe.ReplaceAllString(value, "")
	value = strings.ToLower(value)

	for _, re := range r.removeRes {
		value = re.ReplaceAllString(value, " ")
	}
	for _, word := range r.split {
		value, _, _ = strings.Cut(value, word)
		value = strings.TrimRight(value, " ")
	}
	return strings.TrimSpace(nonWordRe.ReplaceAllString(value, " "))
}

// CleanTitle normalises a track title for matching.
func CleanTitle(s string) string { return titleRule.apply(s) }

// CleanArtist normalises an artist name for matching.
func CleanArtist(s string) string { return artistRule.apply(s) }

// CleanAlbum normalises an album name for matching.
func CleanAlbum(s string) string { return albumRule.apply(s) }

// CleanTrack cleans the matchable tags of a local track.
func CleanTrack(t *track.Track) Tags {
	tags := Tags{
		Name:   CleanTitle(t.Title),
		Album:  CleanAlbum(t.Album),
		Length: t.Length,
		Year:   t.Year,
	}
	for _, artist := range t.Artists {
		if cleaned := CleanArtist(artist); cleaned != "" {
			tags.Artists = append(tags.Artists, cleaned)
		}
	}
	tags.Artist = strings.Join(tags.Artists, " ")
	return tags
}

// CleanCandidate cleans the matchable tags of a search result.
func CleanCandidate(c *Candidate) Tags {
	tags := Tags{
		Name:   CleanTitle(c.Title),
		Album:  CleanAlbum(c.Album),
		Length: c.Length,
		Year:   c.Year,
	}
	for _, artist := range c.Artists {
		if cleaned := CleanArtist(artist); cleaned != "" {
			tags.Artists = append(tags.Artists, cleaned)
		}
	}
	tags.Artist = strings.Join(tags.Artists, " ")
	return tags
}
