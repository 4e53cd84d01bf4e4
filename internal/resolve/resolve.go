// Package resolve attaches remote catalog URIs to local tracks. Single
// tracks are resolved through tiered search queries scored by the fuzzy
// matcher; whole albums are resolved against album candidates first, with
// leftovers falling back to per-track search.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/undertow/internal/fuzzy"
	"github.com/llehouerou/undertow/internal/report"
	"github.com/llehouerou/undertow/internal/track"
)

// Album is an album returned by a remote catalog search.
type Album struct {
	ID         string
	Name       string
	Artists    []string
	TrackCount int
	Year       int
}

// Searcher is the remote catalog boundary. Implementations are expected to
// exhaust pagination before returning; the resolver assumes each call
// yields the complete ordered result set.
type Searcher interface {
	SearchTracks(ctx context.Context, query string) ([]*fuzzy.Candidate, error)
	SearchAlbums(ctx context.Context, query string) ([]*Album, error)
	AlbumTracks(ctx context.Context, albumID string) ([]*fuzzy.Candidate, error)
}

// Group is a named collection of tracks to resolve together. Album groups
// go through album resolution before per-track fallback.
type Group struct {
	Name   string
	Tracks []*track.Track
	Album  bool
}

// Resolver drives resolution of tracks against a remote catalog.
type Resolver struct {
	searcher Searcher
	scorer   *fuzzy.Scorer
	log      *log.Logger

	// Album names starting with one of these prefixes are treated as
	// download buckets rather than real albums and never used in queries.
	PlaceholderAlbums []string

	// TitleFraction is the minimum fraction of a local title's words that
	// must appear in a candidate album track for the two to be aligned.
	TitleFraction float64

	// RequireArtist makes album candidate acceptance check artist words in
	// addition to album words.
	RequireArtist bool
}

func New(searcher Searcher, scorer *fuzzy.Scorer, logger *log.Logger) *Resolver {
	if scorer == nil {
		scorer = fuzzy.NewScorer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		searcher:          searcher,
		scorer:            scorer,
		log:               logger,
		PlaceholderAlbums: []string{"downloads"},
		TitleFraction:     0.6,
		RequireArtist:     true,
	}
}

// ResolveGroups resolves each group in turn and returns a per-group
// report. Groups run strictly in sequence so request volume stays
// predictable and a failed group leaves the others untouched.
func (r *Resolver) ResolveGroups(ctx context.Context, groups []Group) (*report.Report, error) {
	rep := &report.Report{}
	for _, g := range groups {
		result, err := r.resolveGroup(ctx, g)
		if err != nil {
			return rep, fmt.Errorf("resolve %s: %w", g.Name, err)
		}
		rep.Add(result)
	}
	return rep, nil
}

func (r *Resolver) resolveGroup(ctx context.Context, g Group) (report.Group, error) {
	result := report.Group{Name: g.Name, Total: len(g.Tracks)}

	var pending []*track.Track
	for _, t := range g.Tracks {
		if t.URI != "" {
			result.Skipped++
		} else {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return result, nil
	}

	if g.Album {
		if err := r.ResolveAlbum(ctx, pending); err != nil {
			return result, err
		}
	}

	for _, t := range pending {
		if t.URI == "" {
			if err := r.ResolveTrack(ctx, t); err != nil {
				return result, err
			}
		}
		if t.URI != "" {
			result.Matched++
		} else {
			result.Unmatched = append(result.Unmatched, fmt.Sprintf("%s - %s", t.Artist(), t.Title))
		}
	}

	r.log.Info("resolved group", "name", g.Name,
		"matched", result.Matched, "skipped", result.Skipped, "unmatched", len(result.Unmatched))
	return result, nil
}

// ResolveTrack finds a catalog URI for a single track and assigns it.
// Queries run in tiers: title+artist, then title+album, then bare title;
// the first tier with results is scored and the rest are never tried.
// Finding nothing is not an error, the track just stays unresolved.
func (r *Resolver) ResolveTrack(ctx context.Context, t *track.Track) error {
	title := fuzzy.CleanTitle(t.Title)
	artist := fuzzy.CleanArtist(t.Artist())
	album := fuzzy.CleanAlbum(t.Album)

	candidates, err := r.searcher.SearchTracks(ctx, strings.TrimSpace(title+" "+artist))
	if err != nil {
		return err
	}
	if len(candidates) == 0 && album != "" && !r.placeholderAlbum(t.Album) {
		candidates, err = r.searcher.SearchTracks(ctx, title+" "+album)
		if err != nil {
			return err
		}
	}
	if len(candidates) == 0 {
		candidates, err = r.searcher.SearchTracks(ctx, title)
		if err != nil {
			return err
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if match := r.scorer.ScoreMatch(fuzzy.CleanTrack(t), candidates); match != nil {
		t.URI = match.URI
		r.log.Debug("matched track", "title", t.Title, "uri", match.URI)
	}
	return nil
}

// ResolveAlbum matches an album's tracks against album search candidates.
// Tracks it cannot place are left unresolved for per-track fallback.
func (r *Resolver) ResolveAlbum(ctx context.Context, tracks []*track.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	// The shortest distinct artist string is the least likely to carry
	// compound "A feat. B" credits that defeat the search.
	artist := shortestArtist(tracks)
	album := fuzzy.CleanAlbum(tracks[0].Album)
	artistClean := fuzzy.CleanArtist(artist)

	candidates, err := r.searcher.SearchAlbums(ctx, strings.TrimSpace(album+" "+artistClean))
	if err != nil {
		return err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return abs(candidates[i].TrackCount-len(tracks)) < abs(candidates[j].TrackCount-len(tracks))
	})

	for _, candidate := range candidates {
		if !r.albumAccepted(candidate, album, artistClean) {
			continue
		}

		remote, err := r.searcher.AlbumTracks(ctx, candidate.ID)
		if err != nil {
			return err
		}
		r.alignTracks(tracks, remote)

		if allResolved(tracks) {
			break
		}
	}
	return nil
}

// albumAccepted checks that every word of the cleaned album name, and
// artist name when required, appears in the candidate. This is a yes/no
// gate, not a score.
func (r *Resolver) albumAccepted(candidate *Album, album, artist string) bool {
	name := strings.ToLower(candidate.Name)
	for _, word := range strings.Fields(album) {
		if !strings.Contains(name, word) {
			return false
		}
	}
	if !r.RequireArtist {
		return true
	}
	artists := strings.ToLower(strings.Join(candidate.Artists, " "))
	for _, word := range strings.Fields(artist) {
		if !strings.Contains(artists, word) {
			return false
		}
	}
	return true
}

// alignTracks pairs each unresolved local track with the first candidate
// track containing enough of its title words, consuming the candidate so
// two locals can never claim the same remote track.
func (r *Resolver) alignTracks(tracks []*track.Track, remote []*fuzzy.Candidate) {
	for _, t := range tracks {
		if t.URI != "" {
			continue
		}
		words := strings.Fields(fuzzy.CleanTitle(t.Title))
		if len(words) == 0 {
			continue
		}
		need := float64(len(words)) * r.TitleFraction

		for i, candidate := range remote {
			name := strings.ToLower(candidate.Title)
			found := 0
			for _, word := range words {
				if strings.Contains(name, word) {
					found++
				}
			}
			if float64(found) >= need {
				t.URI = candidate.URI
				remote = append(remote[:i], remote[i+1:]...)
				break
			}
		}
	}
}

func (r *Resolver) placeholderAlbum(album string) bool {
	folded := strings.ToLower(album)
	for _, prefix := range r.PlaceholderAlbums {
		if strings.HasPrefix(folded, prefix) {
			return true
		}
	}
	return false
}

func shortestArtist(tracks []*track.Track) string {
	seen := make(map[string]struct{})
	shortest := ""
	for _, t := range tracks {
		a := t.Artist()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		if shortest == "" || len(a) < len(shortest) {
			shortest = a
		}
	}
	return shortest
}

func allResolved(tracks []*track.Track) bool {
	for _, t := range tracks {
		if t.URI == "" {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
