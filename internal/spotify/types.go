package spotify

import (
	"strconv"

	"github.com/llehouerou/undertow/internal/fuzzy"
	"github.com/llehouerou/undertow/internal/resolve"
)

// API response shapes, trimmed to the fields the resolver consumes.

type artistResult struct {
	Name string `json:"name"`
}

type trackResult struct {
	Name       string         `json:"name"`
	Artists    []artistResult `json:"artists"`
	Album      *albumResult   `json:"album"`
	DurationMS int            `json:"duration_ms"`
	URI        string         `json:"uri"`
}

type albumResult struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Artists     []artistResult `json:"artists"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
}

func (t *trackResult) toCandidate() *fuzzy.Candidate {
	c := &fuzzy.Candidate{
		URI:    t.URI,
		Title:  t.Name,
		Length: float64(t.DurationMS) / 1000,
	}
	for _, a := range t.Artists {
		c.Artists = append(c.Artists, a.Name)
	}
	// Album tracks come without an album object; the caller knows which
	// album they belong to.
	if t.Album != nil {
		c.Album = t.Album.Name
		c.Year = yearOf(t.Album.ReleaseDate)
	}
	return c
}

func (a *albumResult) toAlbum() *resolve.Album {
	album := &resolve.Album{
		ID:         a.ID,
		Name:       a.Name,
		TrackCount: a.TotalTracks,
		Year:       yearOf(a.ReleaseDate),
	}
	for _, artist := range a.Artists {
		album.Artists = append(album.Artists, artist.Name)
	}
	return album
}

// yearOf extracts the year from a release date, which the API returns as
// "2011", "2011-03" or "2011-03-04" depending on precision.
func yearOf(date string) int {
	if len(date) > 4 {
		date = date[:4]
	}
	y, _ := strconv.Atoi(date)
	return y
}
