// Package track defines the local track metadata model and its field
// vocabulary. Tracks are plain records owned by the caller; the matching,
// sorting and limiting packages only read them, except for the URI which is
// written back once a remote match is resolved.
package track

import (
	"path/filepath"
	"strings"
	"time"
)

// ArtistSep joins multiple artists into the single Artist string and splits
// them back out. MusicBee uses "; " for multi-artist tags.
const ArtistSep = "; "

// Track is a locally stored track's metadata record.
type Track struct {
	Title       string
	Artists     []string
	Album       string
	AlbumArtist string

	TrackNumber int
	TrackTotal  int
	DiscNumber  int
	DiscTotal   int

	Genres      []string
	Year        int
	BPM         float64
	Key         string
	Compilation bool
	Comments    []string

	Length float64 // seconds
	Size   int64   // bytes
	Rating float64

	DateAdded  time.Time
	LastPlayed time.Time
	PlayCount  int

	// URI is the persistent identifier on the remote catalog.
	// Empty means the track has not been matched yet.
	URI string

	Path string
}

// Artist returns all artists joined into a single tag value.
func (t *Track) Artist() string {
	return strings.Join(t.Artists, ArtistSep)
}

// Folder returns the name of the directory containing the track file.
func (t *Track) Folder() string {
	return filepath.Base(filepath.Dir(t.Path))
}

// Filename returns the track file name without its extension.
func (t *Track) Filename() string {
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ext returns the lowercased file extension including the dot.
func (t *Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}

// Key returns the canonical identity key for a track used by the matcher's
// include/exclude sets.
func Key(t *Track) string {
	return strings.ToLower(t.Path)
}

// Value extracts the value of the given field from a track. The result is
// nil when the field is unset so that comparisons can distinguish "absent"
// from zero values:
//
//   - string fields: nil when empty
//   - numeric fields: nil when zero, except PlayCount and Rating which are
//     meaningful at zero once a date/play signal exists
//   - time fields: nil when the zero time
//   - list fields: a []string, nil when empty
//   - Compilation: always a bool
func (t *Track) Value(f Field) any {
	switch f {
	case FieldTitle:
		return nilIfEmpty(t.Title)
	case FieldArtist:
		return nilIfEmpty(t.Artist())
	case FieldAlbum:
		return nilIfEmpty(t.Album)
	case FieldAlbumArtist:
		return nilIfEmpty(t.AlbumArtist)
	case FieldTrackNumber:
		return nilIfZero(t.TrackNumber)
	case FieldTrackTotal:
		return nilIfZero(t.TrackTotal)
	case FieldDiscNumber:
		return nilIfZero(t.DiscNumber)
	case FieldDiscTotal:
		return nilIfZero(t.DiscTotal)
	case FieldGenres:
		if len(t.Genres) == 0 {
			return nil
		}
		return t.Genres
	case FieldYear:
		return nilIfZero(t.Year)
	case FieldBPM:
		if t.BPM == 0 {
			return nil
		}
		return t.BPM
	case FieldKey:
		return nilIfEmpty(t.Key)
	case FieldCompilation:
		return t.Compilation
	case FieldComments:
		if len(t.Comments) == 0 {
			return nil
		}
		return t.Comments
	case FieldLength:
		if t.Length == 0 {
			return nil
		}
		return t.Length
	case FieldSize:
		if t.Size == 0 {
			return nil
		}
		return t.Size
	case FieldRating:
		return t.Rating
	case FieldDateAdded:
		return nilIfZeroTime(t.DateAdded)
	case FieldLastPlayed:
		return nilIfZeroTime(t.LastPlayed)
	case FieldPlayCount:
		return t.PlayCount
	case FieldURI:
		return nilIfEmpty(t.URI)
	case FieldPath:
		return nilIfEmpty(t.Path)
	case FieldFolder:
		return nilIfEmpty(t.Folder())
	case FieldFilename:
		return nilIfEmpty(t.Filename())
	case FieldExt:
		return nilIfEmpty(t.Ext())
	}
	return nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nilIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
