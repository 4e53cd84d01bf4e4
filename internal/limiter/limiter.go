// Package limiter truncates a track collection to a count, album-count,
// duration or file-size budget, after ranking the collection so the cut
// keeps the highest-priority tracks.
package limiter

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/llehouerou/undertow/internal/sorter"
	"github.com/llehouerou/undertow/internal/track"
)

// Kind is the budget a limiter cuts on.
type Kind int

const (
	Items Kind = iota
	Albums

	Seconds
	Minutes
	Hours
	Days
	Weeks

	Bytes
	Kilobytes
	Megabytes
	Gigabytes
	Terabytes
)

var kindNames = map[string]Kind{
	"items":     Items,
	"albums":    Albums,
	"seconds":   Seconds,
	"minutes":   Minutes,
	"hours":     Hours,
	"days":      Days,
	"weeks":     Weeks,
	"bytes":     Bytes,
	"kilobytes": Kilobytes,
	"megabytes": Megabytes,
	"gigabytes": Gigabytes,
	"terabytes": Terabytes,
}

// ParseKind resolves a limit type name from a rule file.
func ParseKind(name string) (Kind, error) {
	kind, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Items, fmt.Errorf("unrecognised limit type: %q", name)
	}
	return kind, nil
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// RankKey orders the collection before the cut, establishing which tracks
// the budget is spent on first.
type RankKey int

const (
	Random RankKey = iota
	HighestRating
	LowestRating
	MostRecentlyPlayed
	LeastRecentlyPlayed
	MostOftenPlayed
	LeastOftenPlayed
	MostRecentlyAdded
	LeastRecentlyAdded
)

var rankKeyTitles = map[RankKey]string{
	Random:              "Random",
	HighestRating:       "HighestRating",
	LowestRating:        "LowestRating",
	MostRecentlyPlayed:  "MostRecentlyPlayed",
	LeastRecentlyPlayed: "LeastRecentlyPlayed",
	MostOftenPlayed:     "MostOftenPlayed",
	LeastOftenPlayed:    "LeastOftenPlayed",
	MostRecentlyAdded:   "MostRecentlyAdded",
	LeastRecentlyAdded:  "LeastRecentlyAdded",
}

var rankKeyNames = map[string]RankKey{
	"random":              Random,
	"highestrating":       HighestRating,
	"lowestrating":        LowestRating,
	"mostrecentlyplayed":  MostRecentlyPlayed,
	"leastrecentlyplayed": LeastRecentlyPlayed,
	"mostoftenplayed":     MostOftenPlayed,
	"leastoftenplayed":    LeastOftenPlayed,
	"mostrecentlyadded":   MostRecentlyAdded,
	"leastrecentlyadded":  LeastRecentlyAdded,
}

// ParseRankKey resolves a ranking name from a rule file, ignoring case and
// whitespace.
func ParseRankKey(name string) (RankKey, error) {
	token := strings.ToLower(name)
	for _, cut := range []string{" ", "_", "-"} {
		token = strings.ReplaceAll(token, cut, "")
	}
	key, ok := rankKeyNames[token]
	if !ok {
		return Random, fmt.Errorf("unrecognised rank key: %q", name)
	}
	return key, nil
}

func (k RankKey) String() string {
	if name, ok := rankKeyTitles[k]; ok {
		return name
	}
	return fmt.Sprintf("rankkey(%d)", int(k))
}

// Limiter truncates a collection in place.
//
// Max is the budget; zero disables limiting. Allowance loosens the
// admission check for duration and size cuts: a track is appended while
// running+next <= Max*Allowance, and the cut stops once running > Max.
type Limiter struct {
	Kind      Kind
	Max       float64
	RankKey   RankKey
	Allowance float64
}

// Limit truncates tracks in place. Tracks in ignore are exempt from both
// the accounting and the cut and are kept unconditionally at the front.
func (l *Limiter) Limit(tracks *[]*track.Track, ignore []*track.Track) {
	if l == nil || len(*tracks) == 0 || l.Max == 0 {
		return
	}

	l.rank(*tracks)

	ignored := make(map[string]struct{}, len(ignore))
	for _, t := range ignore {
		ignored[track.Key(t)] = struct{}{}
	}

	var kept, candidates []*track.Track
	for _, t := range *tracks {
		if _, ok := ignored[track.Key(t)]; ok {
			kept = append(kept, t)
		} else {
			candidates = append(candidates, t)
		}
	}

	switch {
	case l.Kind == Items:
		n := int(l.Max)
		if n > len(candidates) {
			n = len(candidates)
		}
		kept = append(kept, candidates[:n]...)
	case l.Kind == Albums:
		kept = append(kept, l.cutOnAlbums(candidates)...)
	default:
		kept = append(kept, l.cutOnTotal(candidates)...)
	}

	*tracks = kept
}

func (l *Limiter) rank(tracks []*track.Track) {
	switch l.RankKey {
	case Random:
		rand.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
	case HighestRating:
		sorter.SortByField(tracks, track.FieldRating, true)
	case LowestRating:
		sorter.SortByField(tracks, track.FieldRating, false)
	case MostRecentlyPlayed:
		sorter.SortByField(tracks, track.FieldLastPlayed, true)
	case LeastRecentlyPlayed:
		sorter.SortByField(tracks, track.FieldLastPlayed, false)
	case MostOftenPlayed:
		sorter.SortByField(tracks, track.FieldPlayCount, true)
	case LeastOftenPlayed:
		sorter.SortByField(tracks, track.FieldPlayCount, false)
	case MostRecentlyAdded:
		sorter.SortByField(tracks, track.FieldDateAdded, true)
	case LeastRecentlyAdded:
		sorter.SortByField(tracks, track.FieldDateAdded, false)
	}
}

// cutOnAlbums appends tracks in ranked order while tracking distinct album
// names, stopping after the track count budget's worth of albums is seen.
// Every track of an admitted album is kept, wherever it appears.
func (l *Limiter) cutOnAlbums(tracks []*track.Track) []*track.Track {
	max := int(l.Max)
	seen := make(map[string]struct{}, max)
	var result []*track.Track

	for _, t := range tracks {
		if _, ok := seen[t.Album]; !ok && len(seen) < max {
			seen[t.Album] = struct{}{}
		}
		if _, ok := seen[t.Album]; ok {
			result = append(result, t)
		}
	}
	return result
}

func (l *Limiter) cutOnTotal(tracks []*track.Track) []*track.Track {
	allowance := l.Allowance
	if allowance < 1 {
		allowance = 1
	}

	var total float64
	var result []*track.Track
	for _, t := range tracks {
		value := l.convert(t)
		if total+value <= l.Max*allowance {
			result = append(result, t)
			total += value
		}
		if total > l.Max {
			break
		}
	}
	return result
}

// convert returns a track's cost in the limiter's unit.
func (l *Limiter) convert(t *track.Track) float64 {
	switch l.Kind {
	case Seconds:
		return t.Length
	case Minutes:
		return t.Length / 60
	case Hours:
		return t.Length / (60 * 60)
	case Days:
		return t.Length / (60 * 60 * 24)
	case Weeks:
		return t.Length / (60 * 60 * 24 * 7)
	case Bytes:
		return float64(t.Size)
	case Kilobytes:
		return float64(t.Size) / 1e3
	case Megabytes:
		return float64(t.Size) / 1e6
	case Gigabytes:
		return float64(t.Size) / 1e9
	case Terabytes:
		return float64(t.Size) / 1e12
	}
	return 0
}
