// Package sorter orders track collections by one or more metadata fields,
// with grouped recursive sorting and a random shuffle mode.
package sorter

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/llehouerou/undertow/internal/track"
)

// FieldSort is one level of a sort specification.
type FieldSort struct {
	Field      track.Field
	Descending bool
}

// ShuffleMode selects how a collection is ordered when no sort fields are
// configured.
type ShuffleMode int

const (
	ShuffleNone ShuffleMode = iota
	ShuffleRandom
)

// ignoreWords are stripped from the start of string sort keys so "The Cure"
// sorts under C.
var ignoreWords = []string{"The", "A"}

// SetIgnoreWords replaces the leading words stripped from string sort keys.
func SetIgnoreWords(words []string) {
	if len(words) > 0 {
		ignoreWords = words
	}
}

// Sorter sorts tracks in place. Sort fields always take priority over the
// shuffle mode.
type Sorter struct {
	Fields  []FieldSort
	Shuffle ShuffleMode
}

// Sort orders tracks in place according to the configured fields, or
// shuffles when no fields are set and the shuffle mode says so.
func (s *Sorter) Sort(tracks []*track.Track) {
	if len(tracks) == 0 {
		return
	}
	if len(s.Fields) > 0 {
		sortByFields(tracks, s.Fields)
		return
	}
	if s.Shuffle == ShuffleRandom {
		rand.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
	}
}

// sortByFields sorts by the first field, groups runs sharing that field's
// value, recurses into each group with the remaining fields, and flattens
// the groups back preserving outer-group order.
func sortByFields(tracks []*track.Track, fields []FieldSort) {
	spec := fields[0]
	SortByField(tracks, spec.Field, spec.Descending)
	if len(fields) == 1 {
		return
	}

	keys, groups := groupByField(tracks, spec.Field)
	i := 0
	for _, key := range keys {
		group := groups[key]
		sortByFields(group, fields[1:])
		copy(tracks[i:], group)
		i += len(group)
	}
}

// SortByField stably sorts tracks by a single field's value. Tracks whose
// values are all nil are left untouched.
func SortByField(tracks []*track.Track, field track.Field, descending bool) {
	var sample any
	for _, t := range tracks {
		if sample = t.Value(field); sample != nil {
			break
		}
	}
	if sample == nil {
		return
	}

	var less func(a, b *track.Track) bool
	switch sample.(type) {
	case time.Time:
		less = func(a, b *track.Track) bool {
			return timeKey(a, field) < timeKey(b, field)
		}
	case string, []string:
		less = func(a, b *track.Track) bool {
			aSpecial, aKey := stripIgnoreWords(stringKey(a, field))
			bSpecial, bKey := stripIgnoreWords(stringKey(b, field))
			if aSpecial != bSpecial {
				return !aSpecial // plain strings sort before special-prefixed ones
			}
			return aKey < bKey
		}
	default:
		less = func(a, b *track.Track) bool {
			return numericKey(a, field) < numericKey(b, field)
		}
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if descending {
			return less(tracks[j], tracks[i])
		}
		return less(tracks[i], tracks[j])
	})
}

// groupByField partitions tracks by the value of a field, preserving the
// order in which group values first appear.
func groupByField(tracks []*track.Track, field track.Field) ([]string, map[string][]*track.Track) {
	var keys []string
	groups := make(map[string][]*track.Track)
	for _, t := range tracks {
		key := groupKey(t.Value(field))
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	return keys, groups
}

func groupKey(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []string:
		return strings.Join(vv, "\x00")
	case time.Time:
		return vv.Format(time.RFC3339)
	default:
		return fmt.Sprint(vv)
	}
}

func timeKey(t *track.Track, field track.Field) int64 {
	if v, ok := t.Value(field).(time.Time); ok {
		return v.Unix()
	}
	return 0
}

func numericKey(t *track.Track, field track.Field) float64 {
	switch v := t.Value(field).(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func stringKey(t *track.Track, field track.Field) string {
	switch v := t.Value(field).(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, track.ArtistSep)
	}
	return ""
}

var leadingNonWordRe = regexp.MustCompile(`^\W+`)

var specialChars = `!"£$%^&*()_+-=…`

// stripIgnoreWords removes one leading ignore word and leading punctuation
// from a sort key. The bool reports whether the raw value started with a
// special character, so such values can be grouped together.
func stripIgnoreWords(value string) (bool, string) {
	if value == "" {
		return false, value
	}

	first, _ := utf8.DecodeRuneInString(value)
	special := strings.ContainsRune(specialChars, first)
	value = strings.TrimSpace(leadingNonWordRe.ReplaceAllString(value, ""))

	for _, word := range ignoreWords {
		if rest, ok := strings.CutPrefix(value, word+" "); ok {
			value = strings.TrimSpace(rest)
			break
		}
	}
	return special, value
}
