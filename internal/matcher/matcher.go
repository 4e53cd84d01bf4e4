// Package matcher resolves playlist membership. A RuleSet combines rule
// conditions with pinned include/exclude track keys into a three-way
// partition of a collection and a final ordered membership list.
package matcher

import (
	"github.com/llehouerou/undertow/internal/filter"
	"github.com/llehouerou/undertow/internal/sorter"
	"github.com/llehouerou/undertow/internal/track"
)

// RuleSet matches tracks against rule conditions and pinned exceptions.
//
// Include and Exclude hold canonical track keys (see track.Key) for tracks
// pinned in or out of the playlist regardless of what the conditions say.
// Exclude always wins on conflict.
type RuleSet struct {
	Conditions []*filter.Comparer
	MatchAll   bool

	Include map[string]struct{}
	Exclude map[string]struct{}
}

// New returns an empty RuleSet ready for configuration.
func New(conditions []*filter.Comparer, matchAll bool) *RuleSet {
	return &RuleSet{
		Conditions: conditions,
		MatchAll:   matchAll,
		Include:    make(map[string]struct{}),
		Exclude:    make(map[string]struct{}),
	}
}

// Result is the partition produced by a match: tracks pinned in, tracks
// pinned out, and tracks passing the conditions.
type Result struct {
	Included []*track.Track
	Excluded []*track.Track
	Compared []*track.Track
}

// Combined merges the partition into the final ordered membership:
// condition matches first, then pinned includes, with pinned excludes
// removed throughout. Order is preserved and duplicates dropped.
func (r *Result) Combined() []*track.Track {
	excluded := make(map[string]struct{}, len(r.Excluded))
	for _, t := range r.Excluded {
		excluded[track.Key(t)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(r.Compared)+len(r.Included))
	var combined []*track.Track
	for _, group := range [][]*track.Track{r.Compared, r.Included} {
		for _, t := range group {
			key := track.Key(t)
			if _, ok := excluded[key]; ok {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			combined = append(combined, t)
		}
	}
	return combined
}

// Match partitions tracks and returns the combined membership. The reference
// track is used by conditions that have no expected values of their own.
func (m *RuleSet) Match(tracks []*track.Track, reference *track.Track) ([]*track.Track, error) {
	result, err := m.MatchResult(tracks, reference)
	if err != nil {
		return nil, err
	}
	return result.Combined(), nil
}

// MatchResult partitions tracks into included, excluded and compared sets.
//
// With no conditions configured the compared set is all tracks not pinned
// in, so the combined result is the input minus excludes plus any pinned
// includes present in the input.
func (m *RuleSet) MatchResult(tracks []*track.Track, reference *track.Track) (*Result, error) {
	result := &Result{}
	if len(tracks) == 0 {
		return result, nil
	}

	includedKeys := make(map[string]struct{}, len(m.Include))
	for _, t := range tracks {
		key := track.Key(t)
		if _, ok := m.Include[key]; ok {
			result.Included = append(result.Included, t)
			includedKeys[key] = struct{}{}
		}
		if _, ok := m.Exclude[key]; ok {
			result.Excluded = append(result.Excluded, t)
		}
	}

	for _, t := range tracks {
		if _, ok := includedKeys[track.Key(t)]; ok {
			continue
		}
		if len(m.Conditions) == 0 {
			result.Compared = append(result.Compared, t)
			continue
		}
		pass, err := m.compare(t, reference)
		if err != nil {
			return nil, err
		}
		if pass {
			result.Compared = append(result.Compared, t)
		}
	}

	return result, nil
}

func (m *RuleSet) compare(t *track.Track, reference *track.Track) (bool, error) {
	for _, cond := range m.Conditions {
		ref := reference
		if len(cond.Expected()) > 0 {
			ref = nil
		}
		pass, err := cond.Compare(t, ref)
		if err != nil {
			return false, err
		}
		if m.MatchAll && !pass {
			return false, nil
		}
		if !m.MatchAll && pass {
			return true, nil
		}
	}
	return m.MatchAll, nil
}

// ToStorage recomputes the pinned include/exclude keys so ad-hoc additions
// and removals survive being written back through the rule language.
//
// When conditions exist, the original collection is re-matched (using the
// most recently played track as reference) to find what the rules alone
// produce; includes become the current members the rules cannot explain and
// excludes the rule matches no longer present. Without conditions the rules
// pass everything, so the whole original collection is the compared set and
// manual additions and removals diff against it. The RuleSet's own sets are
// replaced with the result.
func (m *RuleSet) ToStorage(current, original []*track.Track) error {
	currentKeys := make(map[string]*track.Track, len(current))
	for _, t := range current {
		currentKeys[track.Key(t)] = t
	}

	comparedKeys := make(map[string]*track.Track, len(original))
	for _, t := range original {
		comparedKeys[track.Key(t)] = t
	}
	if len(m.Conditions) > 0 {
		ordered := make([]*track.Track, len(original))
		copy(ordered, original)
		sorter.SortByField(ordered, track.FieldLastPlayed, true)

		var reference *track.Track
		if len(ordered) > 0 {
			reference = ordered[0]
		}

		compared := make(map[string]*track.Track)
		for _, t := range ordered {
			pass, err := m.compare(t, reference)
			if err != nil {
				return err
			}
			if pass {
				compared[track.Key(t)] = t
			}
		}
		comparedKeys = compared
	}

	exclude := make(map[string]struct{})
	for key := range comparedKeys {
		if _, ok := currentKeys[key]; !ok {
			exclude[key] = struct{}{}
		}
	}
	include := make(map[string]struct{})
	for key := range currentKeys {
		if _, ok := comparedKeys[key]; ok {
			continue
		}
		if _, ok := exclude[key]; ok {
			continue
		}
		include[key] = struct{}{}
	}

	m.Include = include
	m.Exclude = exclude
	return nil
}
