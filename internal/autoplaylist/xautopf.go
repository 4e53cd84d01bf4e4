// Package autoplaylist reads and writes MusicBee playlist files: .xautopf
// smart playlists with their rule, limit and sort settings, and plain .m3u
// track lists.
package autoplaylist

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/llehouerou/undertow/internal/filter"
	"github.com/llehouerou/undertow/internal/limiter"
	"github.com/llehouerou/undertow/internal/matcher"
	"github.com/llehouerou/undertow/internal/sorter"
	"github.com/llehouerou/undertow/internal/track"
)

// MusicBee applies roughly this much slack to duration and size limits.
const musicBeeAllowance = 1.25

// Sort code meaning "keep manual order".
const manualSortCode = 78

// Custom sort codes that expand to a fixed field list.
var definedSorts = map[int][]sorter.FieldSort{
	6: {
		{Field: track.FieldAlbum},
		{Field: track.FieldDiscNumber},
		{Field: track.FieldTrackNumber},
		{Field: track.FieldFilename},
	},
}

type xmlSmartPlaylist struct {
	XMLName     xml.Name   `xml:"SmartPlaylist"`
	GroupBy     string     `xml:"GroupBy,attr,omitempty"`
	ShuffleMode string     `xml:"ShuffleMode,attr,omitempty"`
	Attrs       []xml.Attr `xml:",any,attr"`
	Source      xmlSource  `xml:"Source"`
}

type xmlSource struct {
	Type        string          `xml:"Type,attr,omitempty"`
	Attrs       []xml.Attr      `xml:",any,attr"`
	Description string          `xml:"Description"`
	Conditions  xmlConditions   `xml:"Conditions"`
	Limit       *xmlLimit       `xml:"Limit"`
	Include     string          `xml:"ExceptionsInclude,omitempty"`
	Exclude     string          `xml:"Exceptions,omitempty"`
	SortBy      *xmlSortBy      `xml:"SortBy"`
	DefinedSort *xmlDefinedSort `xml:"DefinedSort"`
}

type xmlConditions struct {
	CombineMethod string         `xml:"CombineMethod,attr"`
	Conditions    []xmlCondition `xml:"Condition"`
}

// Expected values are spread over Value, Value2, Value3... attributes, so
// they are collected through the catch-all attribute list.
type xmlCondition struct {
	Field      string     `xml:"Field,attr"`
	Comparison string     `xml:"Comparison,attr"`
	Attrs      []xml.Attr `xml:",any,attr"`
}

func (c *xmlCondition) values() []string {
	var values []string
	for _, attr := range c.Attrs {
		if strings.HasPrefix(attr.Name.Local, "Value") {
			values = append(values, attr.Value)
		}
	}
	return values
}

type xmlLimit struct {
	FilterDuplicates string `xml:"FilterDuplicates,attr,omitempty"`
	Enabled          string `xml:"Enabled,attr"`
	Count            string `xml:"Count,attr"`
	Type             string `xml:"Type,attr"`
	SelectedBy       string `xml:"SelectedBy,attr"`
}

type xmlSortBy struct {
	Field string `xml:"Field,attr"`
	Order string `xml:"Order,attr,omitempty"`
}

type xmlDefinedSort struct {
	ID string `xml:"Id,attr"`
}

// Playlist is a loaded smart playlist: its processors plus, after Refresh,
// the resolved track membership.
type Playlist struct {
	Path        string
	Description string

	Rules *matcher.RuleSet
	Limit *limiter.Limiter
	Sort  *sorter.Sorter

	// Tracks is the membership resolved by the last Refresh.
	Tracks []*track.Track

	original []*track.Track
	doc      *xmlSmartPlaylist
}

// Load parses a .xautopf file into a Playlist. Call Refresh with the
// library's tracks to resolve membership.
func Load(path string) (*Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}

	doc := &xmlSmartPlaylist{}
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := &Playlist{Path: path, Description: doc.Source.Description, doc: doc}
	if p.Rules, err = parseRules(doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Limit, err = parseLimiter(doc.Source.Limit); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Sort, err = parseSorter(doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

func parseRules(doc *xmlSmartPlaylist) (*matcher.RuleSet, error) {
	conditions, err := parseConditions(doc.Source.Conditions.Conditions)
	if err != nil {
		return nil, err
	}

	rules := matcher.New(conditions, doc.Source.Conditions.CombineMethod == "All")
	for _, path := range strings.Split(doc.Source.Include, "|") {
		if path != "" {
			rules.Include[strings.ToLower(path)] = struct{}{}
		}
	}
	for _, path := range strings.Split(doc.Source.Exclude, "|") {
		if path != "" {
			rules.Exclude[strings.ToLower(path)] = struct{}{}
		}
	}
	return rules, nil
}

func parseConditions(raw []xmlCondition) ([]*filter.Comparer, error) {
	var conditions []*filter.Comparer
	for i := range raw {
		cond, err := parseCondition(&raw[i])
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	// A fresh playlist carries a single empty "allow all" condition.
	// Dropping it turns the rule set into a plain pass-through.
	if len(conditions) == 1 {
		c := conditions[0]
		allowAll := c.Op == filter.OpStartsWith || c.Op == filter.OpContains
		if allowAll && len(c.RawExpected()) == 1 && c.RawExpected()[0] == "" {
			conditions = nil
		}
	}
	return conditions, nil
}

func parseCondition(raw *xmlCondition) (*filter.Comparer, error) {
	field, err := track.ParseFieldName(raw.Field)
	if err != nil {
		return nil, err
	}
	op, err := filter.ParseOperator(raw.Comparison)
	if err != nil {
		return nil, err
	}

	// The sentinel value pins the comparison to the reference track
	// instead of fixed expected values.
	values := raw.values()
	if len(values) > 0 && values[0] == "[playing track]" {
		values = nil
	}
	return filter.NewComparer(field, op, values...)
}

func parseLimiter(raw *xmlLimit) (*limiter.Limiter, error) {
	if raw == nil || raw.Enabled != "True" {
		return nil, nil
	}

	count, err := strconv.Atoi(raw.Count)
	if err != nil {
		return nil, fmt.Errorf("limit count %q: %w", raw.Count, err)
	}
	kind, err := limiter.ParseKind(raw.Type)
	if err != nil {
		return nil, err
	}
	rank, err := limiter.ParseRankKey(raw.SelectedBy)
	if err != nil {
		return nil, err
	}

	return &limiter.Limiter{
		Kind:      kind,
		Max:       float64(count),
		RankKey:   rank,
		Allowance: musicBeeAllowance,
	}, nil
}

func parseSorter(doc *xmlSmartPlaylist) (*sorter.Sorter, error) {
	var code int
	var err error
	var descending bool

	switch {
	case doc.Source.SortBy != nil:
		code, err = strconv.Atoi(doc.Source.SortBy.Field)
		descending = doc.Source.SortBy.Order == "Descending"
	case doc.Source.DefinedSort != nil:
		code, err = strconv.Atoi(doc.Source.DefinedSort.ID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sort field code: %w", err)
	}

	if fields, ok := definedSorts[code]; ok {
		return &sorter.Sorter{Fields: fields}, nil
	}

	if code != manualSortCode {
		field, err := track.FieldByCode(code)
		if err != nil {
			return nil, err
		}
		return &sorter.Sorter{Fields: []sorter.FieldSort{{Field: field, Descending: descending}}}, nil
	}

	// Manual order. MusicBee may still shuffle on load.
	if strings.EqualFold(doc.ShuffleMode, "random") {
		return &sorter.Sorter{Shuffle: sorter.ShuffleRandom}, nil
	}
	return &sorter.Sorter{Fields: definedSorts[6]}, nil
}

// Refresh resolves the playlist's membership from the full library.
//
// The most recently played track serves as the reference for conditions
// comparing against "the playing track". Pinned includes are exempt from
// the limiter so an explicit pin-in can never be cut.
func (p *Playlist) Refresh(library []*track.Track) error {
	ordered := make([]*track.Track, len(library))
	copy(ordered, library)
	sorter.SortByField(ordered, track.FieldLastPlayed, true)

	var reference *track.Track
	if len(ordered) > 0 {
		reference = ordered[0]
	}

	result, err := p.Rules.MatchResult(library, reference)
	if err != nil {
		return fmt.Errorf("match %s: %w", p.Path, err)
	}

	tracks := result.Combined()
	if p.Limit != nil {
		p.Limit.Limit(&tracks, result.Included)
	}
	if p.Sort != nil {
		p.Sort.Sort(tracks)
	}

	p.Tracks = tracks
	p.original = make([]*track.Track, len(tracks))
	copy(p.original, tracks)
	return nil
}

// Save writes the playlist's settings back to its file. Membership changes
// made since Refresh are captured as pinned include/exclude paths so they
// survive the round trip.
func (p *Playlist) Save() error {
	if err := p.Rules.ToStorage(p.Tracks, p.original); err != nil {
		return fmt.Errorf("save %s: %w", p.Path, err)
	}

	doc := p.doc
	doc.Source.Description = p.Description
	doc.Source.Conditions = conditionsToXML(p.Rules)
	doc.Source.Include = joinKeys(p.Rules.Include)
	doc.Source.Exclude = joinKeys(p.Rules.Exclude)
	doc.Source.Limit = limiterToXML(p.Limit)
	sorterToXML(doc, p.Sort)

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("save %s: %w", p.Path, err)
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')

	if err := os.WriteFile(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", p.Path, err)
	}
	return nil
}

func conditionsToXML(rules *matcher.RuleSet) xmlConditions {
	method := "Any"
	if rules.MatchAll {
		method = "All"
	}
	out := xmlConditions{CombineMethod: method}

	for _, cond := range rules.Conditions {
		name, err := track.MusicBeeFieldName(cond.Field)
		if err != nil {
			name = "None"
		}
		c := xmlCondition{Field: name, Comparison: cond.Op.String()}

		values := cond.RawExpected()
		switch {
		case values == nil:
			c.Attrs = append(c.Attrs, valueAttr("Value", "[playing track]"))
		case len(values) == 1:
			c.Attrs = append(c.Attrs, valueAttr("Value", values[0]))
		default:
			c.Attrs = append(c.Attrs, valueAttr("Value", values[0]))
			for i, v := range values[1:] {
				c.Attrs = append(c.Attrs, valueAttr(fmt.Sprintf("Value%d", i+2), v))
			}
		}
		out.Conditions = append(out.Conditions, c)
	}

	if len(out.Conditions) == 0 {
		out.Conditions = append(out.Conditions, xmlCondition{
			Field:      "ArtistPeople",
			Comparison: "StartsWith",
			Attrs:      []xml.Attr{valueAttr("Value", "")},
		})
	}
	return out
}

func valueAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func joinKeys(keys map[string]struct{}) string {
	if len(keys) == 0 {
		return ""
	}
	list := make([]string, 0, len(keys))
	for key := range keys {
		list = append(list, key)
	}
	return strings.Join(list, "|")
}

func limiterToXML(l *limiter.Limiter) *xmlLimit {
	if l == nil {
		return &xmlLimit{
			FilterDuplicates: "False",
			Enabled:          "False",
			Count:            "25",
			Type:             "Items",
			SelectedBy:       "Random",
		}
	}
	return &xmlLimit{
		FilterDuplicates: "False",
		Enabled:          "True",
		Count:            strconv.Itoa(int(l.Max)),
		Type:             l.Kind.String(),
		SelectedBy:       l.RankKey.String(),
	}
}

func sorterToXML(doc *xmlSmartPlaylist, s *sorter.Sorter) {
	doc.Source.SortBy = nil
	doc.Source.DefinedSort = nil

	if s == nil {
		doc.ShuffleMode = "None"
		doc.Source.SortBy = &xmlSortBy{Field: strconv.Itoa(manualSortCode), Order: "Ascending"}
		return
	}

	if s.Shuffle == sorter.ShuffleRandom {
		doc.ShuffleMode = "Random"
	} else {
		doc.ShuffleMode = "None"
	}

	for code, fields := range definedSorts {
		if fieldSortsEqual(fields, s.Fields) {
			doc.Source.DefinedSort = &xmlDefinedSort{ID: strconv.Itoa(code)}
			return
		}
	}

	if len(s.Fields) == 0 {
		doc.Source.SortBy = &xmlSortBy{Field: strconv.Itoa(manualSortCode), Order: "Ascending"}
		return
	}

	first := s.Fields[0]
	order := "Ascending"
	if first.Descending {
		order = "Descending"
	}
	doc.Source.SortBy = &xmlSortBy{Field: strconv.Itoa(int(first.Field)), Order: order}
}

func fieldSortsEqual(a, b []sorter.FieldSort) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
