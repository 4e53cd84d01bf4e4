package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/undertow/internal/track"
)

// ErrNoExpected reports a condition evaluated with neither a reference track
// nor any expected values. This is a configuration error detectable at
// playlist load and is never retried.
var ErrNoExpected = errors.New("no reference given and no expected values set")

// Comparer is a single rule condition: one field, one operator and the raw
// expected values read from the rule file.
//
// Raw expected values are strings until the first real comparison, at which
// point they are bound to the type of the sampled field value. The binding
// happens exactly once: comparing the same condition against a
// differently-typed value later does not re-bind. This mirrors the behaviour
// of the rule language this was built against and keeping it avoids silent
// drift in playlists that mix value types for one field.
type Comparer struct {
	Field track.Field
	Op    Operator

	raw   []string
	bound []any
	once  bool

	re *regexp.Regexp

	// now is the clock used to resolve relative date offsets like "2w".
	// Overridable in tests.
	now func() time.Time
}

// NewComparer builds a condition. Regular-expression operators compile their
// pattern here so malformed patterns fail at load time.
func NewComparer(field track.Field, op Operator, expected ...string) (*Comparer, error) {
	c := &Comparer{Field: field, Op: op, raw: expected, now: time.Now}

	if op == OpMatchesRegex || op == OpMatchesRegexIgnoreCase {
		if len(expected) == 0 {
			return nil, fmt.Errorf("operator %s requires a pattern", op)
		}
		pattern := expected[0]
		if op == OpMatchesRegexIgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern for %s: %w", op, err)
		}
		c.re = re
	}
	return c, nil
}

// Expected returns the typed expected values once bound, or the raw strings
// before the first comparison.
func (c *Comparer) Expected() []any {
	if c.once {
		return c.bound
	}
	values := make([]any, len(c.raw))
	for i, v := range c.raw {
		values[i] = v
	}
	return values
}

// RawExpected returns the expected values as read from the rule file.
func (c *Comparer) RawExpected() []string {
	return c.raw
}

// Compare checks the condition against the given track. When reference is
// non-nil the reference track's field value is used in place of the expected
// values.
func (c *Comparer) Compare(t *track.Track, reference *track.Track) (bool, error) {
	if reference == nil && len(c.raw) == 0 && c.Op != OpIsNull && c.Op != OpIsNotNull {
		return false, fmt.Errorf("condition on %s: %w", c.Field, ErrNoExpected)
	}

	actual := t.Value(c.Field)

	var expected []any
	if reference != nil {
		expected = valueList(reference.Value(c.Field))
	} else {
		c.bind(actual)
		expected = c.bound
	}

	// date comparisons always happen at date granularity
	actual, expected = truncateDates(actual, expected)

	return c.eval(actual, expected), nil
}

// bind converts the raw expected values to the type of the sampled actual
// value. It runs at most once per Comparer.
func (c *Comparer) bind(sample any) {
	if c.once {
		return
	}

	switch sample.(type) {
	case int:
		c.bound = bindNumeric(c.raw, func(f float64) any { return int(f) })
		c.once = true
	case int64:
		c.bound = bindNumeric(c.raw, func(f float64) any { return int64(f) })
		c.once = true
	case float64:
		c.bound = bindNumeric(c.raw, func(f float64) any { return f })
		c.once = true
	case time.Time:
		c.bound = c.bindDates(c.raw)
		c.once = true
	case bool:
		// boolean fields only make sense with IsNull/IsNotNull
		c.bound = nil
		c.once = true
	case string, []string:
		c.bound = make([]any, len(c.raw))
		for i, v := range c.raw {
			c.bound[i] = v
		}
		c.once = true
	}
	// nil sample: leave unbound so a later non-nil value can bind
}

func bindNumeric(raw []string, conv func(float64) any) []any {
	bound := make([]any, 0, len(raw))
	for _, v := range raw {
		f, err := parseNumber(v)
		if err != nil {
			continue
		}
		bound = append(bound, conv(f))
	}
	return bound
}

// parseNumber parses a plain number or an H:MM:SS[,mmm] style duration into
// seconds, e.g. "4:30" -> 270.
func parseNumber(v string) (float64, error) {
	if !strings.Contains(v, ":") {
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}

	parts := strings.Split(v, ":")
	var seconds float64
	if base, ms, ok := strings.Cut(parts[len(parts)-1], ","); ok {
		parts[len(parts)-1] = base
		if n, err := strconv.Atoi(ms); err == nil {
			seconds += float64(n) / 1000
		}
	}

	// factors for day:hour:minute:second style values
	factors := []float64{1, 60, 60 * 60, 60 * 60 * 24}
	for i := 0; i < len(parts); i++ {
		digit, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1-i]))
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", v, err)
		}
		if i < len(factors) {
			seconds += float64(digit) * factors[i]
		}
	}
	return seconds, nil
}

var dateRe = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)

// bindDates converts raw values to dates. Values are either D/M/Y dates
// (2- or 4-digit year, disambiguated against the current century) or
// relative offsets like "8h", "3d", "2w", "1m" resolved against the clock at
// bind time.
func (c *Comparer) bindDates(raw []string) []any {
	bound := make([]any, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if dateRe.MatchString(v) {
			if d, ok := c.parseDate(v); ok {
				bound = append(bound, d)
			}
			continue
		}
		if d, ok := c.parseRelative(v); ok {
			bound = append(bound, d)
		}
	}
	return bound
}

func (c *Comparer) parseDate(v string) (time.Time, bool) {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	if year < 100 { // qualify a 2-digit year against the current century
		century := c.now().Year() / 100 * 100
		if year > c.now().Year()%100 {
			century -= 100
		}
		year += century
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

var (
	relDigitsRe = regexp.MustCompile(`\d+`)
	relUnitRe   = regexp.MustCompile(`\D+`)
)

func (c *Comparer) parseRelative(v string) (time.Time, bool) {
	digits := relDigitsRe.FindString(v)
	unit := relUnitRe.FindString(v)
	if digits == "" || unit == "" {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return time.Time{}, false
	}

	now := c.now()
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "h":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "d":
		return now.AddDate(0, 0, -n), true
	case "w":
		return now.AddDate(0, 0, -7*n), true
	case "m":
		return now.AddDate(0, -n, 0), true
	}
	return time.Time{}, false
}

// truncateDates strips the time of day from both sides whenever either side
// is a date, so date and datetime values compare at date granularity.
func truncateDates(actual any, expected []any) (any, []any) {
	_, actualIsTime := actual.(time.Time)
	expectedHasTime := false
	for _, e := range expected {
		if _, ok := e.(time.Time); ok {
			expectedHasTime = true
			break
		}
	}
	if !actualIsTime && !expectedHasTime {
		return actual, expected
	}

	if t, ok := actual.(time.Time); ok {
		actual = dateOnly(t)
	}
	out := make([]any, len(expected))
	for i, e := range expected {
		if t, ok := e.(time.Time); ok {
			out[i] = dateOnly(t)
		} else {
			out[i] = e
		}
	}
	return actual, out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// valueList normalises a field value to a list of expected values for
// reference comparisons.
func valueList(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}
