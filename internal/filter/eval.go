package filter

import (
	"fmt"
	"strings"
	"time"
)

// eval dispatches the operator against an actual value and the bound
// expected values. Multi-valued actuals (genres, comments) pass when any
// element passes; the negated operators negate the whole-list result.
func (c *Comparer) eval(actual any, expected []any) bool {
	switch c.Op {
	case OpIsNot:
		return !c.evalPositive(OpIs, actual, expected)
	case OpIsNotIn:
		return !c.evalPositive(OpIsIn, actual, expected)
	case OpNotInRange:
		return !c.evalPositive(OpInRange, actual, expected)
	case OpDoesNotContain:
		return !c.evalPositive(OpContains, actual, expected)
	case OpIsNull:
		return actual == nil || actual == false
	case OpIsNotNull:
		return !(actual == nil || actual == false)
	default:
		return c.evalPositive(c.Op, actual, expected)
	}
}

func (c *Comparer) evalPositive(op Operator, actual any, expected []any) bool {
	if list, ok := actual.([]string); ok {
		for _, v := range list {
			if c.evalScalar(op, v, expected) {
				return true
			}
		}
		return false
	}
	return c.evalScalar(op, actual, expected)
}

func (c *Comparer) evalScalar(op Operator, actual any, expected []any) bool {
	if actual == nil {
		return false
	}
	if len(expected) == 0 && op != OpMatchesRegex && op != OpMatchesRegexIgnoreCase {
		return false
	}

	switch op {
	case OpIs:
		return equalValues(actual, expected[0])
	case OpIsAfter:
		cmp, ok := compareValues(actual, expected[0])
		return ok && cmp > 0
	case OpIsBefore:
		cmp, ok := compareValues(actual, expected[0])
		return ok && cmp < 0
	case OpIsIn:
		for _, e := range expected {
			if equalValues(actual, e) {
				return true
			}
		}
		return false
	case OpInRange:
		if len(expected) < 2 {
			return false
		}
		lo, okLo := compareValues(actual, expected[0])
		hi, okHi := compareValues(actual, expected[1])
		return okLo && okHi && lo > 0 && hi < 0
	case OpStartsWith:
		return strings.HasPrefix(asString(actual), asString(expected[0]))
	case OpEndsWith:
		return strings.HasSuffix(asString(actual), asString(expected[0]))
	case OpContains:
		return strings.Contains(asString(actual), asString(expected[0]))
	case OpMatchesRegex, OpMatchesRegexIgnoreCase:
		return c.re != nil && c.re.MatchString(asString(actual))
	}
	return false
}

func equalValues(a, b any) bool {
	if cmp, ok := compareValues(a, b); ok {
		return cmp == 0
	}
	return a == b
}

// compareValues orders two values of matching kind. The bool result is false
// when the values cannot be ordered against each other.
func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case int:
		if bv, ok := asFloat(b); ok {
			return compareFloat(float64(av), bv), true
		}
	case int64:
		if bv, ok := asFloat(b); ok {
			return compareFloat(float64(av), bv), true
		}
	case float64:
		if bv, ok := asFloat(b); ok {
			return compareFloat(av, bv), true
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1, true
			case av.After(bv):
				return 1, true
			}
			return 0, true
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), true
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0, true
			}
			return -1, true
		}
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch vv := v.(type) {
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case float64:
		return vv, true
	}
	return 0, false
}

func asString(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	default:
		return fmt.Sprint(vv)
	}
}
