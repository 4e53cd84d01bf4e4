// Package filter evaluates typed field conditions against tracks. It
// implements the comparison half of MusicBee's smart playlist rule language:
// a condition names a field, an operator and a list of raw expected values,
// and is checked against either a track's own field value or the same field
// on a reference track.
package filter

import (
	"fmt"
	"strings"
)

// Operator is the closed set of comparison operators supported by the rule
// language.
type Operator int

const (
	OpIs Operator = iota
	OpIsNot
	OpIsAfter
	OpIsBefore
	OpIsIn
	OpIsNotIn
	OpInRange
	OpNotInRange
	OpIsNull
	OpIsNotNull
	OpStartsWith
	OpEndsWith
	OpContains
	OpDoesNotContain
	OpMatchesRegex
	OpMatchesRegexIgnoreCase
)

var operatorNames = map[Operator]string{
	OpIs:                     "Is",
	OpIsNot:                  "IsNot",
	OpIsAfter:                "IsAfter",
	OpIsBefore:               "IsBefore",
	OpIsIn:                   "IsIn",
	OpIsNotIn:                "IsNotIn",
	OpInRange:                "InRange",
	OpNotInRange:             "NotInRange",
	OpIsNull:                 "IsNull",
	OpIsNotNull:              "IsNotNull",
	OpStartsWith:             "StartsWith",
	OpEndsWith:               "EndsWith",
	OpContains:               "Contains",
	OpDoesNotContain:         "DoesNotContain",
	OpMatchesRegex:           "MatchesRegEx",
	OpMatchesRegexIgnoreCase: "MatchesRegExIgnoreCase",
}

// operatorTokens maps canonical folded operator tokens to operators,
// including the rule language's aliases.
var operatorTokens = map[string]Operator{
	"is":                     OpIs,
	"isnot":                  OpIsNot,
	"isafter":                OpIsAfter,
	"greaterthan":            OpIsAfter,
	"isinthelast":            OpIsAfter,
	"inthelast":              OpIsAfter,
	"isbefore":               OpIsBefore,
	"lessthan":               OpIsBefore,
	"isnotinthelast":         OpIsBefore,
	"notinthelast":           OpIsBefore,
	"isin":                   OpIsIn,
	"isnotin":                OpIsNotIn,
	"inrange":                OpInRange,
	"notinrange":             OpNotInRange,
	"isnull":                 OpIsNull,
	"isnotnull":              OpIsNotNull,
	"startswith":             OpStartsWith,
	"endswith":               OpEndsWith,
	"contains":               OpContains,
	"doesnotcontain":         OpDoesNotContain,
	"matchesregex":           OpMatchesRegex,
	"matchesregexignorecase": OpMatchesRegexIgnoreCase,
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("operator(%d)", int(o))
}

// ParseOperator resolves an operator name as found in rule files. Names are
// matched case-insensitively with all whitespace and underscores removed, so
// "Is Not", "is_not" and "IsNot" are equivalent.
func ParseOperator(name string) (Operator, error) {
	token := strings.ToLower(name)
	for _, cut := range []string{" ", "\t", "_", "-"} {
		token = strings.ReplaceAll(token, cut, "")
	}
	op, ok := operatorTokens[token]
	if !ok {
		return OpIs, fmt.Errorf("unrecognised operator name: %q", name)
	}
	return op, nil
}
