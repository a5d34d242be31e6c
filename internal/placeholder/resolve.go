// Package placeholder resolves {{dotted.path}} tokens in template text
// against a nested input data tree.
package placeholder

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
)

// tokenPattern matches non-overlapping {{...}} tokens whose body contains
// no closing brace.
var tokenPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolve replaces every {{path}} token in text with the value found by a
// dotted-path walk of data. Tokens whose path cannot be resolved, or whose
// value is null or non-scalar, are left in place verbatim: partial data must
// never abort generation, and an unresolved token stays visible for a human
// reviewer to catch.
//
// Pure function of its inputs; safe to call concurrently.
func Resolve(text string, data docmodel.InputData) string {
	if text == "" || !strings.Contains(text, "{{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		path := token[2 : len(token)-2]
		value, ok := lookup(data, path)
		if !ok {
			return token
		}
		s, ok := stringify(value)
		if !ok {
			return token
		}
		return s
	})
}

// lookup walks data following each dot-separated segment as a mapping key.
// The walk fails if a segment is absent or an intermediate node is not a
// mapping.
func lookup(data docmodel.InputData, path string) (any, bool) {
	var current any = map[string]any(data)
	for _, key := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// stringify renders a scalar value in its natural textual form. Integral
// floats (the shape encoding/json gives JSON integers) print without a
// decimal point. Null and non-scalar values report failure so the caller
// keeps the literal token.
func stringify(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), true
		}
		// Plain decimal notation; scientific notation has no place in a
		// contract amount.
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}
