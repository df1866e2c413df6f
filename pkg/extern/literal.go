package extern

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RenderLiteral reconstructs a JS literal expression's source text from a
// JSON value, per §4.3: strings → string literal, numbers → numeric literal
// (preserving integer vs. float form when representable), booleans and null
// → their keywords, arrays/objects → array/object literals built the same
// way, recursively.
func RenderLiteral(value json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(value, &v); err != nil {
		return "", fmt.Errorf("extern: const value is not valid JSON: %w", err)
	}
	return renderValue(v), nil
}

func renderValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return renderNumber(val)
	case string:
		return renderString(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = renderValue(elem)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case map[string]interface{}:
		parts := make([]string, 0, len(val))
		for _, k := range sortedKeys(val) {
			parts = append(parts, renderPropertyKey(k)+":"+renderValue(val[k]))
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return "undefined"
	}
}

// renderNumber preserves integer textual form (no trailing ".0") when the
// float64 represents a whole number exactly, matching how the literal would
// have been written by hand.
func renderNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e21 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func renderString(s string) string {
	quoted := strconv.Quote(s)
	return "\"" + quoted[1:len(quoted)-1] + "\""
}

var jsIdentRE = func() func(string) bool {
	return func(s string) bool {
		if s == "" {
			return false
		}
		for i, r := range s {
			isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
			isDigit := r >= '0' && r <= '9'
			if i == 0 && !isLetter {
				return false
			}
			if i > 0 && !isLetter && !isDigit {
				return false
			}
		}
		return true
	}
}()

func renderPropertyKey(k string) string {
	if jsIdentRE(k) {
		return k
	}
	return renderString(k)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Object literal key order must be deterministic (invariant 9); JSON
	// object key order isn't preserved by encoding/json's map decode, so
	// fall back to lexical order.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
