package prometheus

import (
	"strconv"
	"strings"
)

// ValidateLimit coerces the loosely typed "limit" tool argument into an
// optional integer.
//
// MCP clients deliver the parameter as an absent value, a JSON number, or a
// string. The accepted string grammar is an optional leading '+' or '-'
// followed by decimal digits, with surrounding whitespace tolerated; float
// forms, empty strings, and anything with extraneous characters are rejected.
// Integers pass through unchanged, including zero and negatives, with no
// bounds check. A nil result means no limit was requested.
//
// The function is pure: it never mutates its input and is deterministic.
func ValidateLimit(value interface{}) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return &v, nil
	case int64:
		n := int(v)
		return &n, nil
	case float64:
		// JSON numbers decode as float64. Only integral values are valid.
		n := int(v)
		if float64(n) == v {
			return &n, nil
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return &n, nil
		}
	}
	return nil, newError(ErrInvalidParameter, nil,
		"invalid limit value '%v': must be a valid integer", value)
}
