// Package validation parses and reports values drawn from a closed set.
package validation

import (
	"fmt"
	"slices"
	"strings"

	internalstrings "github.com/amonks/todosync/internal/strings"
)

// ParseValue normalizes raw (trimmed, lowercased) and returns it if it is
// one of valid. Otherwise the error wraps base and lists the valid values.
func ParseValue[T ~string](base error, raw string, valid []T) (T, error) {
	value := T(internalstrings.NormalizeLowerTrimSpace(raw))
	if slices.Contains(valid, value) {
		return value, nil
	}
	var zero T
	return zero, FormatInvalidValueError(base, T(raw), valid)
}

// FormatValidValues joins values for an error message.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}

// FormatInvalidValueError wraps base with the rejected value and the
// accepted ones.
func FormatInvalidValueError[T ~string](base error, value T, valid []T) error {
	return fmt.Errorf("%w: %q (valid: %s)", base, string(value), FormatValidValues(valid))
}
