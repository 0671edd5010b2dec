// Package ids resolves the abbreviated server-assigned IDs typed at the CLI.
package ids

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch is returned when no ID starts with the given prefix.
	ErrNoMatch = errors.New("no matching id")

	// ErrAmbiguousPrefix is returned when more than one ID starts with the prefix.
	ErrAmbiguousPrefix = errors.New("ambiguous id prefix")
)

// UniquePrefixLengths returns the shortest unique prefix length for each ID,
// keyed by the lowercased ID.
func UniquePrefixLengths(ids []string) map[string]int {
	uniqueIDs := normalizeUnique(ids)

	lengths := make(map[string]int, len(uniqueIDs))
	for _, id := range uniqueIDs {
		lengths[id] = uniquePrefixLength(id, uniqueIDs)
	}

	return lengths
}

// Resolve returns the ID in ids that prefix identifies. An exact match wins
// even when it is also a prefix of another ID. The returned ID keeps its
// original case.
func Resolve(ids []string, prefix string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	if needle == "" {
		return "", fmt.Errorf("%w: empty id", ErrNoMatch)
	}

	var matches []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == needle {
			return id, nil
		}
		if strings.HasPrefix(lower, needle) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoMatch, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d ids", ErrAmbiguousPrefix, prefix, len(matches))
	}
}

func normalizeUnique(ids []string) []string {
	uniqueIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == "" || seen[idLower] {
			continue
		}
		seen[idLower] = true
		uniqueIDs = append(uniqueIDs, idLower)
	}
	return uniqueIDs
}

func uniquePrefixLength(id string, ids []string) int {
	for length := 1; length <= len(id); length++ {
		prefix := id[:length]
		unique := true
		for _, other := range ids {
			if other == id {
				continue
			}
			if strings.HasPrefix(other, prefix) {
				unique = false
				break
			}
		}
		if unique {
			return length
		}
	}

	return len(id)
}
