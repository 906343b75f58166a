package utils

import (
	"strings"
)

const maxSearchRunes = 100

// EscapeSQLWildcards escapes LIKE wildcard characters so user input matches literally.
// Queries using it must declare ESCAPE '\'.
func EscapeSQLWildcards(input string) string {
	// Escape backslash first (as it's the escape character)
	input = strings.ReplaceAll(input, "\\", "\\\\")
	input = strings.ReplaceAll(input, "%", "\\%")
	input = strings.ReplaceAll(input, "_", "\\_")
	return input
}

// SanitizeSearchQuery prepares a search string for a substring LIKE match.
func SanitizeSearchQuery(input string) string {
	input = strings.TrimSpace(input)
	if runes := []rune(input); len(runes) > maxSearchRunes {
		input = string(runes[:maxSearchRunes])
	}
	return "%" + EscapeSQLWildcards(input) + "%"
}

// DedupeIDs drops blanks and repeats while keeping first-seen order.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
