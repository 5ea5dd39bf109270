package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates to maxLen
// bytes. Used on free-text query params like search and category
// filters before they reach the repositories.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
