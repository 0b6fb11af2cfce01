package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// SplitTokens turns a comma-separated list into trimmed, lowercased,
// de-duplicated tokens. Empty segments are dropped.
func SplitTokens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0)

	for _, part := range strings.Split(raw, ",") {
		token := trimAndLower(part)

		if token == "" {
			continue
		}

		if seen[token] {
			continue
		}

		seen[token] = true
		result = append(result, token)
	}

	return result
}
