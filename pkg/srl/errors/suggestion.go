package errors

import (
	"fmt"
	"strings"
)

// SuggestName suggests a likely intended name when an unresolved reference
// is close to a defined one. It uses Levenshtein distance to find the
// nearest candidate.
func SuggestName(unknown string, defined []string) string {
	if len(defined) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, name := range defined {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable (< 5 edits)
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	if len(defined) > 5 {
		return fmt.Sprintf("Defined names include: %s, ...", strings.Join(defined[:5], ", "))
	}
	return fmt.Sprintf("Defined names: %s", strings.Join(defined, ", "))
}

// SuggestMissingKey suggests adding a required key.
func SuggestMissingKey(key string, exampleValue string) string {
	if exampleValue != "" {
		return fmt.Sprintf("Add '%s: %s' to the document", key, exampleValue)
	}
	return fmt.Sprintf("Add '%s' to the document", key)
}

// levenshteinDistance computes the Levenshtein distance between two
// strings. This is used for finding similar names for suggestions.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
