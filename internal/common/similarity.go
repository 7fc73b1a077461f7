// similarity.go - Edit distance helpers

package common

// LevenshteinDistance computes the edit distance between two strings (rune based)
func LevenshteinDistance(s1, s2 string) int {
	a := []rune(s1)
	b := []rune(s2)

	// Two rolling rows instead of the full matrix
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// Closest returns the candidate with the smallest edit distance to s, and that distance.
// Ties keep the earlier candidate. Empty candidates yield ("", -1).
func Closest(s string, candidates []string) (string, int) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := LevenshteinDistance(s, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}
