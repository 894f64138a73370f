package noise

import "strings"

// similarityRatio computes a normalized edit-similarity ratio in [0, 1]
// between two strings, case-insensitively: twice the number of characters
// in recursively matched longest common substrings, divided by the total
// length of both inputs. Identical strings score 1.0.
func similarityRatio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingChars(a, b)) / float64(total)
}

// matchingChars counts characters covered by the longest common substring
// of a and b, plus (recursively) the matches on either side of it.
func matchingChars(a, b string) int {
	ai, bj, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bj]) +
		matchingChars(a[ai+size:], b[bj+size:])
}

// longestMatch finds the longest common substring, returning its start in
// a, its start in b, and its length. O(len(a)*len(b)) time.
func longestMatch(a, b string) (ai, bj, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] holds the match length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		// Iterate j descending so lengths[j-1] is still the previous row.
		for j := len(b); j >= 1; j-- {
			if a[i-1] != b[j-1] {
				lengths[j] = 0
				continue
			}
			lengths[j] = lengths[j-1] + 1
			if lengths[j] > size {
				size = lengths[j]
				ai = i - size
				bj = j - size
			}
		}
	}
	return ai, bj, size
}
