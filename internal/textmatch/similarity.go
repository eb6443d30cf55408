// Package textmatch implements layered text replacement with fuzzy fallback.
//
// Information Hiding:
// - Matching strategy order hidden behind Replace
// - Similarity scoring internals hidden
// - Line-ending normalization handled internally
package textmatch

// Ratio computes a similarity score between two strings in [0, 1].
// The score is 2*M/T where M is the total length of matching blocks
// and T is the combined length of both strings. Two empty strings
// are considered identical.
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matches := matchingBlocks(a, b)
	return 2.0 * float64(matches) / float64(total)
}

// matchingBlocks returns the total length of non-overlapping matching
// blocks found by recursively locating the longest common substring
// and matching the regions to its left and right.
func matchingBlocks(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aStart, bStart, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}

	total := size
	total += matchingBlocks(a[:aStart], b[:bStart])
	total += matchingBlocks(a[aStart+size:], b[bStart+size:])
	return total
}

// longestMatch finds the longest common substring of a and b.
// Returns the start offsets in a and b, and the match length.
// Uses the rolling-row dynamic programming formulation: j2len maps
// end positions in b to run lengths for the current position in a.
func longestMatch(a, b string) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0

	j2len := make(map[int]int)
	for i := 0; i < len(a); i++ {
		newJ2len := make(map[int]int)
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestA = i - k + 1
				bestB = j - k + 1
				bestSize = k
			}
		}
		j2len = newJ2len
	}

	return bestA, bestB, bestSize
}
