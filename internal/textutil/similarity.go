package textutil

import "math"

// Levenshtein computes the classic edit distance between a and b with a
// rolling single-row table kept on the shorter input, so memory stays
// O(min(len(a), len(b))).
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			tmp := row[j]
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			row[j] = min(row[j]+1, row[j-1]+1, prev+cost)
			prev = tmp
		}
	}
	return row[len(rb)]
}

// Similarity normalizes both inputs and maps their edit distance to an
// integer score in [0,100]. Symmetric; identical nonempty inputs score 100.
// When both normalize to empty the score is 0.
func Similarity(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	maxLen := max(len([]rune(na)), len([]rune(nb)))
	if maxLen == 0 {
		return 0
	}
	sim := 1 - float64(Levenshtein(na, nb))/float64(maxLen)
	score := int(math.Round(sim * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
