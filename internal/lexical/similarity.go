package lexical

import "strings"

// WordSimilarity scores how alike two words are, in [0, 1].
//
// Identical words score 1. If one contains the other the score is 0.8.
// Otherwise it blends the Jaccard overlap of their character sets (0.7)
// with how close their lengths are (0.3). The function is symmetric.
func WordSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	ra, rb := []rune(a), []rune(b)
	setA := make(map[rune]struct{}, len(ra))
	for _, r := range ra {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{}, len(rb))
	for _, r := range rb {
		setB[r] = struct{}{}
	}
	inter := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	jaccard := float64(inter) / float64(union)

	la, lb := len(ra), len(rb)
	longest := max(la, lb)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	lengthCloseness := 1 - float64(diff)/float64(longest)

	return 0.7*jaccard + 0.3*lengthCloseness
}
