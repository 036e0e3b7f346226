package lexical

import "sort"

// WordCount is a token with its number of occurrences.
type WordCount struct {
	Word  string
	Count int
}

// FilterStopwords returns tokens that are not in stop.
func FilterStopwords(tokens []string, stop Set) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !stop.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// Frequency counts occurrences of each token.
func Frequency(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}

// RankByFrequency returns distinct tokens ordered by count descending.
// Tokens with equal counts keep the order of their first occurrence.
func RankByFrequency(tokens []string) []WordCount {
	freq := Frequency(tokens)
	ranked := make([]WordCount, 0, len(freq))
	for _, w := range Unique(tokens) {
		ranked = append(ranked, WordCount{Word: w, Count: freq[w]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}
