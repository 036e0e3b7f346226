// Package lexical holds the pure text helpers shared by the analysis stages:
// tokenization, stop-word filtering, frequency counting and word similarity.
//
// Every function here is deterministic and free of I/O.
package lexical

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// letterRun matches maximal runs of Unicode letters, which covers the
// Latin-extended alphabets (Turkish, German, French...) notes are written in.
var letterRun = regexp.MustCompile(`\p{L}+`)

// Normalize returns text in NFC form, lowercased with Unicode case rules.
// A fresh Caser is built per call: cases.Caser is stateful and not safe to share.
func Normalize(text string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(text))
}

// Tokenize returns the lowercase letter runs of text whose length (in runes)
// is at least minLen, in encounter order. Duplicates are kept.
func Tokenize(text string, minLen int) []string {
	runs := letterRun.FindAllString(Normalize(text), -1)
	if minLen <= 1 {
		return runs
	}
	out := runs[:0]
	for _, r := range runs {
		if utf8.RuneCountInString(r) >= minLen {
			out = append(out, r)
		}
	}
	return out
}

// Unique returns tokens with duplicates removed, keeping first occurrences.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Words splits text on whitespace after normalization. Unlike Tokenize it
// keeps punctuation attached to the word.
func Words(text string) []string {
	return strings.Fields(Normalize(text))
}

// Sentences splits text on periods and returns the trimmed, non-empty parts.
func Sentences(text string) []string {
	parts := strings.Split(text, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the length of s in characters (runes), not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
