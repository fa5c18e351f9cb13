// Package similarity scores how closely a spoken transcript matches the
// sentence the learner was asked to read.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// punctuation stripped before comparison, in addition to all whitespace
const punctuation = ".,!?\"'`~:;-()[]{}…·"

// Result is the similarity of two normalized strings.
type Result struct {
	Expected string
	Spoken   string
	Distance int
	Score    float64
}

// Normalize lowercases s and strips whitespace, zero-width characters and
// the punctuation set so that formatting differences between the OCR text
// and the STT output do not count as edits.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
		case isZeroWidth(r):
		case strings.ContainsRune(punctuation, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Length is the normalized length of s in runes.
func Length(s string) int {
	return utf8.RuneCountInString(Normalize(s))
}

// Distance is the Levenshtein distance between a and b, counted in runes.
func Distance(a, b string) int {
	return matchr.Levenshtein(a, b)
}

// Score normalizes both strings and returns 1 - distance/maxLen. Two empty
// strings score 1.
func Score(expected, spoken string) Result {
	return scoreNormalized(Normalize(expected), Normalize(spoken))
}

func scoreNormalized(expected, spoken string) Result {
	longest := max(utf8.RuneCountInString(expected), utf8.RuneCountInString(spoken), 1)
	d := Distance(expected, spoken)

	score := 1 - float64(d)/float64(longest)
	score = min(max(score, 0), 1)

	return Result{
		Expected: expected,
		Spoken:   spoken,
		Distance: d,
		Score:    score,
	}
}

// PrefixContained reports whether expected contains the first n runes of
// spoken. Both arguments must already be normalized. n <= 0 disables the
// check.
func PrefixContained(expected, spoken string, n int) bool {
	if n <= 0 || spoken == "" {
		return false
	}
	runes := []rune(spoken)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.Contains(expected, string(runes))
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	}
	return false
}
