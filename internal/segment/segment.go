// Package segment turns OCR passage text into an ordered list of sentences.
package segment

import (
	"regexp"
	"strings"
	"unicode"
)

// ParagraphBreak is how a run of two or more line breaks is rendered after
// normalization.
const ParagraphBreak = "\n\n"

var (
	lineBreakReplacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u2028", "\n",
		"\u2029", "\n",
		"\u0085", "\n",
	)

	// two or more breaks, tolerating blank lines that only hold spaces or tabs
	paragraphSplit  = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	spaceBeforeMark = regexp.MustCompile(`\s+([.,!?;:])`)
)

// NormalizeLineBreaks unifies line-break variants, keeps paragraph boundaries
// as a double break and folds single breaks and space runs into one space.
// OCR wraps lines mid-sentence, so a single break never ends a sentence.
func NormalizeLineBreaks(raw string) string {
	if raw == "" {
		return ""
	}
	unified := lineBreakReplacer.Replace(raw)

	var paragraphs []string
	for _, p := range paragraphSplit.Split(unified, -1) {
		p = strings.TrimSpace(whitespaceRun.ReplaceAllString(p, " "))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, ParagraphBreak)
}

// Split normalizes passage text and splits it into sentences. A sentence
// ends at a run of '.', '!' or '?' followed by whitespace or the end of the
// text; the run stays with the sentence it closes. Text without any boundary
// comes back as a single sentence. Empty text yields an empty list.
func Split(passage string) []string {
	return splitSentences(NormalizeLineBreaks(passage))
}

// Clean collapses interior whitespace, removes whitespace in front of
// punctuation and trims the result.
func Clean(sentence string) string {
	s := whitespaceRun.ReplaceAllString(sentence, " ")
	s = spaceBeforeMark.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); {
		if !isTerminal(runes[i]) {
			i++
			continue
		}

		j := i
		for j < len(runes) && isTerminal(runes[j]) {
			j++
		}
		if j == len(runes) || unicode.IsSpace(runes[j]) {
			sentences = appendCleaned(sentences, string(runes[start:j]))
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			start = j
		}
		i = j
	}

	if start < len(runes) {
		sentences = appendCleaned(sentences, string(runes[start:]))
	}
	return sentences
}

func appendCleaned(sentences []string, s string) []string {
	if cleaned := Clean(s); cleaned != "" {
		return append(sentences, cleaned)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
