package segment

import (
	"regexp"
	"strings"

	"plagiarism_detection/internal/nlp"
)

// MinTokens is the exclusive lower bound on content tokens for a sentence to
// enter the processed corpus.
const MinTokens = 3

type Sentence struct {
	Index int
	Text  string
}

var (
	leadingBreak   = regexp.MustCompile(`\s*\n`)
	wrappedLine    = regexp.MustCompile(`([\p{L}\p{N}_]\s)\n\s([\p{L}\p{N}_])`)
	dotBeforeLower = regexp.MustCompile(`([a-zA-Z]\s?)\.(\s?[a-z])`)
	dotBeforeParen = regexp.MustCompile(`([a-zA-Z]\s?)\.(\s?\))`)
	initialDot     = regexp.MustCompile(`(\s[A-Z]\s?)\.(\s?[a-zA-Z])`)
)

// CorrectParagraphs removes the first line break and rejoins lines that were
// wrapped in the middle of a phrase.
func CorrectParagraphs(text string) string {
	if loc := leadingBreak.FindStringIndex(text); loc != nil {
		text = text[:loc[0]] + text[loc[1]:]
	}
	return wrappedLine.ReplaceAllString(text, "${1}${2}")
}

// CorrectDots drops periods that belong to abbreviations and initials so only
// sentence-ending dots remain.
func CorrectDots(text string) string {
	text = dotBeforeLower.ReplaceAllString(text, "${1} ${2}")
	text = dotBeforeParen.ReplaceAllString(text, "${1} ${2}")
	text = initialDot.ReplaceAllString(text, "${1} ${2}")
	return strings.ReplaceAll(text, "\n", " ")
}

// Split returns the raw sentences of text. A whitespace-only remainder after
// the last boundary is not a sentence.
func Split(text string) []string {
	parts := strings.Split(CorrectDots(text), ".")
	if n := len(parts); strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}

// Process normalizes every raw sentence and keeps those with more than
// MinTokens tokens, tagged with their position in corpus.
func Process(corpus []string, n *nlp.Normalizer) []Sentence {
	out := make([]Sentence, 0, len(corpus))
	for i, raw := range corpus {
		tokens := n.Tokens(raw)
		if len(tokens) <= MinTokens {
			continue
		}
		out = append(out, Sentence{Index: i, Text: strings.Join(tokens, " ")})
	}
	return out
}

// Segment runs Split and Process over a document body.
func Segment(text string, n *nlp.Normalizer) ([]string, []Sentence) {
	corpus := Split(text)
	return corpus, Process(corpus, n)
}
