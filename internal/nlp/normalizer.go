package nlp

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

//go:embed stopwords.json
var stopwordsJSON []byte

const DefaultLanguage = "spanish"

var (
	hyphenJoin   = regexp.MustCompile(`([a-zA-Z])-([a-zA-Z])`)
	symbolChars  = regexp.MustCompile(`●|•|-|”|“|°|,|/|:|\?|¿|!|¡`)
	bracketChars = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ")
	digitChars   = regexp.MustCompile(`\p{Nd}`)
	spaceRuns    = regexp.MustCompile(`\s+`)
	wordToken    = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
)

// Clean strips formatting artifacts from a sentence or a whole text: hyphenated
// joins, bullets and quotes, brackets, digits and repeated whitespace.
func Clean(s string) string {
	s = hyphenJoin.ReplaceAllString(s, "${1}${2}")
	s = strings.ReplaceAll(s, "\n", " ")
	s = symbolChars.ReplaceAllString(s, " ")
	s = bracketChars.Replace(s)
	s = digitChars.ReplaceAllString(s, " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalizer turns cleaned text into lowercase lemma tokens with stopwords,
// punctuation and single-character tokens removed.
type Normalizer struct {
	language  string
	stopwords map[string]struct{}
}

func NewNormalizer(language string) (*Normalizer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = DefaultLanguage
	}
	var lists map[string][]string
	if err := json.Unmarshal(stopwordsJSON, &lists); err != nil {
		return nil, fmt.Errorf("decode stopwords: %w", err)
	}
	words, ok := lists[language]
	if !ok {
		return nil, fmt.Errorf("no stopword list for language %q", language)
	}
	if _, err := snowball.Stem("probe", language, true); err != nil {
		return nil, fmt.Errorf("stemmer: %w", err)
	}
	stop := make(map[string]struct{}, len(words)*2)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		stop[w] = struct{}{}
		stop[StripAccents(w)] = struct{}{}
	}
	return &Normalizer{language: language, stopwords: stop}, nil
}

func (n *Normalizer) Language() string { return n.language }

// Tokens runs Clean over text and returns its content lemmas in order.
func (n *Normalizer) Tokens(text string) []string {
	raw := wordToken.FindAllString(Clean(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		lower := strings.ToLower(tok)
		if n.IsStopword(lower) {
			continue
		}
		out = append(out, n.lemma(lower))
	}
	return out
}

func (n *Normalizer) IsStopword(word string) bool {
	if _, ok := n.stopwords[word]; ok {
		return true
	}
	_, ok := n.stopwords[StripAccents(word)]
	return ok
}

func (n *Normalizer) lemma(word string) string {
	stem, err := snowball.Stem(word, n.language, true)
	if err != nil || stem == "" {
		return word
	}
	return stem
}
