package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_]+`)

// Vectorizer is a bag-of-words term counter over a fixed vocabulary.
type Vectorizer struct {
	vocabulary map[string]int
}

// Fit builds the vocabulary from every text in the given corpora.
func Fit(corpora ...[]string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, corpus := range corpora {
		for _, text := range corpus {
			for _, term := range terms(text) {
				seen[term] = struct{}{}
			}
		}
	}
	sorted := make([]string, 0, len(seen))
	for term := range seen {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)
	vocab := make(map[string]int, len(sorted))
	for i, term := range sorted {
		vocab[term] = i
	}
	return &Vectorizer{vocabulary: vocab}
}

func (v *Vectorizer) Size() int { return len(v.vocabulary) }

// Transform counts the vocabulary terms of text. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	vec := make(Vector)
	for _, term := range terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			vec[idx]++
		}
	}
	return vec
}

// Vector is a sparse term count vector keyed by vocabulary index.
type Vector map[int]float64

func (v Vector) norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty.
func Cosine(a, b Vector) float64 {
	na, nb := a.norm(), b.norm()
	if na == 0 || nb == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	dot := 0.0
	for idx, x := range a {
		dot += x * b[idx]
	}
	return dot / (na * nb)
}

func terms(text string) []string {
	return termPattern.FindAllString(strings.ToLower(text), -1)
}
