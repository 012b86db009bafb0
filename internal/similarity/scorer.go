package similarity

import (
	"fmt"

	"plagiarism_detection/internal/segment"
)

// Upper bounds on a match score. Scores at or above the ceiling are treated
// as verbatim copies of the subject itself and ignored.
const (
	DBCeiling  = 0.95
	WebCeiling = 0.99
)

const DefaultThreshold = 0.7

// Params bounds the scores accepted as matches: Threshold < score < Ceiling.
type Params struct {
	Threshold float64
	Ceiling   float64
}

func (p Params) Validate() error {
	if p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0,1]", p.Threshold)
	}
	if p.Ceiling <= 0 || p.Ceiling > 1 {
		return fmt.Errorf("ceiling %v out of range (0,1]", p.Ceiling)
	}
	return nil
}

// Accepts reports whether score lies strictly between the bounds.
func (p Params) Accepts(score float64) bool {
	return score > p.Threshold && score < p.Ceiling
}

type Hit struct {
	RefIndex int
	Score    float64
}

// Group is every accepted hit for one subject sentence against one reference,
// in reference sentence order.
type Group struct {
	SubjectIndex int
	Hits         []Hit
}

// Compare scores every processed subject sentence against every processed
// reference sentence using a vectorizer fit on both corpora.
func Compare(subject, reference []segment.Sentence, p Params) []Group {
	if len(subject) == 0 || len(reference) == 0 {
		return nil
	}
	v := Fit(texts(reference), texts(subject))
	refVecs := make([]Vector, len(reference))
	for i, s := range reference {
		refVecs[i] = v.Transform(s.Text)
	}

	var groups []Group
	for _, s := range subject {
		vec := v.Transform(s.Text)
		var hits []Hit
		for i, r := range reference {
			score := Cosine(refVecs[i], vec)
			if p.Accepts(score) {
				hits = append(hits, Hit{RefIndex: r.Index, Score: score})
			}
		}
		if len(hits) > 0 {
			groups = append(groups, Group{SubjectIndex: s.Index, Hits: hits})
		}
	}
	return groups
}

func texts(sentences []segment.Sentence) []string {
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.Text
	}
	return out
}
