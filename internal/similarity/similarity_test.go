package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plagiarism_detection/internal/nlp"
	"plagiarism_detection/internal/segment"
)

func sentences(texts ...string) []segment.Sentence {
	out := make([]segment.Sentence, len(texts))
	for i, t := range texts {
		out[i] = segment.Sentence{Index: i, Text: t}
	}
	return out
}

func countHits(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Hits)
	}
	return n
}

func Test_Cosine_ZeroVector(t *testing.T) {
	v := Fit([]string{"alfa beta"})
	assert.Equal(t, 0.0, Cosine(v.Transform(""), v.Transform("alfa beta")))
}

func Test_Vectorizer_IgnoresSingleCharTerms(t *testing.T) {
	v := Fit([]string{"a bb ccc ñu"})
	assert.Equal(t, 3, v.Size())
	assert.Len(t, v.Transform("a bb zz"), 1)
}

func Test_Compare_ExactBoundariesExcluded(t *testing.T) {
	subject := sentences("aa")
	reference := sentences("aa aa aa bb bb bb bb")

	assert.Empty(t, Compare(subject, reference, Params{Threshold: 0.6, Ceiling: 1}))
	assert.Empty(t, Compare(subject, reference, Params{Threshold: 0, Ceiling: 0.6}))

	groups := Compare(subject, reference, Params{Threshold: 0.59, Ceiling: 0.61})
	require.Len(t, groups, 1)
	assert.InDelta(t, 0.6, groups[0].Hits[0].Score, 1e-12)
}

func Test_Compare_VerbatimExcluded(t *testing.T) {
	subject := sentences("perro grande corre parque")
	reference := sentences("perro grande corre parque")

	assert.Empty(t, Compare(subject, reference, Params{Threshold: DefaultThreshold, Ceiling: DBCeiling}))
	assert.Empty(t, Compare(subject, reference, Params{Threshold: DefaultThreshold, Ceiling: WebCeiling}))
}

func Test_Compare_SharedPhrase(t *testing.T) {
	n, err := nlp.NewNormalizer("spanish")
	require.NoError(t, err)
	subject := []segment.Sentence{{Index: 4, Text: strings.Join(n.Tokens("El perro corre en el parque."), " ")}}
	reference := []segment.Sentence{{Index: 7, Text: strings.Join(n.Tokens("El perro corre en el parque todos los días."), " ")}}

	groups := Compare(subject, reference, Params{Threshold: DefaultThreshold, Ceiling: DBCeiling})

	require.Len(t, groups, 1)
	assert.Equal(t, 4, groups[0].SubjectIndex)
	require.Len(t, groups[0].Hits, 1)
	assert.Equal(t, 7, groups[0].Hits[0].RefIndex)
	assert.Greater(t, groups[0].Hits[0].Score, DefaultThreshold)
	assert.Less(t, groups[0].Hits[0].Score, DBCeiling)
}

func Test_Compare_Monotonic(t *testing.T) {
	subject := sentences(
		"economia regional crecio año fiscal",
		"estudiantes entregaron trabajos finales tarde",
		"ciudad arboles altos calles anchas",
	)
	reference := sentences(
		"economia regional crecio ultimo año",
		"economia nacional cayo año fiscal",
		"estudiantes entregaron trabajos tarde lluviosa",
		"ciudad calles anchas",
	)

	prev := countHits(Compare(subject, reference, Params{Threshold: 0, Ceiling: 1}))
	for _, th := range []float64{0.2, 0.4, 0.6, 0.8, 0.9} {
		got := countHits(Compare(subject, reference, Params{Threshold: th, Ceiling: 1}))
		assert.LessOrEqual(t, got, prev, "threshold %v", th)
		prev = got
	}

	prev = countHits(Compare(subject, reference, Params{Threshold: 0, Ceiling: 1}))
	for _, c := range []float64{0.95, 0.8, 0.6, 0.4} {
		got := countHits(Compare(subject, reference, Params{Threshold: 0, Ceiling: c}))
		assert.LessOrEqual(t, got, prev, "ceiling %v", c)
		prev = got
	}
}

func Test_Compare_HitsInReferenceOrder(t *testing.T) {
	subject := sentences("alfa beta gamma delta")
	reference := sentences("alfa beta gamma epsilon", "nada comun aqui", "alfa beta gamma zeta")

	groups := Compare(subject, reference, Params{Threshold: 0.5, Ceiling: DBCeiling})

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Hits, 2)
	assert.Equal(t, 0, groups[0].Hits[0].RefIndex)
	assert.Equal(t, 2, groups[0].Hits[1].RefIndex)
}

func Test_Params_Validate(t *testing.T) {
	assert.NoError(t, Params{Threshold: 0.7, Ceiling: DBCeiling}.Validate())
	assert.Error(t, Params{Threshold: 1.2, Ceiling: DBCeiling}.Validate())
	assert.Error(t, Params{Threshold: 0.7, Ceiling: 0}.Validate())
}
