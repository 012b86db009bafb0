package topic

import (
	"sort"

	"plagiarism_detection/internal/nlp"
)

// Size is the number of terms kept in a topic.
const Size = 10

// DefaultCloseness is the default minimum topic overlap, exclusive.
const DefaultCloseness = 3

// Topical is anything that carries a topic.
type Topical interface {
	Topics() []string
}

// Extract returns the n most frequent lemmas of text, most frequent first.
// Ties keep the order in which the lemmas first appear.
func Extract(text string, norm *nlp.Normalizer, n int) []string {
	if n <= 0 {
		return nil
	}
	tokens := norm.Tokens(text)
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Overlap counts the distinct terms shared by a and b.
func Overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(b))
	shared := 0
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			shared++
		}
	}
	return shared
}

// Filter keeps the references that share more than closeness topic terms with
// subject, preserving their order.
func Filter[T Topical](subject []string, refs []T, closeness int) []T {
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		if Overlap(subject, ref.Topics()) > closeness {
			out = append(out, ref)
		}
	}
	return out
}
