package detect

import (
	"plagiarism_detection/internal/document"
	"plagiarism_detection/internal/report"
	"plagiarism_detection/internal/similarity"
)

// compareInto scores subject against ref and appends every accepted match
// under the raw subject sentence.
func compareInto(r report.Report, subject, ref document.Document, p similarity.Params) {
	for _, g := range similarity.Compare(subject.Processed, ref.Processed, p) {
		matches := make([]report.Match, 0, len(g.Hits))
		for _, h := range g.Hits {
			m := report.Match{Sentence: ref.Corpus[h.RefIndex], Score: h.Score}
			if ref.Source == document.SourceWebsite {
				m.Website = ref.ID
			} else {
				m.File = ref.ID
				m.Authors = ref.Authors
			}
			matches = append(matches, m)
		}
		r.Append(subject.Corpus[g.SubjectIndex], g.SubjectIndex, matches...)
	}
}
