package document

import (
	"plagiarism_detection/internal/nlp"
	"plagiarism_detection/internal/segment"
	"plagiarism_detection/internal/topic"
)

type Source int

const (
	SourceFile Source = iota
	SourceWebsite
)

func (s Source) String() string {
	if s == SourceWebsite {
		return "website"
	}
	return "file"
}

// Document is a subject or reference text together with its segmented form.
// ID is the file name without extension, or the page URL for websites.
type Document struct {
	ID        string
	Source    Source
	Text      string
	Corpus    []string
	Processed []segment.Sentence
	Topic     []string
	Authors   []string
	Citations []string
	Headers   []string
}

func (d Document) Topics() []string { return d.Topic }

// Prepared reports whether the document already carries a segmented corpus.
func (d Document) Prepared() bool { return d.Corpus != nil }

// Prepare fills Topic, Corpus and Processed from Text. Files get paragraph
// correction first; pages are already flattened into phrases.
func (d *Document) Prepare(n *nlp.Normalizer) {
	text := d.Text
	if d.Source == SourceFile {
		text = segment.CorrectParagraphs(text)
	}
	d.Topic = topic.Extract(text, n, topic.Size)
	d.Corpus, d.Processed = segment.Segment(text, n)
}

// Dedupe keeps the first document for every ID.
func Dedupe(docs []Document) []Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
