package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"plagiarism_detection/internal/document"
	"plagiarism_detection/internal/segment"
)

var ErrCorruptRecord = errors.New("corrupt archive record")

// RecordError reports a stored document whose columns cannot be decoded.
type RecordError struct {
	Identifier string
	Column     string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("archive record %q: column %s: %v", e.Identifier, e.Column, e.Err)
}

func (e *RecordError) Unwrap() []error { return []error{ErrCorruptRecord, e.Err} }

const upsertSQL = `
INSERT INTO documents(identifier, source, raw_text, citations, authors, headers, topic, corpus, processed_corpus)
VALUES(?,?,?,?,?,?,?,?,?)
ON CONFLICT(identifier) DO UPDATE SET
    source = excluded.source,
    raw_text = excluded.raw_text,
    citations = excluded.citations,
    authors = excluded.authors,
    headers = excluded.headers,
    topic = excluded.topic,
    corpus = excluded.corpus,
    processed_corpus = excluded.processed_corpus
`

// Save upserts prepared documents by identifier in one transaction.
func (s *Store) Save(ctx context.Context, docs ...document.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsertSQL))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		cols, err := encodeColumns(d)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.ID, err)
		}
		args := append([]any{d.ID, d.Source.String(), d.Text}, cols...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Load returns every archived document ordered by identifier. A row that
// fails to decode aborts the load with a *RecordError.
func (s *Store) Load(ctx context.Context) ([]document.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier, source, raw_text, citations, authors, headers, topic, corpus, processed_corpus FROM documents ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []document.Document
	for rows.Next() {
		var (
			d                           document.Document
			source                      string
			citations, authors, headers sql.NullString
			topic, corpus, processed    sql.NullString
		)
		if err := rows.Scan(&d.ID, &source, &d.Text, &citations, &authors, &headers, &topic, &corpus, &processed); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if source == document.SourceWebsite.String() {
			d.Source = document.SourceWebsite
		}
		if err := decodeColumns(&d, citations, authors, headers, topic, corpus, processed); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func encodeColumns(d document.Document) ([]any, error) {
	out := make([]any, 0, 6)
	for _, v := range []any{d.Citations, d.Authors, d.Headers, d.Topic, d.Corpus, encodeProcessed(d.Processed)} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, string(raw))
	}
	return out, nil
}

// encodeProcessed stores the processed corpus as [index, "text"] pairs.
func encodeProcessed(sentences []segment.Sentence) [][2]any {
	if sentences == nil {
		return nil
	}
	out := make([][2]any, len(sentences))
	for i, s := range sentences {
		out[i] = [2]any{s.Index, s.Text}
	}
	return out
}

func decodeColumns(d *document.Document, citations, authors, headers, topic, corpus, processed sql.NullString) error {
	lists := []struct {
		column string
		raw    sql.NullString
		dst    *[]string
	}{
		{"citations", citations, &d.Citations},
		{"authors", authors, &d.Authors},
		{"headers", headers, &d.Headers},
		{"topic", topic, &d.Topic},
		{"corpus", corpus, &d.Corpus},
	}
	for _, l := range lists {
		if !l.raw.Valid {
			continue
		}
		if err := json.Unmarshal([]byte(l.raw.String), l.dst); err != nil {
			return &RecordError{Identifier: d.ID, Column: l.column, Err: err}
		}
	}
	if !processed.Valid {
		return nil
	}
	sentences, err := decodeProcessed(processed.String, len(d.Corpus))
	if err != nil {
		return &RecordError{Identifier: d.ID, Column: "processed_corpus", Err: err}
	}
	d.Processed = sentences
	return nil
}

func decodeProcessed(raw string, corpusLen int) ([]segment.Sentence, error) {
	var pairs []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, err
	}
	if pairs == nil {
		return nil, nil
	}
	out := make([]segment.Sentence, 0, len(pairs))
	prev := -1
	for i, p := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(p, &pair); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("entry %d: expected [index, text], got %d values", i, len(pair))
		}
		var s segment.Sentence
		if err := json.Unmarshal(pair[0], &s.Index); err != nil {
			return nil, fmt.Errorf("entry %d index: %w", i, err)
		}
		if err := json.Unmarshal(pair[1], &s.Text); err != nil {
			return nil, fmt.Errorf("entry %d text: %w", i, err)
		}
		if s.Index <= prev || s.Index >= corpusLen {
			return nil, fmt.Errorf("entry %d: index %d out of order or beyond corpus of %d", i, s.Index, corpusLen)
		}
		prev = s.Index
		out = append(out, s)
	}
	return out, nil
}
