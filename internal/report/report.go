package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Match is one reference sentence that resembles a subject sentence. Website
// is set for web references; File and Authors for archive and local files.
type Match struct {
	Sentence string
	Score    float64
	File     string
	Authors  []string
	Website  string
}

func (m Match) FromWebsite() bool { return m.Website != "" }

type fileMatch struct {
	Score    float64  `json:"plagiarism_score"`
	Authors  []string `json:"plagiarized_author"`
	File     string   `json:"plagiarized_file"`
	Sentence string   `json:"plagiarized_sentence"`
}

type webMatch struct {
	Score    float64 `json:"plagiarism_score"`
	Sentence string  `json:"plagiarized_sentence"`
	Website  string  `json:"plagiarized_website"`
}

func (m Match) MarshalJSON() ([]byte, error) {
	if m.FromWebsite() {
		return marshal(webMatch{Score: m.Score, Sentence: m.Sentence, Website: m.Website})
	}
	return marshal(fileMatch{Score: m.Score, Authors: m.Authors, File: m.File, Sentence: m.Sentence})
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var raw struct {
		Score    float64  `json:"plagiarism_score"`
		Authors  []string `json:"plagiarized_author"`
		File     string   `json:"plagiarized_file"`
		Sentence string   `json:"plagiarized_sentence"`
		Website  string   `json:"plagiarized_website"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Match{Sentence: raw.Sentence, Score: raw.Score, File: raw.File, Authors: raw.Authors, Website: raw.Website}
	return nil
}

type Entry struct {
	Index   int     `json:"n_sentence"`
	Matches []Match `json:"plagiarism"`
}

// Report maps the raw text of each flagged subject sentence to its matches.
// It only grows and is not safe for concurrent mutation.
type Report map[string]*Entry

func New() Report { return make(Report) }

// Append adds matches under key, creating the entry with index when the key
// is new. An existing entry keeps its index.
func (r Report) Append(key string, index int, matches ...Match) {
	e, ok := r[key]
	if !ok {
		e = &Entry{Index: index, Matches: []Match{}}
		r[key] = e
	}
	e.Matches = append(e.Matches, matches...)
}

// Merge appends every entry of other into r.
func (r Report) Merge(other Report) {
	for key, e := range other {
		r.Append(key, e.Index, e.Matches...)
	}
}

func (r Report) Len() int { return len(r) }

// MatchCount is the total number of matches across entries.
func (r Report) MatchCount() int {
	n := 0
	for _, e := range r {
		n += len(e.Matches)
	}
	return n
}

// Encode writes r as indented JSON with sorted keys.
func (r Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if r == nil {
		r = Report{}
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func (r Report) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteFile replaces path with the encoded report.
func (r Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func ReadFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	r := New()
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
