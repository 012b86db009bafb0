package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"

	"plagiarism_detection/internal/document"
	"plagiarism_detection/internal/nlp"
)

var ErrUnsupported = errors.New("unsupported file type")

// Extensions lists the file types Parse understands.
var Extensions = []string{".doc", ".docx", ".odt", ".pdf", ".pptx", ".txt"}

var (
	inlineLink = regexp.MustCompile(`https?://\S+`)
	lineBreaks = regexp.MustCompile(`(\s*\n\s*)+`)
	invisibles = strings.NewReplacer("\u200b", " ", "\u00ad", " ", "\u00a0", " ", "\t", " ")
)

type Parsed struct {
	Title      string
	SourcePath string
	Size       int64
	Text       string
	Citations  []string
	Headers    []string
	// TableAuthors holds names listed under an author column of a table.
	TableAuthors []string
}

// Document converts the parsed file into an unprepared subject or reference.
func (p *Parsed) Document() document.Document {
	return document.Document{
		ID:        p.Title,
		Source:    document.SourceFile,
		Text:      p.Text,
		Authors:   p.TableAuthors,
		Citations: p.Citations,
		Headers:   p.Headers,
	}
}

func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func ParseFile(path string) (*Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	parsed, err := Parse(filepath.Base(path), raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	parsed.SourcePath = path
	return parsed, nil
}

// ParseDir parses every regular file of dir in name order. Hidden files are
// skipped; any other unsupported file fails the whole directory.
func ParseDir(dir string) ([]*Parsed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out []*Parsed
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p, err := ParseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Parse extracts text, citations and headers from the raw content of a file
// named name.
func Parse(name string, raw []byte) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(name))
	p := &Parsed{
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Size:  int64(len(raw)),
	}

	var (
		text string
		err  error
	)
	switch ext {
	case ".docx":
		var c *docxContent
		c, err = parseDOCX(raw)
		if err != nil {
			return nil, err
		}
		text = c.body()
		p.Headers = cleanAll(c.sections())
		p.TableAuthors = c.authorColumn()
		p.Citations = append(p.Citations, c.links...)
	case ".pdf":
		text, err = parsePDF(raw)
	case ".pptx":
		text, _, err = docconv.ConvertPptx(bytes.NewReader(raw))
	case ".doc":
		text, _, err = docconv.ConvertDoc(bytes.NewReader(raw))
	case ".odt":
		text, _, err = docconv.ConvertODT(bytes.NewReader(raw))
	case ".txt":
		text = string(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s text: %w", strings.TrimPrefix(ext, "."), err)
	}

	p.Citations = cleanCitations(append(p.Citations, inlineLink.FindAllString(text, -1)...))
	p.Text = cleanSpecialCharacters(text)
	return p, nil
}

func parsePDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

// cleanSpecialCharacters replaces invisible characters with spaces, collapses
// blank line runs into a single " \n " break and folds accents except ñ.
func cleanSpecialCharacters(text string) string {
	text = invisibles.Replace(text)
	text = lineBreaks.ReplaceAllString(text, " \n ")
	return nlp.FoldAccents(text)
}

func cleanAll(in []string) []string {
	var out []string
	for _, s := range in {
		s = cleanSpecialCharacters(s)
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// cleanCitations deduplicates links in first-seen order and drops mailto links.
func cleanCitations(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	var out []string
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(strings.ToLower(l), "mailto:") {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
