package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"plagiarism_detection/internal/author"
)

const hyperlinkRel = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

type docxContent struct {
	paragraphs []string
	tables     [][][]string
	headers    []string
	footers    []string
	links      []string
}

// body joins the body paragraphs with header and footer text removed.
func (c *docxContent) body() string {
	sections := c.sections()
	var b strings.Builder
	for _, p := range c.paragraphs {
		for _, s := range sections {
			if s != "" {
				p = strings.ReplaceAll(p, s, "")
			}
		}
		b.WriteString(p)
		b.WriteString(" \n ")
	}
	return b.String()
}

func (c *docxContent) sections() []string {
	return append(append([]string(nil), c.headers...), c.footers...)
}

// authorColumn returns the cells below every first-row cell that names an
// author column.
func (c *docxContent) authorColumn() []string {
	var names []string
	for _, table := range c.tables {
		if len(table) == 0 {
			continue
		}
		for col, cell := range table[0] {
			if !author.IsSynonym(cell) {
				continue
			}
			for _, row := range table[1:] {
				if col < len(row) {
					names = append(names, row[col])
				}
			}
		}
	}
	return names
}

func parseDOCX(raw []byte) (*docxContent, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open docx zip: %w", err)
	}

	xmlData, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if len(xmlData) == 0 {
		return nil, fmt.Errorf("word/document.xml not found")
	}

	c := &docxContent{}
	c.paragraphs, c.tables, err = decodeParts(xmlData)
	if err != nil {
		return nil, fmt.Errorf("decode document.xml: %w", err)
	}

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		var dst *[]string
		switch {
		case strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml"):
			dst = &c.headers
		case strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml"):
			dst = &c.footers
		default:
			continue
		}
		data, err := readZipEntry(zr, name)
		if err != nil {
			return nil, err
		}
		paras, _, err := decodeParts(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		*dst = appendUnique(*dst, paras...)
	}

	rels, err := readZipEntry(zr, "word/_rels/document.xml.rels")
	if err != nil {
		return nil, err
	}
	if len(rels) > 0 {
		c.links, err = decodeHyperlinks(rels)
		if err != nil {
			return nil, fmt.Errorf("decode document.xml.rels: %w", err)
		}
	}
	return c, nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

// decodeParts returns the top-level paragraphs and the tables of a WordML
// part. Paragraphs inside tables only contribute to their cell text.
func decodeParts(data []byte) ([]string, [][][]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		paragraphs []string
		tables     [][][]string
		table      [][]string
		cell       []string
		b          strings.Builder
		depth      int
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
				if depth == 1 {
					table = nil
				}
			case "tr":
				if depth == 1 {
					table = append(table, nil)
				}
			case "tc":
				if depth == 1 {
					cell = nil
				}
			case "p":
				b.Reset()
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					paragraphs = append(paragraphs, b.String())
				} else {
					cell = append(cell, b.String())
				}
			case "tc":
				if depth == 1 && len(table) > 0 {
					last := len(table) - 1
					table[last] = append(table[last], strings.TrimSpace(strings.Join(cell, "\n")))
				}
			case "tbl":
				if depth == 1 {
					tables = append(tables, table)
				}
				if depth > 0 {
					depth--
				}
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return paragraphs, tables, nil
}

func decodeHyperlinks(data []byte) ([]string, error) {
	var rels struct {
		Items []struct {
			Type   string `xml:"Type,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, err
	}
	var links []string
	for _, r := range rels.Items {
		if r.Type == hyperlinkRel {
			links = append(links, r.Target)
		}
	}
	return links, nil
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, d := range dst {
			if d == it {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, it)
		}
	}
	return dst
}
