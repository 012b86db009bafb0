package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const relsXML = `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.org/fuente" TargetMode="External"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="mailto:profe@example.org" TargetMode="External"/>` +
	`</Relationships>`

func TestParseDOCX(t *testing.T) {
	raw := buildDOCX(t, map[string]string{
		"word/document.xml": `<w:document><w:body><w:p><w:r><w:t>Chapter 1</w:t></w:r></w:p><w:p><w:r><w:t>Hello world.</w:t></w:r></w:p></w:body></w:document>`,
	})
	got, err := parseDOCX(raw)
	if err != nil {
		t.Fatalf("parseDOCX failed: %v", err)
	}
	if len(got.paragraphs) != 2 || got.paragraphs[1] != "Hello world." {
		t.Fatalf("unexpected paragraphs: %q", got.paragraphs)
	}
}

func TestParseDOCXSectionsTablesAndLinks(t *testing.T) {
	raw := buildDOCX(t, map[string]string{
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:r><w:t>Universidad de Córdoba - Informe</w:t></w:r></w:p>` +
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Nombre y apellido</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Legajo</w:t></w:r></w:p></w:tc></w:tr>` +
			`<w:tr><w:tc><w:p><w:r><w:t>Ana Gómez</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1234</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
			`<w:p><w:r><w:t>Ver https://example.org/fuente y https://example.net/otra para más.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
		"word/header1.xml":             `<w:hdr><w:p><w:r><w:t>Universidad de Córdoba</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml":             `<w:ftr><w:p></w:p></w:ftr>`,
		"word/_rels/document.xml.rels": relsXML,
	})

	p, err := Parse("informe.docx", raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Title != "informe" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if !reflect.DeepEqual(p.Headers, []string{"Universidad de Cordoba"}) {
		t.Fatalf("unexpected headers: %q", p.Headers)
	}
	if strings.Contains(p.Text, "Universidad") {
		t.Fatalf("header text should be removed from body: %q", p.Text)
	}
	if strings.Contains(p.Text, "Ana Gómez") || strings.Contains(p.Text, "Ana Gomez") {
		t.Fatalf("table text should not be part of the body: %q", p.Text)
	}
	if !strings.Contains(p.Text, "para mas") {
		t.Fatalf("expected folded accents in body: %q", p.Text)
	}
	if !reflect.DeepEqual(p.TableAuthors, []string{"Ana Gómez"}) {
		t.Fatalf("unexpected table authors: %q", p.TableAuthors)
	}
	want := []string{"https://example.org/fuente", "https://example.net/otra"}
	if !reflect.DeepEqual(p.Citations, want) {
		t.Fatalf("expected citations %q, got %q", want, p.Citations)
	}
}

func TestParseText(t *testing.T) {
	p, err := Parse("notas.txt", []byte("Año uno\t\n\n\n  canción  "))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Text != "Año uno \n cancion  " {
		t.Fatalf("unexpected cleaned text: %q", p.Text)
	}
	doc := p.Document()
	if doc.ID != "notas" || doc.Text != p.Text {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.rtf")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	_, err := ParseFile(path)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to name %s, got %v", path, err)
	}
}

func TestParseDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"b.txt": "segundo", "a.txt": "primero", ".DS_Store": "x"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	got, err := ParseDir(dir)
	if err != nil {
		t.Fatalf("ParseDir failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "a" || got[1].Title != "b" {
		t.Fatalf("unexpected parsed files: %+v", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "c.xyz"), []byte("?"), 0o644); err != nil {
		t.Fatalf("write c.xyz: %v", err)
	}
	if _, err := ParseDir(dir); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	if !Supported("A.DOCX") || Supported("a.rtf") {
		t.Fatalf("unexpected Supported result")
	}
}

func buildDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	for name, body := range parts {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		xml := `<?xml version="1.0" encoding="UTF-8"?>` + body
		if _, err := f.Write([]byte(xml)); err != nil {
			t.Fatalf("write xml: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return b.Bytes()
}
