package author

import (
	"regexp"
	"strings"
	"unicode"
)

// Synonyms are the column and label words that introduce author names.
var Synonyms = []string{
	"nombre", "nombres", "apellido", "apellidos",
	"nombre y apellido", "apellido y nombre", "nombres y apellidos", "apellidos y nombres",
	"alumno", "alumnos", "alumna", "alumne", "alumnes",
}

// stopWords end a name and disqualify any candidate containing them.
var stopWords = []string{"legajo", "email", "mail", "correo electronico", "e-mail"}

var labelWords = append(append([]string(nil), Synonyms...), stopWords...)

var (
	labelRegex = regexp.MustCompile(`(?i)\b(nombres? y apellidos?|apellidos? y nombres?|nombres?|apellidos?|alumn(?:os?|a|es?))\b\s*:?`)
	emailRegex = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	separators = regexp.MustCompile(`\s*(?:[,;/|]|\s-\s|\sy\s|\se\s)\s*`)
)

// Strategy finds author candidates in a document. An empty result passes
// control to the next strategy.
type Strategy func(text string, headers, table []string) []string

// Chain is the default order: table column, labelled line, then headers.
var Chain = []Strategy{FromTable, FromLabel, FromHeaders}

// Extract runs Chain and returns the first non-empty cleaned result, or nil
// when the authors are unknown.
func Extract(text string, headers, table []string) []string {
	for _, s := range Chain {
		if names := Clean(s(text, headers, table)); len(names) > 0 {
			return names
		}
	}
	return nil
}

func IsSynonym(s string) bool {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ":")
	for _, syn := range Synonyms {
		if s == syn {
			return true
		}
	}
	return false
}

func FromTable(_ string, _ []string, table []string) []string {
	out := make([]string, 0, len(table))
	for _, name := range table {
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// FromLabel looks for the first line carrying an author label. Names are read
// after the label, or from the next line when the label ends its line.
func FromLabel(text string, _ []string, _ []string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		loc := labelRegex.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := line[loc[1]:]
		if strings.TrimSpace(rest) == "" && i+1 < len(lines) {
			rest = lines[i+1]
		}
		if names := names(rest); len(names) > 0 {
			return names
		}
	}
	return nil
}

func FromHeaders(_ string, headers []string, _ []string) []string {
	for _, h := range headers {
		if names := FromLabel(h, nil, nil); len(names) > 0 {
			return names
		}
	}
	return nil
}

// Clean drops candidates that contain label words, digits or are e-mails.
func Clean(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || hasStopWord(c) || strings.IndexFunc(c, unicode.IsDigit) >= 0 || emailRegex.MatchString(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasStopWord(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range labelWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// names splits s into parts and keeps the leading run of capitalized words of
// each part. The list ends at the first part without such a run.
func names(s string) []string {
	var out []string
	for _, part := range separators.Split(strings.TrimSpace(s), -1) {
		run := nameRun(strings.Fields(part))
		if run == "" {
			break
		}
		out = append(out, run)
	}
	return out
}

func nameRun(words []string) string {
	var run []string
	for _, w := range words {
		w = strings.Trim(w, ".:()\"'")
		if !isNameWord(w) {
			break
		}
		run = append(run, w)
	}
	return strings.Join(run, " ")
}

func isNameWord(w string) bool {
	if w == "" {
		return false
	}
	lower := strings.ToLower(w)
	for _, sw := range stopWords {
		if lower == sw {
			return false
		}
	}
	for i, r := range w {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}
