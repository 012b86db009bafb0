package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"plagiarism_detection/internal/report"
)

type RunInfo struct {
	ID         string
	Root       string
	SourcePath string
	ReportPath string
}

// CreateRun lays out runs/<subject hash>/<run id>/ and stores the subject
// source there when given.
func CreateRun(workspaceRoot, subjectName, runID string, source []byte) (*RunInfo, error) {
	runRoot := filepath.Join(workspaceRoot, "runs", subjectHash(subjectName), sanitizeName(runID, "run"))
	if err := os.MkdirAll(runRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	sourcePath := filepath.Join(runRoot, sanitizeName(subjectName, "source"))
	if len(source) > 0 {
		if err := os.WriteFile(sourcePath, source, 0o644); err != nil {
			return nil, fmt.Errorf("write source file: %w", err)
		}
	}

	return &RunInfo{
		ID:         runID,
		Root:       runRoot,
		SourcePath: sourcePath,
		ReportPath: filepath.Join(runRoot, "results.json"),
	}, nil
}

func SaveReport(path string, r report.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return r.WriteFile(path)
}

func subjectHash(name string) string {
	trimmed := strings.TrimSpace(strings.ToLower(filepath.Base(name)))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}

func sanitizeName(name, fallback string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fallback
	}
	return strings.ReplaceAll(base, "..", "")
}
