package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "PlagiarismDetection"

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	paths := []string{
		filepath.Join(base, "configs"),
		filepath.Join(base, "archive"),
		filepath.Join(base, "runs"),
	}

	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}
	return base, nil
}

func ConfigPath(root string) string {
	return filepath.Join(root, "configs", "config.yaml")
}

// ArchiveDSN is the SQLite archive used when no DSN is configured.
func ArchiveDSN(root string) string {
	return filepath.Join(root, "archive", "archive.db")
}
