package utils

import (
	"os"
	"path/filepath"
	"strings"
)

func MkPtr[T any](v T) *T {
	return &v
}

// NormalizePath expands a leading ~ and returns an absolute path.
func NormalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return filepath.Abs(path)
}
