package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// EnsureExtension appends ".ext" unless name already ends with it (case-insensitive).
func EnsureExtension(name, ext string) string {
	suffix := "." + strings.TrimPrefix(ext, ".")
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
		return name
	}
	return name + suffix
}
