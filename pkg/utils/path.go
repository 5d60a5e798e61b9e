package utils

import "strings"

// SplitPath breaks a slash separated datastore path into its non-empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

func NormalizePath(path string) string {
	return strings.Join(SplitPath(path), "/")
}

func JoinPath(parts ...string) string {
	return NormalizePath(strings.Join(parts, "/"))
}
