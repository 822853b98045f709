package media

import (
	"strings"
	"unicode"
)

// mediaPrefix is the public URL prefix stored paths are normalized to.
const mediaPrefix = "/media/"

// NormalizePath canonicalizes a stored media reference to the form
// /media/<category>/<filename>. Backslashes become forward slashes,
// absolute http(s) URLs pass through untouched, and any leading slash or
// media/ prefix is stripped before the canonical prefix is applied.
// The function is a fixpoint: normalizing an already-normalized path
// returns it unchanged.
func NormalizePath(p string) string {
	s := strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "media/")
	return mediaPrefix + s
}

// NormalizePaths normalizes a list of stored media references, dropping
// empty entries.
func NormalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if n := NormalizePath(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// StorageKey converts a normalized /media/... path back to the relative
// key used by the file store.
func StorageKey(p string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(p, "/"), "media/")
	return s
}

// Slugify lowercases a human-readable name and replaces runs of
// non-alphanumeric characters with single hyphens. Characters outside
// ASCII letters and digits are dropped, so a name with no usable
// characters yields an empty slug.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
