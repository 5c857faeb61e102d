package entities

import (
	"path"
	"strings"
)

const (
	// UploadURLPrefix is the route images are served from
	UploadURLPrefix = "/api/uploads/"
	// LegacyUploadPrefix is the path older clients stored in tasks.image
	LegacyUploadPrefix = "/uploads/"
)

// ImageURL returns the reference stored in a task for an uploaded file
func ImageURL(filename string) string {
	return UploadURLPrefix + filename
}

// ImageRefs lists every task image value that refers to filename
func ImageRefs(filename string) []string {
	return []string{UploadURLPrefix + filename, LegacyUploadPrefix + filename}
}

// ImageFilename extracts the uploaded filename from a task image reference.
// It reports false for external URLs and anything that is not a bare file name.
func ImageFilename(ref string) (string, bool) {
	for _, prefix := range []string{UploadURLPrefix, LegacyUploadPrefix} {
		if name, ok := strings.CutPrefix(ref, prefix); ok && ValidFilename(name) {
			return name, true
		}
	}
	return "", false
}

// ValidFilename reports whether name is a single path element safe to join to a directory
func ValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return path.Base(name) == name
}
