// Package organizer moves renamed audio files into the per-artist library
// layout for Tagtidy.
package organizer

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// duplicatePattern matches a _duplicate or _duplicate_N suffix before the
// audio extension.
var duplicatePattern = regexp.MustCompile(`^(.+)_duplicate(?:_(\d+))?(\.[^.]+)?$`)

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GenerateDuplicateName picks a collision-free filename for destDir.
// Re-downloading a track the library already holds is common, and the
// existing copy must never be overwritten, so the new one gets a
// _duplicate suffix before the extension, numbered from _duplicate_2 on:
//
//	She Goat.opus -> She Goat_duplicate.opus -> She Goat_duplicate_2.opus
func GenerateDuplicateName(destDir, filename string) string {
	if !FileExists(filepath.Join(destDir, filename)) {
		return filename
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	next := 2

	if m := duplicatePattern.FindStringSubmatch(filename); m != nil {
		// Already carries the suffix, keep counting from its number.
		base = m[1]
		ext = m[3]
		if m[2] != "" {
			n, _ := strconv.Atoi(m[2])
			next = n + 1
		}
	} else {
		candidate := base + "_duplicate" + ext
		if !FileExists(filepath.Join(destDir, candidate)) {
			return candidate
		}
	}

	for ; ; next++ {
		candidate := base + "_duplicate_" + strconv.Itoa(next) + ext
		if !FileExists(filepath.Join(destDir, candidate)) {
			return candidate
		}
	}
}
