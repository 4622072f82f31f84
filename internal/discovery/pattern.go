// Package discovery proposes artist rules from an already organized music
// library, so an existing collection can seed the configuration instead of
// typing every artist by hand.
package discovery

import (
	"regexp"
	"strings"
)

// ArtistPattern matches filenames of the form "<artist> - <title>".
// The artist group is non-greedy, so a title containing " - " stays in the
// title half.
var ArtistPattern = regexp.MustCompile(`^(.+?)\s+-\s+(.+)$`)

// ExtractArtistFromFilename returns the artist half of an
// "Artist - Title.ext" filename. The extension is stripped before matching.
func ExtractArtistFromFilename(filename string) (artist string, matched bool) {
	stem := removeExtension(filename)

	matches := ArtistPattern.FindStringSubmatch(stem)
	if matches == nil {
		return "", false
	}

	artist = strings.TrimSpace(matches[1])
	if artist == "" {
		return "", false
	}
	return artist, true
}

// removeExtension removes the file extension from a filename.
func removeExtension(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 {
		return filename
	}
	return filename[:lastDot]
}
