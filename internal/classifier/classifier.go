// Package classifier decides what to do with a scraped audio file: rename it
// under a known artist, or route it to review.
package classifier

import (
	"path/filepath"
	"strings"

	"tagtidy/internal/cleaner"
	"tagtidy/internal/config"
	"tagtidy/internal/matcher"
	"tagtidy/internal/sanitize"
)

// UnclassifiedReason represents why a file could not be classified.
type UnclassifiedReason string

const (
	NoArtistMatch        UnclassifiedReason = "NO_ARTIST_MATCH"
	EmptyTitle           UnclassifiedReason = "EMPTY_TITLE"
	UnsupportedExtension UnclassifiedReason = "UNSUPPORTED_EXTENSION"
)

// Classification represents the result of classifying a file.
// It is either CLASSIFIED (with destination info) or UNCLASSIFIED (with reason).
type Classification struct {
	Type               string // "CLASSIFIED" or "UNCLASSIFIED"
	Artist             string // canonical artist name, used for the destination subdirectory
	OriginalTitle      string // noisy title as found in the filename
	CleanTitle         string // title after cleanup and casing
	NormalisedFilename string // "<Artist> - <CleanTitle><ext>"
	TargetDirectory    string
	Reason             UnclassifiedReason
}

// Classify determines the classification of a file based on its filename,
// the artist rules and the accepted extensions.
func Classify(filename string, rules []config.ArtistRule, extensions []string) *Classification {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extensionSupported(ext, extensions) {
		return &Classification{
			Type:   "UNCLASSIFIED",
			Reason: UnsupportedExtension,
		}
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	matchResult := matcher.Match(stem, rules)

	return classify(matchResult, ext)
}

// ClassifyWithMatchResult classifies a file given an existing match result
// for its extension-stripped name. Useful when the caller already ran the
// matcher, like the status report.
func ClassifyWithMatchResult(filename string, matchResult *matcher.MatchResult) *Classification {
	return classify(matchResult, strings.ToLower(filepath.Ext(filename)))
}

func classify(matchResult *matcher.MatchResult, ext string) *Classification {
	if !matchResult.Matched {
		return &Classification{
			Type:   "UNCLASSIFIED",
			Reason: NoArtistMatch,
		}
	}

	rule := matchResult.Rule
	noisy := strings.TrimSpace(matchResult.Remainder)
	if noisy == "" {
		return &Classification{
			Type:   "UNCLASSIFIED",
			Reason: EmptyTitle,
		}
	}

	cleanTitle := cleaner.Clean(noisy, rule.Artist, rule.Album)
	if strings.TrimSpace(cleanTitle) == "" {
		return &Classification{
			Type:   "UNCLASSIFIED",
			Reason: EmptyTitle,
		}
	}

	artist := sanitize.NormalizeTagCase(rule.Artist)

	return &Classification{
		Type:               "CLASSIFIED",
		Artist:             artist,
		OriginalTitle:      noisy,
		CleanTitle:         cleanTitle,
		NormalisedFilename: sanitize.ForPath(artist+" - "+cleanTitle) + ext,
		TargetDirectory:    rule.TargetDirectory,
	}
}

func extensionSupported(ext string, extensions []string) bool {
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// IsClassified returns true if the classification is CLASSIFIED.
func (c *Classification) IsClassified() bool {
	return c.Type == "CLASSIFIED"
}

// IsUnclassified returns true if the classification is UNCLASSIFIED.
func (c *Classification) IsUnclassified() bool {
	return c.Type == "UNCLASSIFIED"
}
