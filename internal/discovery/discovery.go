package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"tagtidy/internal/config"
)

// DiscoveredRule represents an artist rule found during discovery.
type DiscoveredRule struct {
	Artist          string
	TargetDirectory string
}

// DiscoveryResult contains the results of a discovery scan.
type DiscoveryResult struct {
	NewRules      []DiscoveredRule // Rules to be added
	SkippedRules  []DiscoveredRule // Rules skipped (artist already configured)
	ScannedDirs   int              // Number of artist directories scanned
	FilesAnalyzed int              // Number of files analyzed
}

// scanArtistCandidates finds immediate subdirectories of the library root.
// In an organized library each child directory is one artist.
func scanArtistCandidates(libraryDir string) ([]string, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			candidates = append(candidates, filepath.Join(libraryDir, entry.Name()))
		}
	}

	return candidates, nil
}

// analyzeDirectory walks the files of one artist directory and collects the
// artist names appearing in "Artist - Title" filenames with a supported
// audio extension.
func analyzeDirectory(dir string, extensions []string) ([]string, int, error) {
	prefixSet := make(map[string]string)
	analyzed := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !hasSupportedExtension(info.Name(), extensions) {
			return nil
		}
		analyzed++

		artist, matched := ExtractArtistFromFilename(info.Name())
		if matched {
			// First spelling wins; lookups are case-insensitive.
			key := strings.ToLower(artist)
			if _, seen := prefixSet[key]; !seen {
				prefixSet[key] = artist
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	var artists []string
	for _, artist := range prefixSet {
		artists = append(artists, artist)
	}

	return artists, analyzed, nil
}

func hasSupportedExtension(filename string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range extensions {
		if ext == strings.ToLower(supported) {
			return true
		}
	}
	return false
}

// Discover scans an organized library directory and proposes artist rules.
// Each immediate subdirectory is treated as an artist folder; the artists
// found in its filenames become rules targeting the library root, matching
// the layout the organizer itself produces. Artists already present in the
// configuration are reported as skipped.
func Discover(libraryDir string, existingConfig *config.Configuration) (*DiscoveryResult, error) {
	result := &DiscoveryResult{
		NewRules:     []DiscoveredRule{},
		SkippedRules: []DiscoveredRule{},
	}

	candidates, err := scanArtistCandidates(libraryDir)
	if err != nil {
		return nil, err
	}

	extensions := config.DefaultExtensions()
	if existingConfig != nil {
		extensions = existingConfig.GetExtensions()
	}

	seenArtists := make(map[string]bool)

	for _, artistDir := range candidates {
		result.ScannedDirs++

		artists, analyzed, err := analyzeDirectory(artistDir, extensions)
		if err != nil {
			continue
		}
		result.FilesAnalyzed += analyzed

		for _, artist := range artists {
			lowerArtist := strings.ToLower(artist)
			if seenArtists[lowerArtist] {
				continue
			}
			seenArtists[lowerArtist] = true

			rule := DiscoveredRule{
				Artist:          artist,
				TargetDirectory: libraryDir,
			}

			if existingConfig != nil && existingConfig.HasArtist(artist) {
				result.SkippedRules = append(result.SkippedRules, rule)
			} else {
				result.NewRules = append(result.NewRules, rule)
			}
		}
	}

	return result, nil
}
