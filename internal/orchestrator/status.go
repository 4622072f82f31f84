package orchestrator

import (
	"os"
	"path/filepath"

	"tagtidy/internal/classifier"
	"tagtidy/internal/organizer"
	"tagtidy/internal/scanner"
)

// StatusResult contains the status analysis results.
type StatusResult struct {
	BySource   map[string]*SourceStatus // Status per source directory
	GrandTotal int                      // Total count of all pending files
}

// SourceStatus contains status for one source directory.
type SourceStatus struct {
	Directory     string              // The source directory path
	ByDestination map[string][]string // destination directory -> list of file paths
	Total         int                 // Total files in this source directory
}

// Status analyzes pending files without modifying anything. It scans all
// configured source directories, classifies each file to determine where it
// would go, and groups files by that destination (artist directory or
// for-review).
func (o *Orchestrator) Status() (*StatusResult, error) {
	result := &StatusResult{
		BySource:   make(map[string]*SourceStatus),
		GrandTotal: 0,
	}

	scanOpts := o.scanOptions()

	for _, sourceDir := range o.config.SourceDirectories {
		sourceStatus := &SourceStatus{
			Directory:     sourceDir,
			ByDestination: make(map[string][]string),
			Total:         0,
		}

		// Missing or unreadable directories still appear in the result,
		// with an empty status
		if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
			result.BySource[sourceDir] = sourceStatus
			continue
		}

		files, err := scanner.ScanWithOptions(sourceDir, scanOpts)
		if err != nil {
			result.BySource[sourceDir] = sourceStatus
			continue
		}

		for _, file := range files {
			destination := o.fileDestination(file)
			sourceStatus.ByDestination[destination] = append(
				sourceStatus.ByDestination[destination],
				file.FullPath,
			)
			sourceStatus.Total++
		}

		result.BySource[sourceDir] = sourceStatus
		result.GrandTotal += sourceStatus.Total
	}

	return result, nil
}

// fileDestination determines where a file would go without moving it.
func (o *Orchestrator) fileDestination(file scanner.FileEntry) string {
	c := classifier.Classify(file.Name, o.config.ArtistRules, o.config.GetExtensions())

	if c.IsUnclassified() {
		return organizer.GetForReviewPath(filepath.Dir(file.FullPath))
	}

	return filepath.Join(c.TargetDirectory, c.Artist)
}
