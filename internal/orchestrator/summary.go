package orchestrator

import (
	"time"
)

// RunSummary contains statistics from a run operation.
type RunSummary struct {
	Moved     int            // Files renamed into the library
	ForReview int            // Files routed to for-review
	Skipped   int            // Files left in place
	Errors    int            // Errors encountered
	Duration  time.Duration  // Total processing time
	ByArtist  map[string]int // Per-artist counts (only populated in verbose mode)
}

// GenerateSummary creates a summary from a run result.
// When verbose is true, the ByArtist map is populated with a per-artist
// breakdown of the moved files.
func GenerateSummary(result *RunResult, duration time.Duration, verbose bool) *RunSummary {
	if result == nil {
		return &RunSummary{
			Duration: duration,
		}
	}

	summary := &RunSummary{
		Moved:     len(result.Moved),
		ForReview: len(result.ForReview),
		Skipped:   len(result.Skipped),
		Errors:    len(result.Errors),
		Duration:  duration,
	}

	if verbose {
		summary.ByArtist = make(map[string]int)
		for _, op := range result.Moved {
			if op.Artist != "" {
				summary.ByArtist[op.Artist]++
			}
		}
	}

	return summary
}
