package audit

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// AuditReader reads and parses audit events from log files. It handles
// reading across multiple rotated segments.
type AuditReader struct {
	logDir string
}

// NewAuditReader creates a new AuditReader for the given log directory.
func NewAuditReader(logDir string) *AuditReader {
	return &AuditReader{
		logDir: logDir,
	}
}

// ListRuns returns all runs with summary information, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return r.extractRunInfos(events), nil
}

// GetRun returns all events for a specific run.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var runEvents []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			runEvents = append(runEvents, event)
		}
	}

	if len(runEvents) == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	return runEvents, nil
}

// GetLatestRun returns the most recent run by start timestamp.
func (r *AuditReader) GetLatestRun() (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found")
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})

	return &runs[0], nil
}

// readAllEvents reads all events from all log segments in chronological order.
func (r *AuditReader) readAllEvents() ([]AuditEvent, error) {
	logFiles, err := GetAllLogFiles(r.logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get log files: %w", err)
	}

	if len(logFiles) == 0 {
		return []AuditEvent{}, nil
	}

	var allEvents []AuditEvent
	for _, logFile := range logFiles {
		events, err := r.readEventsFromFile(logFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read events from %s: %w", logFile, err)
		}
		allEvents = append(allEvents, events...)
	}

	return allEvents, nil
}

// readEventsFromFile reads all events from a single log file.
func (r *AuditReader) readEventsFromFile(filePath string) ([]AuditEvent, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)

	const maxScanTokenSize = 1024 * 1024 // long metadata lines
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := UnmarshalJSONLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		events = append(events, *event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return events, nil
}

// extractRunInfos groups events by run ID and builds one RunInfo per run,
// skipping system events that have no run ID.
func (r *AuditReader) extractRunInfos(events []AuditEvent) []RunInfo {
	runEvents := make(map[RunID][]AuditEvent)
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		runEvents[event.RunID] = append(runEvents[event.RunID], event)
	}

	var runs []RunInfo
	for runID, events := range runEvents {
		runs = append(runs, r.buildRunInfo(runID, events))
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})

	return runs
}

// buildRunInfo constructs a RunInfo from a list of events for a single run.
// The summary is recounted from the operation events and then replaced by
// the RUN_END totals when the run completed normally.
func (r *AuditReader) buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:   runID,
		Status:  RunStatusInProgress, // until a RUN_END is found
		Summary: RunSummary{},
	}

	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp

		case EventRunEnd:
			endTime := event.Timestamp
			info.EndTime = &endTime
			if event.Metadata != nil {
				if status, ok := event.Metadata["status"]; ok {
					info.Status = RunStatus(status)
				}
				info.Summary = r.parseSummaryFromMetadata(event.Metadata)
			}

		case EventRename:
			info.Summary.TotalFiles++
			info.Summary.Renamed++

		case EventRouteToReview:
			info.Summary.TotalFiles++
			info.Summary.RoutedReview++

		case EventSkip:
			info.Summary.TotalFiles++
			info.Summary.Skipped++

		case EventError:
			info.Summary.TotalFiles++
			info.Summary.Errors++
		}
	}

	return info
}

// parseSummaryFromMetadata parses RunSummary from RUN_END event metadata.
func (r *AuditReader) parseSummaryFromMetadata(metadata map[string]string) RunSummary {
	summary := RunSummary{}

	if v, ok := metadata["totalFiles"]; ok {
		summary.TotalFiles, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["renamed"]; ok {
		summary.Renamed, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["routedReview"]; ok {
		summary.RoutedReview, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["skipped"]; ok {
		summary.Skipped, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["errors"]; ok {
		summary.Errors, _ = strconv.Atoi(v)
	}

	return summary
}
