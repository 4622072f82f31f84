package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testAuditConfig(t *testing.T) AuditConfig {
	t.Helper()
	return AuditConfig{
		Enabled:      true,
		LogDirectory: t.TempDir(),
		RotationSize: 10 * 1024 * 1024,
	}
}

func readLogLines(t *testing.T, logPath string) []AuditEvent {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", logPath, err)
	}
	var events []AuditEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		event, err := UnmarshalJSONLine([]byte(line))
		if err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		events = append(events, *event)
	}
	return events
}

func TestNewAuditWriterInitializesLog(t *testing.T) {
	config := testAuditConfig(t)
	writer, err := NewAuditWriter(config)
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}
	defer writer.Close()

	events := readLogLines(t, writer.LogPath())
	if len(events) != 1 {
		t.Fatalf("new log has %d events, want 1", len(events))
	}
	if events[0].EventType != EventLogInitialized {
		t.Errorf("first event = %s, want LOG_INITIALIZED", events[0].EventType)
	}
	if events[0].RunID != "" {
		t.Errorf("LOG_INITIALIZED RunID = %q, want empty", events[0].RunID)
	}
}

func TestNewAuditWriterReopensExistingLog(t *testing.T) {
	config := testAuditConfig(t)

	first, err := NewAuditWriter(config)
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}
	if _, err := first.StartRun("1.0.0", false); err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	first.Close()

	second, err := NewAuditWriter(config)
	if err != nil {
		t.Fatalf("NewAuditWriter() reopen error = %v", err)
	}
	defer second.Close()

	initCount := 0
	for _, event := range readLogLines(t, second.LogPath()) {
		if event.EventType == EventLogInitialized {
			initCount++
		}
	}
	if initCount != 1 {
		t.Errorf("LOG_INITIALIZED written %d times, want 1 for a reopened log", initCount)
	}
}

func TestStartRunWritesRunStart(t *testing.T) {
	writer, err := NewAuditWriter(testAuditConfig(t))
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}
	defer writer.Close()

	runID, err := writer.StartRun("1.2.0", true)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if runID == "" {
		t.Fatal("StartRun() returned empty run ID")
	}
	if current := writer.CurrentRunID(); current == nil || *current != runID {
		t.Errorf("CurrentRunID() = %v, want %s", current, runID)
	}

	events := readLogLines(t, writer.LogPath())
	last := events[len(events)-1]
	if last.EventType != EventRunStart {
		t.Fatalf("last event = %s, want RUN_START", last.EventType)
	}
	if last.Metadata["appVersion"] != "1.2.0" {
		t.Errorf("appVersion = %q, want 1.2.0", last.Metadata["appVersion"])
	}
	if last.Metadata["dryRun"] != "true" {
		t.Errorf("dryRun = %q, want true", last.Metadata["dryRun"])
	}
}

func TestRecordsRequireActiveRun(t *testing.T) {
	writer, err := NewAuditWriter(testAuditConfig(t))
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}
	defer writer.Close()

	if err := writer.RecordRename("a.opus", "b.opus", nil); err == nil {
		t.Error("RecordRename() without a run should fail")
	}
	if err := writer.RecordSkip("a.opus", ReasonUnsupportedExtension); err == nil {
		t.Error("RecordSkip() without a run should fail")
	}
	if err := writer.RecordRouteToReview("a.opus", "b.opus", ReasonNoArtistMatch); err == nil {
		t.Error("RecordRouteToReview() without a run should fail")
	}
	if err := writer.RecordError("a.opus", "IO_ERROR", "boom", "rename"); err == nil {
		t.Error("RecordError() without a run should fail")
	}
}

func TestFullRunRecordedInOrder(t *testing.T) {
	config := testAuditConfig(t)
	writer, err := NewAuditWriter(config)
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}

	runID, err := writer.StartRun("1.0.0", false)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	change := &TitleChange{Artist: "Dool", OriginalTitle: "She Goat (OFFICIAL VIDEO)", CleanTitle: "She Goat"}
	if err := writer.RecordRename("/inbox/Dool - She Goat (OFFICIAL VIDEO).opus", "/library/Dool/Dool - She Goat.opus", change); err != nil {
		t.Fatalf("RecordRename() error = %v", err)
	}
	if err := writer.RecordRouteToReview("/inbox/mystery.mp3", "/inbox/for-review/mystery.mp3", ReasonNoArtistMatch); err != nil {
		t.Fatalf("RecordRouteToReview() error = %v", err)
	}
	if err := writer.RecordSkip("/inbox/notes.txt", ReasonUnsupportedExtension); err != nil {
		t.Fatalf("RecordSkip() error = %v", err)
	}
	if err := writer.RecordError("/inbox/locked.opus", "PERMISSION_DENIED", "permission denied", "rename"); err != nil {
		t.Fatalf("RecordError() error = %v", err)
	}

	summary := RunSummary{TotalFiles: 4, Renamed: 1, RoutedReview: 1, Skipped: 1, Errors: 1}
	if err := writer.EndRun(runID, RunStatusCompleted, summary); err != nil {
		t.Fatalf("EndRun() error = %v", err)
	}
	if writer.CurrentRunID() != nil {
		t.Error("CurrentRunID() should be nil after EndRun")
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	events, err := NewAuditReader(config.LogDirectory).GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	wantTypes := []EventType{EventRunStart, EventRename, EventRouteToReview, EventSkip, EventError, EventRunEnd}
	if len(events) != len(wantTypes) {
		t.Fatalf("run has %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].EventType != want {
			t.Errorf("event[%d] = %s, want %s", i, events[i].EventType, want)
		}
	}

	rename := events[1]
	if rename.TitleChange == nil || rename.TitleChange.CleanTitle != "She Goat" {
		t.Errorf("rename TitleChange = %+v, want CleanTitle She Goat", rename.TitleChange)
	}
	if events[2].ReasonCode != ReasonNoArtistMatch {
		t.Errorf("review reason = %s, want NO_ARTIST_MATCH", events[2].ReasonCode)
	}
	if events[4].ErrorDetails == nil || events[4].ErrorDetails.Operation != "rename" {
		t.Errorf("error details = %+v, want operation rename", events[4].ErrorDetails)
	}
}

func TestRotationSplitsLogAtSizeLimit(t *testing.T) {
	config := AuditConfig{
		Enabled:      true,
		LogDirectory: t.TempDir(),
		RotationSize: 2048, // a handful of events per segment
	}

	writer, err := NewAuditWriter(config)
	if err != nil {
		t.Fatalf("NewAuditWriter() error = %v", err)
	}

	runID, err := writer.StartRun("1.0.0", false)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := writer.RecordSkip("/inbox/notes.txt", ReasonUnsupportedExtension); err != nil {
			t.Fatalf("RecordSkip() error = %v", err)
		}
	}
	if err := writer.EndRun(runID, RunStatusCompleted, RunSummary{TotalFiles: 20, Skipped: 20}); err != nil {
		t.Fatalf("EndRun() error = %v", err)
	}
	writer.Close()

	segments, err := DiscoverSegments(config.LogDirectory)
	if err != nil {
		t.Fatalf("DiscoverSegments() error = %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("no rotated segments after exceeding the size limit")
	}

	if _, err := os.Stat(filepath.Join(config.LogDirectory, activeLogName)); err != nil {
		t.Errorf("active log missing after rotation: %v", err)
	}

	index, err := LoadIndex(config.LogDirectory)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(index.Segments) != len(segments) {
		t.Errorf("index has %d segments, directory has %d", len(index.Segments), len(segments))
	}

	// Every event must still be readable across the split.
	events, err := NewAuditReader(config.LogDirectory).GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() across segments error = %v", err)
	}
	skips := 0
	for _, event := range events {
		if event.EventType == EventSkip {
			skips++
		}
	}
	if skips != 20 {
		t.Errorf("read %d SKIP events across segments, want 20", skips)
	}
}

func TestGenerateRunIDUnique(t *testing.T) {
	seen := make(map[RunID]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateRunID()
		if err != nil {
			t.Fatalf("GenerateRunID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = true
	}
}
