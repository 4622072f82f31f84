package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditWriter handles all write operations to the audit log. It implements
// append-only semantics with fail-fast behavior: a write that cannot be
// flushed to disk is an error, not a silent loss.
type AuditWriter struct {
	mu              sync.Mutex
	file            *os.File
	writer          *bufio.Writer
	logPath         string
	currentRun      *RunID
	config          AuditConfig
	rotationManager *RotationManager
}

// NewAuditWriter creates a new AuditWriter with the given configuration.
// It creates the log directory if it doesn't exist and opens the log file
// for appending. If the log file is missing, it creates a new one and
// writes a LOG_INITIALIZED event.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDirectory, activeLogName)

	isNewLog := false
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		isNewLog = true
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	writer := &AuditWriter{
		file:            file,
		writer:          bufio.NewWriter(file),
		logPath:         logPath,
		config:          config,
		rotationManager: NewRotationManager(config),
	}

	if isNewLog {
		if err := writer.writeLogInitialized(); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}

	return writer, nil
}

// GenerateRunID generates a new UUID v4 format Run ID.
func GenerateRunID() (RunID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return RunID(id.String()), nil
}

// StartRun initializes a new run and writes the RUN_START event.
func (w *AuditWriter) StartRun(appVersion string, dryRun bool) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID, err := GenerateRunID()
	if err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"appVersion": appVersion,
			"dryRun":     fmt.Sprintf("%t", dryRun),
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// WriteEvent writes a single audit event to the log. It fails fast if the
// write cannot be completed.
func (w *AuditWriter) WriteEvent(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeEventLocked(event)
}

// writeEventLocked writes an event while holding the lock. It marshals the
// event to JSON, appends a newline, flushes to disk and checks for rotation.
func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := event.MarshalJSONLine()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if _, err := w.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	// not for ROTATION events, to avoid recursing into rotation
	if event.EventType != EventRotation {
		if err := w.checkAndRotate(); err != nil {
			return fmt.Errorf("failed to check/perform rotation: %w", err)
		}
	}

	return nil
}

// checkAndRotate checks if rotation is needed and performs it if so.
func (w *AuditWriter) checkAndRotate() error {
	needsRotation, err := w.rotationManager.NeedsRotation(w.logPath)
	if err != nil {
		return err
	}

	if !needsRotation {
		return nil
	}

	// the rotated filename is generated once so the ROTATION event and the
	// actual rename agree
	rotatedFilename := w.rotationManager.GenerateRotatedFilename()

	var runID RunID
	if w.currentRun != nil {
		runID = *w.currentRun
	}
	rotationEvent := CreateRotationEvent(runID, filepath.Base(w.logPath), rotatedFilename)

	data, err := rotationEvent.MarshalJSONLine()
	if err != nil {
		return fmt.Errorf("failed to marshal rotation event: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write rotation event: %w", err)
	}
	if _, err := w.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write rotation event newline: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush rotation event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync rotation event: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close file for rotation: %w", err)
	}

	if _, err := w.rotationManager.RotateWithFilename(w.logPath, rotatedFilename); err != nil {
		return fmt.Errorf("failed to rotate log: %w", err)
	}

	file, err := os.OpenFile(w.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open new log file after rotation: %w", err)
	}

	w.file = file
	w.writer = bufio.NewWriter(file)

	return nil
}

// EndRun records the run completion status and summary.
func (w *AuditWriter) EndRun(runID RunID, status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunEnd,
		Status:    runStatusToOperationStatus(status),
		Metadata: map[string]string{
			"status":       string(status),
			"totalFiles":   fmt.Sprintf("%d", summary.TotalFiles),
			"renamed":      fmt.Sprintf("%d", summary.Renamed),
			"routedReview": fmt.Sprintf("%d", summary.RoutedReview),
			"skipped":      fmt.Sprintf("%d", summary.Skipped),
			"errors":       fmt.Sprintf("%d", summary.Errors),
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// runStatusToOperationStatus converts RunStatus to OperationStatus.
func runStatusToOperationStatus(status RunStatus) OperationStatus {
	switch status {
	case RunStatusCompleted:
		return StatusSuccess
	case RunStatusFailed, RunStatusInterrupted:
		return StatusFailure
	default:
		return StatusSuccess
	}
}

// Close flushes any buffered data and closes the audit log file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}

	return nil
}

// CurrentRunID returns the current run ID, or nil if no run is active.
func (w *AuditWriter) CurrentRunID() *RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// LogPath returns the path to the current audit log file.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}

// RecordRename records a RENAME event when a file is renamed and filed
// under its artist directory.
func (w *AuditWriter) RecordRename(source, dest string, change *TitleChange) error {
	if w.currentRun == nil {
		return fmt.Errorf("no active run: call StartRun first")
	}

	event := AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           *w.currentRun,
		EventType:       EventRename,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: dest,
		TitleChange:     change,
	}

	return w.WriteEvent(event)
}

// RecordRouteToReview records a ROUTE_TO_REVIEW event when a file is moved
// to the review directory instead of being renamed.
func (w *AuditWriter) RecordRouteToReview(source, dest string, reason ReasonCode) error {
	if w.currentRun == nil {
		return fmt.Errorf("no active run: call StartRun first")
	}

	event := AuditEvent{
		Timestamp:       time.Now().UTC(),
		RunID:           *w.currentRun,
		EventType:       EventRouteToReview,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: dest,
		ReasonCode:      reason,
	}

	return w.WriteEvent(event)
}

// RecordSkip records a SKIP event when a file is left untouched.
func (w *AuditWriter) RecordSkip(source string, reason ReasonCode) error {
	if w.currentRun == nil {
		return fmt.Errorf("no active run: call StartRun first")
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		RunID:      *w.currentRun,
		EventType:  EventSkip,
		Status:     StatusSkipped,
		SourcePath: source,
		ReasonCode: reason,
	}

	return w.WriteEvent(event)
}

// RecordError records an ERROR event when an error occurs during file
// processing.
func (w *AuditWriter) RecordError(source, errType, errMsg, operation string) error {
	if w.currentRun == nil {
		return fmt.Errorf("no active run: call StartRun first")
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		RunID:      *w.currentRun,
		EventType:  EventError,
		Status:     StatusFailure,
		SourcePath: source,
		ErrorDetails: &ErrorDetails{
			ErrorType:    errType,
			ErrorMessage: errMsg,
			Operation:    operation,
		},
	}

	return w.WriteEvent(event)
}

// writeLogInitialized writes a LOG_INITIALIZED event when a new log file is
// created. Written directly to bypass the active-run check.
func (w *AuditWriter) writeLogInitialized() error {
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     "", // no run ID for system events
		EventType: EventLogInitialized,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"logPath": w.logPath,
		},
	}

	data, err := event.MarshalJSONLine()
	if err != nil {
		return fmt.Errorf("failed to marshal LOG_INITIALIZED event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
	}
	if _, err := w.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush LOG_INITIALIZED event: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync LOG_INITIALIZED event: %w", err)
	}

	return nil
}

// GetConfig returns the audit configuration.
func (w *AuditWriter) GetConfig() AuditConfig {
	return w.config
}
