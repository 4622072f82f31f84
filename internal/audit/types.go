// Package audit provides an append-only event log for Tagtidy rename
// operations. The log is a trace of what each run did: every rename, review
// routing and skip is recorded as one JSON line, so a batch of automated
// renames can always be reconstructed after the fact.
package audit

import "time"

// RunID is a unique identifier for each program execution, in UUID v4 format.
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File operation events
	EventRename        EventType = "RENAME"
	EventRouteToReview EventType = "ROUTE_TO_REVIEW"
	EventSkip          EventType = "SKIP"
	EventError         EventType = "ERROR"

	// System events
	EventRotation       EventType = "ROTATION"
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode provides the detailed reason for a skip or review routing.
type ReasonCode string

const (
	ReasonNoArtistMatch        ReasonCode = "NO_ARTIST_MATCH"
	ReasonEmptyTitle           ReasonCode = "EMPTY_TITLE"
	ReasonUnsupportedExtension ReasonCode = "UNSUPPORTED_EXTENSION"
	ReasonDuplicateRenamed     ReasonCode = "DUPLICATE_RENAMED"
	ReasonAlreadyClean         ReasonCode = "ALREADY_CLEAN"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// TitleChange captures the title rewrite behind a rename event.
type TitleChange struct {
	Artist        string `json:"artist"`
	OriginalTitle string `json:"originalTitle"`
	CleanTitle    string `json:"cleanTitle"`
}

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single audit record for a file operation or
// system event.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`
	RunID           RunID             `json:"runId"`
	EventType       EventType         `json:"eventType"`
	Status          OperationStatus   `json:"status"`
	SourcePath      string            `json:"sourcePath,omitempty"`
	DestinationPath string            `json:"destinationPath,omitempty"`
	ReasonCode      ReasonCode        `json:"reasonCode,omitempty"`
	TitleChange     *TitleChange      `json:"titleChange,omitempty"`
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	TotalFiles   int `json:"totalFiles"`
	Renamed      int `json:"renamed"`
	RoutedReview int `json:"routedReview"`
	Skipped      int `json:"skipped"`
	Errors       int `json:"errors"`
}

// RunInfo contains metadata and summary for a run, as reconstructed from
// the log by the reader.
type RunInfo struct {
	RunID     RunID      `json:"runId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Status    RunStatus  `json:"status"`
	Summary   RunSummary `json:"summary"`
}

// AuditConfig holds configuration for the audit log.
type AuditConfig struct {
	Enabled      bool   `json:"enabled"`
	LogDirectory string `json:"logDirectory"`
	RotationSize int64  `json:"rotationSizeBytes"` // rotate when file exceeds this size
}

// DefaultAuditConfig returns an AuditConfig with sensible defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:      true,
		LogDirectory: ".tagtidy/audit",
		RotationSize: 10 * 1024 * 1024, // 10MB
	}
}
