// Package orchestrator coordinates the scan, classify, rename workflow for
// Tagtidy.
package orchestrator

import (
	"fmt"
	"path/filepath"

	"tagtidy/internal/audit"
	"tagtidy/internal/classifier"
	"tagtidy/internal/config"
	"tagtidy/internal/organizer"
	"tagtidy/internal/output"
	"tagtidy/internal/scanner"
)

// FileOperation describes what happened (or would happen) to a single file.
type FileOperation struct {
	SourcePath      string
	DestinationPath string
	Artist          string
	CleanTitle      string
	Reason          classifier.UnclassifiedReason // set for for-review and skipped files
	Err             error                         // set for failed operations
}

// RunResult collects the outcome of a run, bucketed by what was done.
type RunResult struct {
	Moved      []FileOperation // renamed and moved into the library
	ForReview  []FileOperation // routed to the for-review directory
	Skipped    []FileOperation // left in place
	Errors     []FileOperation // failed operations
	ScanErrors []error
}

// TotalFiles returns the number of files the run looked at.
func (r *RunResult) TotalFiles() int {
	return len(r.Moved) + len(r.ForReview) + len(r.Skipped) + len(r.Errors)
}

// HasErrors returns true if any file operation or scan failed.
func (r *RunResult) HasErrors() bool {
	return len(r.Errors) > 0 || len(r.ScanErrors) > 0
}

// RunOptions configures a single run.
type RunOptions struct {
	DryRun     bool   // report what would happen without touching files
	AppVersion string // recorded in the audit log
}

// Orchestrator wires the scanner, classifier, organizer and audit log
// together. The audit writer may be nil, in which case nothing is logged.
type Orchestrator struct {
	config *config.Configuration
	out    *output.Output
	writer *audit.AuditWriter
}

// NewOrchestrator creates a new Orchestrator with the given configuration.
// out must not be nil; writer may be.
func NewOrchestrator(cfg *config.Configuration, out *output.Output, writer *audit.AuditWriter) *Orchestrator {
	return &Orchestrator{
		config: cfg,
		out:    out,
		writer: writer,
	}
}

// scanOptions builds scanner options from the configuration.
func (o *Orchestrator) scanOptions() scanner.ScanOptions {
	opts := scanner.DefaultScanOptions()
	opts.MaxDepth = o.config.GetScanDepth()
	opts.SymlinkPolicy = o.config.GetSymlinkPolicy()
	opts.Extensions = o.config.GetExtensions()
	return opts
}

// Run executes the workflow over every configured source directory.
// In dry-run mode nothing is moved and nothing is written to the audit log;
// the result holds the operations that would have been performed.
func (o *Orchestrator) Run(opts RunOptions) (*RunResult, error) {
	result := &RunResult{}

	var runID audit.RunID
	if o.writer != nil && !opts.DryRun {
		id, err := o.writer.StartRun(opts.AppVersion, opts.DryRun)
		if err != nil {
			return nil, fmt.Errorf("failed to start audit run: %w", err)
		}
		runID = id
	}

	var allFiles []scanner.FileEntry
	scanOpts := o.scanOptions()
	for _, sourceDir := range o.config.SourceDirectories {
		files, err := scanner.ScanWithOptions(sourceDir, scanOpts)
		if err != nil {
			// keep going with the remaining directories
			result.ScanErrors = append(result.ScanErrors, fmt.Errorf("failed to scan %s: %w", sourceDir, err))
			o.recordError(sourceDir, "SCAN_ERROR", err.Error(), "scan", opts.DryRun)
			continue
		}
		allFiles = append(allFiles, files...)
	}

	o.out.StartProgress(len(allFiles))
	for i, file := range allFiles {
		o.out.UpdateProgress(i+1, "Processing")
		o.processFile(file, opts, result)
	}
	o.out.EndProgress()

	if o.writer != nil && !opts.DryRun {
		status := audit.RunStatusCompleted
		if result.HasErrors() {
			status = audit.RunStatusFailed
		}
		summary := audit.RunSummary{
			TotalFiles:   result.TotalFiles(),
			Renamed:      len(result.Moved),
			RoutedReview: len(result.ForReview),
			Skipped:      len(result.Skipped),
			Errors:       len(result.Errors),
		}
		if err := o.writer.EndRun(runID, status, summary); err != nil {
			return result, fmt.Errorf("failed to end audit run: %w", err)
		}
	}

	return result, nil
}

// processFile classifies one file and applies (or simulates) the outcome.
func (o *Orchestrator) processFile(file scanner.FileEntry, opts RunOptions, result *RunResult) {
	c := classifier.Classify(file.Name, o.config.ArtistRules, o.config.GetExtensions())

	switch {
	case c.IsClassified():
		op := FileOperation{
			SourcePath: file.FullPath,
			Artist:     c.Artist,
			CleanTitle: c.CleanTitle,
		}

		if opts.DryRun {
			op.DestinationPath = filepath.Join(c.TargetDirectory, c.Artist, c.NormalisedFilename)
			result.Moved = append(result.Moved, op)
			o.out.Verbose("would move %s -> %s", file.FullPath, op.DestinationPath)
			return
		}

		moveResult, err := organizer.Organize(file, c)
		if err != nil {
			op.Err = err
			result.Errors = append(result.Errors, op)
			o.out.Error("failed to move %s: %v", file.FullPath, err)
			o.recordError(file.FullPath, moveErrorType(err), err.Error(), "rename", opts.DryRun)
			return
		}

		op.DestinationPath = moveResult.DestinationPath
		result.Moved = append(result.Moved, op)
		o.out.Verbose("moved %s -> %s", file.FullPath, moveResult.DestinationPath)
		o.recordRename(file, c, moveResult, opts.DryRun)

	case c.Reason == classifier.UnsupportedExtension:
		op := FileOperation{SourcePath: file.FullPath, Reason: c.Reason}
		result.Skipped = append(result.Skipped, op)
		o.out.Verbose("skipped %s: %s", file.FullPath, c.Reason)
		if o.writer != nil && !opts.DryRun {
			o.auditFailed(o.writer.RecordSkip(file.FullPath, audit.ReasonUnsupportedExtension))
		}

	default:
		op := FileOperation{SourcePath: file.FullPath, Reason: c.Reason}

		if opts.DryRun {
			op.DestinationPath = filepath.Join(organizer.GetForReviewPath(filepath.Dir(file.FullPath)), file.Name)
			result.ForReview = append(result.ForReview, op)
			o.out.Verbose("would route %s to review: %s", file.FullPath, c.Reason)
			return
		}

		moveResult, err := organizer.Organize(file, c)
		if err != nil {
			op.Err = err
			result.Errors = append(result.Errors, op)
			o.out.Error("failed to route %s to review: %v", file.FullPath, err)
			o.recordError(file.FullPath, moveErrorType(err), err.Error(), "route_to_review", opts.DryRun)
			return
		}

		op.DestinationPath = moveResult.DestinationPath
		result.ForReview = append(result.ForReview, op)
		o.out.Verbose("routed %s to review: %s", file.FullPath, c.Reason)
		if o.writer != nil {
			o.auditFailed(o.writer.RecordRouteToReview(file.FullPath, moveResult.DestinationPath, reasonCode(c.Reason)))
		}
	}
}

// HandleFile processes a single path, for use as a watcher callback.
func (o *Orchestrator) HandleFile(path string) (organized bool, reviewed bool, err error) {
	file := scanner.FileEntry{
		Name:     filepath.Base(path),
		FullPath: path,
	}

	c := classifier.Classify(file.Name, o.config.ArtistRules, o.config.GetExtensions())
	if c.IsUnclassified() && c.Reason == classifier.UnsupportedExtension {
		if o.writer != nil {
			o.auditFailed(o.writer.RecordSkip(path, audit.ReasonUnsupportedExtension))
		}
		return false, false, nil
	}

	moveResult, err := organizer.Organize(file, c)
	if err != nil {
		o.recordError(path, moveErrorType(err), err.Error(), "rename", false)
		return false, false, err
	}

	if c.IsClassified() {
		o.recordRename(file, c, moveResult, false)
		return true, false, nil
	}
	if o.writer != nil {
		o.auditFailed(o.writer.RecordRouteToReview(path, moveResult.DestinationPath, reasonCode(c.Reason)))
	}
	return false, true, nil
}

func (o *Orchestrator) recordRename(file scanner.FileEntry, c *classifier.Classification, moveResult *organizer.MoveResult, dryRun bool) {
	if o.writer == nil || dryRun {
		return
	}
	o.auditFailed(o.writer.RecordRename(file.FullPath, moveResult.DestinationPath, &audit.TitleChange{
		Artist:        c.Artist,
		OriginalTitle: c.OriginalTitle,
		CleanTitle:    c.CleanTitle,
	}))
	if moveResult.IsDuplicate {
		o.auditFailed(o.writer.RecordSkip(moveResult.DestinationPath, audit.ReasonDuplicateRenamed))
	}
}

func (o *Orchestrator) recordError(path, errType, errMsg, operation string, dryRun bool) {
	if o.writer == nil || dryRun {
		return
	}
	o.auditFailed(o.writer.RecordError(path, errType, errMsg, operation))
}

// auditFailed reports a failed audit write. The rename itself already
// happened, so the run keeps going rather than aborting on a full disk.
func (o *Orchestrator) auditFailed(err error) {
	if err != nil {
		o.out.Error("audit write failed: %v", err)
	}
}

// moveErrorType maps an organizer error to a stable code for the audit log.
func moveErrorType(err error) string {
	if moveErr, ok := err.(*organizer.MoveError); ok {
		return string(moveErr.Type)
	}
	return "IO_ERROR"
}

// reasonCode maps a classifier reason to an audit reason code.
func reasonCode(reason classifier.UnclassifiedReason) audit.ReasonCode {
	switch reason {
	case classifier.NoArtistMatch:
		return audit.ReasonNoArtistMatch
	case classifier.EmptyTitle:
		return audit.ReasonEmptyTitle
	case classifier.UnsupportedExtension:
		return audit.ReasonUnsupportedExtension
	default:
		return audit.ReasonCode(reason)
	}
}
