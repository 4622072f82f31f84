// Package config handles configuration loading and validation for Tagtidy.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "artistRules[0]")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// ValidateConfig checks the configuration for errors and returns all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	collect := func(issues []ConfigValidationError) {
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				result.Errors = append(result.Errors, issue)
			} else {
				result.Warnings = append(result.Warnings, issue)
			}
		}
	}

	collect(ValidatePaths(cfg))
	collect(ValidateArtistRules(cfg))
	collect(ValidatePolicies(cfg))

	result.Valid = len(result.Errors) == 0

	return result
}

// ValidatePaths checks that all configured paths exist or are creatable.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	// Source directories must exist and be accessible
	for i, dir := range cfg.SourceDirectories {
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				errors = append(errors, ConfigValidationError{
					Field:    formatField("sourceDirectories", i),
					Message:  "directory does not exist: " + dir,
					Severity: SeverityError,
				})
			} else if os.IsPermission(err) {
				errors = append(errors, ConfigValidationError{
					Field:    formatField("sourceDirectories", i),
					Message:  "directory is not accessible: " + dir,
					Severity: SeverityError,
				})
			} else {
				errors = append(errors, ConfigValidationError{
					Field:    formatField("sourceDirectories", i),
					Message:  "error accessing directory: " + err.Error(),
					Severity: SeverityError,
				})
			}
			continue
		}

		if !info.IsDir() {
			errors = append(errors, ConfigValidationError{
				Field:    formatField("sourceDirectories", i),
				Message:  "path is not a directory: " + dir,
				Severity: SeverityError,
			})
		}
	}

	// Target directories must exist, or their parent must be writable so
	// the organizer can create them
	for i, rule := range cfg.ArtistRules {
		destDir := rule.TargetDirectory
		fieldName := formatField("artistRules", i) + ".targetDirectory"
		info, err := os.Stat(destDir)

		if err == nil {
			if !info.IsDir() {
				errors = append(errors, ConfigValidationError{
					Field:    fieldName,
					Message:  "path exists but is not a directory: " + destDir,
					Severity: SeverityError,
				})
			}
			continue
		}

		if !os.IsNotExist(err) {
			errors = append(errors, ConfigValidationError{
				Field:    fieldName,
				Message:  "error accessing directory: " + err.Error(),
				Severity: SeverityError,
			})
			continue
		}

		parentDir := filepath.Dir(destDir)
		parentInfo, parentErr := os.Stat(parentDir)

		if parentErr != nil {
			if os.IsNotExist(parentErr) {
				errors = append(errors, ConfigValidationError{
					Field:    fieldName,
					Message:  "parent directory does not exist: " + parentDir,
					Severity: SeverityError,
				})
			} else {
				errors = append(errors, ConfigValidationError{
					Field:    fieldName,
					Message:  "error accessing parent directory: " + parentErr.Error(),
					Severity: SeverityError,
				})
			}
			continue
		}

		if !parentInfo.IsDir() {
			errors = append(errors, ConfigValidationError{
				Field:    fieldName,
				Message:  "parent path is not a directory: " + parentDir,
				Severity: SeverityError,
			})
			continue
		}

		if !isDirectoryWritable(parentDir) {
			errors = append(errors, ConfigValidationError{
				Field:    fieldName,
				Message:  "parent directory is not writable: " + parentDir,
				Severity: SeverityError,
			})
		}
	}

	return errors
}

// formatField creates a field reference string for validation errors.
func formatField(name string, index int) string {
	return name + "[" + itoa(index) + "]"
}

// itoa converts an integer to a string without importing strconv.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var result []byte
	negative := i < 0
	if negative {
		i = -i
	}
	for i > 0 {
		result = append([]byte{byte('0' + i%10)}, result...)
		i /= 10
	}
	if negative {
		result = append([]byte{'-'}, result...)
	}
	return string(result)
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	testFile := filepath.Join(dir, ".tagtidy_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(testFile)
	return true
}

// ValidateArtistRules checks for duplicate artist/album pairs and for target
// directories that overlap a source directory.
func ValidateArtistRules(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	// Duplicate artist+album pairs (case-insensitive). Two rules for the
	// same artist are fine when their albums differ.
	ruleMap := make(map[string]int) // lowercase artist|album -> first index
	for i, rule := range cfg.ArtistRules {
		key := strings.ToLower(rule.Artist) + "|" + strings.ToLower(rule.Album)
		if firstIdx, exists := ruleMap[key]; exists {
			errors = append(errors, ConfigValidationError{
				Field:    formatField("artistRules", i) + ".artist",
				Message:  "duplicate artist rule (case-insensitive): \"" + rule.Artist + "\" conflicts with rule at index " + itoa(firstIdx),
				Severity: SeverityError,
			})
		} else {
			ruleMap[key] = i
		}
	}

	// A target directory nested inside a source directory would make the
	// organizer feed its own output back into the scanner
	for i, rule := range cfg.ArtistRules {
		for j, src := range cfg.SourceDirectories {
			if directoriesOverlap(rule.TargetDirectory, src) {
				errors = append(errors, ConfigValidationError{
					Field:    formatField("artistRules", i) + ".targetDirectory",
					Message:  "target directory \"" + rule.TargetDirectory + "\" overlaps with source directory at index " + itoa(j),
					Severity: SeverityError,
				})
			}
		}
	}

	return errors
}

// directoriesOverlap checks if two directories overlap (one is parent/ancestor of the other).
func directoriesOverlap(dir1, dir2 string) bool {
	clean1 := filepath.Clean(dir1)
	clean2 := filepath.Clean(dir2)

	if clean1 == clean2 {
		return true
	}

	if strings.HasPrefix(clean2, clean1+string(filepath.Separator)) {
		return true
	}

	if strings.HasPrefix(clean1, clean2+string(filepath.Separator)) {
		return true
	}

	return false
}

// ValidatePolicies checks that policy values are valid.
func ValidatePolicies(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if cfg.SymlinkPolicy != "" {
		validPolicies := map[string]bool{
			"follow": true,
			"skip":   true,
			"error":  true,
		}
		if !validPolicies[cfg.SymlinkPolicy] {
			errors = append(errors, ConfigValidationError{
				Field:    "symlinkPolicy",
				Message:  "invalid symlink policy: \"" + cfg.SymlinkPolicy + "\". Must be \"follow\", \"skip\", or \"error\"",
				Severity: SeverityError,
			})
		}
	}

	if cfg.ScanDepth != nil && *cfg.ScanDepth < 0 {
		errors = append(errors, ConfigValidationError{
			Field:    "scanDepth",
			Message:  "scanDepth must be a non-negative integer",
			Severity: SeverityError,
		})
	}

	if cfg.Watch != nil {
		if cfg.Watch.DebounceSeconds < 0 {
			errors = append(errors, ConfigValidationError{
				Field:    "watch.debounceSeconds",
				Message:  "debounceSeconds must be a non-negative integer",
				Severity: SeverityError,
			})
		}
		if cfg.Watch.StableThresholdMs < 0 {
			errors = append(errors, ConfigValidationError{
				Field:    "watch.stableThresholdMs",
				Message:  "stableThresholdMs must be a non-negative integer",
				Severity: SeverityError,
			})
		}
	}

	return errors
}
