// Package organizer moves renamed audio files into the per-artist library
// layout for Tagtidy.
package organizer

import (
	"fmt"
	"os"
	"path/filepath"

	"tagtidy/internal/classifier"
	"tagtidy/internal/scanner"
)

// MoveErrorType represents the type of move error.
type MoveErrorType string

const (
	// SourceNotFound indicates the source file does not exist.
	SourceNotFound MoveErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates a file already exists at the destination.
	DestinationExists MoveErrorType = "DESTINATION_EXISTS"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied MoveErrorType = "PERMISSION_DENIED"
)

// MoveError represents an error that occurred during file movement.
type MoveError struct {
	Type MoveErrorType
	Path string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// MoveResult represents the result of a successful file move operation.
type MoveResult struct {
	SourcePath      string
	DestinationPath string
	IsDuplicate     bool   // True if the file was renamed due to a duplicate
	OriginalName    string // Filename before duplicate renaming (empty if not a duplicate)
}

// Organize moves a file to its destination based on classification.
// For CLASSIFIED files: moves to <targetDirectory>/<Artist>/<normalisedFilename>
// For UNCLASSIFIED files: moves to the for-review subdirectory of the source
// directory, keeping the original name.
// If a file with the same name exists at the destination, it is renamed with
// a duplicate suffix.
func Organize(file scanner.FileEntry, classification *classifier.Classification) (*MoveResult, error) {
	var destDir string
	var destFilename string

	if classification.IsClassified() {
		destDir = filepath.Join(classification.TargetDirectory, classification.Artist)
		destFilename = classification.NormalisedFilename
	} else {
		destDir = GetForReviewPath(filepath.Dir(file.FullPath))
		destFilename = file.Name
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		if os.IsPermission(err) {
			return nil, &MoveError{
				Type: PermissionDenied,
				Path: destDir,
				Err:  err,
			}
		}
		return nil, err
	}

	if _, err := os.Stat(file.FullPath); os.IsNotExist(err) {
		return nil, &MoveError{
			Type: SourceNotFound,
			Path: file.FullPath,
			Err:  err,
		}
	}

	originalFilename := destFilename
	isDuplicate := false
	if FileExists(filepath.Join(destDir, destFilename)) {
		destFilename = GenerateDuplicateName(destDir, destFilename)
		isDuplicate = true
	}

	destPath := filepath.Join(destDir, destFilename)

	if err := os.Rename(file.FullPath, destPath); err != nil {
		if os.IsPermission(err) {
			return nil, &MoveError{
				Type: PermissionDenied,
				Path: file.FullPath,
				Err:  err,
			}
		}
		// If rename fails (e.g., cross-device), fall back to copy+delete
		if err := copyAndDelete(file.FullPath, destPath); err != nil {
			return nil, err
		}
	}

	result := &MoveResult{
		SourcePath:      file.FullPath,
		DestinationPath: destPath,
		IsDuplicate:     isDuplicate,
	}
	if isDuplicate {
		result.OriginalName = originalFilename
	}

	return result, nil
}

// copyAndDelete copies a file to a new location and deletes the original.
// Used as a fallback when os.Rename fails (e.g., cross-device moves).
func copyAndDelete(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return &MoveError{
				Type: SourceNotFound,
				Path: src,
				Err:  err,
			}
		}
		if os.IsPermission(err) {
			return &MoveError{
				Type: PermissionDenied,
				Path: src,
				Err:  err,
			}
		}
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, data, srcInfo.Mode()); err != nil {
		if os.IsPermission(err) {
			return &MoveError{
				Type: PermissionDenied,
				Path: dst,
				Err:  err,
			}
		}
		return err
	}

	if err := os.Remove(src); err != nil {
		// If we can't delete source, try to clean up destination
		os.Remove(dst)
		if os.IsPermission(err) {
			return &MoveError{
				Type: PermissionDenied,
				Path: src,
				Err:  err,
			}
		}
		return err
	}

	return nil
}

// GetForReviewPath returns the for-review subdirectory for a source directory.
// Unclassified files are parked there, close to where they were found.
func GetForReviewPath(sourceDir string) string {
	return filepath.Join(sourceDir, scanner.ForReviewDirName)
}
