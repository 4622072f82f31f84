package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// activeLogName is the filename of the log currently being appended to.
const activeLogName = "tagtidy-audit.jsonl"

// indexName is the filename of the rotation index.
const indexName = "tagtidy-audit-index.json"

// RotationIndex tracks all log segments for discovery.
type RotationIndex struct {
	Segments    []SegmentInfo `json:"segments"`
	ActiveLog   string        `json:"activeLog"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

// SegmentInfo contains metadata about a rotated log segment.
type SegmentInfo struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// RotationManager handles size-based log rotation.
type RotationManager struct {
	config       AuditConfig
	lastRotation time.Time
}

// NewRotationManager creates a new RotationManager with the given configuration.
func NewRotationManager(config AuditConfig) *RotationManager {
	return &RotationManager{
		config:       config,
		lastRotation: time.Now(),
	}
}

// NeedsRotation checks if the current log file needs rotation.
func (rm *RotationManager) NeedsRotation(logPath string) (bool, error) {
	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}

	return rm.config.RotationSize > 0 && info.Size() >= rm.config.RotationSize, nil
}

// GenerateRotatedFilename creates a filename for a rotated log segment.
// Format: tagtidy-audit-YYYYMMDD-HHMMSS-NNN.jsonl (with milliseconds for
// uniqueness).
func (rm *RotationManager) GenerateRotatedFilename() string {
	now := time.Now()
	return fmt.Sprintf("tagtidy-audit-%s-%03d.jsonl", now.Format("20060102-150405"), now.Nanosecond()/1000000)
}

// Rotate performs the log rotation. It renames the current log file and
// updates the index.
func (rm *RotationManager) Rotate(logPath string) (string, error) {
	return rm.RotateWithFilename(logPath, rm.GenerateRotatedFilename())
}

// RotateWithFilename performs the log rotation with a specific filename.
// This is used when the filename needs to be consistent with a previously
// written ROTATION event.
func (rm *RotationManager) RotateWithFilename(logPath, rotatedFilename string) (string, error) {
	dir := filepath.Dir(logPath)
	rotatedPath := filepath.Join(dir, rotatedFilename)

	info, err := os.Stat(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat log file for rotation: %w", err)
	}

	if err := os.Rename(logPath, rotatedPath); err != nil {
		return "", fmt.Errorf("failed to rename log file during rotation: %w", err)
	}

	if err := rm.updateIndex(dir, rotatedFilename, info.Size()); err != nil {
		// the rotation itself succeeded and the index can be rebuilt from
		// the filesystem, so only warn
		fmt.Fprintf(os.Stderr, "warning: failed to update rotation index: %v\n", err)
	}

	rm.lastRotation = time.Now()
	return rotatedPath, nil
}

// updateIndex updates or creates the rotation index file.
func (rm *RotationManager) updateIndex(logDir, rotatedFilename string, size int64) error {
	indexPath := filepath.Join(logDir, indexName)

	index, err := loadIndex(indexPath)
	if err != nil {
		// missing or corrupt index: start a fresh one
		index = &RotationIndex{
			Segments:  []SegmentInfo{},
			ActiveLog: activeLogName,
		}
	}

	index.Segments = append(index.Segments, SegmentInfo{
		Filename:  rotatedFilename,
		CreatedAt: time.Now(),
		Size:      size,
	})
	index.LastUpdated = time.Now()

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := os.WriteFile(indexPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	return nil
}

// loadIndex loads the rotation index from disk.
func loadIndex(indexPath string) (*RotationIndex, error) {
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}

	var index RotationIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	return &index, nil
}

// LoadIndex loads the rotation index from the log directory.
func LoadIndex(logDir string) (*RotationIndex, error) {
	return loadIndex(filepath.Join(logDir, indexName))
}

// DiscoverSegments finds all rotated log segments in the directory, sorted
// chronologically (oldest first). This can be used to rebuild the index or
// when the index is missing.
func DiscoverSegments(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "tagtidy-audit-") && strings.HasSuffix(name, ".jsonl") && name != activeLogName {
			segments = append(segments, name)
		}
	}

	sort.Strings(segments)

	return segments, nil
}

// GetAllLogFiles returns all log files in chronological order (oldest
// first), rotated segments followed by the active log.
func GetAllLogFiles(logDir string) ([]string, error) {
	segments, err := DiscoverSegments(logDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, seg := range segments {
		files = append(files, filepath.Join(logDir, seg))
	}

	activeLog := filepath.Join(logDir, activeLogName)
	if _, err := os.Stat(activeLog); err == nil {
		files = append(files, activeLog)
	}

	return files, nil
}

// CreateRotationEvent creates a ROTATION event to be written before
// switching files.
func CreateRotationEvent(runID RunID, oldFile, newFile string) AuditEvent {
	return AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRotation,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"previousFile": oldFile,
			"newFile":      newFile,
			"reason":       "rotation",
		},
	}
}
