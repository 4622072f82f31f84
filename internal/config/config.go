// Package config handles configuration loading and validation for Tagtidy.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"tagtidy/internal/audit"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidJSON     ConfigErrorType = "INVALID_JSON"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidJSON:
		return fmt.Sprintf("invalid JSON in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// ArtistRule maps an artist (and optionally one album) to a target directory.
// Files whose names start with the artist are renamed and moved under
// <targetDirectory>/<artist>/.
type ArtistRule struct {
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	TargetDirectory string `json:"targetDirectory"`
}

// WatchSettings configures the watch subcommand.
type WatchSettings struct {
	DebounceSeconds      int      `json:"debounceSeconds,omitempty"`
	StableThresholdMs    int      `json:"stableThresholdMs,omitempty"`
	StabilityTimeoutSecs int      `json:"stabilityTimeoutSecs,omitempty"`
	IgnorePatterns       []string `json:"ignorePatterns,omitempty"`
}

// Configuration holds all settings for Tagtidy.
type Configuration struct {
	SourceDirectories []string           `json:"sourceDirectories"`
	ArtistRules       []ArtistRule       `json:"artistRules"`
	Extensions        []string           `json:"extensions,omitempty"`
	SymlinkPolicy     string             `json:"symlinkPolicy,omitempty"`
	ScanDepth         *int               `json:"scanDepth,omitempty"`
	Watch             *WatchSettings     `json:"watch,omitempty"`
	Audit             *audit.AuditConfig `json:"audit,omitempty"`
}

// DefaultExtensions returns the audio file extensions processed when the
// configuration does not list any.
func DefaultExtensions() []string {
	return []string{".opus", ".ogg", ".mp3", ".m4a", ".flac", ".aac", ".wav"}
}

// Validate checks that the configuration has all required fields.
func (c *Configuration) Validate() error {
	if len(c.SourceDirectories) == 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "sourceDirectories must contain at least one directory",
		}
	}

	if len(c.ArtistRules) == 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "artistRules must contain at least one rule",
		}
	}

	for i, rule := range c.ArtistRules {
		if strings.TrimSpace(rule.Artist) == "" {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("artistRules[%d].artist cannot be empty", i),
			}
		}
		if rule.TargetDirectory == "" {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("artistRules[%d].targetDirectory cannot be empty", i),
			}
		}
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("extensions[%d] must start with a dot: %q", i, ext),
			}
		}
	}

	return nil
}

// ApplyAuditDefaults ensures the Audit configuration has sensible defaults.
// If Audit is nil, it creates a new AuditConfig with defaults.
// If Audit exists but has zero values, it applies defaults for those fields.
func (c *Configuration) ApplyAuditDefaults() {
	defaults := audit.DefaultAuditConfig()

	if c.Audit == nil {
		c.Audit = &defaults
		return
	}

	if c.Audit.LogDirectory == "" {
		c.Audit.LogDirectory = defaults.LogDirectory
	}
	if c.Audit.RotationSize == 0 {
		c.Audit.RotationSize = defaults.RotationSize
	}
}

// GetExtensions returns the configured extensions, or the default audio set.
func (c *Configuration) GetExtensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions()
	}
	return c.Extensions
}

// GetSymlinkPolicy returns the configured symlink policy, defaulting to "skip".
func (c *Configuration) GetSymlinkPolicy() string {
	if c.SymlinkPolicy == "" {
		return "skip"
	}
	return c.SymlinkPolicy
}

// GetScanDepth returns the configured scan depth.
// 0 means scan only the immediate directory contents.
func (c *Configuration) GetScanDepth() int {
	if c.ScanDepth == nil {
		return 0
	}
	return *c.ScanDepth
}

// HasArtist checks if an artist already has a rule (case-insensitive).
func (c *Configuration) HasArtist(artist string) bool {
	lowerArtist := strings.ToLower(artist)
	for _, rule := range c.ArtistRules {
		if strings.ToLower(rule.Artist) == lowerArtist {
			return true
		}
	}
	return false
}

// AddArtistRule adds a rule if the artist doesn't already exist (case-insensitive).
// Returns true if the rule was added, false if it was a duplicate.
func (c *Configuration) AddArtistRule(rule ArtistRule) bool {
	if c.HasArtist(rule.Artist) {
		return false
	}
	c.ArtistRules = append(c.ArtistRules, rule)
	return true
}

// HasSourceDirectory checks if a directory already exists in sourceDirectories.
func (c *Configuration) HasSourceDirectory(dir string) bool {
	for _, d := range c.SourceDirectories {
		if d == dir {
			return true
		}
	}
	return false
}

// AddSourceDirectory adds a directory if it doesn't already exist.
// Returns true if the directory was added, false if it was a duplicate.
func (c *Configuration) AddSourceDirectory(dir string) bool {
	if c.HasSourceDirectory(dir) {
		return false
	}
	c.SourceDirectories = append(c.SourceDirectories, dir)
	return true
}

// Load reads and parses a configuration file from the given path.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.ApplyAuditDefaults()

	return &config, nil
}

// LoadOrCreate loads config if it exists, or returns an empty config if the file doesn't exist.
func LoadOrCreate(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			defaults := audit.DefaultAuditConfig()
			return &Configuration{
				SourceDirectories: []string{},
				ArtistRules:       []ArtistRule{},
				Audit:             &defaults,
			}, nil
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	config.ApplyAuditDefaults()

	return &config, nil
}

// Save serializes and writes a configuration to the given path.
func Save(config *Configuration, filePath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}
