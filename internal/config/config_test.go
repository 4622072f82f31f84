package config

import (
	"os"
	"path/filepath"
	"reflect"
	"tagtidy/internal/audit"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genNonEmptyString generates non-empty strings for configuration fields.
func genNonEmptyString() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0
	})
}

// genArtistRule generates a valid ArtistRule.
func genArtistRule() gopter.Gen {
	return gopter.CombineGens(
		genNonEmptyString(),
		gen.AlphaString(),
		genNonEmptyString(),
	).Map(func(vals []interface{}) ArtistRule {
		return ArtistRule{
			Artist:          vals[0].(string),
			Album:           vals[1].(string),
			TargetDirectory: vals[2].(string),
		}
	})
}

// genAuditConfig generates a valid AuditConfig.
func genAuditConfig() gopter.Gen {
	return gopter.CombineGens(
		gen.Bool(),
		genNonEmptyString(),
		gen.Int64Range(1024, 100*1024*1024),
	).Map(func(vals []interface{}) *audit.AuditConfig {
		return &audit.AuditConfig{
			Enabled:      vals[0].(bool),
			LogDirectory: vals[1].(string),
			RotationSize: vals[2].(int64),
		}
	})
}

// genConfiguration generates a valid Configuration object.
func genConfiguration() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(3, genNonEmptyString()).SuchThat(func(s []string) bool {
			return len(s) > 0
		}),
		gen.SliceOfN(3, genArtistRule()).SuchThat(func(rules []ArtistRule) bool {
			return len(rules) > 0
		}),
		genAuditConfig(),
	).Map(func(vals []interface{}) *Configuration {
		return &Configuration{
			SourceDirectories: vals[0].([]string),
			ArtistRules:       vals[1].([]ArtistRule),
			Audit:             vals[2].(*audit.AuditConfig),
		}
	})
}

func TestConfigurationRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Configuration round-trip preserves data", prop.ForAll(
		func(config *Configuration) bool {
			tmpDir := t.TempDir()
			tmpFile := filepath.Join(tmpDir, "config.json")

			if err := Save(config, tmpFile); err != nil {
				t.Logf("Save failed: %v", err)
				return false
			}

			// LoadOrCreate doesn't validate, so any generated config loads
			loaded, err := LoadOrCreate(tmpFile)
			if err != nil {
				t.Logf("LoadOrCreate failed: %v", err)
				return false
			}

			return reflect.DeepEqual(config, loaded)
		},
		genConfiguration(),
	))

	properties.TestingRun(t)
}

func TestArtistRuleDuplicatePrevention(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("AddArtistRule rejects duplicate artists regardless of case", prop.ForAll(
		func(rule ArtistRule) bool {
			cfg := &Configuration{}

			if !cfg.AddArtistRule(rule) {
				return false
			}

			// Same artist with swapped case must be rejected
			dup := rule
			dup.Artist = swapCase(rule.Artist)
			if cfg.AddArtistRule(dup) {
				return false
			}

			return len(cfg.ArtistRules) == 1
		},
		genArtistRule(),
	))

	properties.TestingRun(t)
}

func swapCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			out[i] = r - 'A' + 'a'
		}
	}
	return string(out)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != FileNotFound {
		t.Errorf("expected FileNotFound, got %s", cfgErr.Type)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(tmpFile, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpFile)
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Type != InvalidJSON {
		t.Errorf("expected InvalidJSON, got %s", cfgErr.Type)
	}
}

func TestLoadValidatesRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"no source directories", `{"sourceDirectories":[],"artistRules":[{"artist":"Dool","targetDirectory":"/music"}]}`},
		{"no artist rules", `{"sourceDirectories":["/in"],"artistRules":[]}`},
		{"empty artist", `{"sourceDirectories":["/in"],"artistRules":[{"artist":"  ","targetDirectory":"/music"}]}`},
		{"empty target", `{"sourceDirectories":["/in"],"artistRules":[{"artist":"Dool","targetDirectory":""}]}`},
		{"extension without dot", `{"sourceDirectories":["/in"],"artistRules":[{"artist":"Dool","targetDirectory":"/music"}],"extensions":["mp3"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(tmpFile, []byte(tt.json), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(tmpFile)
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Type != ValidationError {
				t.Errorf("expected ValidationError, got %s", cfgErr.Type)
			}
		})
	}
}

func TestLoadAppliesAuditDefaults(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	body := `{"sourceDirectories":["/in"],"artistRules":[{"artist":"Dool","targetDirectory":"/music"}]}`
	if err := os.WriteFile(tmpFile, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Audit == nil {
		t.Fatal("expected audit defaults to be applied")
	}
	defaults := audit.DefaultAuditConfig()
	if cfg.Audit.LogDirectory != defaults.LogDirectory {
		t.Errorf("LogDirectory = %q, want %q", cfg.Audit.LogDirectory, defaults.LogDirectory)
	}
	if cfg.Audit.RotationSize != defaults.RotationSize {
		t.Errorf("RotationSize = %d, want %d", cfg.Audit.RotationSize, defaults.RotationSize)
	}
}

func TestLoadOrCreateMissingFile(t *testing.T) {
	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.SourceDirectories) != 0 || len(cfg.ArtistRules) != 0 {
		t.Error("expected empty configuration")
	}
	if cfg.Audit == nil {
		t.Error("expected audit defaults")
	}
}

func TestDefaultExtensions(t *testing.T) {
	cfg := &Configuration{}
	exts := cfg.GetExtensions()
	if len(exts) == 0 {
		t.Fatal("expected default extensions")
	}
	want := map[string]bool{".opus": true, ".mp3": true, ".flac": true}
	found := 0
	for _, e := range exts {
		if want[e] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("default extensions %v missing common audio types", exts)
	}

	cfg.Extensions = []string{".mp3"}
	if got := cfg.GetExtensions(); len(got) != 1 || got[0] != ".mp3" {
		t.Errorf("configured extensions not respected: %v", got)
	}
}

func TestPolicyDefaults(t *testing.T) {
	cfg := &Configuration{}
	if cfg.GetSymlinkPolicy() != "skip" {
		t.Errorf("default symlink policy = %q, want skip", cfg.GetSymlinkPolicy())
	}
	if cfg.GetScanDepth() != 0 {
		t.Errorf("default scan depth = %d, want 0", cfg.GetScanDepth())
	}

	depth := 3
	cfg.ScanDepth = &depth
	cfg.SymlinkPolicy = "follow"
	if cfg.GetScanDepth() != 3 || cfg.GetSymlinkPolicy() != "follow" {
		t.Error("configured policies not respected")
	}
}
