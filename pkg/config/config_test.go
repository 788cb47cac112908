package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
)

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "DEBUG"

source:
  limit: 25

storage:
  bucket: "compiler-binaries"
  region: "eu-west-1"

sync:
  workers: 8
  retry_backoff: "250ms"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected log level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Source.Limit != 25 {
		t.Errorf("Expected limit 25, got %d", cfg.Source.Limit)
	}
	if cfg.Storage.Bucket != "compiler-binaries" {
		t.Errorf("Expected bucket 'compiler-binaries', got %q", cfg.Storage.Bucket)
	}
	if cfg.Storage.Region != "eu-west-1" {
		t.Errorf("Expected region 'eu-west-1', got %q", cfg.Storage.Region)
	}
	if cfg.Sync.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Sync.Workers)
	}
	if cfg.Sync.RetryBackoff != 250*time.Millisecond {
		t.Errorf("Expected retry backoff 250ms, got %v", cfg.Sync.RetryBackoff)
	}

	// Settings the file leaves unset fall back to defaults.
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Expected default format %q, got %q", DefaultLogFormat, cfg.Logging.Format)
	}
	if cfg.Source.BaseURL != solc.DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", cfg.Source.BaseURL)
	}
	if cfg.Sync.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected default max retries %d, got %d", DefaultMaxRetries, cfg.Sync.MaxRetries)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// A missing config file is not an error; the run proceeds on defaults
	// (and whatever the environment and flags supply).
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading without a config file, got: %v", err)
	}

	if cfg.Source.BaseURL != solc.DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", cfg.Source.BaseURL)
	}
	if cfg.Storage.Region != DefaultRegion {
		t.Errorf("Expected default region %q, got %q", DefaultRegion, cfg.Storage.Region)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOLCSYNC_SYNC_WORKERS", "12")
	t.Setenv("SOLCSYNC_STORAGE_BUCKET", "env-bucket")

	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Sync.Workers != 12 {
		t.Errorf("Expected 12 workers from environment, got %d", cfg.Sync.Workers)
	}
	if cfg.Storage.Bucket != "env-bucket" {
		t.Errorf("Expected bucket 'env-bucket' from environment, got %q", cfg.Storage.Bucket)
	}
}

func TestLoad_AWSStyleEnvVars(t *testing.T) {
	// The bare AWS-style names used by the original deployment keep
	// working alongside the SOLCSYNC_ prefixed ones.
	t.Setenv("S3_BUCKET", "legacy-bucket")
	t.Setenv("AWS_REGION", "ap-southeast-2")

	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Storage.Bucket != "legacy-bucket" {
		t.Errorf("Expected bucket 'legacy-bucket', got %q", cfg.Storage.Bucket)
	}
	if cfg.Storage.Region != "ap-southeast-2" {
		t.Errorf("Expected region 'ap-southeast-2', got %q", cfg.Storage.Region)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Storage.Bucket = "saved-bucket"
	cfg.Sync.Workers = 5

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Storage.Bucket != "saved-bucket" {
		t.Errorf("Expected bucket 'saved-bucket' after round trip, got %q", loaded.Storage.Bucket)
	}
	if loaded.Sync.Workers != 5 {
		t.Errorf("Expected 5 workers after round trip, got %d", loaded.Sync.Workers)
	}
}
