package config

import (
	"testing"
	"time"

	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
	"github.com/HemeraProtocol/seismic-verify/pkg/transfer"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default log output 'stderr', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Pipeline(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Source.BaseURL != solc.DefaultBaseURL {
		t.Errorf("Expected default base URL %q, got %q", solc.DefaultBaseURL, cfg.Source.BaseURL)
	}
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("Expected default region 'us-east-1', got %q", cfg.Storage.Region)
	}
	if cfg.Sync.Workers != transfer.DefaultWorkers {
		t.Errorf("Expected default workers %d, got %d", transfer.DefaultWorkers, cfg.Sync.Workers)
	}
	if cfg.Sync.RetryBackoff != 100*time.Millisecond {
		t.Errorf("Expected default retry backoff 100ms, got %v", cfg.Sync.RetryBackoff)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "ERROR"
	cfg.Sync.Workers = 16
	cfg.Storage.Region = "eu-central-1"

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Explicit log level overwritten: %q", cfg.Logging.Level)
	}
	if cfg.Sync.Workers != 16 {
		t.Errorf("Explicit worker count overwritten: %d", cfg.Sync.Workers)
	}
	if cfg.Storage.Region != "eu-central-1" {
		t.Errorf("Explicit region overwritten: %q", cfg.Storage.Region)
	}
}

func TestGetDefaultConfig_NoBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	if cfg.Storage.Bucket != "" {
		t.Errorf("Bucket must have no default, got %q", cfg.Storage.Bucket)
	}
}
