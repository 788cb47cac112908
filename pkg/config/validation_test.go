package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Storage.Bucket = "bucket"
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("Expected error to name logging.level, got: %v", err)
	}
}

func TestValidate_InvalidBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Source.BaseURL = "not a url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid base URL")
	}
	if !strings.Contains(err.Error(), "source.base_url") {
		t.Errorf("Expected error to name source.base_url, got: %v", err)
	}
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.Workers = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for negative worker count")
	}
}

func TestValidate_CredentialPair(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.AccessKeyID = "AKIAEXAMPLE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for access key without secret")
	}
	if !strings.Contains(err.Error(), "set together") {
		t.Errorf("Unexpected error: %v", err)
	}

	cfg.Storage.SecretAccessKey = "secret"
	if err := Validate(cfg); err != nil {
		t.Errorf("Expected credential pair to validate, got: %v", err)
	}
}

func TestValidateDestination(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := ValidateDestination(cfg); err == nil {
		t.Error("Expected error: no bucket and not a dry run")
	}

	cfg.Sync.DryRun = true
	if err := ValidateDestination(cfg); err != nil {
		t.Errorf("Dry run should not require a bucket, got: %v", err)
	}

	cfg.Sync.DryRun = false
	cfg.Storage.Bucket = "bucket"
	if err := ValidateDestination(cfg); err != nil {
		t.Errorf("Bucket set should validate, got: %v", err)
	}
}
