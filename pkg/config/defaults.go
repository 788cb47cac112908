package config

import (
	"time"

	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
	"github.com/HemeraProtocol/seismic-verify/pkg/transfer"
)

// Default values applied for any setting the file, environment, and flags
// leave unset.
const (
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stderr"

	DefaultRegion = "us-east-1"

	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 100 * time.Millisecond
)

// GetDefaultConfig returns a fully defaulted configuration. The bucket has
// no default; it must come from config, environment, or flag.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued settings in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLogOutput
	}

	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = solc.DefaultBaseURL
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = DefaultRegion
	}

	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = transfer.DefaultWorkers
	}
	if cfg.Sync.MaxRetries == 0 {
		cfg.Sync.MaxRetries = DefaultMaxRetries
	}
	if cfg.Sync.RetryBackoff == 0 {
		cfg.Sync.RetryBackoff = DefaultRetryBackoff
	}
}
