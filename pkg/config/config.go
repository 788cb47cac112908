// Package config loads and validates the solcsync configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, constructed once at startup
// and passed into the pipeline. Nothing reads configuration ad hoc
// mid-run.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (SOLCSYNC_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// AWS credentials additionally follow the SDK default chain, so the usual
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY environment variables work
// without any solcsync-specific configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Source selects and configures the artifact source.
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Storage configures the destination object store.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Sync configures the transfer pipeline.
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// SourceConfig selects where compiler artifacts come from. With LocalDir
// set the run scans that directory instead of the remote listing.
type SourceConfig struct {
	// BaseURL is the remote release directory index.
	BaseURL string `mapstructure:"base_url" validate:"required,url" yaml:"base_url"`

	// LocalDir switches to local-scan mode rooted at this directory.
	LocalDir string `mapstructure:"local_dir" yaml:"local_dir"`

	// Limit caps the number of artifacts processed; 0 means no cap.
	Limit int `mapstructure:"limit" validate:"gte=0" yaml:"limit"`
}

// StorageConfig configures the destination S3 bucket.
type StorageConfig struct {
	// Bucket is the destination bucket name. Required unless the run is
	// a dry run against the in-memory store.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Region is the AWS region.
	Region string `mapstructure:"region" validate:"required" yaml:"region"`

	// Endpoint overrides the S3 endpoint for compatible stores
	// (MinIO, LocalStack). Empty means AWS.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey select static credentials. Left
	// empty, the SDK default chain resolves credentials.
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`

	// ForcePathStyle enables path-style addressing, usually required by
	// S3-compatible endpoints.
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// SyncConfig configures the transfer pipeline.
type SyncConfig struct {
	// Workers is the concurrency bound for in-flight transfers.
	Workers int `mapstructure:"workers" validate:"required,gt=0" yaml:"workers"`

	// MaxRetries bounds retries of transient download and S3 failures.
	MaxRetries uint `mapstructure:"max_retries" yaml:"max_retries"`

	// RetryBackoff is the initial backoff before the first retry;
	// subsequent retries back off exponentially.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`

	// DryRun swaps the destination for an in-memory store so a run can
	// be rehearsed without bucket writes.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// MetricsConfig configures the Prometheus endpoint served for the
// duration of a sync run.
type MetricsConfig struct {
	// Enabled turns the metrics registry on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen is the address for the /metrics endpoint, e.g.
	// "127.0.0.1:9090". Empty disables the HTTP listener even when the
	// registry is enabled.
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses the default
//     location, and a missing file falls back to defaults)
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if configFileFound || hasEnvOverrides() {
		if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes the configuration as YAML. Written with restricted
// permissions since the file may carry credentials.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetDefaultConfigPath returns the default config file location:
// $XDG_CONFIG_HOME/solcsync/config.yaml.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "solcsync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "solcsync")
}

// setupViper configures environment variable support and the config file
// search path.
func setupViper(v *viper.Viper, configPath string) {
	// SOLCSYNC_STORAGE_BUCKET=... overrides storage.bucket, and so on.
	v.SetEnvPrefix("SOLCSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind every key explicitly so environment-only values survive
	// Unmarshal even when no config file supplies the key.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"source.base_url", "source.local_dir", "source.limit",
		"storage.endpoint", "storage.access_key_id", "storage.secret_access_key",
		"storage.force_path_style",
		"sync.workers", "sync.max_retries", "sync.retry_backoff", "sync.dry_run",
		"metrics.enabled", "metrics.listen",
	} {
		_ = v.BindEnv(key)
	}

	// The original deployment configured the bucket and region through
	// bare AWS-style variables; keep honoring them.
	_ = v.BindEnv("storage.bucket", "SOLCSYNC_STORAGE_BUCKET", "S3_BUCKET")
	_ = v.BindEnv("storage.region", "SOLCSYNC_STORAGE_REGION", "AWS_REGION")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error); a missing file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// hasEnvOverrides reports whether any solcsync environment override is
// set, so that env-only runs (no config file) still unmarshal.
func hasEnvOverrides() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SOLCSYNC_") ||
			strings.HasPrefix(kv, "S3_BUCKET=") ||
			strings.HasPrefix(kv, "AWS_REGION=") {
			return true
		}
	}
	return false
}

// configDecodeHooks returns the decode hooks for custom config types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "500ms" or "2s" into
// time.Duration values.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) || from.Kind() != reflect.String {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}
