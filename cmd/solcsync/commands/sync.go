package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HemeraProtocol/seismic-verify/internal/cli/output"
	"github.com/HemeraProtocol/seismic-verify/internal/logger"
	"github.com/HemeraProtocol/seismic-verify/pkg/config"
	"github.com/HemeraProtocol/seismic-verify/pkg/metrics"
	promimpl "github.com/HemeraProtocol/seismic-verify/pkg/metrics/prometheus"
	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
	"github.com/HemeraProtocol/seismic-verify/pkg/store"
	"github.com/HemeraProtocol/seismic-verify/pkg/store/memory"
	s3store "github.com/HemeraProtocol/seismic-verify/pkg/store/s3"
	"github.com/HemeraProtocol/seismic-verify/pkg/transfer"
)

// maxListedFailures caps how many failed versions the summary prints
// individually.
const maxListedFailures = 10

var (
	flagLimit    int
	flagWorkers  int
	flagBucket   string
	flagLocalDir string
	flagBaseURL  string
	flagDryRun   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync compiler binaries to the destination bucket",
	Long: `Sync reconciles compiler versions against the destination bucket.

By default versions come from the official release directory index. With
--local-dir, the given directory (and its immediate subdirectories) is
scanned for solc binaries instead, and each binary is asked for its
version via "solc --version".

Examples:
  # Sync every listed release
  solcsync sync --bucket solidity-public

  # Test with the first five versions only
  solcsync sync --bucket solidity-public --limit 5

  # Upload locally built compilers
  solcsync sync --bucket solidity-public --local-dir ~/solc_builds

  # Rehearse without touching the bucket
  solcsync sync --dry-run --limit 5`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&flagLimit, "limit", 0, "Max number of versions to process (0 = all)")
	syncCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Number of concurrent transfer workers")
	syncCmd.Flags().StringVar(&flagBucket, "bucket", "", "Destination S3 bucket")
	syncCmd.Flags().StringVar(&flagLocalDir, "local-dir", "", "Scan this local directory instead of the remote listing")
	syncCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Remote release directory base URL")
	syncCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run against an in-memory store instead of the bucket")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := config.ValidateDestination(cfg); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var syncMetrics transfer.Metrics
	var s3Metrics s3store.Metrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		syncMetrics = promimpl.NewSyncMetrics()
		s3Metrics = promimpl.NewS3Metrics()
		if cfg.Metrics.Listen != "" {
			serveMetrics(cfg.Metrics.Listen)
		}
	}

	dest, err := buildDestination(ctx, cfg, s3Metrics)
	if err != nil {
		return err
	}

	source := buildSource(cfg)
	artifacts, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate artifacts: %w", err)
	}

	worker := transfer.NewWorker(dest, nil, transfer.RetryPolicy{
		MaxRetries:        cfg.Sync.MaxRetries,
		InitialBackoff:    cfg.Sync.RetryBackoff,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
	}, syncMetrics)

	summary := transfer.NewOrchestrator(worker, cfg.Sync.Workers).Run(ctx, artifacts)

	printSummary(summary)
	return summary.Err()
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
// Flags have the highest precedence.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("limit") {
		cfg.Source.Limit = flagLimit
	}
	if cmd.Flags().Changed("workers") {
		cfg.Sync.Workers = flagWorkers
	}
	if cmd.Flags().Changed("bucket") {
		cfg.Storage.Bucket = flagBucket
	}
	if cmd.Flags().Changed("local-dir") {
		cfg.Source.LocalDir = flagLocalDir
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Source.BaseURL = flagBaseURL
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Sync.DryRun = flagDryRun
	}
}

// buildDestination constructs the destination store: the configured S3
// bucket, or an in-memory store for dry runs.
func buildDestination(ctx context.Context, cfg *config.Config, s3Metrics s3store.Metrics) (store.ObjectStore, error) {
	if cfg.Sync.DryRun {
		logger.Info("Dry run: using in-memory destination store")
		return memory.New(), nil
	}

	client, err := s3store.NewClient(ctx,
		cfg.Storage.Region,
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKeyID,
		cfg.Storage.SecretAccessKey,
		cfg.Storage.ForcePathStyle,
	)
	if err != nil {
		return nil, err
	}

	return s3store.New(ctx, s3store.Config{
		Client:         client,
		Bucket:         cfg.Storage.Bucket,
		MaxRetries:     cfg.Sync.MaxRetries,
		InitialBackoff: cfg.Sync.RetryBackoff,
		Metrics:        s3Metrics,
	})
}

// buildSource selects the artifact source from configuration.
func buildSource(cfg *config.Config) solc.Source {
	if cfg.Source.LocalDir != "" {
		return solc.NewLocalSource(cfg.Source.LocalDir, nil, cfg.Source.Limit)
	}
	return solc.NewRemoteSource(cfg.Source.BaseURL, cfg.Source.Limit)
}

// serveMetrics exposes /metrics for the duration of the run.
func serveMetrics(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		logger.Info("Serving metrics", "addr", listen)
		if err := http.ListenAndServe(listen, mux); err != nil {
			logger.Warn("Metrics server stopped", "error", err)
		}
	}()
}

// printSummary renders the run summary and, when present, the failed
// versions (first maxListedFailures individually, then a count).
func printSummary(summary transfer.Summary) {
	fmt.Println()
	table := output.NewTable("Outcome", "Count")
	table.AddRow("Uploaded", strconv.Itoa(summary.Uploaded))
	table.AddRow("Skipped", strconv.Itoa(summary.Skipped))
	table.AddRow("Failed", strconv.Itoa(summary.Failed))
	table.Render(os.Stdout)

	if len(summary.Failures) == 0 {
		return
	}

	fmt.Println("\nFailures:")
	for i, f := range summary.Failures {
		if i == maxListedFailures {
			fmt.Printf("  ... and %d more failed versions\n", len(summary.Failures)-maxListedFailures)
			break
		}
		fmt.Printf("  %s: %s\n", f.Version, f.Reason)
	}
}
