// Package s3 implements the destination ObjectStore on Amazon S3 or any
// S3-compatible endpoint.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Metrics is an optional collector for S3 operation outcomes.
type Metrics interface {
	ObserveOperation(op string, d time.Duration, err error)
}

// retryConfig holds retry settings for S3 operations.
type retryConfig struct {
	maxRetries        uint
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

// Store implements store.ObjectStore against a single bucket.
//
// Transient errors (network timeouts, throttling, 5xx) are retried with
// exponential backoff on every operation. Not found and access denied are
// never retried. The store is safe for concurrent use.
type Store struct {
	client  *s3.Client
	bucket  string
	retry   retryConfig
	metrics Metrics
}

// Config contains configuration for the S3 store.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the destination bucket name. It must already exist.
	Bucket string

	// MaxRetries is the retry budget for transient errors (default: 3).
	MaxRetries uint

	// InitialBackoff is the delay before the first retry (default: 100ms).
	// Subsequent retries back off exponentially up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff between retries (default: 2s).
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential backoff factor (default: 2.0).
	BackoffMultiplier float64

	// Metrics is an optional metrics collector.
	Metrics Metrics
}

// NewClient creates an S3 client. With accessKeyID and secretAccessKey
// set, static credentials are used; otherwise the SDK default chain
// (environment, shared config, instance role) resolves them. A non-empty
// endpoint overrides the AWS endpoint for S3-compatible stores, which
// usually also need path-style addressing.
func NewClient(ctx context.Context, region, endpoint, accessKeyID, secretAccessKey string, forcePathStyle bool) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = forcePathStyle
	}), nil
}

// New creates an S3 store and verifies bucket access with a HeadBucket
// probe. The bucket is not created here.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	initialBackoff := cfg.InitialBackoff
	if initialBackoff == 0 {
		initialBackoff = 100 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = 2 * time.Second
	}
	backoffMultiplier := cfg.BackoffMultiplier
	if backoffMultiplier == 0 {
		backoffMultiplier = 2.0
	}

	if _, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client:  cfg.Client,
		bucket:  cfg.Bucket,
		metrics: cfg.Metrics,
		retry: retryConfig{
			maxRetries:        maxRetries,
			initialBackoff:    initialBackoff,
			maxBackoff:        maxBackoff,
			backoffMultiplier: backoffMultiplier,
		},
	}, nil
}

// calculateBackoff returns the backoff duration for a given attempt.
func (s *Store) calculateBackoff(attempt int) time.Duration {
	backoff := float64(s.retry.initialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= s.retry.backoffMultiplier
	}
	if backoff > float64(s.retry.maxBackoff) {
		backoff = float64(s.retry.maxBackoff)
	}
	return time.Duration(backoff)
}
