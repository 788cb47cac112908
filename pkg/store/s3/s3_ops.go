package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/HemeraProtocol/seismic-verify/internal/logger"
	"github.com/HemeraProtocol/seismic-verify/pkg/store"
)

// Exists reports whether an object is present at key.
//
// This performs a HEAD request; the object body is never downloaded. A 404
// is not an error for an existence check and returns (false, nil).
func (s *Store) Exists(ctx context.Context, key string) (exists bool, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("Exists", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return false, err
	}

	var lastErr error
	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			if err := s.waitBackoff(ctx, attempt, "Exists", key); err != nil {
				return false, err
			}
		}

		_, lastErr = s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})

		if lastErr == nil {
			return true, nil
		}
		if isNotFoundError(lastErr) {
			return false, nil
		}
		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("Exists: transient error", "attempt", attempt+1, "key", key, "error", lastErr)
	}

	return false, fmt.Errorf("failed to check object existence after %d attempts: %w", s.retry.maxRetries+1, lastErr)
}

// Get downloads the full object at key. Returns store.ErrNotFound when the
// object does not exist.
func (s *Store) Get(ctx context.Context, key string) (data []byte, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("Get", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	var result *s3.GetObjectOutput
	var lastErr error

	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			if err := s.waitBackoff(ctx, attempt, "Get", key); err != nil {
				return nil, err
			}
		}

		result, lastErr = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})

		if lastErr == nil {
			break
		}
		if isNotFoundError(lastErr) {
			return nil, fmt.Errorf("%s: %w", key, store.ErrNotFound)
		}
		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("Get: transient error", "attempt", attempt+1, "key", key, "error", lastErr)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("failed to get object from S3 after %d attempts: %w", s.retry.maxRetries+1, lastErr)
	}

	defer func() { _ = result.Body.Close() }()

	data, err = io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body for %s: %w", key, err)
	}
	return data, nil
}

// Put uploads the object at key, overwriting any existing object.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation("Put", time.Since(start), err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= int(s.retry.maxRetries); attempt++ {
		if attempt > 0 {
			if err := s.waitBackoff(ctx, attempt, "Put", key); err != nil {
				return err
			}
		}

		_, lastErr = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})

		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) {
			break
		}

		logger.Debug("Put: transient error", "attempt", attempt+1, "key", key, "error", lastErr)
	}

	return fmt.Errorf("failed to put object to S3 after %d attempts: %w", s.retry.maxRetries+1, lastErr)
}

var _ store.ObjectStore = (*Store)(nil)

// waitBackoff sleeps for the attempt's backoff, aborting early on context
// cancellation.
func (s *Store) waitBackoff(ctx context.Context, attempt int, op, key string) error {
	backoff := s.calculateBackoff(attempt - 1)
	logger.Debug("Retrying S3 operation", "op", op, "backoff", backoff, "attempt", attempt, "max_retries", s.retry.maxRetries, "key", key)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
