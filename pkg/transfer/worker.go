package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/HemeraProtocol/seismic-verify/internal/logger"
	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
	"github.com/HemeraProtocol/seismic-verify/pkg/store"
)

const (
	binaryContentType = "application/octet-stream"
	hashContentType   = "text/plain"

	// downloadTimeout bounds a single artifact download. Release
	// binaries run tens of megabytes.
	downloadTimeout = 5 * time.Minute
)

// Metrics is an optional collector for transfer outcomes.
type Metrics interface {
	ObserveOutcome(status string)
	ObserveTransfer(d time.Duration, bytes int)
}

// RetryPolicy bounds retries of transient download failures. Local reads
// and non-transient HTTP errors are never retried.
type RetryPolicy struct {
	MaxRetries        uint
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy mirrors the destination store's retry defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
	}
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}
	return time.Duration(backoff)
}

// Worker transfers single artifacts to the destination store. It holds no
// per-artifact state and is safe for concurrent use; the orchestrator
// shares one Worker across its pool.
type Worker struct {
	dest    store.ObjectStore
	client  *http.Client
	retry   RetryPolicy
	metrics Metrics
}

// NewWorker creates a transfer worker writing to dest. A nil client gets a
// download-appropriate default timeout.
func NewWorker(dest store.ObjectStore, client *http.Client, retry RetryPolicy, metrics Metrics) *Worker {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy()
	}
	return &Worker{dest: dest, client: client, retry: retry, metrics: metrics}
}

// Process reconciles one artifact against the destination:
//
//  1. Resolve the destination keys from platform and version.
//  2. Probe the binary key; if present, repair a missing hash file and
//     skip. The probe is authoritative: content that changed upstream
//     after the first upload is never re-uploaded.
//  3. Download (with bounded retry) or read the artifact bytes.
//  4. Digest the bytes.
//  5. Upload the binary, then the hash file. Both must succeed.
//
// A Failed outcome leaves no state considered done; re-processing the same
// artifact is safe because only the binary key guards the skip.
func (w *Worker) Process(ctx context.Context, art solc.Artifact) Outcome {
	start := time.Now()
	out := w.process(ctx, art)
	if w.metrics != nil {
		w.metrics.ObserveOutcome(out.Status.String())
		if out.Status == Uploaded {
			w.metrics.ObserveTransfer(time.Since(start), int(art.SizeHint))
		}
	}
	return out
}

func (w *Worker) process(ctx context.Context, art solc.Artifact) Outcome {
	binaryKey, hashKey := Keys(art.Platform, art.Version)

	exists, err := w.dest.Exists(ctx, binaryKey)
	if err != nil {
		return w.failed(art, fmt.Errorf("existence check for %s: %w", binaryKey, err))
	}
	if exists {
		w.repairHashFile(ctx, art, binaryKey, hashKey)
		logger.Info("Skipping existing version", "version", art.Version)
		return Outcome{Version: art.Version, Status: SkippedExisting}
	}

	data, err := w.fetch(ctx, art)
	if err != nil {
		return w.failed(art, err)
	}

	digest := Digest(data)
	logger.Debug("Computed digest", "version", art.Version, "bytes", len(data), "sha256", digest[:16])

	if err := w.dest.Put(ctx, binaryKey, data, binaryContentType); err != nil {
		return w.failed(art, fmt.Errorf("upload binary %s: %w", binaryKey, err))
	}
	if err := w.dest.Put(ctx, hashKey, []byte(digest), hashContentType); err != nil {
		return w.failed(art, fmt.Errorf("upload hash file %s: %w", hashKey, err))
	}

	logger.Info("Uploaded version", "version", art.Version, "bytes", len(data))
	return Outcome{Version: art.Version, Status: Uploaded}
}

// repairHashFile backfills a hash file that a previously interrupted run
// left missing next to an uploaded binary. The binary bytes come from the
// destination itself, so the stored digest always matches the stored
// object. Repair failures are warnings; the binary is present and a later
// run retries the repair.
func (w *Worker) repairHashFile(ctx context.Context, art solc.Artifact, binaryKey, hashKey string) {
	exists, err := w.dest.Exists(ctx, hashKey)
	if err != nil {
		logger.Warn("Hash file check failed", "version", art.Version, "key", hashKey, "error", err)
		return
	}
	if exists {
		return
	}

	logger.Warn("Hash file missing for existing binary, repairing", "version", art.Version, "key", hashKey)

	data, err := w.dest.Get(ctx, binaryKey)
	if err != nil {
		logger.Warn("Hash repair read failed", "version", art.Version, "key", binaryKey, "error", err)
		return
	}
	if err := w.dest.Put(ctx, hashKey, []byte(Digest(data)), hashContentType); err != nil {
		logger.Warn("Hash repair write failed", "version", art.Version, "key", hashKey, "error", err)
		return
	}

	logger.Info("Repaired missing hash file", "version", art.Version, "key", hashKey)
}

// fetch obtains the artifact bytes from its origin.
func (w *Worker) fetch(ctx context.Context, art solc.Artifact) ([]byte, error) {
	if art.IsLocal() {
		data, err := os.ReadFile(art.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("read local compiler %s: %w", art.LocalPath, err)
		}
		return data, nil
	}
	return w.download(ctx, art.RemoteURL)
}

// download fetches the artifact over HTTP, retrying transient failures
// with exponential backoff.
func (w *Worker) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= int(w.retry.MaxRetries); attempt++ {
		if attempt > 0 {
			backoff := w.retry.backoff(attempt - 1)
			logger.Debug("Retrying download", "backoff", backoff, "attempt", attempt, "url", url)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		data, err := w.downloadOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !isTransientDownloadError(err) {
			return nil, err
		}
		logger.Debug("Transient download error", "attempt", attempt+1, "url", url, "error", err)
	}

	return nil, fmt.Errorf("download failed after %d attempts: %w", w.retry.MaxRetries+1, lastErr)
}

func (w *Worker) downloadOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{url: url, status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download body for %s: %w", url, err)
	}
	return data, nil
}

func (w *Worker) failed(art solc.Artifact, err error) Outcome {
	logger.Error("Transfer failed", "version", art.Version, "error", err)
	return Outcome{Version: art.Version, Status: Failed, Err: err}
}

// httpStatusError marks a non-200 download response, carrying the status
// for transience classification.
type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %d", e.url, e.status)
}

// isTransientDownloadError classifies download failures. Server-side 5xx,
// throttling, and network timeouts are worth retrying; 4xx responses and
// context cancellation are not.
func isTransientDownloadError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500 || statusErr.status == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection-level failures surface as plain url.Error wrapping
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout")
}
