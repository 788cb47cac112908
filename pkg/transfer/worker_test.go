package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HemeraProtocol/seismic-verify/pkg/solc"
	"github.com/HemeraProtocol/seismic-verify/pkg/store/memory"
)

// fastRetry keeps retry-exercising tests quick.
var fastRetry = RetryPolicy{
	MaxRetries:        2,
	InitialBackoff:    time.Millisecond,
	MaxBackoff:        5 * time.Millisecond,
	BackoffMultiplier: 2.0,
}

func localArtifact(t *testing.T, version string, data []byte) solc.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solc")
	if err := os.WriteFile(path, data, 0755); err != nil {
		t.Fatal(err)
	}
	return solc.Artifact{
		Version:   version,
		Platform:  solc.Platform,
		LocalPath: path,
		SizeHint:  int64(len(data)),
	}
}

func TestProcessUploadsBinaryAndHash(t *testing.T) {
	dest := memory.New()
	w := NewWorker(dest, nil, fastRetry, nil)

	data := []byte("compiler v0.8.29")
	art := localArtifact(t, "v0.8.29+commit.d4b8c7ae", data)

	out := w.Process(context.Background(), art)
	if out.Status != Uploaded {
		t.Fatalf("Process() status = %v, err = %v", out.Status, out.Err)
	}

	binaryKey, hashKey := Keys(art.Platform, art.Version)

	stored, err := dest.Get(context.Background(), binaryKey)
	if err != nil {
		t.Fatalf("binary not stored: %v", err)
	}
	if string(stored) != string(data) {
		t.Error("stored binary differs from source bytes")
	}

	hash, err := dest.Get(context.Background(), hashKey)
	if err != nil {
		t.Fatalf("hash file not stored: %v", err)
	}
	if string(hash) != Digest(stored) {
		t.Errorf("stored digest %q does not match digest of stored binary", hash)
	}

	if ct := dest.ContentType(binaryKey); ct != "application/octet-stream" {
		t.Errorf("binary content type = %q", ct)
	}
	if ct := dest.ContentType(hashKey); ct != "text/plain" {
		t.Errorf("hash content type = %q", ct)
	}
}

func TestProcessSkipsExisting(t *testing.T) {
	dest := memory.New()
	art := localArtifact(t, "v0.8.29+commit.d4b8c7ae", []byte("bytes"))
	binaryKey, hashKey := Keys(art.Platform, art.Version)

	data := []byte("already uploaded")
	_ = dest.Put(context.Background(), binaryKey, data, "application/octet-stream")
	_ = dest.Put(context.Background(), hashKey, []byte(Digest(data)), "text/plain")
	putsBefore := dest.PutCalls()

	w := NewWorker(dest, nil, fastRetry, nil)
	out := w.Process(context.Background(), art)

	if out.Status != SkippedExisting {
		t.Fatalf("Process() status = %v, want SkippedExisting", out.Status)
	}
	if dest.PutCalls() != putsBefore {
		t.Errorf("skip performed %d extra writes", dest.PutCalls()-putsBefore)
	}

	// The existing binary wins even though the local bytes differ.
	stored, _ := dest.Get(context.Background(), binaryKey)
	if string(stored) != string(data) {
		t.Error("existing binary was overwritten")
	}
}

func TestProcessRepairsMissingHashFile(t *testing.T) {
	dest := memory.New()
	art := localArtifact(t, "v0.8.29+commit.d4b8c7ae", []byte("bytes"))
	binaryKey, hashKey := Keys(art.Platform, art.Version)

	// A prior interrupted run uploaded the binary but not the hash file.
	data := []byte("uploaded binary")
	_ = dest.Put(context.Background(), binaryKey, data, "application/octet-stream")

	w := NewWorker(dest, nil, fastRetry, nil)
	out := w.Process(context.Background(), art)

	if out.Status != SkippedExisting {
		t.Fatalf("Process() status = %v, want SkippedExisting", out.Status)
	}

	hash, err := dest.Get(context.Background(), hashKey)
	if err != nil {
		t.Fatalf("hash file not repaired: %v", err)
	}
	if string(hash) != Digest(data) {
		t.Errorf("repaired digest %q does not match stored binary", hash)
	}
}

func TestProcessDownloadWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "downloaded compiler")
	}))
	defer srv.Close()

	dest := memory.New()
	w := NewWorker(dest, nil, fastRetry, nil)

	art := solc.Artifact{
		Version:   "v0.8.28+commit.7893614a",
		Platform:  solc.Platform,
		RemoteURL: srv.URL + "/solc-linux-amd64-v0.8.28+commit.7893614a",
	}

	out := w.Process(context.Background(), art)
	if out.Status != Uploaded {
		t.Fatalf("Process() status = %v, err = %v", out.Status, out.Err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d requests, want 2 (one retry)", calls.Load())
	}

	binaryKey, _ := Keys(art.Platform, art.Version)
	stored, _ := dest.Get(context.Background(), binaryKey)
	if string(stored) != "downloaded compiler" {
		t.Errorf("stored bytes = %q", stored)
	}
}

func TestProcessDownloadClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	w := NewWorker(memory.New(), nil, fastRetry, nil)
	art := solc.Artifact{
		Version:   "v0.8.28+commit.7893614a",
		Platform:  solc.Platform,
		RemoteURL: srv.URL + "/missing",
	}

	out := w.Process(context.Background(), art)
	if out.Status != Failed {
		t.Fatalf("Process() status = %v, want Failed", out.Status)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 404)", calls.Load())
	}
}

func TestProcessLocalReadFailure(t *testing.T) {
	w := NewWorker(memory.New(), nil, fastRetry, nil)
	art := solc.Artifact{
		Version:   "v0.8.29+commit.d4b8c7ae",
		Platform:  solc.Platform,
		LocalPath: filepath.Join(t.TempDir(), "missing"),
	}

	out := w.Process(context.Background(), art)
	if out.Status != Failed {
		t.Fatalf("Process() status = %v, want Failed", out.Status)
	}
	if out.Err == nil {
		t.Fatal("Failed outcome carries no error")
	}
}

// failingPutStore fails writes for one key to exercise partial uploads.
type failingPutStore struct {
	*memory.Store
	failKey string
}

func (s *failingPutStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == s.failKey {
		return errors.New("injected put failure")
	}
	return s.Store.Put(ctx, key, data, contentType)
}

func TestProcessHashUploadFailure(t *testing.T) {
	art := localArtifact(t, "v0.8.29+commit.d4b8c7ae", []byte("bytes"))
	binaryKey, hashKey := Keys(art.Platform, art.Version)

	dest := &failingPutStore{Store: memory.New(), failKey: hashKey}
	w := NewWorker(dest, nil, fastRetry, nil)

	out := w.Process(context.Background(), art)
	if out.Status != Failed {
		t.Fatalf("Process() status = %v, want Failed", out.Status)
	}

	// The binary landed but the artifact is not considered done; a
	// rerun skips on the binary key and repairs the hash file.
	if ok, _ := dest.Exists(context.Background(), binaryKey); !ok {
		t.Fatal("binary upload did not happen before hash failure")
	}

	dest.failKey = ""
	out = w.Process(context.Background(), art)
	if out.Status != SkippedExisting {
		t.Fatalf("rerun status = %v, want SkippedExisting", out.Status)
	}
	if ok, _ := dest.Exists(context.Background(), hashKey); !ok {
		t.Error("rerun did not repair the hash file")
	}
}
