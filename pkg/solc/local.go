package solc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/HemeraProtocol/seismic-verify/internal/logger"
)

// versionQueryTimeout bounds a single `solc --version` invocation.
const versionQueryTimeout = 30 * time.Second

// VersionQuerier asks a compiler binary for its version output. It exists
// as a capability so scanning can be tested without spawning processes.
type VersionQuerier interface {
	QueryVersion(ctx context.Context, path string) (string, error)
}

// ExecQuerier invokes the binary with --version and captures its combined
// output.
type ExecQuerier struct{}

// QueryVersion runs `<path> --version`. The binary is made executable
// first; downloaded release binaries frequently lack the exec bit.
func (ExecQuerier) QueryVersion(ctx context.Context, path string) (string, error) {
	if err := os.Chmod(path, 0755); err != nil {
		return "", fmt.Errorf("failed to make %s executable: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, versionQueryTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", path, err)
	}
	return string(out), nil
}

// LocalSource lists compiler artifacts by scanning a directory tree. A
// file is a candidate when its name is BinaryName or starts with it,
// searched in the root and in immediate subdirectories. Each candidate is
// asked for its version; binaries that fail to execute or produce no
// recognizable version token are skipped with a warning, never aborting
// the scan.
type LocalSource struct {
	root    string
	querier VersionQuerier
	limit   int
}

// NewLocalSource creates a local scan source rooted at dir. limit <= 0
// means unlimited.
func NewLocalSource(dir string, querier VersionQuerier, limit int) *LocalSource {
	if querier == nil {
		querier = ExecQuerier{}
	}
	return &LocalSource{root: dir, querier: querier, limit: limit}
}

// List enumerates candidates and resolves their versions. Order follows
// the sorted directory listing, so repeated scans of the same tree yield
// the same sequence.
func (s *LocalSource) List(ctx context.Context) ([]Artifact, error) {
	logger.Info("Scanning local compiler directory", "dir", s.root)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan compiler directory %s: %w", s.root, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdir := filepath.Join(s.root, entry.Name())
			sub, err := os.ReadDir(subdir)
			if err != nil {
				logger.Warn("Skipping unreadable subdirectory", "dir", subdir, "error", err)
				continue
			}
			for _, se := range sub {
				if !se.IsDir() && isCandidateName(se.Name()) {
					candidates = append(candidates, filepath.Join(subdir, se.Name()))
				}
			}
			continue
		}
		if isCandidateName(entry.Name()) {
			candidates = append(candidates, filepath.Join(s.root, entry.Name()))
		}
	}

	var artifacts []Artifact
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		art, ok := s.resolve(ctx, path)
		if !ok {
			continue
		}
		artifacts = append(artifacts, art)
	}

	logger.Info("Found local compilers", "count", len(artifacts), "candidates", len(candidates))
	return truncate(artifacts, s.limit), nil
}

// resolve queries one candidate binary and builds its artifact. A false
// return means the candidate was dropped; the reason has been logged.
func (s *LocalSource) resolve(ctx context.Context, path string) (Artifact, bool) {
	out, err := s.querier.QueryVersion(ctx, path)
	if err != nil {
		logger.Warn("Skipping compiler that failed version query", "path", path, "error", err)
		return Artifact{}, false
	}

	version, ok := ExtractVersion(out)
	if !ok {
		logger.Warn("Skipping compiler with unrecognizable version output", "path", path)
		return Artifact{}, false
	}
	if err := ValidateVersion(version); err != nil {
		logger.Warn("Skipping compiler with malformed version", "path", path, "error", err)
		return Artifact{}, false
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}

	logger.Debug("Resolved local compiler", "path", path, "version", version)
	return Artifact{
		Version:   version,
		Platform:  Platform,
		LocalPath: path,
		SizeHint:  size,
	}, true
}

// isCandidateName reports whether a filename names a compiler binary:
// exactly BinaryName, or BinaryName as a prefix (solc-0.8.19, solc-nightly).
func isCandidateName(name string) bool {
	return strings.HasPrefix(name, BinaryName)
}
