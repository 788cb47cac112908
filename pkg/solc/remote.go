package solc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/HemeraProtocol/seismic-verify/internal/logger"
)

// DefaultBaseURL is the official Solidity release directory for the
// supported platform.
const DefaultBaseURL = "https://binaries.soliditylang.org/" + Platform

// ErrListingUnavailable is returned when the remote directory index cannot
// be fetched or yields no parseable entries. It aborts the run before any
// transfers start.
var ErrListingUnavailable = errors.New("compiler listing unavailable")

// listingEntryPattern matches release binary filenames inside the
// directory index, e.g. "solc-linux-amd64-v0.8.29+commit.ab55807c".
// Everything else in the index (list files, checksums, markup) is skipped.
var listingEntryPattern = regexp.MustCompile(
	BinaryName + `-` + Platform + `-(v\d+\.\d+\.\d+\+commit\.[0-9a-f]+)`)

// RemoteSource lists compiler artifacts by parsing the directory index
// document served at a fixed base URL.
type RemoteSource struct {
	baseURL string
	client  *http.Client
	limit   int
}

// NewRemoteSource creates a remote listing source. limit <= 0 means
// unlimited; the cap is applied after full enumeration.
func NewRemoteSource(baseURL string, limit int) *RemoteSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RemoteSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limit:   limit,
	}
}

// List fetches the directory index and extracts one artifact per release
// binary entry, in listing order. Duplicate filenames (an index typically
// repeats each name in href and text) collapse to their first occurrence.
func (s *RemoteSource) List(ctx context.Context) ([]Artifact, error) {
	logger.Info("Fetching compiler listing", "url", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrListingUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading index: %v", ErrListingUnavailable, err)
	}

	var artifacts []Artifact
	seen := make(map[string]bool)

	for _, m := range listingEntryPattern.FindAllStringSubmatch(string(body), -1) {
		filename, version := m[0], m[1]
		if seen[filename] {
			continue
		}
		seen[filename] = true

		if err := ValidateVersion(version); err != nil {
			logger.Warn("Skipping listing entry with malformed version", "entry", filename, "error", err)
			continue
		}

		artifacts = append(artifacts, Artifact{
			Version:   version,
			Platform:  Platform,
			RemoteURL: s.baseURL + "/" + filename,
		})
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: no release entries found in index", ErrListingUnavailable)
	}

	logger.Info("Found compiler versions", "count", len(artifacts))
	return truncate(artifacts, s.limit), nil
}
