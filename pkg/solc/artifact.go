// Package solc discovers Solidity compiler binaries to synchronize.
//
// It provides two artifact sources producing the same sequence type: a
// remote source that parses the official binary directory listing, and a
// local source that scans a directory tree and asks each candidate binary
// to self-report its version.
package solc

import "context"

const (
	// Platform is the architecture/OS triple this tool synchronizes.
	Platform = "linux-amd64"

	// BinaryName is the compiler binary name candidates must match,
	// either exactly or as a prefix (solc-0.8.19, solc-nightly, ...).
	BinaryName = "solc"
)

// Artifact describes one candidate compiler binary to reconcile against
// the destination store.
//
// Exactly one of RemoteURL and LocalPath is set. Version is the canonical
// "v<semver>+commit.<hash>" token and is the unique key for destination
// placement; artifacts with malformed versions never leave a Source.
type Artifact struct {
	Version   string
	Platform  string
	RemoteURL string
	LocalPath string

	// SizeHint is the artifact size in bytes when the source knows it.
	// Zero means unknown. Informational only.
	SizeHint int64
}

// IsLocal reports whether the artifact's bytes come from the local
// filesystem rather than a remote download.
func (a Artifact) IsLocal() bool {
	return a.LocalPath != ""
}

// Source produces a finite sequence of artifacts. Enumeration order is
// deterministic for a given source state; processing is order-independent.
type Source interface {
	List(ctx context.Context) ([]Artifact, error)
}

// truncate applies a post-enumeration result cap. The limit is applied
// after the full scan so ordering stays deterministic regardless of its
// value.
func truncate(artifacts []Artifact, limit int) []Artifact {
	if limit > 0 && len(artifacts) > limit {
		return artifacts[:limit]
	}
	return artifacts
}
