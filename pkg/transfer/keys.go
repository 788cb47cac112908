// Package transfer implements the synchronization pipeline: destination
// key mapping, content hashing, the per-artifact transfer worker, and the
// bounded-concurrency orchestrator.
package transfer

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	// binaryObjectName is the destination object name for compiler bytes.
	binaryObjectName = "solc"

	// hashObjectName is the sibling object holding the hex digest as
	// plain text.
	hashObjectName = "sha256.hash"
)

// Keys maps a platform and canonical version to the destination object
// keys. The mapping is a pure function: equal inputs always produce equal
// keys, and distinct versions never collide because the version is a path
// segment of its own.
func Keys(platform, version string) (binaryKey, hashKey string) {
	prefix := platform + "/" + version + "/"
	return prefix + binaryObjectName, prefix + hashObjectName
}

// Digest computes the hex-encoded SHA-256 digest of data. Deterministic by
// construction; the idempotence of re-runs depends on it.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
