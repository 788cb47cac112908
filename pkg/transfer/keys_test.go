package transfer

import "testing"

func TestKeysDeterministic(t *testing.T) {
	b1, h1 := Keys("linux-amd64", "v0.8.29+commit.d4b8c7ae")
	b2, h2 := Keys("linux-amd64", "v0.8.29+commit.d4b8c7ae")

	if b1 != b2 || h1 != h2 {
		t.Errorf("same inputs produced different keys: (%q,%q) vs (%q,%q)", b1, h1, b2, h2)
	}
	if b1 != "linux-amd64/v0.8.29+commit.d4b8c7ae/solc" {
		t.Errorf("binary key = %q", b1)
	}
	if h1 != "linux-amd64/v0.8.29+commit.d4b8c7ae/sha256.hash" {
		t.Errorf("hash key = %q", h1)
	}
}

func TestKeysDisjointAcrossVersions(t *testing.T) {
	versions := []string{
		"v0.8.29+commit.d4b8c7ae",
		"v0.8.28+commit.7893614a",
		"v0.4.11+commit.68ef5810",
	}

	seen := make(map[string]string)
	for _, v := range versions {
		b, h := Keys("linux-amd64", v)
		for _, key := range []string{b, h} {
			if prev, ok := seen[key]; ok {
				t.Errorf("key %q produced by both %s and %s", key, prev, v)
			}
			seen[key] = v
		}
	}
}

func TestDigestStable(t *testing.T) {
	data := []byte("compiler bytes")

	d1 := Digest(data)
	d2 := Digest(data)
	if d1 != d2 {
		t.Errorf("Digest not stable: %q vs %q", d1, d2)
	}
	if len(d1) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(d1))
	}
	if d1 == Digest([]byte("different bytes")) {
		t.Error("distinct inputs produced identical digests")
	}
}
