package solc

import (
	"fmt"
	"regexp"

	goversion "github.com/hashicorp/go-version"
)

// versionOutputPattern matches the version token inside `solc --version`
// output. Pre-release tags between the core version and the commit hash
// are discarded, as is trailing platform noise after the hash:
//
//	Version: 0.8.29+commit.d4b8c7ae.Linux.g++            -> 0.8.29, d4b8c7ae
//	Version: 0.8.29-develop.2025.9.18+commit.d4b8c7ae... -> 0.8.29, d4b8c7ae
var versionOutputPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)(?:-[0-9A-Za-z.\-]+)?\+commit\.([0-9a-f]+)`)

// canonicalVersionPattern matches a full canonical version token.
var canonicalVersionPattern = regexp.MustCompile(`^v(\d+\.\d+\.\d+)\+commit\.([0-9a-f]{6,40})$`)

// ExtractVersion extracts the canonical "v<semver>+commit.<hash>" token
// from compiler version output. It reports false when the output contains
// no recognizable version substring.
func ExtractVersion(output string) (string, bool) {
	m := versionOutputPattern.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return "v" + m[1] + "+commit." + m[2], true
}

// ValidateVersion checks that v is a well-formed canonical version token.
// Artifacts failing validation are dropped before orchestration.
func ValidateVersion(v string) error {
	m := canonicalVersionPattern.FindStringSubmatch(v)
	if m == nil {
		return fmt.Errorf("version %q does not match v<semver>+commit.<hash>", v)
	}
	if _, err := goversion.NewSemver(m[1]); err != nil {
		return fmt.Errorf("version %q has malformed semver core: %w", v, err)
	}
	return nil
}
