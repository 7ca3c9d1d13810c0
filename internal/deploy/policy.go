package deploy

import (
	"fmt"
	"strings"

	"github.com/dxvk-studio/dxvk-studio/internal/platform"
)

// DefaultProtectedPrefixes are never write targets.
var DefaultProtectedPrefixes = []string{
	"c:/windows/system32",
	"c:/windows/syswow64",
	"c:/windows",
}

// ProtectedPathPolicy is an immutable set of normalized path prefixes.
type ProtectedPathPolicy struct {
	prefixes []string
}

// NewProtectedPathPolicy returns the default policy extended with extra
// prefixes. Blank entries are ignored.
func NewProtectedPathPolicy(extra ...string) ProtectedPathPolicy {
	prefixes := make([]string, 0, len(DefaultProtectedPrefixes)+len(extra))
	for _, p := range DefaultProtectedPrefixes {
		prefixes = append(prefixes, platform.NormalizePath(p))
	}
	for _, p := range extra {
		if n := platform.NormalizePath(strings.TrimSpace(p)); n != "" {
			prefixes = append(prefixes, n)
		}
	}
	return ProtectedPathPolicy{prefixes: prefixes}
}

// Prefixes returns a copy of the normalized prefixes.
func (p ProtectedPathPolicy) Prefixes() []string {
	return append([]string(nil), p.prefixes...)
}

// IsProtected reports whether path normalizes under any protected prefix.
// The comparison is case-insensitive and ignores separator style.
func (p ProtectedPathPolicy) IsProtected(path string) bool {
	for _, prefix := range p.prefixes {
		if platform.HasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Check returns ErrProtectedPath for protected paths.
func (p ProtectedPathPolicy) Check(path string) error {
	if p.IsProtected(path) {
		return fmt.Errorf("%w: %s", ErrProtectedPath, path)
	}
	return nil
}
