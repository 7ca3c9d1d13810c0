package shimcache

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two tags. Tags that parse as semver (with or without
// a leading "v") compare semantically; otherwise they compare as strings.
// Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	av, aErr := parseSemver(a)
	bv, bErr := parseSemver(b)
	switch {
	case aErr == nil && bErr == nil:
		return av.Compare(bv)
	case aErr == nil:
		return 1
	case bErr == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// sortCached orders packages by variant, then newest version first.
func sortCached(pkgs []CachedPackage) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		if pkgs[i].Variant != pkgs[j].Variant {
			return pkgs[i].Variant.order() < pkgs[j].Variant.order()
		}
		return CompareVersions(pkgs[i].Version, pkgs[j].Version) > 0
	})
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}
