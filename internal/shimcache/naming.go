package shimcache

import (
	"fmt"
	"strings"
)

const (
	nameSeparator = "-"
	// dashEscape stands in for "-" inside a version so the first separator
	// always splits variant from version.
	dashEscape = "~"
)

// DirName returns the cache directory name for a variant and version tag.
func DirName(variant Variant, version string) (string, error) {
	if !variant.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	if err := ValidateVersion(version); err != nil {
		return "", err
	}
	return string(variant) + nameSeparator + strings.ReplaceAll(version, nameSeparator, dashEscape), nil
}

// ParseDirName splits a cache directory name into variant and version.
func ParseDirName(name string) (Variant, string, error) {
	prefix, rest, ok := strings.Cut(name, nameSeparator)
	if !ok || rest == "" {
		return "", "", fmt.Errorf("%w: %q has no version part", ErrInvalidVersion, name)
	}
	variant := Variant(prefix)
	if !variant.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownVariant, prefix)
	}
	if strings.Contains(rest, nameSeparator) {
		return "", "", fmt.Errorf("%w: %q contains an unescaped separator", ErrInvalidVersion, name)
	}
	return variant, strings.ReplaceAll(rest, dashEscape, nameSeparator), nil
}

// ValidateVersion rejects tags that cannot round-trip through a directory
// name: empty tags, tags containing the escape character, path separators,
// or leading dots.
func ValidateVersion(version string) error {
	switch {
	case version == "":
		return fmt.Errorf("%w: empty version", ErrInvalidVersion)
	case strings.Contains(version, dashEscape):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidVersion, version, dashEscape)
	case strings.ContainsAny(version, `/\:`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidVersion, version)
	case strings.HasPrefix(version, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidVersion, version)
	case strings.TrimSpace(version) != version:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidVersion, version)
	}
	return nil
}
