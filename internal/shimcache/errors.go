package shimcache

import "errors"

var (
	// ErrCatalogUnavailable is returned when the release API cannot be
	// reached or answers with a non-2xx status.
	ErrCatalogUnavailable = errors.New("release catalog unavailable")
	// ErrDownloadFailed covers failures while fetching a release archive.
	ErrDownloadFailed = errors.New("download failed")
	// ErrExtractionFailed covers failures while unpacking an archive.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrNoReleases is returned when a variant has no downloadable release.
	ErrNoReleases = errors.New("no releases found")
	// ErrUnknownVariant is returned for variant names outside the fixed set.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrInvalidVersion is returned for version tags that cannot be used as
	// part of a cache directory name.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrChecksumMismatch is returned when a downloaded archive does not
	// match its published sha256.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
