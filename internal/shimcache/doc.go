// Package shimcache manages the local cache of downloaded DXVK packages.
//
// A Manager is bound to one cache root. It lists releases of a variant from
// the GitHub release API (caching the catalog on disk for a short TTL),
// streams a release archive to a temporary file with progress reporting,
// verifies an optional checksum, and extracts the archive into a directory
// named "<variant>-<version>" under the root. The filesystem is the only
// source of truth: ListCached rediscovers packages by listing the root.
package shimcache
