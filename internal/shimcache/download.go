package shimcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	chunkSize        = 32 * 1024
	streamQueueDepth = 8
	stagingPrefix    = ".staging-"
	downloadPrefix   = ".download-"
)

// Download fetches the release tagged tag (or the newest release when tag is
// empty or unknown), extracts it under the cache root and returns the
// package directory. progress may be nil.
//
// A tag missing from a cached catalog triggers one refetch before falling
// back, so a release published after the catalog was saved is still found.
// The archive is streamed to a temporary file and removed afterwards. The
// package directory only appears once extraction has fully succeeded.
func (m *Manager) Download(ctx context.Context, variant Variant, tag string, progress ProgressFunc) (string, error) {
	releases, err := m.ListRemoteReleases(ctx, variant, false)
	if err != nil {
		return "", err
	}
	release, matched, err := FindRelease(releases, tag)
	if tag != "" && !matched {
		if fresh, ferr := m.ListRemoteReleases(ctx, variant, true); ferr != nil {
			m.logger.Warn().Err(ferr).Msg("Could not refresh release catalog")
		} else {
			release, matched, err = FindRelease(fresh, tag)
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, variant, err)
	}
	if tag != "" && !matched {
		m.logger.Warn().Str("requested", tag).Str("using", release.Tag).Msg("Release not found, falling back to newest")
	}
	return m.DownloadRelease(ctx, variant, release, progress)
}

// DownloadRelease downloads and extracts a release already selected from
// the catalog.
func (m *Manager) DownloadRelease(ctx context.Context, variant Variant, release RemoteRelease, progress ProgressFunc) (string, error) {
	name, err := DirName(variant, release.Tag)
	if err != nil {
		return "", err
	}
	kind := archiveKindOf(release.AssetName)
	if kind == archiveUnknown {
		return "", fmt.Errorf("%w: unsupported asset %q", ErrDownloadFailed, release.AssetName)
	}

	if err := m.fs.MkdirAll(m.root, 0755); err != nil {
		return "", fmt.Errorf("%w: creating cache root: %v", ErrDownloadFailed, err)
	}
	release = m.viaMirror(release)

	tmp, err := afero.TempFile(m.fs, m.root, downloadPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", ErrDownloadFailed, err)
	}
	archivePath := tmp.Name()
	defer m.fs.Remove(archivePath)

	m.logger.Info().Str("variant", string(variant)).Str("tag", release.Tag).Str("url", release.DownloadURL).Msg("Downloading package")
	if err := m.fetchTo(ctx, release.DownloadURL, tmp, progress); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: closing archive: %v", ErrDownloadFailed, err)
	}

	if release.ChecksumURL != "" {
		if err := m.verifyChecksum(ctx, release, archivePath); err != nil {
			return "", err
		}
	}

	dest := filepath.Join(m.root, name)
	if err := m.install(archivePath, kind, name, dest); err != nil {
		return "", err
	}
	m.logger.Info().Str("path", dest).Msg("Package extracted")
	return dest, nil
}

// install extracts into a staging directory and renames it into place so a
// half-written package is never visible under its final name.
func (m *Manager) install(archivePath string, kind archiveKind, name, dest string) error {
	staging := filepath.Join(m.root, stagingPrefix+name)
	if err := m.fs.RemoveAll(staging); err != nil {
		return fmt.Errorf("%w: clearing staging dir: %v", ErrExtractionFailed, err)
	}

	if err := extractArchive(m.fs, archivePath, kind, staging); err != nil {
		m.fs.RemoveAll(staging)
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if err := m.fs.RemoveAll(dest); err != nil {
		m.fs.RemoveAll(staging)
		return fmt.Errorf("%w: replacing %s: %v", ErrExtractionFailed, dest, err)
	}
	if err := m.fs.Rename(staging, dest); err != nil {
		m.fs.RemoveAll(staging)
		return fmt.Errorf("%w: moving package into place: %v", ErrExtractionFailed, err)
	}
	return nil
}

func (m *Manager) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return resp, nil
}

// fetchTo streams url into dst. A reader goroutine pulls the body in
// chunks onto a bounded channel; this goroutine writes them out and
// reports progress.
func (m *Manager) fetchTo(ctx context.Context, url string, dst io.Writer, progress ProgressFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := m.get(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if _, err := pump(ctx, resp.Body, dst, resp.ContentLength, progress); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return nil
}

// pump copies src to dst through a producer goroutine and a bounded
// channel. total <= 0 means the size is unknown and progress is not
// reported.
func pump(ctx context.Context, src io.Reader, dst io.Writer, total int64, progress ProgressFunc) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make(chan []byte, streamQueueDepth)
	readErr := make(chan error, 1)

	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, chunkSize)
			n, err := src.Read(buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-ctx.Done():
					readErr <- ctx.Err()
					return
				}
			}
			if errors.Is(err, io.EOF) {
				readErr <- nil
				return
			}
			if err != nil {
				readErr <- fmt.Errorf("reading download stream: %w", err)
				return
			}
		}
	}()

	var written int64
	lastPercent := -1
	var writeErr error
	for chunk := range chunks {
		if writeErr != nil {
			continue
		}
		if _, err := dst.Write(chunk); err != nil {
			writeErr = fmt.Errorf("writing download: %w", err)
			cancel()
			continue
		}
		written += int64(len(chunk))
		if progress != nil && total > 0 {
			percent := int(written * 100 / total)
			if percent > 100 {
				percent = 100
			}
			if percent > lastPercent {
				progress(percent)
				lastPercent = percent
			}
		}
	}

	if writeErr != nil {
		return written, writeErr
	}
	if err := <-readErr; err != nil {
		return written, err
	}
	if err := ctx.Err(); err != nil {
		return written, err
	}
	return written, nil
}

// verifyChecksum fetches the published sha256 for the archive and compares
// it with the downloaded file.
func (m *Manager) verifyChecksum(ctx context.Context, release RemoteRelease, archivePath string) error {
	resp, err := m.get(ctx, release.ChecksumURL)
	if err != nil {
		return fmt.Errorf("%w: downloading checksum: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading checksum: %v", ErrDownloadFailed, err)
	}

	expected := parseChecksum(string(body), release.AssetName)
	if expected == "" {
		m.logger.Warn().Str("asset", release.AssetName).Msg("No checksum entry for archive, skipping verification")
		return nil
	}

	f, err := m.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening archive for checksum: %v", ErrDownloadFailed, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("%w: computing checksum: %v", ErrDownloadFailed, err)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: %w: expected %s, got %s", ErrDownloadFailed, ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// parseChecksum finds the hash for archiveName in a sha256sum-style listing.
// A file holding a single bare hash is accepted as well.
func parseChecksum(listing, archiveName string) string {
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	for _, line := range lines {
		fields := strings.Fields(line)
		switch {
		case len(fields) == 1 && len(lines) == 1:
			return fields[0]
		case len(fields) >= 2:
			name := strings.TrimPrefix(fields[len(fields)-1], "*")
			if filepath.Base(name) == archiveName {
				return fields[0]
			}
		}
	}
	return ""
}
