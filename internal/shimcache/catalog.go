package shimcache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

const releasesPerPage = 50

// ListRemoteReleases returns the downloadable releases of variant, newest
// first as published. Releases without a recognized archive asset are left
// out. A fresh on-disk catalog is used unless refresh is true.
func (m *Manager) ListRemoteReleases(ctx context.Context, variant Variant, refresh bool) ([]RemoteRelease, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	if !refresh && m.catalogTTL > 0 {
		cached, err := m.loadCatalog(variant)
		if err != nil {
			m.logger.Debug().Err(err).Str("variant", string(variant)).Msg("Ignoring unreadable catalog cache")
		}
		if cached != nil && !cached.isStale(m.now(), m.catalogTTL) {
			m.logger.Debug().Str("variant", string(variant)).Msg("Serving release catalog from cache")
			return cached.Releases, nil
		}
	}

	releases, err := m.fetchReleases(ctx, variant)
	if err != nil {
		return nil, err
	}

	remote := make([]RemoteRelease, 0, len(releases))
	for _, r := range releases {
		if r.Draft {
			continue
		}
		if rr, ok := toRemote(r); ok {
			remote = append(remote, rr)
		}
	}

	if m.catalogTTL > 0 {
		if err := m.saveCatalog(variant, remote); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to write catalog cache")
		}
	}
	return remote, nil
}

func (m *Manager) fetchReleases(ctx context.Context, variant Variant) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", strings.TrimRight(m.apiBase, "/"), variant.Repo(), releasesPerPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if m.token != "" {
		req.Header.Set("Authorization", "token "+m.token)
	}

	m.logger.Debug().Str("url", url).Msg("Fetching release catalog")
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: GitHub API rate limit exceeded, set GITHUB_TOKEN for higher limits", ErrCatalogUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GitHub API returned status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrCatalogUnavailable, err)
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("%w: parsing releases JSON: %v", ErrCatalogUnavailable, err)
	}
	return releases, nil
}

// toRemote picks the first archive asset of r and, when present, a
// checksum asset published for it.
func toRemote(r Release) (RemoteRelease, bool) {
	archive := SelectArchiveAsset(r.Assets)
	if archive == nil {
		return RemoteRelease{}, false
	}
	rr := RemoteRelease{
		Tag:         r.TagName,
		DownloadURL: archive.DownloadURL,
		AssetName:   archive.Name,
		Size:        archive.Size,
		Published:   r.Published,
	}
	if sum := selectChecksumAsset(r.Assets, archive.Name); sum != nil {
		rr.ChecksumURL = sum.DownloadURL
	}
	return rr, true
}

// viaMirror rewrites the release's download URLs onto the mirror when one
// is set. The catalog keeps upstream URLs so a mirror change applies at once.
func (m *Manager) viaMirror(r RemoteRelease) RemoteRelease {
	if m.mirror == "" {
		return r
	}
	r.DownloadURL = m.mirrorURL(r.AssetName)
	if r.ChecksumURL != "" {
		r.ChecksumURL = m.mirrorURL(path.Base(r.ChecksumURL))
	}
	return r
}

func (m *Manager) mirrorURL(name string) string {
	return strings.TrimRight(m.mirror, "/") + "/" + path.Base(name)
}

// SelectArchiveAsset returns the first asset with a recognized archive
// extension, or nil.
func SelectArchiveAsset(assets []Asset) *Asset {
	for i := range assets {
		if archiveKindOf(assets[i].Name) != archiveUnknown {
			return &assets[i]
		}
	}
	return nil
}

func selectChecksumAsset(assets []Asset, archiveName string) *Asset {
	candidates := []string{archiveName + ".sha256", archiveName + ".sha256sum", "checksums.txt", "sha256sums.txt"}
	for _, want := range candidates {
		for i := range assets {
			if strings.EqualFold(assets[i].Name, want) {
				return &assets[i]
			}
		}
	}
	return nil
}

// FindRelease returns the release tagged tag, or the newest release when tag
// is empty or absent from the list. The bool reports whether the tag matched.
func FindRelease(releases []RemoteRelease, tag string) (RemoteRelease, bool, error) {
	if len(releases) == 0 {
		return RemoteRelease{}, false, ErrNoReleases
	}
	if tag != "" {
		for _, r := range releases {
			if r.Tag == tag {
				return r, true, nil
			}
		}
	}
	return releases[0], false, nil
}
