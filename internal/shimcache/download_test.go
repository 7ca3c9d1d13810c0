package shimcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadExtractsPackage(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))

	root := t.TempDir()
	m := gh.manager(root)

	var percents []int
	dir, err := m.Download(context.Background(), VariantStandard, "v2.3", func(p int) {
		percents = append(percents, p)
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "standard-v2.3"), dir)

	data, err := os.ReadFile(filepath.Join(dir, "x64", "d3d11.dll"))
	require.NoError(t, err)
	assert.Equal(t, "x64-d3d11", string(data))
	assert.FileExists(t, filepath.Join(dir, "x32", "d3d9.dll"))
	assert.NoDirExists(t, filepath.Join(dir, "dxvk-2.3"), "top-level directory should be stripped")

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.Greater(t, percents[i], percents[i-1])
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), downloadPrefix), "temp archive %s left behind", e.Name())
		assert.False(t, strings.HasPrefix(e.Name(), stagingPrefix), "staging dir %s left behind", e.Name())
	}

	pkgs, err := m.ListCached()
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, VariantStandard, pkgs[0].Variant)
	assert.Equal(t, "v2.3", pkgs[0].Version)
	assert.Equal(t, []string{"x32", "x64"}, pkgs[0].ArchitectureFolders)
}

func TestDownloadZipWithoutTopDir(t *testing.T) {
	gh := newFakeGitHub(t, "Ph42oN/dxvk-gplasync")
	gh.addRelease("v2.3-1", "dxvk-gplasync-v2.3-1.zip", createTestZip(t, map[string]string{
		"x64/d3d11.dll": "gpl-d3d11",
		"x32/d3d11.dll": "gpl-d3d11-32",
	}))

	root := t.TempDir()
	dir, err := gh.manager(root).Download(context.Background(), VariantGPLAsync, "v2.3-1", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "gplasync-v2.3~1"), dir)
	assert.FileExists(t, filepath.Join(dir, "x64", "d3d11.dll"))
	assert.FileExists(t, filepath.Join(dir, "x32", "d3d11.dll"))
}

func TestDownloadKeepsSoleArchitectureFolder(t *testing.T) {
	tests := map[string][]byte{
		"dxvk-x64-only.zip": createTestZip(t, map[string]string{
			"x64/d3d11.dll": "x64-d3d11",
			"x64/dxgi.dll":  "x64-dxgi",
		}),
		"dxvk-x32-only.tar.gz": createTestTarGz(t, map[string]string{
			"x32/d3d9.dll": "x32-d3d9",
		}),
	}
	for asset, data := range tests {
		t.Run(asset, func(t *testing.T) {
			gh := newFakeGitHub(t, "doitsujin/dxvk")
			gh.addRelease("v2.3", asset, data)

			dir, err := gh.manager(t.TempDir()).Download(context.Background(), VariantStandard, "v2.3", nil)
			require.NoError(t, err)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.True(t, entries[0].IsDir())
			assert.Contains(t, ArchitectureFolderNames, entries[0].Name())
			assert.NoFileExists(t, filepath.Join(dir, "d3d11.dll"))
			assert.NoFileExists(t, filepath.Join(dir, "d3d9.dll"))
		})
	}
}

func TestDownloadFallsBackToNewest(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))
	gh.addRelease("v2.2", "dxvk-2.2.tar.gz", dxvkArchive(t, "dxvk-2.2"))

	root := t.TempDir()
	m := gh.manager(root)

	dir, err := m.Download(context.Background(), VariantStandard, "", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "standard-v2.3"), dir)

	dir, err = m.Download(context.Background(), VariantStandard, "v0.1", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "standard-v2.3"), dir)
}

func TestDownloadRefreshesCatalogForUnknownTag(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))

	root := t.TempDir()
	m := gh.manager(root, WithCatalogTTL(time.Hour))
	ctx := context.Background()

	_, err := m.ListRemoteReleases(ctx, VariantStandard, false)
	require.NoError(t, err)
	require.Equal(t, int32(1), gh.apiHits.Load())

	gh.addRelease("v2.4", "dxvk-2.4.tar.gz", dxvkArchive(t, "dxvk-2.4"))

	dir, err := m.Download(ctx, VariantStandard, "v2.4", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "standard-v2.4"), dir)
	assert.Equal(t, int32(2), gh.apiHits.Load())

	// A cached hit does not refetch.
	_, err = m.Download(ctx, VariantStandard, "v2.3", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), gh.apiHits.Load())
}

func TestDownloadMirrorAppliesToCachedCatalog(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))
	gh.addAsset("/assets/mirror/dxvk-2.3.tar.gz", createTestTarGz(t, map[string]string{
		"dxvk-2.3/x64/d3d11.dll": "from-mirror",
	}))

	root := t.TempDir()
	ctx := context.Background()
	_, err := gh.manager(root).ListRemoteReleases(ctx, VariantStandard, false)
	require.NoError(t, err)

	m := gh.manager(root, WithMirror(gh.server.URL+"/assets/mirror/"))
	dir, err := m.Download(ctx, VariantStandard, "v2.3", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gh.apiHits.Load(), "catalog served from cache")

	data, err := os.ReadFile(filepath.Join(dir, "x64", "d3d11.dll"))
	require.NoError(t, err)
	assert.Equal(t, "from-mirror", string(data))
}

func TestDownloadNoReleases(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	_, err := gh.manager(t.TempDir()).Download(context.Background(), VariantStandard, "", nil)
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.ErrorIs(t, err, ErrNoReleases)
}

func TestDownloadAssetMissing(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRawRelease(Release{TagName: "v2.3", Assets: []Asset{
		{Name: "dxvk-2.3.tar.gz", DownloadURL: gh.server.URL + "/assets/missing.tar.gz"},
	}})

	root := t.TempDir()
	_, err := gh.manager(root).Download(context.Background(), VariantStandard, "v2.3", nil)
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.NoDirExists(t, filepath.Join(root, "standard-v2.3"))
}

func TestDownloadCorruptArchiveLeavesNothing(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", []byte("this is not gzip"))

	root := t.TempDir()
	m := gh.manager(root)
	_, err := m.Download(context.Background(), VariantStandard, "v2.3", nil)
	assert.ErrorIs(t, err, ErrExtractionFailed)

	pkgs, err := m.ListCached()
	require.NoError(t, err)
	assert.Empty(t, pkgs)
	assert.NoDirExists(t, filepath.Join(root, stagingPrefix+"standard-v2.3"))
}

func TestDownloadRejectsPathTraversal(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", createTestTarGz(t, map[string]string{
		"dxvk/x64/d3d11.dll":   "ok",
		"dxvk/../../evil.dll": "bad",
	}))

	root := t.TempDir()
	_, err := gh.manager(root).Download(context.Background(), VariantStandard, "v2.3", nil)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "evil.dll"))
	assert.NoDirExists(t, filepath.Join(root, "standard-v2.3"))
}

func TestDownloadEmptyArchive(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", createTestTarGz(t, map[string]string{"dxvk/": ""}))

	_, err := gh.manager(t.TempDir()).Download(context.Background(), VariantStandard, "v2.3", nil)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestDownloadReplacesExistingPackage(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))

	root := t.TempDir()
	stale := filepath.Join(root, "standard-v2.3", "stale.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := gh.manager(root).Download(context.Background(), VariantStandard, "v2.3", nil)
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

func TestDownloadVerifiesChecksum(t *testing.T) {
	archive := dxvkArchive(t, "dxvk-2.3")
	sum := sha256.Sum256(archive)

	tests := []struct {
		name    string
		listing string
		wantErr error
	}{
		{"match", hex.EncodeToString(sum[:]) + "  dxvk-2.3.tar.gz\n", nil},
		{"bare hash", hex.EncodeToString(sum[:]), nil},
		{"mismatch", strings.Repeat("0", 64) + "  dxvk-2.3.tar.gz\n", ErrChecksumMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := newFakeGitHub(t, "doitsujin/dxvk")
			gh.addAsset("/assets/v2.3/dxvk-2.3.tar.gz", archive)
			gh.addAsset("/assets/v2.3/dxvk-2.3.tar.gz.sha256", []byte(tt.listing))
			gh.addRawRelease(Release{TagName: "v2.3", Assets: []Asset{
				{Name: "dxvk-2.3.tar.gz", DownloadURL: gh.server.URL + "/assets/v2.3/dxvk-2.3.tar.gz"},
				{Name: "dxvk-2.3.tar.gz.sha256", DownloadURL: gh.server.URL + "/assets/v2.3/dxvk-2.3.tar.gz.sha256"},
			}})

			root := t.TempDir()
			_, err := gh.manager(root).Download(context.Background(), VariantStandard, "v2.3", nil)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoDirExists(t, filepath.Join(root, "standard-v2.3"))
		})
	}
}

func TestDownloadCancelled(t *testing.T) {
	gh := newFakeGitHub(t, "doitsujin/dxvk")
	gh.addRelease("v2.3", "dxvk-2.3.tar.gz", dxvkArchive(t, "dxvk-2.3"))

	m := gh.manager(t.TempDir())
	releases, err := m.ListRemoteReleases(context.Background(), VariantStandard, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.DownloadRelease(ctx, VariantStandard, releases[0], nil)
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

func TestPumpUnknownSizeReportsNoProgress(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte("x"), 100*1024))
	var dst bytes.Buffer
	called := false

	n, err := pump(context.Background(), src, &dst, -1, func(int) { called = true })
	require.NoError(t, err)
	assert.Equal(t, int64(100*1024), n)
	assert.Equal(t, 100*1024, dst.Len())
	assert.False(t, called)
}

func TestPumpProgressIsMonotonic(t *testing.T) {
	size := 10 * chunkSize
	src := bytes.NewReader(bytes.Repeat([]byte("y"), size))
	var percents []int

	_, err := pump(context.Background(), src, io.Discard, int64(size), func(p int) { percents = append(percents, p) })
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, percents)
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestPumpWriteError(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte("z"), 20*chunkSize))
	_, err := pump(context.Background(), src, &failingWriter{after: 2}, int64(20*chunkSize), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

type erroringReader struct{}

func (erroringReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestPumpReadError(t *testing.T) {
	_, err := pump(context.Background(), erroringReader{}, io.Discard, 10, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestParseChecksum(t *testing.T) {
	listing := "aaa  other.tar.gz\nbbb *dxvk-2.3.tar.gz\n"
	assert.Equal(t, "bbb", parseChecksum(listing, "dxvk-2.3.tar.gz"))
	assert.Equal(t, "", parseChecksum(listing, "missing.tar.gz"))
	assert.Equal(t, "ccc", parseChecksum("ccc\n", "anything"))
}
