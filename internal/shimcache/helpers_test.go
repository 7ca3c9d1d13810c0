package shimcache

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// createTestTarGz builds a tar.gz archive from name -> content. Names ending
// in "/" become directory entries.
func createTestTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	for _, name := range sortedKeys(files) {
		content := files[name]
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if name[len(name)-1] == '/' {
			hdr = &tar.Header{Name: name, Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func createTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedKeys(files) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dxvkArchive is a typical release layout with a versioned top directory.
func dxvkArchive(t *testing.T, top string) []byte {
	return createTestTarGz(t, map[string]string{
		top + "/":                    "",
		top + "/x64/d3d11.dll":       "x64-d3d11",
		top + "/x64/dxgi.dll":        "x64-dxgi",
		top + "/x64/d3d10core.dll":   "x64-d3d10core",
		top + "/x32/d3d9.dll":        "x32-d3d9",
		top + "/setup_dxvk.sh":       "#!/bin/sh",
	})
}

// fakeGitHub serves a release listing for one repo plus asset downloads.
type fakeGitHub struct {
	server   *httptest.Server
	apiHits  atomic.Int32
	lastAuth atomic.Value

	mu       sync.Mutex
	releases []Release
	assets   map[string][]byte
	status   int
}

func newFakeGitHub(t *testing.T, repo string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{assets: map[string][]byte{}, status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/"+repo+"/releases", func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.releases)
	})
	mux.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		data, ok := f.assets[r.URL.Path]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		_, _ = w.Write(data)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// addRelease registers a release whose single archive asset serves data.
func (f *fakeGitHub) addRelease(tag, assetName string, data []byte) {
	p := "/assets/" + tag + "/" + assetName
	f.addAsset(p, data)
	f.addRawRelease(Release{
		TagName:   tag,
		Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Assets: []Asset{
			{Name: assetName, DownloadURL: f.server.URL + p, Size: int64(len(data))},
		},
	})
}

func (f *fakeGitHub) addRawRelease(r Release) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases = append(f.releases, r)
}

func (f *fakeGitHub) addAsset(urlPath string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[urlPath] = data
}

func (f *fakeGitHub) setStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *fakeGitHub) manager(root string, opts ...Option) *Manager {
	base := []Option{WithHTTPClient(f.server.Client()), WithAPIBase(f.server.URL)}
	return New(root, append(base, opts...)...)
}
