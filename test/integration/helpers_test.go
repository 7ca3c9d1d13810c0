//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	CacheDir string // DXVK_STUDIO_CACHE_DIR: extracted packages
	GameDir  string // a mock game installation
	Server   *httptest.Server
}

// setupTestEnv creates isolated temp directories and a fake release API
// serving one release per tag for the standard variant.
func setupTestEnv(t *testing.T, tags ...string) *testEnv {
	t.Helper()

	env := &testEnv{
		CacheDir: t.TempDir(),
		GameDir:  t.TempDir(),
	}
	t.Setenv("DXVK_STUDIO_CACHE_DIR", env.CacheDir)
	t.Setenv("DXVK_STUDIO_CONFIG_HOME", t.TempDir())

	assets := map[string][]byte{}
	var releases []shimcache.Release

	mux := http.NewServeMux()
	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)

	for _, tag := range tags {
		name := "dxvk-" + strings.TrimPrefix(tag, "v") + ".tar.gz"
		urlPath := "/assets/" + tag + "/" + name
		assets[urlPath] = releaseArchive(t, "dxvk-"+tag)
		releases = append(releases, shimcache.Release{
			TagName: tag,
			Assets:  []shimcache.Asset{{Name: name, DownloadURL: env.Server.URL + urlPath}},
		})
	}

	mux.HandleFunc("/repos/doitsujin/dxvk/releases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(releases)
	})
	mux.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		data, ok := assets[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		_, _ = w.Write(data)
	})

	return env
}

func (e *testEnv) manager() *shimcache.Manager {
	return shimcache.New(e.CacheDir,
		shimcache.WithAPIBase(e.Server.URL),
		shimcache.WithHTTPClient(e.Server.Client()),
	)
}

// releaseArchive builds a tar.gz laid out like an upstream DXVK release.
func releaseArchive(t *testing.T, top string) []byte {
	t.Helper()
	files := map[string]string{
		"x64/d3d9.dll":      "x64 d3d9",
		"x64/d3d10core.dll": "x64 d3d10core",
		"x64/d3d11.dll":     "x64 d3d11",
		"x64/dxgi.dll":      "x64 dxgi",
		"x32/d3d9.dll":      "x32 d3d9",
		"x32/d3d11.dll":     "x32 d3d11",
		"x32/dxgi.dll":      "x32 dxgi",
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		hdr := &tar.Header{Name: top + "/" + name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

// writeExe writes a minimal PE image for machine with the given import names.
func writeExe(t *testing.T, path string, machine uint16, markers ...string) {
	t.Helper()
	img := make([]byte, 0x200)
	binary.LittleEndian.PutUint16(img[0:], 0x5A4D)
	binary.LittleEndian.PutUint32(img[0x3C:], 0x80)
	binary.LittleEndian.PutUint32(img[0x80:], 0x00004550)
	binary.LittleEndian.PutUint16(img[0x84:], machine)
	offset := 0x100
	for _, m := range markers {
		offset += copy(img[offset:], m) + 1
	}
	writeFile(t, path, string(img))
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
