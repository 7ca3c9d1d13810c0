package deploy

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// buildExe returns a minimal PE image for machine with markers appended
// after the headers.
func buildExe(machine uint16, markers ...string) []byte {
	img := make([]byte, 0x100)
	binary.LittleEndian.PutUint16(img[0:], 0x5A4D)
	binary.LittleEndian.PutUint32(img[0x3C:], 0x80)
	binary.LittleEndian.PutUint32(img[0x80:], 0x00004550)
	binary.LittleEndian.PutUint16(img[0x84:], machine)
	for _, m := range markers {
		img = append(img, 0)
		img = append(img, m...)
	}
	return img
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(fs afero.Fs, path string) bool {
	ok, _ := afero.Exists(fs, path)
	return ok
}

// writePackage lays out a cached package with files in one arch folder.
// Each file's content is "<arch>/<name>".
func writePackage(t *testing.T, fs afero.Fs, root, arch string, files ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Join(root, arch), 0755))
	for _, f := range files {
		writeFile(t, fs, filepath.Join(root, arch, f), arch+"/"+f)
	}
}

func notRunning(context.Context, string) (bool, error) { return false, nil }

func newTestEngine(fs afero.Fs, opts ...Option) *Engine {
	base := []Option{
		WithFs(fs),
		WithRunningFunc(notRunning),
	}
	e := New(append(base, opts...)...)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

// countingFs counts every mutating call that reaches the wrapped Fs.
type countingFs struct {
	afero.Fs
	writes int
}

func (c *countingFs) Create(name string) (afero.File, error) {
	c.writes++
	return c.Fs.Create(name)
}

func (c *countingFs) Mkdir(name string, perm os.FileMode) error {
	c.writes++
	return c.Fs.Mkdir(name, perm)
}

func (c *countingFs) MkdirAll(path string, perm os.FileMode) error {
	c.writes++
	return c.Fs.MkdirAll(path, perm)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		c.writes++
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Remove(name string) error {
	c.writes++
	return c.Fs.Remove(name)
}

func (c *countingFs) RemoveAll(path string) error {
	c.writes++
	return c.Fs.RemoveAll(path)
}

func (c *countingFs) Rename(oldname, newname string) error {
	c.writes++
	return c.Fs.Rename(oldname, newname)
}

func (c *countingFs) Chmod(name string, mode os.FileMode) error {
	c.writes++
	return c.Fs.Chmod(name, mode)
}

// failingFs refuses to create files whose base name is failOn.
type failingFs struct {
	afero.Fs
	failOn string
}

func (f *failingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && filepath.Base(name) == f.failOn {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *failingFs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0666)
}

