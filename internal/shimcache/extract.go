package shimcache

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

type archiveKind int

const (
	archiveUnknown archiveKind = iota
	archiveTarGz
	archiveZip
)

func archiveKindOf(name string) archiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return archiveTarGz
	case strings.HasSuffix(lower, ".zip"):
		return archiveZip
	default:
		return archiveUnknown
	}
}

// archiveEntry is one member of an archive as seen by walkArchive.
type archiveEntry struct {
	name  string
	isDir bool
	mode  os.FileMode
	body  io.Reader
}

var errStopWalk = errors.New("stop walk")

// walkArchive calls fn for each directory and regular file in the archive.
// Links and special files are skipped.
func walkArchive(fs afero.Fs, archivePath string, kind archiveKind, fn func(archiveEntry) error) error {
	switch kind {
	case archiveTarGz:
		return walkTarGz(fs, archivePath, fn)
	case archiveZip:
		return walkZip(fs, archivePath, fn)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

func walkTarGz(fs afero.Fs, archivePath string, fn func(archiveEntry) error) error {
	f, err := fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		var entry archiveEntry
		switch hdr.Typeflag {
		case tar.TypeDir:
			entry = archiveEntry{name: hdr.Name, isDir: true, mode: 0755}
		case tar.TypeReg:
			entry = archiveEntry{name: hdr.Name, mode: os.FileMode(hdr.Mode).Perm() | 0600, body: tr}
		default:
			continue
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
}

func walkZip(fs afero.Fs, archivePath string, fn func(archiveEntry) error) error {
	f, err := fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat zip archive: %w", err)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("reading zip archive: %w", err)
	}

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			if err := fn(archiveEntry{name: zf.Name, isDir: true, mode: 0755}); err != nil {
				return err
			}
			continue
		}
		if !zf.Mode().IsRegular() {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", zf.Name, err)
		}
		err = fn(archiveEntry{name: zf.Name, mode: zf.Mode().Perm() | 0600, body: rc})
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// commonTopDir returns the single top-level directory shared by every entry,
// or "" when entries sit at the root or under different directories. A
// lone architecture folder is package content and is never reported.
func commonTopDir(fs afero.Fs, archivePath string, kind archiveKind) (string, error) {
	top := ""
	mixed := false
	err := walkArchive(fs, archivePath, kind, func(e archiveEntry) error {
		clean := strings.Trim(path.Clean(filepath.ToSlash(e.name)), "/")
		first, _, nested := strings.Cut(clean, "/")
		if !nested && !e.isDir {
			mixed = true
			return errStopWalk
		}
		if top == "" {
			top = first
		} else if top != first {
			mixed = true
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return "", err
	}
	if mixed || isArchFolder(top) {
		return "", nil
	}
	return top, nil
}

func isArchFolder(name string) bool {
	for _, arch := range ArchitectureFolderNames {
		if strings.EqualFold(name, arch) {
			return true
		}
	}
	return false
}

// extractArchive unpacks archivePath into destDir, dropping a shared
// top-level directory. It refuses entries that would escape destDir and
// fails when the archive holds no files.
func extractArchive(fs afero.Fs, archivePath string, kind archiveKind, destDir string) error {
	strip, err := commonTopDir(fs, archivePath, kind)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	files := 0
	err = walkArchive(fs, archivePath, kind, func(e archiveEntry) error {
		rel, err := entryPath(e.name, strip)
		if err != nil {
			return err
		}
		if rel == "" {
			return nil
		}
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		if e.isDir {
			return fs.MkdirAll(target, e.mode)
		}
		if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent dir for %s: %w", rel, err)
		}
		out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, e.mode)
		if err != nil {
			return fmt.Errorf("creating file %s: %w", rel, err)
		}
		if _, err := io.Copy(out, e.body); err != nil {
			out.Close()
			return fmt.Errorf("writing file %s: %w", rel, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("closing file %s: %w", rel, err)
		}
		files++
		return nil
	})
	if err != nil {
		return err
	}
	if files == 0 {
		return fmt.Errorf("archive %s contains no files", filepath.Base(archivePath))
	}
	return nil
}

// entryPath cleans an archive member name, removes the stripped prefix and
// rejects absolute or escaping paths. An empty result means "skip".
func entryPath(name, strip string) (string, error) {
	slashed := filepath.ToSlash(name)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || (len(slashed) > 1 && slashed[1] == ':') {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	if strip != "" {
		if clean == strip {
			return "", nil
		}
		clean = strings.TrimPrefix(clean, strip+"/")
	}
	if clean == "." {
		return "", nil
	}
	return clean, nil
}
