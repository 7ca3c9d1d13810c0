package shimcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ArchitectureFolderNames are the subfolders a package may carry.
var ArchitectureFolderNames = []string{"x32", "x64"}

// ListCached lists the packages present under the cache root. It only checks
// that each entry is a directory with a parseable name; package contents are
// validated at install time. A missing root yields an empty list.
func (m *Manager) ListCached() ([]CachedPackage, error) {
	entries, err := afero.ReadDir(m.fs, m.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache root %s: %w", m.root, err)
	}

	var pkgs []CachedPackage
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		variant, version, err := ParseDirName(entry.Name())
		if err != nil {
			m.logger.Debug().Str("dir", entry.Name()).Err(err).Msg("Skipping unrecognized cache entry")
			continue
		}
		dir := filepath.Join(m.root, entry.Name())
		pkgs = append(pkgs, CachedPackage{
			Variant:             variant,
			Version:             version,
			Path:                dir,
			ArchitectureFolders: m.archFolders(dir),
		})
	}

	sortCached(pkgs)
	return pkgs, nil
}

// Find returns the cached package for variant and version, or nil when it
// is not present.
func (m *Manager) Find(variant Variant, version string) (*CachedPackage, error) {
	name, err := DirName(variant, version)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(m.root, name)
	info, err := m.fs.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}
	return &CachedPackage{
		Variant:             variant,
		Version:             version,
		Path:                dir,
		ArchitectureFolders: m.archFolders(dir),
	}, nil
}

// Latest returns the newest cached package of variant, or nil.
func (m *Manager) Latest(variant Variant) (*CachedPackage, error) {
	pkgs, err := m.ListCached()
	if err != nil {
		return nil, err
	}
	for i := range pkgs {
		if pkgs[i].Variant == variant {
			return &pkgs[i], nil
		}
	}
	return nil, nil
}

// Delete removes a cached package. Deleting an absent package succeeds.
func (m *Manager) Delete(variant Variant, version string) error {
	name, err := DirName(variant, version)
	if err != nil {
		return err
	}
	dir := filepath.Join(m.root, name)
	if err := m.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	m.logger.Info().Str("path", dir).Msg("Removed cached package")
	return nil
}

func (m *Manager) archFolders(dir string) []string {
	var found []string
	for _, name := range ArchitectureFolderNames {
		if info, err := m.fs.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			found = append(found, name)
		}
	}
	return found
}
