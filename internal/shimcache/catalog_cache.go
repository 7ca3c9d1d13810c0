package shimcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// catalogDir holds per-variant catalog files. It starts with a dot so
// ListCached never mistakes it for a package.
const catalogDir = ".catalog"

// catalogFile is the on-disk form of a fetched release list.
type catalogFile struct {
	Variant   Variant         `json:"variant"`
	CheckedAt time.Time       `json:"checked_at"`
	Releases  []RemoteRelease `json:"releases"`
}

func (c *catalogFile) isStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(c.CheckedAt) > maxAge
}

func (m *Manager) catalogPath(variant Variant) string {
	return filepath.Join(m.root, catalogDir, string(variant)+".json")
}

// loadCatalog returns nil, nil when no catalog was saved yet.
func (m *Manager) loadCatalog(variant Variant) (*catalogFile, error) {
	data, err := afero.ReadFile(m.fs, m.catalogPath(variant))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog cache: %w", err)
	}

	var c catalogFile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog cache: %w", err)
	}
	return &c, nil
}

func (m *Manager) saveCatalog(variant Variant, releases []RemoteRelease) error {
	p := m.catalogPath(variant)
	if err := m.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	data, err := json.MarshalIndent(catalogFile{
		Variant:   variant,
		CheckedAt: m.now(),
		Releases:  releases,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling catalog cache: %w", err)
	}
	if err := afero.WriteFile(m.fs, p, data, 0644); err != nil {
		return fmt.Errorf("writing catalog cache: %w", err)
	}
	return nil
}
