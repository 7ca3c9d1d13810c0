package userdata

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dxvk-studio/dxvk-studio/internal/branding"
)

// Directory name constants.
const (
	VersionsDir = "versions"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// GetCacheRoot returns the directory holding extracted shim packages.
// Resolution order: DXVK_STUDIO_CACHE_DIR, the configured value, then
// $XDG_DATA_HOME/dxvk-studio/versions.
func GetCacheRoot(configured string) string {
	if v := os.Getenv(branding.EnvVar("CACHE_DIR")); v != "" {
		return v
	}
	if configured != "" {
		return configured
	}
	return filepath.Join(xdg.DataHome, branding.DataDir(), VersionsDir)
}

// GetStateDir returns the directory holding logs and other runtime state.
func GetStateDir() string {
	return filepath.Join(xdg.StateHome, branding.DataDir())
}
