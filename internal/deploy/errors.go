package deploy

import (
	"errors"

	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

var (
	ErrProtectedPath             = errors.New("refusing to modify a protected path")
	ErrInvalidExecutable         = errors.New("invalid executable")
	ErrMissingArchitectureFolder = errors.New("package has no folder for this architecture")
	ErrInstallationFailed        = errors.New("installation failed")
	ErrGameRunning               = errors.New("game is running")
	ErrUnsupportedSettings       = errors.New("unsupported settings document")
)

// Kind is the machine-readable failure category carried by results.
type Kind string

const (
	KindNone                      Kind = ""
	KindInvalidExecutable         Kind = "invalid_executable"
	KindProtectedPath             Kind = "protected_path"
	KindCatalogUnavailable        Kind = "catalog_unavailable"
	KindDownloadFailed            Kind = "download_failed"
	KindExtractionFailed          Kind = "extraction_failed"
	KindMissingArchitectureFolder Kind = "missing_architecture_folder"
	KindInstallationFailed        Kind = "installation_failed"
	KindGameRunning               Kind = "game_running"
	KindInvalidSettings           Kind = "invalid_settings"
)

var kindErrors = []struct {
	err  error
	kind Kind
}{
	{ErrProtectedPath, KindProtectedPath},
	{ErrInvalidExecutable, KindInvalidExecutable},
	{ErrMissingArchitectureFolder, KindMissingArchitectureFolder},
	{ErrGameRunning, KindGameRunning},
	{ErrUnsupportedSettings, KindInvalidSettings},
	{ErrInstallationFailed, KindInstallationFailed},
	{shimcache.ErrCatalogUnavailable, KindCatalogUnavailable},
	{shimcache.ErrExtractionFailed, KindExtractionFailed},
	{shimcache.ErrDownloadFailed, KindDownloadFailed},
}

// KindOf classifies err. Unclassified errors count as installation failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindInstallationFailed
}
