package deploy

import (
	"errors"
	"path/filepath"

	"github.com/dxvk-studio/dxvk-studio/internal/manifest"
)

// Status is the read-only view of a game directory.
type Status struct {
	Installed bool             `json:"installed"`
	Files     []string         `json:"files"`
	Directory string           `json:"directory"`
	Record    *manifest.Record `json:"record,omitempty"`
	Settings  bool             `json:"settings"`
}

// Status lists which managed files are present. When an installation
// record exists its target directory is probed instead of gameDir.
func (e *Engine) Status(gameDir string) *Status {
	st := &Status{Files: []string{}, Directory: gameDir}

	rec, err := manifest.Read(e.fs, gameDir)
	switch {
	case err == nil:
		st.Record = rec
		st.Directory = rec.ResolveTargetDir(gameDir)
	case errors.Is(err, manifest.ErrNoRecord):
	default:
		e.logger.Warn().Err(err).Msg("Installation record unusable")
	}

	for _, name := range ManagedFiles {
		info, err := e.fs.Stat(filepath.Join(st.Directory, name))
		if err == nil && !info.IsDir() {
			st.Files = append(st.Files, name)
		}
	}
	st.Installed = len(st.Files) > 0

	if _, err := e.fs.Stat(filepath.Join(gameDir, SettingsFileName)); err == nil {
		st.Settings = true
	}
	return st
}
