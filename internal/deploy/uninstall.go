package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dxvk-studio/dxvk-studio/internal/manifest"
)

// UninstallResult reports the outcome of Uninstall.
type UninstallResult struct {
	Success      bool     `json:"success"`
	Kind         Kind     `json:"kind,omitempty"`
	Error        string   `json:"error,omitempty"`
	TargetDir    string   `json:"target_dir,omitempty"`
	FromRecord   bool     `json:"from_record"`
	RemovedFiles []string `json:"removed_files"`
}

func (r *UninstallResult) fail(err error) *UninstallResult {
	r.Success = false
	r.Kind = KindOf(err)
	r.Error = err.Error()
	return r
}

// Uninstall removes shim DLLs from gameDir. With an installation record only
// the recorded files are removed from the recorded directory; without one
// every managed file name is removed from gameDir. Absent files are ignored,
// so a second call removes nothing.
func (e *Engine) Uninstall(ctx context.Context, gameDir string) (*UninstallResult, error) {
	res := &UninstallResult{RemovedFiles: []string{}}
	log := e.logger.With().Str("game_dir", gameDir).Logger()

	if err := e.policy.Check(gameDir); err != nil {
		log.Warn().Err(err).Msg("Uninstall refused")
		return res.fail(err), nil
	}

	targetDir := gameDir
	files := ManagedFiles
	exePath := ""

	rec, err := manifest.Read(e.fs, gameDir)
	switch {
	case err == nil:
		targetDir = rec.ResolveTargetDir(gameDir)
		files = managedSubset(rec.InstalledFiles)
		if rec.Executable != "" {
			exePath = filepath.Join(targetDir, rec.Executable)
		}
		res.FromRecord = true
	case errors.Is(err, manifest.ErrNoRecord):
	default:
		log.Warn().Err(err).Msg("Installation record unusable, removing by file name")
	}
	res.TargetDir = targetDir

	if err := e.policy.Check(targetDir); err != nil {
		log.Warn().Err(err).Msg("Uninstall refused")
		return res.fail(err), nil
	}
	if err := e.guardRunning(ctx, exePath); err != nil {
		return res.fail(err), nil
	}

	for _, name := range files {
		path := filepath.Join(targetDir, name)
		if err := e.fs.Remove(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			err = fmt.Errorf("%w: removing %s: %w", ErrInstallationFailed, path, err)
			return res.fail(err), err
		}
		res.RemovedFiles = append(res.RemovedFiles, name)
	}

	if err := manifest.Remove(e.fs, gameDir); err != nil {
		err = fmt.Errorf("%w: %w", ErrInstallationFailed, err)
		return res.fail(err), err
	}

	log.Info().Strs("files", res.RemovedFiles).Msg("Uninstall complete")
	res.Success = true
	return res, nil
}

func managedSubset(names []string) []string {
	var out []string
	for _, name := range names {
		if isManaged(name) {
			out = append(out, name)
		}
	}
	return out
}
