package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dxvk-studio/dxvk-studio/internal/manifest"
	"github.com/dxvk-studio/dxvk-studio/internal/pe"
	"github.com/dxvk-studio/dxvk-studio/internal/shimcache"
)

// InstallResult reports the outcome of Install. Expected failures set
// Success=false with Kind and Error filled in.
type InstallResult struct {
	Success            bool             `json:"success"`
	Kind               Kind             `json:"kind,omitempty"`
	Error              string           `json:"error,omitempty"`
	Analysis           *pe.Analysis     `json:"analysis,omitempty"`
	Generation         pe.APIGeneration `json:"api_generation,omitempty"`
	GenerationDetected bool             `json:"generation_detected"`
	SourceDir          string           `json:"source_dir,omitempty"`
	TargetDir          string           `json:"target_dir,omitempty"`
	InstalledFiles     []string         `json:"installed_files"`
	SkippedFiles       []string         `json:"skipped_files,omitempty"`
	RemovedStale       []string         `json:"removed_stale,omitempty"` // relative to the game dir
}

// Install copies the shim DLLs the executable needs from packagePath into
// the executable's directory and records what it did in gameDir.
//
// The returned error is non-nil only for installation_failed, where an
// unexpected I/O error aborted the copy. Files copied before the failure are
// removed and overwritten files restored.
func (e *Engine) Install(ctx context.Context, gameDir, exePath, packagePath string) (*InstallResult, error) {
	res := &InstallResult{InstalledFiles: []string{}}
	targetDir := filepath.Dir(exePath)
	log := e.logger.With().Str("game_dir", gameDir).Str("exe", exePath).Logger()

	for _, path := range []string{gameDir, targetDir, exePath} {
		if err := e.policy.Check(path); err != nil {
			log.Warn().Err(err).Msg("Install refused")
			return res.fail(err), nil
		}
	}
	if err := e.guardRunning(ctx, exePath); err != nil {
		return res.fail(err), nil
	}

	analysis := pe.AnalyzeFile(e.fs, exePath)
	res.Analysis = analysis
	if !analysis.Valid {
		return res.fail(fmt.Errorf("%w: %s", ErrInvalidExecutable, analysis.ErrorReason)), nil
	}

	sourceDir := filepath.Join(packagePath, ArchFolder(analysis.Architecture))
	if info, err := e.fs.Stat(sourceDir); err != nil || !info.IsDir() {
		return res.fail(fmt.Errorf("%w: %s not found in %s", ErrMissingArchitectureFolder, ArchFolder(analysis.Architecture), packagePath)), nil
	}
	res.SourceDir = sourceDir
	res.TargetDir = targetDir

	res.Generation = analysis.APIGeneration
	res.GenerationDetected = analysis.APIGeneration.Known()
	if !res.GenerationDetected {
		res.Generation = DefaultGeneration
		log.Info().Stringer("generation", res.Generation).Msg("No API markers found, using default file set")
	}

	previous := e.previousRecord(gameDir)

	tx := newTransaction(e.fs, log)
	for _, name := range RequiredFiles(res.Generation) {
		if err := ctx.Err(); err != nil {
			return e.abort(res, tx, err)
		}
		src := filepath.Join(sourceDir, name)
		if _, err := e.fs.Stat(src); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return e.abort(res, tx, err)
			}
			log.Debug().Str("file", name).Msg("Not in package, skipping")
			res.SkippedFiles = append(res.SkippedFiles, name)
			continue
		}
		if err := tx.place(src, filepath.Join(targetDir, name)); err != nil {
			return e.abort(res, tx, err)
		}
		res.InstalledFiles = append(res.InstalledFiles, name)
	}

	rec := &manifest.Record{
		Architecture:   analysis.Architecture,
		APIGeneration:  res.Generation,
		TargetDir:      manifest.RelativeTargetDir(gameDir, targetDir),
		Executable:     filepath.Base(exePath),
		InstalledFiles: append([]string{}, res.InstalledFiles...),
		InstalledAt:    e.now().UTC(),
	}
	if variant, version, err := shimcache.ParseDirName(filepath.Base(packagePath)); err == nil {
		rec.Variant = string(variant)
		rec.Version = version
	}
	if err := manifest.Write(e.fs, gameDir, rec); err != nil {
		return e.abort(res, tx, err)
	}
	tx.commit()

	res.RemovedStale = e.removeStale(previous, gameDir, targetDir, res.InstalledFiles)

	if len(res.InstalledFiles) == 0 {
		log.Warn().Str("source", sourceDir).Msg("Package provided none of the required files")
	}
	log.Info().Strs("files", res.InstalledFiles).Msg("Install complete")
	res.Success = true
	return res, nil
}

func (r *InstallResult) fail(err error) *InstallResult {
	r.Success = false
	r.Kind = KindOf(err)
	r.Error = err.Error()
	r.InstalledFiles = []string{}
	return r
}

// abort rolls back and reports installation_failed.
func (e *Engine) abort(res *InstallResult, tx *transaction, cause error) (*InstallResult, error) {
	err := fmt.Errorf("%w: %w", ErrInstallationFailed, cause)
	if rbErr := tx.rollback(); rbErr != nil {
		err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
	}
	e.logger.Error().Err(err).Msg("Install aborted")
	return res.fail(err), err
}

func (e *Engine) previousRecord(gameDir string) *manifest.Record {
	rec, err := manifest.Read(e.fs, gameDir)
	if err != nil {
		if !errors.Is(err, manifest.ErrNoRecord) {
			e.logger.Warn().Err(err).Msg("Ignoring unreadable installation record")
		}
		return nil
	}
	return rec
}

// removeStale deletes files a previous install put down that the new
// install did not provide. When the executable directory changed, every
// file of the previous install is removed from its old directory, since
// the new record no longer points there.
func (e *Engine) removeStale(previous *manifest.Record, gameDir, targetDir string, installed []string) []string {
	if previous == nil {
		return nil
	}
	oldDir := previous.ResolveTargetDir(gameDir)
	keep := make(map[string]bool, len(installed))
	if oldDir == filepath.Clean(targetDir) {
		for _, name := range installed {
			keep[name] = true
		}
	} else if err := e.policy.Check(oldDir); err != nil {
		e.logger.Warn().Err(err).Msg("Leaving previous install in place")
		return nil
	}

	var removed []string
	for _, name := range previous.InstalledFiles {
		if keep[name] || !isManaged(name) {
			continue
		}
		path := filepath.Join(oldDir, name)
		if err := e.fs.Remove(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				e.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove stale file")
			}
			continue
		}
		removed = append(removed, filepath.ToSlash(filepath.Join(manifest.RelativeTargetDir(gameDir, oldDir), name)))
	}
	return removed
}
