package manifest

import (
	"path/filepath"
	"time"

	"github.com/dxvk-studio/dxvk-studio/internal/pe"
)

// FileName is the record's name inside the game directory.
const FileName = "dxvk-studio.json"

// SchemaVersion is written into every new record.
const SchemaVersion = 1

// Record describes one install: which package went where.
type Record struct {
	SchemaVersion  int              `json:"schema_version"`
	Variant        string           `json:"variant,omitempty"`
	Version        string           `json:"version,omitempty"`
	Architecture   pe.Architecture  `json:"architecture"`
	APIGeneration  pe.APIGeneration `json:"api_generation"`
	TargetDir      string           `json:"target_dir"`
	Executable     string           `json:"executable,omitempty"`
	InstalledFiles []string         `json:"installed_files"`
	InstalledAt    time.Time        `json:"installed_at"`
}

// Path returns the record location for gameDir.
func Path(gameDir string) string {
	return filepath.Join(gameDir, FileName)
}

// ResolveTargetDir returns the absolute directory the files were installed
// into. Relative target dirs are resolved against gameDir.
func (r *Record) ResolveTargetDir(gameDir string) string {
	if r.TargetDir == "" || r.TargetDir == "." {
		return gameDir
	}
	if filepath.IsAbs(r.TargetDir) {
		return filepath.Clean(r.TargetDir)
	}
	return filepath.Join(gameDir, filepath.FromSlash(r.TargetDir))
}

// RelativeTargetDir expresses targetDir relative to gameDir using forward
// slashes, or returns it unchanged when it lies outside gameDir.
func RelativeTargetDir(gameDir, targetDir string) string {
	rel, err := filepath.Rel(gameDir, targetDir)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return targetDir
	}
	return filepath.ToSlash(rel)
}
