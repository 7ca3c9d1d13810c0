package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ErrNoRecord is returned by Read when the game directory has no record.
var ErrNoRecord = errors.New("no installation record")

// ErrInvalidRecord wraps records that exist but fail to parse or validate.
var ErrInvalidRecord = errors.New("invalid installation record")

// Parse validates data against the schema and decodes it.
func Parse(data []byte) (*Record, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, result.Summary())
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return &rec, nil
}

// Read loads the record from gameDir.
func Read(fs afero.Fs, gameDir string) (*Record, error) {
	path := Path(gameDir)
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Write stores rec in gameDir, replacing any previous record. The record is
// validated before anything touches the disk.
func Write(fs afero.Fs, gameDir string, rec *Record) error {
	if rec.SchemaVersion == 0 {
		rec.SchemaVersion = SchemaVersion
	}
	if rec.InstalledFiles == nil {
		rec.InstalledFiles = []string{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	data = append(data, '\n')

	if _, err := Parse(data); err != nil {
		return err
	}

	path := Path(gameDir)
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Remove deletes the record. A missing record is not an error.
func Remove(fs afero.Fs, gameDir string) error {
	path := Path(gameDir)
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
