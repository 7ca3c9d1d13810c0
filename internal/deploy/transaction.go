package deploy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const backupSuffix = ".backup"

// transaction tracks the files one install writes so they can be undone.
type transaction struct {
	fs      afero.Fs
	logger  zerolog.Logger
	written []string
	backups map[string]string
}

func newTransaction(fs afero.Fs, logger zerolog.Logger) *transaction {
	return &transaction{fs: fs, logger: logger, backups: map[string]string{}}
}

// place copies src to dst, moving an existing dst aside first.
func (tx *transaction) place(src, dst string) error {
	if _, err := tx.fs.Stat(dst); err == nil {
		backup := dst + backupSuffix
		if err := tx.fs.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clearing old backup %s: %w", backup, err)
		}
		if err := tx.fs.Rename(dst, backup); err != nil {
			return fmt.Errorf("backing up %s: %w", dst, err)
		}
		tx.backups[dst] = backup
	}

	tx.written = append(tx.written, dst)
	if err := copyFile(tx.fs, src, dst); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

// rollback removes every file written and restores backups.
func (tx *transaction) rollback() error {
	var errs []error
	for i := len(tx.written) - 1; i >= 0; i-- {
		dst := tx.written[i]
		if err := tx.fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", dst, err))
		}
		if backup, ok := tx.backups[dst]; ok {
			if err := tx.fs.Rename(backup, dst); err != nil {
				errs = append(errs, fmt.Errorf("restoring %s: %w", dst, err))
			}
		}
	}
	tx.logger.Warn().Int("files", len(tx.written)).Msg("Rolled back partial install")
	return errors.Join(errs...)
}

// commit drops the backups.
func (tx *transaction) commit() {
	for _, backup := range tx.backups {
		if err := tx.fs.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
			tx.logger.Warn().Err(err).Str("path", backup).Msg("Failed to remove backup")
		}
	}
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	perm := os.FileMode(0644)
	if info, err := in.Stat(); err == nil {
		perm = info.Mode().Perm()
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
