package userdata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CheckDirs validates that each named directory exists and is writable.
// When fix is true, missing directories are created.
// It returns the number of problems left unresolved.
func CheckDirs(w io.Writer, dirs map[string]string, order []string, fix bool) int {
	problems := 0
	for _, label := range order {
		dir, ok := dirs[label]
		if !ok {
			continue
		}
		if !checkDir(w, label, dir, fix) {
			problems++
		}
	}
	return problems
}

func checkDir(w io.Writer, label, dir string, fix bool) bool {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s: %s does not exist\n", label, dir)
		if !fix {
			return false
		}
		if mkErr := os.MkdirAll(dir, DirPermNormal); mkErr != nil {
			fmt.Fprintf(w, "  [FAIL] could not create %s: %v\n", dir, mkErr)
			return false
		}
		fmt.Fprintf(w, "  [FIX ] created %s\n", dir)
		return true
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", label, err)
		return false
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [FAIL] %s: %s is not a directory\n", label, dir)
		return false
	}
	if err := probeWritable(dir); err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %s is not writable: %v\n", label, dir, err)
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s: %s\n", label, dir)
	return true
}

// probeWritable creates and removes a marker file in dir.
func probeWritable(dir string) error {
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, nil, FilePermNormal); err != nil {
		return err
	}
	return os.Remove(probe)
}
