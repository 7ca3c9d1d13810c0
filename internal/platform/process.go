package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

// IsRunning reports whether a process whose executable is exePath is alive.
// Processes whose executable cannot be read (permissions, zombies) are
// skipped.
func IsRunning(ctx context.Context, exePath string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("listing processes: %w", err)
	}
	for _, p := range procs {
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			continue
		}
		if SamePath(exe, exePath) {
			return true, nil
		}
	}
	return false, nil
}
