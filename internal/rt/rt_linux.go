//go:build linux

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LockMemory pins current and future pages so the polling loop never
// takes a major page fault mid-tick.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}

// RaisePriority moves the process to the highest nice level. Requires
// CAP_SYS_NICE or root.
func RaisePriority() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -20); err != nil {
		return fmt.Errorf("setpriority: %w", err)
	}
	return nil
}
