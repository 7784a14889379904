// Advisory locking via flock(2) on all non-Windows platforms.

//go:build !windows

package main

import (
	"fmt"
	"os"
	"syscall"
)

// lockFile acquires an exclusive, non-blocking advisory lock on f. It fails
// immediately with EWOULDBLOCK when another holder exists.
func lockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		return fmt.Errorf("lock file %s: %w", f.Name(), err)
	}
	return nil
}

// unlockFile releases the lock held on f. Closing f also releases it.
func unlockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		return fmt.Errorf("unlock file %s: %w", f.Name(), err)
	}
	return nil
}
