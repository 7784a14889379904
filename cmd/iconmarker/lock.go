package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tools.zach/dev/iconmarker/internal/paths"
)

// ///////////////////////////////////////////////
// Watch Lock
// ///////////////////////////////////////////////

// acquireWatchLock locks a file in the output directory so only one watcher
// writes a given set of outputs. The returned file must stay open while the
// lock is held.
func acquireWatchLock(dir string) (*os.File, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, paths.LockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("another watcher is writing to %s: %w", dir, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return f, nil
}

// releaseWatchLock unlocks, closes, and removes the lock file.
func releaseWatchLock(f *os.File) {
	if f == nil {
		return
	}
	name := f.Name()
	if err := unlockFile(f); err != nil {
		slog.Debug("unlock failed", "path", name, "error", err)
	}
	f.Close()
	os.Remove(name)
}
