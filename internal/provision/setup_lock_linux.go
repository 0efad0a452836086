// SPDX-License-Identifier: MPL-2.0

//go:build linux

package provision

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// setupLock holds a blocking exclusive flock on a per-app lock file, providing
// cross-process serialization of first-run provisioning. Without it two
// concurrent launches could both observe "environment absent" and race the
// staging build. The zero-byte lock file is harmless if orphaned — the kernel
// releases the flock automatically when the fd is closed (including on crash).
type setupLock struct {
	file *os.File
}

// acquireSetupLock opens (or creates) the lock file and acquires a blocking
// exclusive flock. The call blocks until the lock is available.
func acquireSetupLock(lockPath string) (*setupLock, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &setupLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. It is safe to call
// multiple times — subsequent calls are no-ops.
func (l *setupLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}
