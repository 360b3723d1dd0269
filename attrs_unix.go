// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

//go:build unix

package arvik

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// restoreMetadata applies decoded permission bits and sets both access and
// modification time to the stored mtime.
func restoreMetadata(path string, h Header) error {
	if err := unix.Chmod(path, modeToUnix(h.Mode)); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	ts, err := mtimeTimespec(h)
	if err != nil {
		return err
	}

	if err := unix.UtimesNano(path, []unix.Timespec{ts, ts}); err != nil {
		return fmt.Errorf("set times: %w", err)
	}

	return nil
}

// mtimeTimespec converts the stored mtime without going through nanoseconds,
// which overflow int64 after year 2262.
func mtimeTimespec(h Header) (unix.Timespec, error) {
	ts, err := unix.TimeToTimespec(h.ModTime)
	if err != nil {
		return ts, fmt.Errorf("mtime %d out of range: %w", h.ModTime.Unix(), err)
	}

	return ts, nil
}
