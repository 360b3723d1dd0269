// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// lockArchive takes an advisory lock on an already opened archive path.
// Writers take it exclusive, readers shared. The returned func releases it.
func lockArchive(path string, exclusive bool) (func(), error) {
	lock := flock.New(path)

	var err error
	if exclusive {
		err = lock.Lock()
	} else {
		err = lock.RLock()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lock archive %s: %w", ErrOpenFailure, path, err)
	}

	return func() { _ = lock.Unlock() }, nil
}

// openArchive opens an archive for reading.
func openArchive(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", ErrOpenFailure, path, err)
	}

	return f, nil
}
