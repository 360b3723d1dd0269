// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

//go:build !unix

package arvik

import (
	"fmt"
	"os"
)

// restoreMetadata applies permission bits and sets both access and
// modification time to the stored mtime.
func restoreMetadata(path string, h Header) error {
	if err := os.Chmod(path, h.Mode); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	if err := os.Chtimes(path, h.ModTime, h.ModTime); err != nil {
		return fmt.Errorf("set times: %w", err)
	}

	return nil
}
