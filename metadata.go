// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"io"
)

// ListEntries opens an archive and returns entry metadata without body reads.
func ListEntries(archivePath string, opts ReaderOptions) ([]EntryInfo, error) {
	f, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if opts.Lock {
		unlock, err := lockArchive(archivePath, false)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	return ListEntriesFromReader(f, opts)
}

// ListEntriesFromReader walks an archive stream and returns entry metadata.
// Seekable sources skip bodies without reading them.
func ListEntriesFromReader(r io.Reader, opts ReaderOptions) ([]EntryInfo, error) {
	walker, err := NewWalker(r, opts)
	if err != nil {
		return nil, err
	}

	var entries []EntryInfo
	for entry, err := range walker.All() {
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry.Info())
	}

	return entries, nil
}
