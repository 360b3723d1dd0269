// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"errors"
	"fmt"
	"io"
)

// Entry is one walked archive member. It reads its body span directly from
// the archive and is valid until the next call to Walker.Next.
type Entry struct {
	walker    *Walker
	info      EntryInfo
	remaining int64
}

// Info returns entry metadata and offsets.
func (e *Entry) Info() EntryInfo {
	return e.info
}

// Header returns the decoded member header.
func (e *Entry) Header() Header {
	return e.info.Header
}

// Name returns the logical member name.
func (e *Entry) Name() string {
	return e.info.Name
}

// Read reads body bytes; it returns io.EOF after exactly Size bytes.
func (e *Entry) Read(p []byte) (int, error) {
	if e.walker == nil || e.walker.cur != e {
		return 0, ErrEntryConsumed
	}

	if e.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > e.remaining {
		p = p[:e.remaining]
	}

	n, err := e.walker.r.Read(p)
	e.remaining -= int64(n)
	e.walker.offset += int64(n)

	if errors.Is(err, io.EOF) && e.remaining > 0 {
		return n, fmt.Errorf("%w: body of %q ends %d bytes early", ErrTruncatedArchive, e.info.Name, e.remaining)
	}

	return n, err
}

// ReadMember walks an archive file and returns the body of the first member named name.
func ReadMember(archivePath, name string, opts ReaderOptions) ([]byte, error) {
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

	walker, err := NewWalker(f, opts)
	if err != nil {
		return nil, err
	}

	for entry, err := range walker.All() {
		if err != nil {
			return nil, err
		}

		if entry.Name() == name {
			return io.ReadAll(entry)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}
