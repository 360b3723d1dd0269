// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// listTimeLayout renders month, day, hour:minute and year.
const listTimeLayout = "Jan _2 15:04 2006"

// List writes the table of contents of the archive read from r to out,
// one line per entry in archive order.
func List(ctx context.Context, r io.Reader, out io.Writer, opts ListOptions) error {
	if out == nil {
		return ErrNilWriter
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	walker, err := NewWalker(r, opts.ReaderOptions)
	if err != nil {
		return err
	}

	for entry, err := range walker.All() {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		line := entry.Name()
		if opts.Verbose {
			line = FormatEntry(entry.Header(), opts.Location)
		}

		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}

	return nil
}

// ListFile opens archivePath and writes its table of contents to out.
func ListFile(ctx context.Context, archivePath string, out io.Writer, opts ListOptions) error {
	f, err := openArchive(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if opts.Lock {
		unlock, err := lockArchive(archivePath, false)
		if err != nil {
			return err
		}
		defer unlock()
	}

	return List(ctx, f, out, opts)
}

// FormatEntry renders one verbose listing line:
// permissions, uid/gid, size, timestamp and name.
func FormatEntry(h Header, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return fmt.Sprintf("%s %d/%d %6d %s %s",
		FormatMode(h.Mode),
		h.UID,
		h.GID,
		h.Size,
		h.ModTime.In(loc).Format(listTimeLayout),
		h.Name,
	)
}

// FormatMode renders the nine permission bits as rwx triplets for user,
// group and other, using '-' for absent bits.
func FormatMode(mode fs.FileMode) string {
	const symbols = "rwxrwxrwx"

	var buf [9]byte
	for i := range buf {
		if mode&(1<<uint(8-i)) != 0 {
			buf[i] = symbols[i]
		} else {
			buf[i] = '-'
		}
	}

	return string(buf[:])
}
