// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extract reconstructs archive members read from r into dstDir
// (current working directory when empty). Each member is created or
// truncated, filled with exactly Size bytes, then gets its permission bits
// and timestamps restored. The first failure aborts the run.
func Extract(ctx context.Context, r io.Reader, dstDir string, opts ExtractOptions) (*ExtractResult, error) {
	startedAt := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()

	walker, err := NewWalker(r, opts.ReaderOptions)
	if err != nil {
		return nil, err
	}

	if dstDir == "" {
		dstDir = "."
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create output dir %s: %w", ErrExtractFailure, dstDir, err)
	}

	copyBuf, release := acquireCopyBuffer(opts.CopyBufferSize)
	defer release()

	res := &ExtractResult{}
	for entry, err := range walker.All() {
		if err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outPath, written, err := extractEntry(entry, dstDir, opts.FileMode, copyBuf)
		if err != nil {
			return nil, err
		}

		res.ExtractedEntries++
		res.DataSize += written

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(entry.Info(), written, outPath)
		}
	}

	res.SkippedEntries = walker.Skipped()
	res.Duration = time.Since(startedAt)
	return res, nil
}

// ExtractFile opens archivePath and extracts its members into dstDir.
func ExtractFile(ctx context.Context, archivePath, dstDir string, opts ExtractOptions) (*ExtractResult, error) {
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

	return Extract(ctx, f, dstDir, opts)
}

// extractEntry writes one member body to dstDir and restores its metadata.
func extractEntry(entry *Entry, dstDir string, fileMode ExtractFileMode, copyBuf []byte) (string, int64, error) {
	h := entry.Header()

	name, err := validateMemberName(h.Name)
	if err != nil {
		return "", 0, fmt.Errorf("%w: member %q: %w", ErrExtractFailure, h.Name, err)
	}

	outPath := filepath.Join(dstDir, name)
	file, err := openExtractFile(outPath, fileMode)
	if err != nil {
		return outPath, 0, fmt.Errorf("%w: open %s: %w", ErrExtractFailure, outPath, err)
	}

	written, copyErr := copyBounded(file, entry, h.Size, copyBuf)
	closeErr := file.Close()

	if copyErr != nil {
		var werr *writeError
		if errors.As(copyErr, &werr) {
			return outPath, written, fmt.Errorf("%w: write %s: %w", ErrExtractFailure, outPath, werr.err)
		}

		if errors.Is(copyErr, io.ErrUnexpectedEOF) {
			return outPath, written, fmt.Errorf("%w: body of %q ends after %d of %d bytes", ErrTruncatedArchive, h.Name, written, h.Size)
		}

		return outPath, written, fmt.Errorf("extract %s: %w", h.Name, copyErr)
	}

	if closeErr != nil {
		return outPath, written, fmt.Errorf("%w: close %s: %w", ErrExtractFailure, outPath, closeErr)
	}

	if err := restoreMetadata(outPath, h); err != nil {
		return outPath, written, fmt.Errorf("%w: restore metadata %s: %w", ErrExtractFailure, outPath, err)
	}

	return outPath, written, nil
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// validateMemberName rejects member names that do not name a single file in the output directory.
func validateMemberName(name string) (string, error) {
	switch {
	case name == "", name == ".", name == "..":
		return "", ErrInvalidExtractPath
	case strings.ContainsRune(name, 0):
		return "", ErrInvalidExtractPath
	case strings.ContainsRune(name, '/'):
		return "", ErrInvalidExtractPath
	case filepath.Base(name) != name:
		return "", ErrInvalidExtractPath
	}

	return name, nil
}
