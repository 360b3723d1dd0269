// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import "errors"

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrOpenFailure means the archive or a member source file cannot be opened.
	ErrOpenFailure = errors.New("open failure")
	// ErrBadMagic means the archive is missing or has an incorrect magic tag.
	ErrBadMagic = errors.New("invalid archive: missing or bad magic tag")
	// ErrWriteFailure means a header, body chunk, or pad byte was not fully written.
	ErrWriteFailure = errors.New("write failure")
	// ErrTruncatedArchive means a header or body is shorter than declared.
	ErrTruncatedArchive = errors.New("truncated archive")
	// ErrCorruptHeader means a header field failed strict validation.
	ErrCorruptHeader = errors.New("corrupt member header")
	// ErrExtractFailure means a destination file could not be created, written, or restored.
	ErrExtractFailure = errors.New("extract failure")
	// ErrFieldOverflow means a numeric header field does not fit its fixed width.
	ErrFieldOverflow = errors.New("header field overflow")
	// ErrInvalidExtractPath means a member name is not usable as a destination path.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrEntryConsumed means the walker already moved past the entry being read.
	ErrEntryConsumed = errors.New("entry body no longer available")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrEntryNotFound means the named member is not in the archive.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidSelectRule means one or more member selection rules are invalid.
	ErrInvalidSelectRule = errors.New("invalid select rules")
)
