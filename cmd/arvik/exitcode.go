// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package main

import (
	"errors"

	"github.com/woozymasta/arvik"
)

// Process exit statuses.
const (
	exitOK             = 0
	exitFailure        = 1
	exitInvalidOption  = 2
	exitNoArchiveName  = 3
	exitNoActionGiven  = 4
	exitCreateFailure  = 5
	exitBadMagic       = 6
	exitExtractFailure = 7
	exitReadFailure    = 8
)

// usageError is a command line problem carrying its own exit status.
type usageError struct {
	msg  string
	code int
}

// Error implements error.
func (e *usageError) Error() string {
	return e.msg
}

// exitCodeFor maps an error kind to a process exit status.
func exitCodeFor(err error) int {
	var uerr *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr):
		return uerr.code
	case errors.Is(err, arvik.ErrBadMagic):
		return exitBadMagic
	case errors.Is(err, arvik.ErrExtractFailure), errors.Is(err, arvik.ErrInvalidExtractPath):
		return exitExtractFailure
	case errors.Is(err, arvik.ErrTruncatedArchive), errors.Is(err, arvik.ErrCorruptHeader):
		return exitReadFailure
	case errors.Is(err, arvik.ErrOpenFailure),
		errors.Is(err, arvik.ErrWriteFailure),
		errors.Is(err, arvik.ErrFieldOverflow):
		return exitCreateFailure
	default:
		return exitFailure
	}
}
