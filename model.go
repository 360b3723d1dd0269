// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"io"
	"io/fs"
	"time"

	"github.com/woozymasta/pathrules"
)

// On-disk format constants.
const (
	// Magic is the tag every archive starts with.
	Magic = "!<arch>\n"
	// MagicSize is the magic tag length in bytes.
	MagicSize = len(Magic)
	// HeaderSize is the fixed member header length in bytes.
	HeaderSize = 60
	// HeaderTrailer closes every member header.
	HeaderTrailer = "`\n"
	// PadByte follows odd-sized member bodies.
	PadByte = '\n'
)

// Deterministic mode header values.
const (
	// DeterministicMode is the permission set stored in deterministic mode.
	DeterministicMode fs.FileMode = 0o644
	// DeterministicID is the uid and gid stored in deterministic mode.
	DeterministicID = 0
)

// Default I/O tuning values.
const (
	// DefaultCopyBuffer is the bounded buffer used to stream member bodies.
	DefaultCopyBuffer = 64 * 1024
	// ArchivePerm is the permission set applied to newly created archives.
	ArchivePerm fs.FileMode = 0o664
)

// Header is the decoded form of one fixed-width member header.
type Header struct {
	// ModTime is the member modification time (second precision).
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Name is the logical member name without terminator and padding.
	Name string `json:"name" yaml:"name"`
	// Size is the body length in bytes.
	Size int64 `json:"size" yaml:"size"`
	// UID is the owner user id.
	UID int `json:"uid" yaml:"uid"`
	// GID is the owner group id.
	GID int `json:"gid" yaml:"gid"`
	// Mode holds permission bits (including setuid, setgid and sticky).
	Mode fs.FileMode `json:"mode" yaml:"mode"`
}

// EntryInfo describes a single walked archive entry without its body bytes.
type EntryInfo struct {
	Header

	// HeaderOffset is absolute archive offset of the entry header.
	HeaderOffset int64 `json:"header_offset" yaml:"header_offset"`
	// BodyOffset is absolute archive offset of the first body byte.
	BodyOffset int64 `json:"body_offset" yaml:"body_offset"`
}

// Padded reports whether the entry body is followed by a pad byte.
func (e EntryInfo) Padded() bool {
	return e.Size%2 != 0
}

// NextOffset returns the absolute offset of the following entry header.
func (e EntryInfo) NextOffset() int64 {
	next := e.BodyOffset + e.Size
	if e.Padded() {
		next++
	}

	return next
}

// Input describes one source stream to be appended as an archive member.
type Input struct {
	// ModTime is the member modification time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Open returns the raw source stream for this member.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is the member name stored in the header.
	Name string `json:"name" yaml:"name"`
	// Source is the path the input was read from, as given by the caller.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Size is the exact number of bytes Open yields.
	Size int64 `json:"size" yaml:"size"`
	// UID is the owner user id.
	UID int `json:"uid" yaml:"uid"`
	// GID is the owner group id.
	GID int `json:"gid" yaml:"gid"`
	// Mode holds permission bits.
	Mode fs.FileMode `json:"mode" yaml:"mode"`
}

// EncodeOptions configures header encoding policy.
type EncodeOptions struct {
	// StrictFields fails with ErrFieldOverflow instead of truncating oversized numeric fields.
	StrictFields bool `json:"strict_fields,omitempty" yaml:"strict_fields,omitempty"`
}

// DecodeOptions configures header decoding policy.
type DecodeOptions struct {
	// StrictNumbers fails with ErrCorruptHeader instead of decoding malformed numbers as zero.
	StrictNumbers bool `json:"strict_numbers,omitempty" yaml:"strict_numbers,omitempty"`
	// VerifyTrailer fails with ErrCorruptHeader when the header trailer is not "`\n".
	VerifyTrailer bool `json:"verify_trailer,omitempty" yaml:"verify_trailer,omitempty"`
}

// WriterOptions configures archive write behavior.
type WriterOptions struct {
	// OnEntryDone is called after one member is fully written with the
	// input Source (empty for inputs not built from a file).
	OnEntryDone func(entry EntryInfo, source string) `json:"-" yaml:"-"`
	// Select defines ordered path rules for source selection by member name.
	Select []pathrules.Rule `json:"select,omitempty" yaml:"select,omitempty"`
	// SelectMatcherOptions control selection rule matching.
	SelectMatcherOptions pathrules.MatcherOptions `json:"select_matcher_options,omitzero" yaml:"select_matcher_options,omitzero"`
	// CopyBufferSize is the bounded body copy buffer size in bytes.
	CopyBufferSize int `json:"copy_buffer_size,omitempty" yaml:"copy_buffer_size,omitempty"`
	// Deterministic stores zero mtime, zero ownership and 0644 permissions.
	Deterministic bool `json:"deterministic,omitempty" yaml:"deterministic,omitempty"`
	// StrictFields fails instead of truncating oversized numeric header fields.
	StrictFields bool `json:"strict_fields,omitempty" yaml:"strict_fields,omitempty"`
	// Lock takes an exclusive advisory lock on the archive in file-level helpers.
	Lock bool `json:"lock,omitempty" yaml:"lock,omitempty"`
}

// CreateResult contains create output statistics.
type CreateResult struct {
	// Entries lists written members in archive order.
	Entries []EntryInfo `json:"entries,omitempty" yaml:"entries,omitempty"`
	// WrittenEntries is number of members written.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// SkippedEntries is number of sources excluded by selection rules.
	SkippedEntries int `json:"skipped_entries,omitempty" yaml:"skipped_entries,omitempty"`
	// DataSize is total body bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// Duration is end-to-end create duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ReaderOptions configures archive walk behavior.
type ReaderOptions struct {
	// Select defines ordered path rules for member selection by name.
	Select []pathrules.Rule `json:"select,omitempty" yaml:"select,omitempty"`
	// SelectMatcherOptions control selection rule matching.
	SelectMatcherOptions pathrules.MatcherOptions `json:"select_matcher_options,omitzero" yaml:"select_matcher_options,omitzero"`
	// Decode controls header decoding policy.
	Decode DecodeOptions `json:"decode,omitzero" yaml:"decode,omitzero"`
	// Lock takes a shared advisory lock on the archive in file-level helpers.
	Lock bool `json:"lock,omitempty" yaml:"lock,omitempty"`
}

// ListOptions configures table-of-contents output.
type ListOptions struct {
	// Location is used to render timestamps in verbose mode (default time.Local).
	Location *time.Location `json:"-" yaml:"-"`
	ReaderOptions

	// Verbose renders permissions, ownership, size and time per entry.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one member is fully written to disk.
	OnEntryDone func(entry EntryInfo, written int64, outputPath string) `json:"-" yaml:"-"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	ReaderOptions

	// CopyBufferSize is the bounded body copy buffer size in bytes.
	CopyBufferSize int `json:"copy_buffer_size,omitempty" yaml:"copy_buffer_size,omitempty"`
}

// ExtractResult contains extract output statistics.
type ExtractResult struct {
	// ExtractedEntries is number of members written to disk.
	ExtractedEntries int `json:"extracted_entries" yaml:"extracted_entries"`
	// SkippedEntries is number of members excluded by selection rules.
	SkippedEntries int `json:"skipped_entries,omitempty" yaml:"skipped_entries,omitempty"`
	// DataSize is total body bytes written.
	DataSize int64 `json:"data_size" yaml:"data_size"`
	// Duration is end-to-end extract duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// applyDefaults fills zero-valued writer options with defaults.
func (opts *WriterOptions) applyDefaults() {
	if opts.CopyBufferSize < 512 {
		opts.CopyBufferSize = DefaultCopyBuffer
	}

	applySelectDefaults(&opts.SelectMatcherOptions)
}

// applyDefaults fills zero-valued reader options with defaults.
func (opts *ReaderOptions) applyDefaults() {
	applySelectDefaults(&opts.SelectMatcherOptions)
}

// applyDefaults fills zero-valued list options with defaults.
func (opts *ListOptions) applyDefaults() {
	opts.ReaderOptions.applyDefaults()

	if opts.Location == nil {
		opts.Location = time.Local
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	opts.ReaderOptions.applyDefaults()

	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeTruncate
	}

	if opts.CopyBufferSize < 512 {
		opts.CopyBufferSize = DefaultCopyBuffer
	}
}

// applySelectDefaults makes an unset selection matcher include by default.
func applySelectDefaults(opts *pathrules.MatcherOptions) {
	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionInclude
	}
}
