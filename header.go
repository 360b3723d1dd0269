// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// Fixed member header layout.
const (
	nameOff     = 0
	nameLen     = 16
	mtimeOff    = nameOff + nameLen
	mtimeLen    = 12 // decimal
	uidOff      = mtimeOff + mtimeLen
	uidLen      = 6 // decimal
	gidOff      = uidOff + uidLen
	gidLen      = 6 // decimal
	modeOff     = gidOff + gidLen
	modeLen     = 8 // octal
	sizeOff     = modeOff + modeLen
	sizeLen     = 10 // decimal
	trailerOff  = sizeOff + sizeLen
	trailerLen  = len(HeaderTrailer)
	nameTermPos = nameLen - 1
)

// nameTerminator ends the logical name inside the name field.
const nameTerminator = '/'

// unixModeMask keeps permission and special bits of a POSIX st_mode.
const unixModeMask = 0o7777

// EncodeHeader formats h as a fixed-width 60-byte member header.
//
// Names longer than 15 bytes keep their first 14 bytes and end with "/ ",
// so the terminator is always present. Oversized numeric fields keep their
// leading digits unless opts.StrictFields is set.
func EncodeHeader(h Header, opts EncodeOptions) ([HeaderSize]byte, error) {
	var buf [HeaderSize]byte
	for i := range buf {
		buf[i] = ' '
	}

	encodeName(buf[nameOff:nameOff+nameLen], h.Name)

	fields := []struct {
		name  string
		dst   []byte
		value int64
		base  int
	}{
		{name: "mtime", dst: buf[mtimeOff : mtimeOff+mtimeLen], value: h.ModTime.Unix(), base: 10},
		{name: "uid", dst: buf[uidOff : uidOff+uidLen], value: int64(h.UID), base: 10},
		{name: "gid", dst: buf[gidOff : gidOff+gidLen], value: int64(h.GID), base: 10},
		{name: "mode", dst: buf[modeOff : modeOff+modeLen], value: int64(modeToUnix(h.Mode)), base: 8},
		{name: "size", dst: buf[sizeOff : sizeOff+sizeLen], value: h.Size, base: 10},
	}
	for _, field := range fields {
		if err := encodeNumeric(field.dst, field.value, field.base, opts.StrictFields); err != nil {
			return buf, fmt.Errorf("encode %s of %q: %w", field.name, h.Name, err)
		}
	}

	copy(buf[trailerOff:], HeaderTrailer)
	return buf, nil
}

// DecodeHeader parses a raw 60-byte member header.
//
// Malformed numeric fields decode as zero unless opts.StrictNumbers is set.
// The trailer is only checked with opts.VerifyTrailer.
func DecodeHeader(raw []byte, opts DecodeOptions) (Header, error) {
	var h Header
	if len(raw) != HeaderSize {
		return h, fmt.Errorf("%w: header is %d bytes, want %d", ErrTruncatedArchive, len(raw), HeaderSize)
	}

	if opts.VerifyTrailer && string(raw[trailerOff:trailerOff+trailerLen]) != HeaderTrailer {
		return h, fmt.Errorf("%w: bad trailer %q", ErrCorruptHeader, raw[trailerOff:trailerOff+trailerLen])
	}

	h.Name = decodeName(raw[nameOff : nameOff+nameLen])

	mtime, err := decodeNumeric(raw[mtimeOff:mtimeOff+mtimeLen], 10, opts.StrictNumbers)
	if err != nil {
		return h, fmt.Errorf("decode mtime of %q: %w", h.Name, err)
	}
	uid, err := decodeNumeric(raw[uidOff:uidOff+uidLen], 10, opts.StrictNumbers)
	if err != nil {
		return h, fmt.Errorf("decode uid of %q: %w", h.Name, err)
	}
	gid, err := decodeNumeric(raw[gidOff:gidOff+gidLen], 10, opts.StrictNumbers)
	if err != nil {
		return h, fmt.Errorf("decode gid of %q: %w", h.Name, err)
	}
	mode, err := decodeNumeric(raw[modeOff:modeOff+modeLen], 8, opts.StrictNumbers)
	if err != nil {
		return h, fmt.Errorf("decode mode of %q: %w", h.Name, err)
	}
	size, err := decodeNumeric(raw[sizeOff:sizeOff+sizeLen], 10, opts.StrictNumbers)
	if err != nil {
		return h, fmt.Errorf("decode size of %q: %w", h.Name, err)
	}

	if size < 0 {
		if opts.StrictNumbers {
			return h, fmt.Errorf("%w: negative size %d for %q", ErrCorruptHeader, size, h.Name)
		}

		size = 0
	}

	h.ModTime = time.Unix(mtime, 0)
	h.UID = int(uid)
	h.GID = int(gid)
	h.Mode = unixToMode(uint32(mode) & unixModeMask) //nolint:gosec // masked to 12 bits
	h.Size = size

	return h, nil
}

// encodeName writes name plus terminator into the name field.
func encodeName(dst []byte, name string) {
	if len(name) > nameLen-1 {
		// Full field: the terminator takes the 15th byte, the 16th stays a space.
		name = name[:nameTermPos-1]
	}

	n := copy(dst, name)
	dst[n] = nameTerminator
}

// decodeName strips padding and the terminator from the name field.
func decodeName(field []byte) string {
	name := strings.TrimRight(string(field), " ")
	return strings.TrimSuffix(name, string(nameTerminator))
}

// encodeNumeric writes value left-justified in dst using base.
func encodeNumeric(dst []byte, value int64, base int, strict bool) error {
	text := strconv.FormatInt(value, base)
	if len(text) > len(dst) {
		if strict {
			return fmt.Errorf("%w: %s needs %d bytes, field has %d", ErrFieldOverflow, text, len(text), len(dst))
		}

		text = text[:len(dst)]
	}

	copy(dst, text)
	return nil
}

// decodeNumeric parses a space-padded numeric field in base.
func decodeNumeric(field []byte, base int, strict bool) (int64, error) {
	text := strings.TrimRight(string(field), " ")
	value, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		if strict {
			return 0, fmt.Errorf("%w: malformed number %q", ErrCorruptHeader, text)
		}

		return 0, nil
	}

	return value, nil
}

// modeToUnix converts Go permission bits to POSIX st_mode permission bits.
func modeToUnix(mode fs.FileMode) uint32 {
	bits := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		bits |= 0o1000
	}

	return bits
}

// unixToMode converts POSIX permission bits to Go permission bits.
func unixToMode(bits uint32) fs.FileMode {
	mode := fs.FileMode(bits & 0o777)
	if bits&0o4000 != 0 {
		mode |= fs.ModeSetuid
	}
	if bits&0o2000 != 0 {
		mode |= fs.ModeSetgid
	}
	if bits&0o1000 != 0 {
		mode |= fs.ModeSticky
	}

	return mode
}
