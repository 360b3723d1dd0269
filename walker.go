// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// Walker iterates archive entries sequentially in on-disk order.
// It is forward-only: a consumed entry cannot be revisited without
// re-opening the archive.
type Walker struct {
	// r is the archive source positioned after the magic tag.
	r io.Reader
	// seeker is set when r supports seeking; body skips then avoid reads.
	seeker io.Seeker
	// matcher filters returned entries by name; nil selects all.
	matcher *selectMatcher
	// cur is the entry whose body span is being consumed.
	cur *Entry
	// err is the sticky terminal state (io.EOF or failure).
	err error
	// opts holds applied reader options.
	opts ReaderOptions
	// size is total source size when known, -1 otherwise.
	size int64
	// offset is absolute position of r.
	offset int64
	// skipped counts entries rejected by selection rules.
	skipped int
	// headerBuf is reused for each header read.
	headerBuf [HeaderSize]byte
}

// CheckMagic reads the magic tag from r and reports ErrBadMagic on mismatch.
func CheckMagic(r io.Reader) error {
	if r == nil {
		return ErrNilReader
	}

	var buf [MagicSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: read %d of %d bytes", ErrBadMagic, n, MagicSize)
		}

		return fmt.Errorf("read magic: %w", err)
	}

	if string(buf[:]) != Magic {
		return fmt.Errorf("%w: got %q", ErrBadMagic, buf[:])
	}

	return nil
}

// NewWalker validates the magic tag of r and returns a Walker over its entries.
// No entry is read before the magic tag is accepted.
func NewWalker(r io.Reader, opts ReaderOptions) (*Walker, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	opts.applyDefaults()

	matcher, err := newSelectMatcher(opts.Select, opts.SelectMatcherOptions)
	if err != nil {
		return nil, err
	}

	if err := CheckMagic(r); err != nil {
		return nil, err
	}

	w := &Walker{
		r:       r,
		opts:    opts,
		matcher: matcher,
		offset:  int64(MagicSize),
		size:    -1,
	}

	if s, ok := r.(io.Seeker); ok {
		w.attachSeeker(s)
	}

	return w, nil
}

// attachSeeker records the current position and total size of a seekable source.
func (w *Walker) attachSeeker(s io.Seeker) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}

	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}

	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return
	}

	w.seeker = s
	w.offset = cur
	w.size = end
}

// Next returns the next selected entry. It returns io.EOF after the last
// entry and ErrTruncatedArchive when the archive ends inside a header or body.
// Any unread body bytes of the previous entry are skipped.
func (w *Walker) Next() (*Entry, error) {
	if w == nil || w.r == nil {
		return nil, ErrNilReader
	}

	for w.err == nil {
		entry, err := w.next()
		if err != nil {
			w.err = err
			break
		}

		if w.matcher.Selected(entry.info.Name) {
			return entry, nil
		}

		w.skipped++
	}

	return nil, w.err
}

// All returns an iterator over remaining entries. Iteration stops at the
// end of the archive or after yielding the first error.
func (w *Walker) All() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		for {
			entry, err := w.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// Skipped returns the number of entries excluded by selection rules so far.
func (w *Walker) Skipped() int {
	if w == nil {
		return 0
	}

	return w.skipped
}

// next reads one header after skipping the previous body span.
func (w *Walker) next() (*Entry, error) {
	if err := w.skipCurrent(); err != nil {
		return nil, err
	}

	headerOffset := w.offset
	n, err := io.ReadFull(w.r, w.headerBuf[:])
	w.offset += int64(n)
	switch {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: header at offset %d has %d of %d bytes", ErrTruncatedArchive, headerOffset, n, HeaderSize)
	case err != nil:
		return nil, fmt.Errorf("read header at offset %d: %w", headerOffset, err)
	}

	h, err := DecodeHeader(w.headerBuf[:], w.opts.Decode)
	if err != nil {
		return nil, fmt.Errorf("header at offset %d: %w", headerOffset, err)
	}

	info := EntryInfo{
		Header:       h,
		HeaderOffset: headerOffset,
		BodyOffset:   w.offset,
	}

	if w.size >= 0 && info.BodyOffset+h.Size > w.size {
		return nil, fmt.Errorf("%w: body of %q declares %d bytes, %d available",
			ErrTruncatedArchive, h.Name, h.Size, w.size-info.BodyOffset)
	}

	w.cur = &Entry{walker: w, info: info, remaining: h.Size}
	return w.cur, nil
}

// skipCurrent advances past the unread body and pad of the current entry.
func (w *Walker) skipCurrent() error {
	entry := w.cur
	if entry == nil {
		return nil
	}
	w.cur = nil

	if entry.remaining > 0 {
		if err := w.skipBody(entry); err != nil {
			return err
		}
	}

	if !entry.info.Padded() {
		return nil
	}

	var pad [1]byte
	n, err := w.r.Read(pad[:])
	w.offset += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read pad of %q: %w", entry.info.Name, err)
	}

	// A missing pad after the final body is accepted; the next header read reports the end.
	return nil
}

// skipBody discards the unread remainder of entry's body.
func (w *Walker) skipBody(entry *Entry) error {
	if w.seeker != nil {
		if _, err := w.seeker.Seek(entry.remaining, io.SeekCurrent); err != nil {
			return fmt.Errorf("skip body of %q: %w", entry.info.Name, err)
		}

		w.offset += entry.remaining
		entry.remaining = 0
		return nil
	}

	n, err := io.CopyN(io.Discard, w.r, entry.remaining)
	w.offset += n
	entry.remaining -= n
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body of %q ends %d bytes early", ErrTruncatedArchive, entry.info.Name, entry.remaining)
	}
	if err != nil {
		return fmt.Errorf("skip body of %q: %w", entry.info.Name, err)
	}

	return nil
}
