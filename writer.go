// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	// defaultCopyBufferPool reuses body copy buffers between Writer instances.
	defaultCopyBufferPool = sync.Pool{
		New: func() any {
			return new([DefaultCopyBuffer]byte)
		},
	}
)

// Writer appends members to an archive stream.
type Writer struct {
	// w is the archive destination.
	w io.Writer
	// releaseBuf returns copyBuf to the pool.
	releaseBuf func()
	// copyBuf bounds body streaming.
	copyBuf []byte
	// opts holds applied writer options.
	opts WriterOptions
	// offset is the absolute archive position of the next write.
	offset int64
}

// NewWriter writes the magic tag to w and returns a Writer positioned for the first member.
func NewWriter(w io.Writer, opts WriterOptions) (*Writer, error) {
	aw, err := newWriterAt(w, 0, opts)
	if err != nil {
		return nil, err
	}

	if err := aw.writeFull([]byte(Magic)); err != nil {
		aw.Close()
		return nil, fmt.Errorf("write magic: %w", err)
	}

	return aw, nil
}

// newWriterAt returns a Writer appending at offset of an existing archive.
func newWriterAt(w io.Writer, offset int64, opts WriterOptions) (*Writer, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	opts.applyDefaults()

	buf, release := acquireCopyBuffer(opts.CopyBufferSize)
	return &Writer{
		w:          w,
		opts:       opts,
		offset:     offset,
		copyBuf:    buf,
		releaseBuf: release,
	}, nil
}

// Offset returns the absolute archive position of the next member header.
func (w *Writer) Offset() int64 {
	if w == nil {
		return 0
	}

	return w.offset
}

// Close releases pooled buffers. It does not close the underlying writer.
func (w *Writer) Close() {
	if w == nil || w.releaseBuf == nil {
		return
	}

	w.releaseBuf()
	w.releaseBuf = nil
	w.copyBuf = nil
}

// Add appends one member built from in. Body bytes are streamed through a
// bounded buffer; an odd-sized body is followed by one pad byte.
func (w *Writer) Add(in Input) (EntryInfo, error) {
	if w == nil || w.w == nil {
		return EntryInfo{}, ErrNilWriter
	}

	if w.copyBuf == nil {
		return EntryInfo{}, fmt.Errorf("%w: writer is closed", ErrWriteFailure)
	}

	if in.Open == nil {
		return EntryInfo{}, fmt.Errorf("%w: input %s: Open is nil", ErrOpenFailure, in.Name)
	}

	if in.Size < 0 {
		return EntryInfo{}, fmt.Errorf("%w: input %s: negative size %d", ErrFieldOverflow, in.Name, in.Size)
	}

	h := w.headerFor(in)
	raw, err := EncodeHeader(h, EncodeOptions{StrictFields: w.opts.StrictFields})
	if err != nil {
		return EntryInfo{}, err
	}

	src, err := in.Open()
	if err != nil {
		return EntryInfo{}, fmt.Errorf("%w: open input %s: %w", ErrOpenFailure, in.Name, err)
	}
	defer func() { _ = src.Close() }()

	info := EntryInfo{
		Header:       h,
		HeaderOffset: w.offset,
		BodyOffset:   w.offset + HeaderSize,
	}

	if err := w.writeFull(raw[:]); err != nil {
		return info, fmt.Errorf("write header %s: %w", h.Name, err)
	}

	if err := w.copyBody(src, h); err != nil {
		return info, err
	}

	if info.Padded() {
		if err := w.writeFull([]byte{PadByte}); err != nil {
			return info, fmt.Errorf("write pad %s: %w", h.Name, err)
		}
	}

	if w.opts.OnEntryDone != nil {
		w.opts.OnEntryDone(info, in.Source)
	}

	return info, nil
}

// AddFile appends a regular file stored under its base name.
func (w *Writer) AddFile(path string) (EntryInfo, error) {
	in, err := InputFromFile(path)
	if err != nil {
		return EntryInfo{}, err
	}

	return w.Add(in)
}

// InputFromFile builds an Input from a regular file and its metadata.
func InputFromFile(path string) (Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Input{}, fmt.Errorf("%w: stat %s: %w", ErrOpenFailure, path, err)
	}

	if !info.Mode().IsRegular() {
		return Input{}, fmt.Errorf("%w: %s is not a regular file", ErrOpenFailure, path)
	}

	uid, gid := fileOwner(info)
	return Input{
		Source:  path,
		Name:    filepath.Base(path),
		ModTime: info.ModTime(),
		UID:     uid,
		GID:     gid,
		Mode:    info.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky),
		Size:    info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Create writes a new archive to out from source file paths in the given order.
func Create(ctx context.Context, out io.Writer, paths []string, opts WriterOptions) (*CreateResult, error) {
	if out == nil {
		return nil, ErrNilWriter
	}

	bw := bufio.NewWriterSize(out, DefaultCopyBuffer)
	w, err := NewWriter(bw, opts)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	res, err := addPaths(ctx, w, paths)
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("%w: flush archive: %w", ErrWriteFailure, flushErr)
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// CreateFile creates or truncates archivePath and writes sources into it.
// The archive gets ArchivePerm permissions regardless of umask.
func CreateFile(ctx context.Context, archivePath string, paths []string, opts WriterOptions) (*CreateResult, error) {
	f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE, ArchivePerm)
	if err != nil {
		return nil, fmt.Errorf("%w: create archive %s: %w", ErrOpenFailure, archivePath, err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	if opts.Lock {
		unlock, err := lockArchive(archivePath, true)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	if err := f.Truncate(0); err != nil {
		return nil, fmt.Errorf("%w: truncate archive %s: %w", ErrOpenFailure, archivePath, err)
	}

	if err := f.Chmod(ArchivePerm); err != nil {
		return nil, fmt.Errorf("%w: chmod archive %s: %w", ErrOpenFailure, archivePath, err)
	}

	res, err := Create(ctx, f, paths, opts)
	if err != nil {
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: close archive %s: %w", ErrWriteFailure, archivePath, err)
	}
	f = nil

	return res, nil
}

// AppendFile appends sources to an existing archive after its last member.
func AppendFile(ctx context.Context, archivePath string, paths []string, opts WriterOptions) (*CreateResult, error) {
	f, err := os.OpenFile(archivePath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open archive %s: %w", ErrOpenFailure, archivePath, err)
	}
	defer func() { _ = f.Close() }()

	if opts.Lock {
		unlock, err := lockArchive(archivePath, true)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	end, err := seekArchiveEnd(f)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriterSize(f, DefaultCopyBuffer)
	w, err := newWriterAt(bw, end, opts)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	res, err := addPaths(ctx, w, paths)
	if flushErr := bw.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("%w: flush archive: %w", ErrWriteFailure, flushErr)
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// seekArchiveEnd walks an archive and positions f after its last member,
// restoring a missing final pad byte.
func seekArchiveEnd(f *os.File) (int64, error) {
	walker, err := NewWalker(f, ReaderOptions{})
	if err != nil {
		return 0, err
	}

	end := int64(MagicSize)
	for entry, err := range walker.All() {
		if err != nil {
			return 0, err
		}

		end = entry.Info().NextOffset()
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek archive end: %w", err)
	}

	if size == end-1 {
		if _, err := f.Write([]byte{PadByte}); err != nil {
			return 0, fmt.Errorf("%w: restore pad: %w", ErrWriteFailure, err)
		}
	}

	if _, err := f.Seek(end, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek archive end: %w", err)
	}

	return end, nil
}

// addPaths appends each selected path in order and collects statistics.
func addPaths(ctx context.Context, w *Writer, paths []string) (*CreateResult, error) {
	startedAt := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}

	matcher, err := newSelectMatcher(w.opts.Select, w.opts.SelectMatcherOptions)
	if err != nil {
		return nil, err
	}

	res := &CreateResult{Entries: make([]EntryInfo, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !matcher.Selected(filepath.Base(path)) {
			res.SkippedEntries++
			continue
		}

		info, err := w.AddFile(path)
		if err != nil {
			return nil, err
		}

		res.Entries = append(res.Entries, info)
		res.WrittenEntries++
		res.DataSize += info.Size
	}

	res.Duration = time.Since(startedAt)
	return res, nil
}

// headerFor builds the member header, applying deterministic overrides.
func (w *Writer) headerFor(in Input) Header {
	h := Header{
		Name:    in.Name,
		ModTime: in.ModTime,
		UID:     in.UID,
		GID:     in.GID,
		Mode:    in.Mode,
		Size:    in.Size,
	}

	if w.opts.Deterministic {
		h.ModTime = time.Unix(0, 0)
		h.UID = DeterministicID
		h.GID = DeterministicID
		h.Mode = DeterministicMode
	}

	return h
}

// copyBody streams exactly h.Size bytes from src into the archive.
func (w *Writer) copyBody(src io.Reader, h Header) error {
	written, err := copyBounded(w.w, src, h.Size, w.copyBuf)
	w.offset += written
	if err == nil {
		return nil
	}

	var werr *writeError
	if errors.As(err, &werr) {
		return fmt.Errorf("%w: body %s: %w", ErrWriteFailure, h.Name, werr.err)
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: source %s ended after %d of %d bytes", ErrWriteFailure, h.Name, written, h.Size)
	}

	if errors.Is(err, errSourceTooLong) {
		return fmt.Errorf("%w: source %s has more than %d bytes", ErrWriteFailure, h.Name, h.Size)
	}

	return fmt.Errorf("%w: read source %s: %w", ErrWriteFailure, h.Name, err)
}

// writeFull writes p completely or reports ErrWriteFailure.
func (w *Writer) writeFull(p []byte) error {
	n, err := w.w.Write(p)
	w.offset += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	if n != len(p) {
		return fmt.Errorf("%w: %w", ErrWriteFailure, io.ErrShortWrite)
	}

	return nil
}

// errSourceTooLong reports a source with more bytes than its declared size.
var errSourceTooLong = errors.New("source longer than declared size")

// writeError marks a failure on the destination side of copyBounded.
type writeError struct {
	err error
}

// Error implements error.
func (e *writeError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying write error.
func (e *writeError) Unwrap() error {
	return e.err
}

// copyBounded copies exactly limit bytes from src to dst using buf.
// A source ending early yields io.ErrUnexpectedEOF, a longer one errSourceTooLong.
// Destination failures are wrapped in *writeError.
func copyBounded(dst io.Writer, src io.Reader, limit int64, buf []byte) (int64, error) {
	if len(buf) == 0 {
		buf = make([]byte, 32*1024)
	}

	var written int64
	emptyReads := 0
	for written < limit {
		chunkSize := len(buf)
		remaining := limit - written
		if int64(chunkSize) > remaining {
			chunkSize = int(remaining)
		}

		n, readErr := src.Read(buf[:chunkSize])
		if n > 0 {
			emptyReads = 0
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)

			if writeErr != nil {
				return written, &writeError{err: writeErr}
			}
			if nw != n {
				return written, &writeError{err: io.ErrShortWrite}
			}
		}
		if n == 0 && readErr == nil {
			emptyReads++
			if emptyReads > 100 {
				return written, io.ErrNoProgress
			}

			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				if written < limit {
					return written, io.ErrUnexpectedEOF
				}

				break
			}

			return written, readErr
		}
	}

	// A source still yielding data after limit bytes is longer than declared.
	var extra [1]byte
	n, err := src.Read(extra[:])
	if n > 0 {
		return written, errSourceTooLong
	}
	if err != nil && err != io.EOF {
		return written, err
	}

	return written, nil
}

// acquireCopyBuffer returns a body copy buffer and release callback.
func acquireCopyBuffer(size int) ([]byte, func()) {
	if size != DefaultCopyBuffer {
		return make([]byte, size), func() {}
	}

	arr := defaultCopyBufferPool.Get().(*[DefaultCopyBuffer]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	return arr[:], func() {
		defaultCopyBufferPool.Put(arr)
	}
}
