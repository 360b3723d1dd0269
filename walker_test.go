// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// streamOnly hides Seek so the walker falls back to reading skipped bodies.
type streamOnly struct {
	io.Reader
}

func TestNewWalker_BadMagic(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":     "",
		"short":     "!<ar",
		"wrong tag": "!<arch!\nxxxx",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := NewWalker(bytes.NewReader([]byte(data)), ReaderOptions{})
			if !errors.Is(err, ErrBadMagic) {
				t.Fatalf("expected ErrBadMagic, got %v", err)
			}
		})
	}
}

func TestNewWalker_NilReader(t *testing.T) {
	t.Parallel()

	if _, err := NewWalker(nil, ReaderOptions{}); !errors.Is(err, ErrNilReader) {
		t.Fatalf("expected ErrNilReader, got %v", err)
	}
}

func TestWalker_EmptyArchive(t *testing.T) {
	t.Parallel()

	w, err := NewWalker(bytes.NewReader([]byte(Magic)), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}

	if _, err := w.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := w.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("second Next: expected io.EOF, got %v", err)
	}
}

func TestWalker_Offsets(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "abc"), memInput("b.txt", "defg"))

	w, err := NewWalker(streamOnly{bytes.NewReader(data)}, ReaderOptions{})
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}

	var infos []EntryInfo
	for entry, err := range w.All() {
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		infos = append(infos, entry.Info())
	}

	if len(infos) != 2 {
		t.Fatalf("entries=%d, want 2", len(infos))
	}

	want := []struct {
		name   string
		header int64
		body   int64
	}{
		{name: "a.txt", header: 8, body: 68},
		{name: "b.txt", header: 72, body: 132},
	}
	for i, tc := range want {
		if infos[i].Name != tc.name || infos[i].HeaderOffset != tc.header || infos[i].BodyOffset != tc.body {
			t.Fatalf("entry[%d]=%s@%d/%d, want %s@%d/%d",
				i, infos[i].Name, infos[i].HeaderOffset, infos[i].BodyOffset, tc.name, tc.header, tc.body)
		}
	}
}

func TestWalker_ReadsBodies(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "abc"), memInput("b.txt", "defg"))

	for name, src := range map[string]io.Reader{
		"seekable": bytes.NewReader(data),
		"stream":   streamOnly{bytes.NewReader(data)},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			w, err := NewWalker(src, ReaderOptions{})
			if err != nil {
				t.Fatalf("NewWalker: %v", err)
			}

			var bodies []string
			for entry, err := range w.All() {
				if err != nil {
					t.Fatalf("walk: %v", err)
				}

				body, err := io.ReadAll(entry)
				if err != nil {
					t.Fatalf("read %s: %v", entry.Name(), err)
				}
				bodies = append(bodies, string(body))
			}

			if len(bodies) != 2 || bodies[0] != "abc" || bodies[1] != "defg" {
				t.Fatalf("bodies=%q, want [abc defg]", bodies)
			}
		})
	}
}

func TestWalker_PartialReadSkipsRest(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "abcdefg"), memInput("b.txt", "xy"))

	w, err := NewWalker(streamOnly{bytes.NewReader(data)}, ReaderOptions{})
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}

	first, err := w.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	buf := make([]byte, 2)
	if _, err := io.ReadFull(first, buf); err != nil {
		t.Fatalf("partial read: %v", err)
	}

	second, err := w.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	body, err := io.ReadAll(second)
	if err != nil {
		t.Fatalf("read second: %v", err)
	}
	if second.Name() != "b.txt" || string(body) != "xy" {
		t.Fatalf("second=%s %q, want b.txt %q", second.Name(), body, "xy")
	}

	if _, err := first.Read(buf); !errors.Is(err, ErrEntryConsumed) {
		t.Fatalf("expected ErrEntryConsumed, got %v", err)
	}
}

func TestWalker_TruncatedHeader(t *testing.T) {
	t.Parallel()

	full := buildArchive(t, WriterOptions{}, memInput("a.txt", "abcd"))

	for _, n := range []int{1, 30, HeaderSize - 1} {
		data := full[:MagicSize+n]

		w, err := NewWalker(bytes.NewReader(data), ReaderOptions{})
		if err != nil {
			t.Fatalf("NewWalker: %v", err)
		}

		if _, err := w.Next(); !errors.Is(err, ErrTruncatedArchive) {
			t.Fatalf("header of %d bytes: expected ErrTruncatedArchive, got %v", n, err)
		}
	}
}

func TestWalker_TruncatedBody(t *testing.T) {
	t.Parallel()

	full := buildArchive(t, WriterOptions{}, memInput("a.txt", "abcdefgh"))
	data := full[:len(full)-3]

	t.Run("seekable", func(t *testing.T) {
		t.Parallel()

		w, err := NewWalker(bytes.NewReader(data), ReaderOptions{})
		if err != nil {
			t.Fatalf("NewWalker: %v", err)
		}

		if _, err := w.Next(); !errors.Is(err, ErrTruncatedArchive) {
			t.Fatalf("expected ErrTruncatedArchive, got %v", err)
		}
	})

	t.Run("stream read", func(t *testing.T) {
		t.Parallel()

		w, err := NewWalker(streamOnly{bytes.NewReader(data)}, ReaderOptions{})
		if err != nil {
			t.Fatalf("NewWalker: %v", err)
		}

		entry, err := w.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}

		if _, err := io.ReadAll(entry); !errors.Is(err, ErrTruncatedArchive) {
			t.Fatalf("expected ErrTruncatedArchive, got %v", err)
		}
	})

	t.Run("stream skip", func(t *testing.T) {
		t.Parallel()

		w, err := NewWalker(streamOnly{bytes.NewReader(data)}, ReaderOptions{})
		if err != nil {
			t.Fatalf("NewWalker: %v", err)
		}

		if _, err := w.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}

		if _, err := w.Next(); !errors.Is(err, ErrTruncatedArchive) {
			t.Fatalf("expected ErrTruncatedArchive, got %v", err)
		}
	})
}

func TestWalker_MissingFinalPad(t *testing.T) {
	t.Parallel()

	full := buildArchive(t, WriterOptions{}, memInput("a.txt", "abc"))
	data := full[:len(full)-1]

	entries, err := ListEntriesFromReader(streamOnly{bytes.NewReader(data)}, ReaderOptions{})
	if err != nil {
		t.Fatalf("ListEntriesFromReader: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("entries=%+v, want a.txt only", entries)
	}
}

func TestWalker_StrictDecode(t *testing.T) {
	t.Parallel()

	data := append([]byte(Magic), rawHeader("a/", "bad", "0", "0", "644", "0")...)

	if _, err := ListEntriesFromReader(bytes.NewReader(data), ReaderOptions{}); err != nil {
		t.Fatalf("lenient walk: %v", err)
	}

	_, err := ListEntriesFromReader(bytes.NewReader(data), ReaderOptions{
		Decode: DecodeOptions{StrictNumbers: true},
	})
	if !errors.Is(err, ErrCorruptHeader) {
		t.Fatalf("expected ErrCorruptHeader, got %v", err)
	}
}

func TestWalker_AllStopsAfterError(t *testing.T) {
	t.Parallel()

	full := buildArchive(t, WriterOptions{}, memInput("a.txt", "ab"), memInput("b.txt", "cd"))
	data := full[:MagicSize+HeaderSize+2+10]

	w, err := NewWalker(bytes.NewReader(data), ReaderOptions{})
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}

	var names []string
	var errs []error
	for entry, err := range w.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		names = append(names, entry.Name())
	}

	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("names=%v, want [a.txt]", names)
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrTruncatedArchive) {
		t.Fatalf("errs=%v, want one ErrTruncatedArchive", errs)
	}
}

func TestWalker_Select(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{},
		memInput("a.o", "1"),
		memInput("b.txt", "2"),
		memInput("c.o", "3"),
	)

	w, err := NewWalker(bytes.NewReader(data), ReaderOptions{Select: ExcludeRules("*.txt")})
	if err != nil {
		t.Fatalf("NewWalker: %v", err)
	}

	var names []string
	for entry, err := range w.All() {
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		names = append(names, entry.Name())
	}

	if len(names) != 2 || names[0] != "a.o" || names[1] != "c.o" {
		t.Fatalf("names=%v, want [a.o c.o]", names)
	}
	if w.Skipped() != 1 {
		t.Fatalf("Skipped=%d, want 1", w.Skipped())
	}
}
