// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package arvik

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/woozymasta/pathrules"
)

func TestExtract_RoundTrip(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	mtime := time.Unix(1650000000, 0)
	a := writeSourceFile(t, srcDir, "a.txt", "abcd", 0o640, mtime)
	b := writeSourceFile(t, srcDir, "b.txt", "abcdef", 0o751, mtime.Add(time.Hour))

	archive := filepath.Join(t.TempDir(), "out.ar")
	if _, err := CreateFile(context.Background(), archive, []string{a, b}, WriterOptions{}); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	dstDir := filepath.Join(t.TempDir(), "nested", "out")
	var done []string
	res, err := ExtractFile(context.Background(), archive, dstDir, ExtractOptions{
		ReaderOptions: ReaderOptions{Lock: true},
		OnEntryDone: func(entry EntryInfo, written int64, outputPath string) {
			if written != entry.Size {
				t.Errorf("%s written=%d, want %d", entry.Name, written, entry.Size)
			}
			done = append(done, filepath.Base(outputPath))
		},
	})
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	if res.ExtractedEntries != 2 || res.DataSize != 10 {
		t.Fatalf("result=%+v, want 2 entries of 10 bytes", res)
	}
	if len(done) != 2 || done[0] != "a.txt" || done[1] != "b.txt" {
		t.Fatalf("callbacks=%v, want [a.txt b.txt]", done)
	}

	checks := []struct {
		name  string
		body  string
		mode  os.FileMode
		mtime time.Time
	}{
		{name: "a.txt", body: "abcd", mode: 0o640, mtime: mtime},
		{name: "b.txt", body: "abcdef", mode: 0o751, mtime: mtime.Add(time.Hour)},
	}
	for _, tc := range checks {
		path := filepath.Join(dstDir, tc.name)

		body, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", tc.name, err)
		}
		if string(body) != tc.body {
			t.Fatalf("%s body=%q, want %q", tc.name, body, tc.body)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", tc.name, err)
		}
		if info.Mode().Perm() != tc.mode {
			t.Fatalf("%s mode=%o, want %o", tc.name, info.Mode().Perm(), tc.mode)
		}
		if !info.ModTime().Equal(tc.mtime) {
			t.Fatalf("%s mtime=%v, want %v", tc.name, info.ModTime(), tc.mtime)
		}
	}
}

func TestExtract_EmptyMember(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{Deterministic: true}, memInput("empty", ""))
	dstDir := t.TempDir()

	if _, err := Extract(context.Background(), bytes.NewReader(data), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	info, err := os.Stat(filepath.Join(dstDir, "empty"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 || info.Mode().Perm() != DeterministicMode {
		t.Fatalf("size=%d mode=%o, want 0 %o", info.Size(), info.Mode().Perm(), DeterministicMode)
	}
}

func TestExtract_TruncatesExistingFile(t *testing.T) {
	t.Parallel()

	dstDir := t.TempDir()
	target := filepath.Join(dstDir, "a.txt")
	if err := os.WriteFile(target, bytes.Repeat([]byte("z"), 100), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "abc"))
	if _, err := Extract(context.Background(), bytes.NewReader(data), dstDir, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "abc" {
		t.Fatalf("body=%q, want %q", body, "abc")
	}
}

func TestExtract_CreateOnlyRejectsExisting(t *testing.T) {
	t.Parallel()

	dstDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dstDir, "a.txt"), []byte("old"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "abc"))
	_, err := Extract(context.Background(), bytes.NewReader(data), dstDir, ExtractOptions{
		FileMode: ExtractFileModeCreateOnly,
	})
	if !errors.Is(err, ErrExtractFailure) {
		t.Fatalf("expected ErrExtractFailure, got %v", err)
	}
}

func TestExtract_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"..", "../x", "dir/x"} {
		data := buildArchive(t, WriterOptions{}, memInput(name, "x"))

		_, err := Extract(context.Background(), bytes.NewReader(data), t.TempDir(), ExtractOptions{})
		if !errors.Is(err, ErrExtractFailure) || !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("%q: expected ErrExtractFailure and ErrInvalidExtractPath, got %v", name, err)
		}
	}
}

func TestExtract_TruncatedBody(t *testing.T) {
	t.Parallel()

	full := buildArchive(t, WriterOptions{}, memInput("a.txt", "abcdefgh"))
	data := full[:len(full)-3]

	_, err := Extract(context.Background(), streamOnly{bytes.NewReader(data)}, t.TempDir(), ExtractOptions{})
	if !errors.Is(err, ErrTruncatedArchive) {
		t.Fatalf("expected ErrTruncatedArchive, got %v", err)
	}
}

func TestExtract_SelectedMembers(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "a"), memInput("b.txt", "b"), memInput("c.o", "c"))
	dstDir := t.TempDir()

	res, err := Extract(context.Background(), bytes.NewReader(data), dstDir, ExtractOptions{
		ReaderOptions: ReaderOptions{
			Select: IncludeRules("b.txt", "*.o"),
			SelectMatcherOptions: pathrules.MatcherOptions{
				DefaultAction: pathrules.ActionExclude,
			},
		},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if res.ExtractedEntries != 2 || res.SkippedEntries != 1 {
		t.Fatalf("extracted=%d skipped=%d, want 2/1", res.ExtractedEntries, res.SkippedEntries)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("a.txt must not be extracted, stat err=%v", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, WriterOptions{}, memInput("a.txt", "a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, bytes.NewReader(data), t.TempDir(), ExtractOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateMemberName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ok   bool
	}{
		{name: "a.txt", ok: true},
		{name: "lib.o", ok: true},
		{name: "..a", ok: true},
		{name: "", ok: false},
		{name: ".", ok: false},
		{name: "..", ok: false},
		{name: "a/b", ok: false},
		{name: "/abs", ok: false},
		{name: "nul\x00", ok: false},
	}

	for _, tc := range cases {
		_, err := validateMemberName(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("validateMemberName(%q): %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("validateMemberName(%q): expected ErrInvalidExtractPath, got %v", tc.name, err)
		}
	}
}
