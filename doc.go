// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

/*
Package arvik creates, lists and extracts Unix-style "ar" archives.
Member bodies are streamed through a bounded buffer in both directions,
so archive and member size never affect memory use.

Format (summary):
  - an archive starts with the 8-byte magic tag "!<arch>\n";
  - each member is a 60-byte fixed-width text header followed by its body;
  - a body of odd length is followed by one '\n' pad byte;
  - member names end with '/', names longer than 15 bytes keep 14 bytes.

# Creating

Create an archive from files in the given order:

	res, err := arvik.CreateFile(ctx, "lib.ar", []string{"a.o", "b.o"}, arvik.WriterOptions{
	    Deterministic: true,
	    Lock:          true,
	})
	if err != nil {
	    return err
	}
	_ = res.WrittenEntries

Deterministic mode stores zero mtime, zero uid/gid and 0644 permissions,
so identical inputs produce byte-identical archives.

Stream-oriented members can be added with a Writer:

	w, err := arvik.NewWriter(out, arvik.WriterOptions{})
	if err != nil {
	    return err
	}
	defer w.Close()
	_, err = w.Add(arvik.Input{
	    Name: "data.bin",
	    Size: int64(len(data)),
	    Mode: 0o644,
	    Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	})

# Reading

Walk members in archive order:

	walker, err := arvik.NewWalker(f, arvik.ReaderOptions{})
	if err != nil {
	    return err
	}
	for entry, err := range walker.All() {
	    if err != nil {
	        return err
	    }
	    // entry implements io.Reader over exactly entry.Header().Size bytes
	}

Unread bodies are skipped on the next step; seekable sources skip without reading.

# Selecting

Member selection uses github.com/woozymasta/pathrules:

	err := arvik.ListFile(ctx, "lib.ar", os.Stdout, arvik.ListOptions{
	    ReaderOptions: arvik.ReaderOptions{
	        Select: arvik.IncludeRules("*.o"),
	        SelectMatcherOptions: pathrules.MatcherOptions{
	            DefaultAction: pathrules.ActionExclude,
	        },
	    },
	    Verbose: true,
	})

# Extracting

Extract members into a directory, restoring permission bits and mtime:

	res, err := arvik.ExtractFile(ctx, "lib.ar", "out/", arvik.ExtractOptions{})
	if err != nil {
	    return err
	}
	_ = res.ExtractedEntries
*/
package arvik
