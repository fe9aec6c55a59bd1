// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

/*
Package xb reads, extracts, writes, and edits XB game archives: the container
format used by the Minna de Golf / Everybody's Golf title family. An archive
is a header, a fixed-size filesystem table, an LZ-compressed name table, and
4-aligned payload blocks; byte order and path conventions differ per title and
are selected with a Profile.

Payloads carry a per-entry codec tag: store, the title LZ run-length codec,
Huffman (decode only), or zlib deflate.

# Reading

Open an archive with a title profile and list or read entries:

	a, err := xb.Open("data.xb", xb.ModeRead, xb.ProfileMNG4)
	if err != nil {
	    return err
	}
	defer a.Close()
	for _, e := range a.Entries() {
	    data, _ := a.ReadEntry(e.Path)
	    // use data
	}

In-memory images parse without a file:

	a, err := xb.NewFromBytes(image, xb.ProfileMNG5)

# Extracting

Extract all entries to a directory, logical layout preserved:

	err := a.ExtractAll("out/", xb.ExtractOptions{
	    OnEntryDone: func(entry xb.Entry, written int64, path string) {
	        // progress callback per written file
	    },
	})

# Writing

Write modes stage entries in memory and rebuild the destination atomically on
Close. ModeWrite starts empty, ModeReadWrite edits an existing archive, and
ModeCreate refuses to overwrite:

	a, err := xb.Open("data.xb", xb.ModeWrite, xb.ProfileMNG4)
	if err != nil {
	    return err
	}
	if err := a.AddBytes("data/config.dat", payload, xb.CompressionLZ); err != nil {
	    return err
	}
	if err := a.Close(); err != nil {
	    return err
	}

AddFile stages files or whole directory trees; compression can be pinned per
call or chosen per path with github.com/woozymasta/pathrules rules:

	err := a.AddFile("assets/", "data", xb.AddOptions{
	    Recursive: true,
	    Compress: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "*.dat"},
	        {Action: pathrules.ActionInclude, Pattern: "models/**"},
	    },
	    CompressMatcherOptions: pathrules.MatcherOptions{
	        CaseInsensitive: true,
	        DefaultAction:   pathrules.ActionExclude,
	    },
	    OnEntryDone: func(entry xb.Entry) {
	        // progress callback per staged entry
	    },
	})

To edit in place, open read-write, mutate, and close:

	a, err := xb.Open("data.xb", xb.ModeReadWrite, xb.ProfileMNG4)
	if err != nil {
	    return err
	}
	if err := a.Remove("data/old.dat"); err != nil {
	    return err
	}
	if err := a.AddBytes("data/new.dat", payload, xb.CompressionStore); err != nil {
	    return err
	}
	if err := a.Close(); err != nil {
	    return err
	}

Unmodified entries are copied through verbatim on Close, compressed bytes
untouched.
*/
package xb
