// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bufio"
	"fmt"
	"io"
)

// writeImage serializes the complete archive image to w: header, FST,
// compressed string table, then payload blocks in directory order. Entries
// already backed by the source file are copied through verbatim without
// recompression; staged entries flush their pending codec streams.
//
// Callers hold a.mu.
func (a *Archive) writeImage(w io.Writer) error {
	strTab, err := encodeStringTable(a.profile, a.entries)
	if err != nil {
		return err
	}
	strTabComp := lzCompress(strTab)

	offsets, err := a.layoutPayloads(len(strTabComp))
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	dir := newWriteCursor(a.profile.Order)
	if err := serializeDirectory(dir, a.profile, a.entries, offsets, strTab, strTabComp); err != nil {
		return err
	}
	if _, err := bw.Write(dir.bytes()); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}

	for i := range a.entries {
		if err := a.writePayload(bw, &a.entries[i]); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write payloads: %w", err)
	}

	return nil
}

// layoutPayloads computes the absolute block offset of each entry for a
// string table of compLen compressed bytes. Offsets are 4-aligned and must
// pack into the 28-bit FST field.
func (a *Archive) layoutPayloads(compLen int) ([]int64, error) {
	if len(a.entries) > maxEntryCount {
		return nil, fmt.Errorf("%w: %d entries", ErrSizeOverflow, len(a.entries))
	}

	dirEnd := int64(headerSize) + int64(len(a.entries))*fstRecordSize + 8 + int64(compLen)
	off := align64(dirEnd, payloadAlign)

	offsets := make([]int64, len(a.entries))
	for i := range a.entries {
		offsets[i] = off
		if off/payloadAlign > maxFSTOffset {
			return nil, fmt.Errorf("%w: entry %q at offset %d", ErrSizeOverflow, a.entries[i].Path, off)
		}

		off = align64(off+a.entries[i].blockLen(), payloadAlign)
	}

	return offsets, nil
}

// blockLen returns the on-disk payload block size for the entry, header
// included for compressed entries.
func (e *Entry) blockLen() int64 {
	if e.Compression == CompressionStore {
		return int64(e.Size)
	}

	return 8 + int64(e.CompressedSize)
}

// writePayload emits one payload block followed by alignment padding.
func (a *Archive) writePayload(bw *bufio.Writer, entry *Entry) error {
	if entry.Compression != CompressionStore {
		head := newWriteCursor(a.profile.Order)
		head.writeU32(entry.Size)
		head.writeU32(entry.CompressedSize)
		if _, err := bw.Write(head.bytes()); err != nil {
			return fmt.Errorf("write entry %q: %w", entry.Path, err)
		}
	}

	if err := a.copyStream(bw, entry); err != nil {
		return err
	}

	pad := align64(entry.blockLen(), payloadAlign) - entry.blockLen()
	for ; pad > 0; pad-- {
		if err := bw.WriteByte(0); err != nil {
			return fmt.Errorf("write entry %q: %w", entry.Path, err)
		}
	}

	return nil
}

// copyStream writes the entry codec stream from its pending buffer or from
// the backing store.
func (a *Archive) copyStream(bw *bufio.Writer, entry *Entry) error {
	if entry.offset < 0 {
		if _, err := bw.Write(entry.pending); err != nil {
			return fmt.Errorf("write entry %q: %w", entry.Path, err)
		}

		return nil
	}

	src := io.NewSectionReader(a.ra, entry.offset, int64(entry.CompressedSize))
	if _, err := io.Copy(bw, src); err != nil {
		return fmt.Errorf("copy entry %q: %w", entry.Path, err)
	}

	return nil
}
