// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Wire layout per profile byte order:
//
//	magic[4] count:u32
//	count x { length:u32 cmpoff:u32 }        cmpoff = tag<<28 | offset/4
//	strtabDecompSize:u32 strtabCompSize:u32
//	LZ-compressed string table, padded to 4  { len:u8 hash:u8 name\0 } per entry
//	payload blocks at their offsets, padded to 4
//
// Stored payload blocks are raw bytes; compressed blocks carry a
// { decompSize:u32 compSize:u32 } header before the codec stream.

// Wire compression tag nibbles.
const (
	wireTagDeflate = 0
	wireTagHuffman = 1
	wireTagLZ      = 2
	wireTagStore   = 3
)

// wireTag maps a codec tag to its FST nibble.
func wireTag(c Compression) (uint32, error) {
	switch c {
	case CompressionDeflate:
		return wireTagDeflate, nil
	case CompressionHuffman:
		return wireTagHuffman, nil
	case CompressionLZ:
		return wireTagLZ, nil
	case CompressionStore:
		return wireTagStore, nil
	default:
		return 0, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, uint8(c))
	}
}

// tagFromWire maps an FST nibble back to a codec tag.
func tagFromWire(nibble uint32) (Compression, error) {
	switch nibble {
	case wireTagDeflate:
		return CompressionDeflate, nil
	case wireTagHuffman:
		return CompressionHuffman, nil
	case wireTagLZ:
		return CompressionLZ, nil
	case wireTagStore:
		return CompressionStore, nil
	default:
		return 0, fmt.Errorf("%w: compression nibble %d", ErrMalformedDirectory, nibble)
	}
}

// nameHash computes the 8-bit rotate-xor hash stored in string table records.
func nameHash(name string) byte {
	var h byte
	for i := 0; i < len(name); i++ {
		h = (h&0x7F)<<1 | (h&0x80)>>7
		h ^= name[i]
	}

	return h
}

// fstRecord is one parsed filesystem table record.
type fstRecord struct {
	length uint32
	offset int64
	tag    Compression
}

// parseDirectory reads and validates the full directory region of an archive
// and returns its entries in declared order. Payloads stay in the backing
// store; only compressed-block headers are read here.
func parseDirectory(ra io.ReaderAt, size int64, p Profile) ([]Entry, error) {
	head := make([]byte, headerSize)
	if err := readAt(ra, head, 0); err != nil {
		return nil, err
	}

	cur := newCursor(head, p.Order)
	magic, err := cur.readBytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, p.Magic[:]) {
		return nil, fmt.Errorf("%w: magic %x, profile %q expects %x", ErrFormatMismatch, magic, p.Name, p.Magic)
	}

	count, err := cur.readU32()
	if err != nil {
		return nil, err
	}
	if count > maxEntryCount || headerSize+int64(count)*fstRecordSize+8 > size {
		return nil, fmt.Errorf("%w: %d entries do not fit %d bytes", ErrMalformedDirectory, count, size)
	}

	fst, err := parseFST(ra, size, p, int(count))
	if err != nil {
		return nil, err
	}

	strTabOff := headerSize + int64(count)*fstRecordSize
	internals, compSize, err := parseStringTable(ra, size, p, strTabOff, int(count))
	if err != nil {
		return nil, err
	}
	if len(internals) != len(fst) {
		return nil, fmt.Errorf("%w: %d names for %d records", ErrMalformedDirectory, len(internals), len(fst))
	}

	dataStart := strTabOff + 8 + align64(compSize, payloadAlign)
	return assembleEntries(ra, size, p, fst, internals, dataStart)
}

// parseFST decodes the filesystem table records.
func parseFST(ra io.ReaderAt, size int64, p Profile, count int) ([]fstRecord, error) {
	buf := make([]byte, count*fstRecordSize)
	if err := readAt(ra, buf, headerSize); err != nil {
		return nil, err
	}

	cur := newCursor(buf, p.Order)
	fst := make([]fstRecord, 0, count)
	for i := 0; i < count; i++ {
		length, err := cur.readU32()
		if err != nil {
			return nil, err
		}

		cmpoff, err := cur.readU32()
		if err != nil {
			return nil, err
		}

		tag, err := tagFromWire(cmpoff >> 28)
		if err != nil {
			return nil, err
		}

		// Offset is stored divided by 4 to save bits. Uncompressed length may
		// exceed the archive size; block bounds are validated per entry later.
		offset := int64(cmpoff&maxFSTOffset) * payloadAlign
		if offset > size {
			return nil, fmt.Errorf("%w: record %d offset %d out of %d bytes",
				ErrMalformedDirectory, i, offset, size)
		}

		fst = append(fst, fstRecord{length: length, offset: offset, tag: tag})
	}

	return fst, nil
}

// parseStringTable decompresses and validates the name table. It returns the
// archive-internal names and the compressed table size.
func parseStringTable(ra io.ReaderAt, size int64, p Profile, off int64, count int) ([]string, int64, error) {
	head := make([]byte, 8)
	if err := readAt(ra, head, off); err != nil {
		return nil, 0, err
	}

	hc := newCursor(head, p.Order)
	decompSize, err := hc.readU32()
	if err != nil {
		return nil, 0, err
	}
	compSize, err := hc.readU32()
	if err != nil {
		return nil, 0, err
	}

	// Each record is at most len byte + hash byte + name + NUL; a declared
	// size past that ceiling is a lie, not a big allocation to honor.
	if uint64(decompSize) > uint64(count)*(maxNameLen+3) {
		return nil, 0, fmt.Errorf("%w: string table declares %d bytes for %d entries",
			ErrMalformedDirectory, decompSize, count)
	}
	if int64(compSize) > size-off-8 {
		return nil, 0, fmt.Errorf("%w: string table of %d bytes does not fit", ErrMalformedDirectory, compSize)
	}

	blob := make([]byte, compSize)
	if err := readAt(ra, blob, off+8); err != nil {
		return nil, 0, err
	}

	table, err := lzDecompress(blob, int(decompSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: string table: %w", ErrMalformedDirectory, err)
	}

	names, err := decodeStringTable(table, p)
	if err != nil {
		return nil, 0, err
	}

	return names, int64(compSize), nil
}

// decodeStringTable parses the decompressed name records and verifies the
// per-record length and hash.
func decodeStringTable(table []byte, p Profile) ([]string, error) {
	cur := newCursor(table, p.Order)
	names := make([]string, 0, 16)
	for cur.remaining() > 0 {
		length, err := cur.readU8()
		if err != nil {
			return nil, fmt.Errorf("%w: string table: %w", ErrMalformedDirectory, err)
		}

		hash, err := cur.readU8()
		if err != nil {
			return nil, fmt.Errorf("%w: string table: %w", ErrMalformedDirectory, err)
		}

		value, err := cur.readCString()
		if err != nil {
			return nil, fmt.Errorf("%w: string table: %w", ErrMalformedDirectory, err)
		}

		if int(length) != len(value) || hash != nameHash(value) {
			return nil, fmt.Errorf("%w: string table record %q fails integrity check",
				ErrMalformedDirectory, value)
		}

		names = append(names, value)
	}

	return names, nil
}

// assembleEntries joins FST records with their names, reads compressed block
// headers, and validates that payload regions are in range and do not overlap.
func assembleEntries(
	ra io.ReaderAt,
	size int64,
	p Profile,
	fst []fstRecord,
	internals []string,
	dataStart int64,
) ([]Entry, error) {
	entries := make([]Entry, 0, len(fst))
	seen := make(map[string]struct{}, len(fst))
	prevEnd := dataStart

	for i := range fst {
		logical, err := logicalEntryName(p, internals[i])
		if err != nil {
			return nil, fmt.Errorf("%w: entry name %q", ErrMalformedDirectory, internals[i])
		}

		key := entryPathKey(logical)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrMalformedDirectory, logical)
		}
		seen[key] = struct{}{}

		entry := Entry{
			Path:        logical,
			Size:        fst[i].length,
			Compression: fst[i].tag,
			offset:      fst[i].offset,
		}

		blockLen := int64(fst[i].length)
		if fst[i].tag != CompressionStore {
			decompSize, compSize, err := readBlockHeader(ra, size, p, fst[i].offset)
			if err != nil {
				return nil, err
			}

			if decompSize != fst[i].length {
				return nil, fmt.Errorf("%w: entry %q block size %d, table says %d",
					ErrMalformedDirectory, logical, decompSize, fst[i].length)
			}
			if compSize == 0 && fst[i].length > 0 {
				return nil, fmt.Errorf("%w: entry %q has empty compressed block",
					ErrMalformedDirectory, logical)
			}

			entry.CompressedSize = compSize
			entry.offset = fst[i].offset + 8
			blockLen = 8 + int64(compSize)
		} else {
			entry.CompressedSize = fst[i].length
		}

		if fst[i].offset < prevEnd || fst[i].offset+blockLen > size {
			return nil, fmt.Errorf("%w: entry %q payload [%d..%d) overlaps or exceeds %d bytes",
				ErrMalformedDirectory, logical, fst[i].offset, fst[i].offset+blockLen, size)
		}

		prevEnd = fst[i].offset + blockLen
		entries = append(entries, entry)
	}

	return entries, nil
}

// readBlockHeader reads the {decompSize, compSize} header of a compressed block.
func readBlockHeader(ra io.ReaderAt, size int64, p Profile, off int64) (uint32, uint32, error) {
	if off+8 > size {
		return 0, 0, fmt.Errorf("%w: block header at %d exceeds %d bytes", ErrMalformedDirectory, off, size)
	}

	buf := make([]byte, 8)
	if err := readAt(ra, buf, off); err != nil {
		return 0, 0, err
	}

	cur := newCursor(buf, p.Order)
	decompSize, err := cur.readU32()
	if err != nil {
		return 0, 0, err
	}

	compSize, err := cur.readU32()
	if err != nil {
		return 0, 0, err
	}

	return decompSize, compSize, nil
}

// serializeDirectory encodes the header, FST, and string table for entries
// whose payload offsets were already laid out.
func serializeDirectory(cur *cursor, p Profile, entries []Entry, offsets []int64, strTab []byte, strTabComp []byte) error {
	cur.writeBytes(p.Magic[:])
	cur.writeU32(uint32(len(entries)))

	for i := range entries {
		tag, err := wireTag(entries[i].Compression)
		if err != nil {
			return err
		}

		packed := offsets[i] / payloadAlign
		if packed > maxFSTOffset {
			return fmt.Errorf("%w: entry %q offset %d", ErrSizeOverflow, entries[i].Path, offsets[i])
		}

		cur.writeU32(entries[i].Size)
		cur.writeU32(tag<<28 | uint32(packed))
	}

	cur.writeU32(uint32(len(strTab)))
	cur.writeU32(uint32(len(strTabComp)))
	cur.writeBytes(strTabComp)
	cur.padAlign(payloadAlign)
	return nil
}

// encodeStringTable builds the decompressed name table blob for entries.
func encodeStringTable(p Profile, entries []Entry) ([]byte, error) {
	cur := newWriteCursor(p.Order)
	for i := range entries {
		name, err := internalEntryName(p, entries[i].Path)
		if err != nil {
			return nil, err
		}

		cur.writeU8(uint8(len(name)))
		cur.writeU8(nameHash(name))
		if err := cur.writeCString(name); err != nil {
			return nil, err
		}
	}

	return cur.bytes(), nil
}

// align64 rounds v up to the next n-byte boundary.
func align64(v, n int64) int64 {
	if n <= 1 {
		return v
	}

	return v + (n-v%n)%n
}

// readAt fills buf from ra at off, mapping short reads to ErrTruncatedData.
func readAt(ra io.ReaderAt, buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}

	if _, err := ra.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %d bytes at offset %d", ErrTruncatedData, len(buf), off)
		}

		return fmt.Errorf("read %d bytes at offset %d: %w", len(buf), off, err)
	}

	return nil
}
