// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"encoding/binary"
	"fmt"
)

// Huffman codes are at most huffMaxDepth bits; longer code-table entries act
// as an escape that is followed by a raw byte in the bit stream. The bit
// stream is consumed as 16-bit words in the archive byte order, LSB first.
const (
	huffMaxDepth  = 10
	huffTableSize = 1 << huffMaxDepth
)

// huffSymbol is one flat decode table slot.
type huffSymbol struct {
	length uint8
	symbol byte
	set    bool
}

// huffmanDecompress decodes a Huffman-packed stream into exactly expectedSize
// bytes. Only decoding is supported; the titles never ship an encoder.
func huffmanDecompress(src []byte, expectedSize int, order binary.ByteOrder) ([]byte, error) {
	if expectedSize < 0 {
		return nil, fmt.Errorf("%w: negative output size", ErrCorruptPayload)
	}

	cur := newCursor(src, order)
	table, err := rebuildHuffmanTable(cur)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, expectedSize)
	var bitStrm uint64
	bitNum := 0
	refill := func() error {
		v, err := cur.readU16()
		if err != nil {
			return fmt.Errorf("%w: huffman stream ends with %d/%d bytes decoded",
				ErrCorruptPayload, len(out), expectedSize)
		}

		bitStrm |= uint64(v) << bitNum
		bitNum += 16
		return nil
	}

	for len(out) < expectedSize {
		if bitNum < huffMaxDepth {
			if err := refill(); err != nil {
				return nil, err
			}
		}

		entry := table[bitStrm&(huffTableSize-1)]
		if !entry.set {
			return nil, fmt.Errorf("%w: unassigned huffman code", ErrCorruptPayload)
		}

		if int(entry.length) <= huffMaxDepth {
			if int(entry.length) > bitNum {
				return nil, fmt.Errorf("%w: huffman code exceeds bit buffer", ErrCorruptPayload)
			}

			out = append(out, entry.symbol)
			bitStrm >>= entry.length
			bitNum -= int(entry.length)
			continue
		}

		// Escape entry: a raw byte follows the consumed prefix.
		bitStrm >>= huffMaxDepth
		bitNum -= huffMaxDepth
		if bitNum < 16 {
			if err := refill(); err != nil {
				return nil, err
			}
		}

		out = append(out, byte(bitStrm))
		bitStrm >>= 8
		bitNum -= 8
	}

	return out, nil
}

// rebuildHuffmanTable reconstructs the flat decode table from canonical code
// length counts. The code data is aligned to a two-byte boundary afterwards.
func rebuildHuffmanTable(cur *cursor) ([]huffSymbol, error) {
	maxLength, err := cur.readU8()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}
	if maxLength == 0 || maxLength > 30 {
		return nil, fmt.Errorf("%w: implausible huffman code length %d", ErrCorruptPayload, maxLength)
	}

	table := make([]huffSymbol, huffTableSize)
	code := 0
	for length := 1; length <= int(maxLength); length++ {
		codeNum, err := cur.readU8()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
		}

		for n := 0; n < int(codeNum); n++ {
			codeBits := code
			index := 0
			for b := 0; b < length; b++ {
				index = index<<1 | codeBits&1
				codeBits >>= 1
			}

			symbol, err := cur.readU8()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
			}

			// Fill every table slot sharing this bit-reversed prefix.
			for ; index < huffTableSize; index += 1 << length {
				table[index] = huffSymbol{length: uint8(length), symbol: symbol, set: true}
			}

			if length <= huffMaxDepth {
				code++
			}
		}

		code <<= 1
	}

	if cur.tell()%2 != 0 {
		if err := cur.skipAlign(2); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
		}
	}

	return table, nil
}
