// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressPayload transforms data with the codec for tag. The caller picks
// the tag deliberately; no adaptive selection happens here.
func compressPayload(tag Compression, data []byte) ([]byte, error) {
	switch tag {
	case CompressionStore:
		return bytes.Clone(data), nil
	case CompressionLZ:
		return lzCompress(data), nil
	case CompressionDeflate:
		return deflateCompress(data)
	case CompressionHuffman:
		return nil, fmt.Errorf("%w: huffman is decompress-only", ErrUnsupportedCodec)
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, uint8(tag))
	}
}

// decompressPayload reverses compressPayload and validates that the produced
// length equals expectedSize. The byte order is needed for codecs that
// consume multi-byte words from the stream.
func decompressPayload(tag Compression, data []byte, expectedSize int, order binary.ByteOrder) ([]byte, error) {
	switch tag {
	case CompressionStore:
		if len(data) != expectedSize {
			return nil, fmt.Errorf("%w: stored payload is %d bytes, expected %d",
				ErrCorruptPayload, len(data), expectedSize)
		}

		return bytes.Clone(data), nil
	case CompressionLZ:
		return lzDecompress(data, expectedSize)
	case CompressionHuffman:
		return huffmanDecompress(data, expectedSize, order)
	case CompressionDeflate:
		return deflateDecompress(data, expectedSize)
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, uint8(tag))
	}
}

// deflateCompress produces a zlib deflate stream for data.
func deflateCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("deflate: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	return buf.Bytes(), nil
}

// deflateDecompress inflates a zlib stream and validates the produced length.
func deflateDecompress(data []byte, expectedSize int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}
	defer func() { _ = zr.Close() }()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPayload, err)
	}
	if len(out) != expectedSize {
		return nil, fmt.Errorf("%w: inflated to %d bytes, expected %d",
			ErrCorruptPayload, len(out), expectedSize)
	}

	return out, nil
}
