// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	headerSize     = 8           // magic (4) + entry count (4)
	fstRecordSize  = 8           // uncompressed length (4) + packed tag/offset (4)
	payloadAlign   = 4           // payload and string table blocks are 4-byte aligned
	maxNameLen     = 255         // string table records carry a one-byte length
	maxFSTOffset   = 0xFFFFFFF   // FST stores offset/4 in 28 bits
	maxPayloadSize = 1<<32 - 1   // uncompressed and compressed sizes are uint32
	maxEntryCount  = 1 << 24     // sanity bound for directory parsing
)

// Compression identifies the per-entry payload codec.
type Compression uint8

// Supported compression tags. CompressionStore is the default for added entries.
const (
	// CompressionStore stores payload bytes verbatim.
	CompressionStore Compression = iota
	// CompressionLZ uses the title-specific LZ run-length codec.
	CompressionLZ
	// CompressionHuffman marks Huffman-packed payloads (decompression only).
	CompressionHuffman
	// CompressionDeflate uses zlib deflate streams.
	CompressionDeflate
)

// String returns the short codec name for logging and errors.
func (c Compression) String() string {
	switch c {
	case CompressionStore:
		return "store"
	case CompressionLZ:
		return "lz"
	case CompressionHuffman:
		return "huffman"
	case CompressionDeflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// Mode selects archive access behavior at open time.
type Mode uint8

// Archive open modes.
const (
	// ModeRead parses an existing archive and rejects mutation.
	ModeRead Mode = iota + 1
	// ModeWrite starts empty and rebuilds the destination on close.
	ModeWrite
	// ModeReadWrite parses an existing archive and permits mutation.
	ModeReadWrite
	// ModeCreate behaves like ModeWrite but refuses an existing destination.
	ModeCreate
)

// writable reports whether entries may be added or replaced in this mode.
func (m Mode) writable() bool {
	return m == ModeWrite || m == ModeReadWrite || m == ModeCreate
}

// persisted reports whether the archive is rebuilt to disk on close.
func (m Mode) persisted() bool {
	return m.writable()
}

// String returns the shorthand token for the mode.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeReadWrite:
		return "+"
	case ModeCreate:
		return "x"
	default:
		return "?"
	}
}

// ParseMode resolves a shorthand open-mode token ("r", "w", "+", "x").
func ParseMode(token string) (Mode, error) {
	switch token {
	case "r":
		return ModeRead, nil
	case "w":
		return ModeWrite, nil
	case "+":
		return ModeReadWrite, nil
	case "x":
		return ModeCreate, nil
	default:
		return 0, fmt.Errorf("%w: token %q", ErrInvalidMode, token)
	}
}

// Entry describes a single archived item.
type Entry struct {
	// Path is the logical slash-separated entry path, root prefix stripped.
	Path string `json:"path" yaml:"path"`
	// Size is the uncompressed payload size in bytes.
	Size uint32 `json:"size" yaml:"size"`
	// CompressedSize is the stored payload size the codec produced.
	CompressedSize uint32 `json:"compressed_size" yaml:"compressed_size"`
	// Compression is the payload codec tag.
	Compression Compression `json:"compression" yaml:"compression"`

	// offset locates the codec stream in the backing store; -1 while pending.
	offset int64
	// pending holds the compressed payload for entries not yet flushed.
	pending []byte
}

// IsCompressed reports whether the entry payload is stored compressed.
func (e *Entry) IsCompressed() bool {
	return e.Compression != CompressionStore
}

// AddOptions configures file and directory add behavior.
type AddOptions struct {
	// OnEntryDone is called after one entry is staged in the directory table.
	OnEntryDone func(entry Entry) `json:"-" yaml:"-"`
	// Compress defines ordered path rules selecting LZ compression candidates.
	Compress []pathrules.Rule `json:"compress,omitempty" yaml:"compress,omitempty"`
	// CompressMatcherOptions control compression path rule matching.
	CompressMatcherOptions pathrules.MatcherOptions `json:"compress_matcher_options,omitzero" yaml:"compress_matcher_options,omitzero"`
	// Compression pins an explicit codec tag for all added entries.
	// Left as CompressionStore, Compress rules pick LZ per path instead.
	Compression Compression `json:"compression,omitempty" yaml:"compression,omitempty"`
	// Recursive adds directory contents including nested directories.
	Recursive bool `json:"recursive,omitempty" yaml:"recursive,omitempty"`
}

// ExtractOptions configures ExtractAll behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// Entries limits extraction to a selected metadata list; nil means all entries.
	Entries []Entry `json:"-" yaml:"-"`
}

// applyDefaults fills zero-valued add options with defaults.
func (opts *AddOptions) applyDefaults() {
	if opts.CompressMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.CompressMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.CompressMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.CompressMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}
