// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import "errors"

// Sentinel errors for XB archive operations. Use errors.Is in callers.
var (
	// ErrTruncatedData means a decode ran past the end of the available buffer.
	ErrTruncatedData = errors.New("truncated data")
	// ErrEncoding means an entry name cannot be represented in the archive string table.
	ErrEncoding = errors.New("name not representable in archive encoding")
	// ErrUnsupportedCodec means the compression tag has no registered codec.
	ErrUnsupportedCodec = errors.New("unsupported compression tag")
	// ErrCorruptPayload means a payload failed to decompress to its declared size.
	ErrCorruptPayload = errors.New("corrupt compressed payload")
	// ErrMalformedDirectory means the archive directory structures are inconsistent.
	ErrMalformedDirectory = errors.New("malformed archive directory")
	// ErrFormatMismatch means the archive header does not match the selected profile.
	ErrFormatMismatch = errors.New("archive header does not match profile")
	// ErrUnknownFormat means no known title variant matches the requested profile.
	ErrUnknownFormat = errors.New("unknown archive format variant")
	// ErrPathConflict means two inputs resolve to the same archive path.
	ErrPathConflict = errors.New("conflicting entry paths")
	// ErrClosed means the archive is already closed.
	ErrClosed = errors.New("archive already closed")
	// ErrReadOnly means a mutation was attempted on a read-only archive.
	ErrReadOnly = errors.New("archive is read-only")
	// ErrInvalidMode means the open mode is unknown or wrong for the operation.
	ErrInvalidMode = errors.New("invalid open mode")
	// ErrArchiveNotFound means the archive file does not exist.
	ErrArchiveNotFound = errors.New("archive does not exist")
	// ErrArchiveExists means create mode found an existing destination.
	ErrArchiveExists = errors.New("archive already exists")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidEntryPath means an entry path is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrInvalidExtractPath means an entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("extract path escapes destination root")
	// ErrSizeOverflow means a size or offset exceeds the format field limits.
	ErrSizeOverflow = errors.New("size exceeds archive format limits")
	// ErrInvalidCompressRules means one or more compression rules are invalid.
	ErrInvalidCompressRules = errors.New("invalid compress rules")
)
