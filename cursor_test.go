// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestCursorRoundTripLittleEndian(t *testing.T) {
	t.Parallel()

	w := newWriteCursor(binary.LittleEndian)
	w.writeU8(0xAB)
	w.writeU16(0x1234)
	w.writeU32(0xDEADBEEF)
	w.writeU64(0x0102030405060708)
	w.writeI16(-2)
	w.writeI32(-100000)
	w.writeI64(-1)
	if err := w.writeCString("hello"); err != nil {
		t.Fatalf("writeCString: %v", err)
	}

	r := newCursor(w.bytes(), binary.LittleEndian)
	if v, err := r.readU8(); err != nil || v != 0xAB {
		t.Fatalf("readU8 = %#x, %v", v, err)
	}
	if v, err := r.readU16(); err != nil || v != 0x1234 {
		t.Fatalf("readU16 = %#x, %v", v, err)
	}
	if v, err := r.readU32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("readU32 = %#x, %v", v, err)
	}
	if v, err := r.readU64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("readU64 = %#x, %v", v, err)
	}
	if v, err := r.readI16(); err != nil || v != -2 {
		t.Fatalf("readI16 = %d, %v", v, err)
	}
	if v, err := r.readI32(); err != nil || v != -100000 {
		t.Fatalf("readI32 = %d, %v", v, err)
	}
	if v, err := r.readI64(); err != nil || v != -1 {
		t.Fatalf("readI64 = %d, %v", v, err)
	}
	if s, err := r.readCString(); err != nil || s != "hello" {
		t.Fatalf("readCString = %q, %v", s, err)
	}
	if r.remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", r.remaining())
	}
}

func TestCursorByteOrder(t *testing.T) {
	t.Parallel()

	le := newWriteCursor(binary.LittleEndian)
	le.writeU32(0x11223344)
	if !bytes.Equal(le.bytes(), []byte{0x44, 0x33, 0x22, 0x11}) {
		t.Fatalf("little endian bytes = % x", le.bytes())
	}

	be := newWriteCursor(binary.BigEndian)
	be.writeU32(0x11223344)
	if !bytes.Equal(be.bytes(), []byte{0x11, 0x22, 0x33, 0x44}) {
		t.Fatalf("big endian bytes = % x", be.bytes())
	}
}

func TestCursorTruncatedReads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		read func(c *cursor) error
		buf  []byte
	}{
		{
			name: "u16 short",
			read: func(c *cursor) error { _, err := c.readU16(); return err },
			buf:  []byte{1},
		},
		{
			name: "u32 short",
			read: func(c *cursor) error { _, err := c.readU32(); return err },
			buf:  []byte{1, 2, 3},
		},
		{
			name: "u64 short",
			read: func(c *cursor) error { _, err := c.readU64(); return err },
			buf:  []byte{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name: "u8 empty",
			read: func(c *cursor) error { _, err := c.readU8(); return err },
			buf:  nil,
		},
		{
			name: "unterminated string",
			read: func(c *cursor) error { _, err := c.readCString(); return err },
			buf:  []byte("no terminator"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.read(newCursor(tt.buf, binary.LittleEndian))
			if !errors.Is(err, ErrTruncatedData) {
				t.Fatalf("err = %v, want ErrTruncatedData", err)
			}
		})
	}
}

func TestCursorWriteCStringEmbeddedNUL(t *testing.T) {
	t.Parallel()

	w := newWriteCursor(binary.LittleEndian)
	if err := w.writeCString("a\x00b"); !errors.Is(err, ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
}

func TestCursorAlignment(t *testing.T) {
	t.Parallel()

	w := newWriteCursor(binary.LittleEndian)
	w.writeU8(1)
	w.padAlign(4)
	if w.size() != 4 {
		t.Fatalf("size after pad = %d, want 4", w.size())
	}
	w.padAlign(4)
	if w.size() != 4 {
		t.Fatalf("pad at boundary grew buffer to %d", w.size())
	}

	r := newCursor(w.bytes(), binary.LittleEndian)
	if _, err := r.readU8(); err != nil {
		t.Fatalf("readU8: %v", err)
	}
	if err := r.skipAlign(4); err != nil {
		t.Fatalf("skipAlign: %v", err)
	}
	if r.tell() != 4 {
		t.Fatalf("tell after skipAlign = %d, want 4", r.tell())
	}
}

func TestCursorSeek(t *testing.T) {
	t.Parallel()

	c := newCursor([]byte{1, 2, 3, 4}, binary.LittleEndian)
	if err := c.seek(2); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if v, err := c.readU8(); err != nil || v != 3 {
		t.Fatalf("readU8 after seek = %d, %v", v, err)
	}
	if err := c.seek(5); !errors.Is(err, ErrTruncatedData) {
		t.Fatalf("seek past end = %v, want ErrTruncatedData", err)
	}
}
