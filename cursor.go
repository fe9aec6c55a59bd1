// SPDX-License-Identifier: MIT
// Copyright (c) 2026 xbtools
// Source: github.com/xbtools/xb

package xb

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// cursor is an endian-aware primitive codec over a byte buffer with an
// explicit position. Reads never go past the buffer; writes extend it as
// needed. It performs no I/O itself.
type cursor struct {
	order binary.ByteOrder
	buf   []byte
	pos   int
}

// newCursor wraps an existing buffer for decoding.
func newCursor(buf []byte, order binary.ByteOrder) *cursor {
	return &cursor{buf: buf, order: order}
}

// newWriteCursor starts an empty growable buffer for encoding.
func newWriteCursor(order binary.ByteOrder) *cursor {
	return &cursor{order: order}
}

// bytes returns the full underlying buffer.
func (c *cursor) bytes() []byte {
	return c.buf
}

// tell returns the current position.
func (c *cursor) tell() int {
	return c.pos
}

// size returns the buffer length.
func (c *cursor) size() int {
	return len(c.buf)
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

// seek moves the position to an absolute offset within the buffer.
func (c *cursor) seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("%w: seek to %d of %d", ErrTruncatedData, pos, len(c.buf))
	}

	c.pos = pos
	return nil
}

// need fails when n more bytes are not available for reading.
func (c *cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncatedData, n, c.pos, len(c.buf))
	}

	return nil
}

// grow extends the buffer so n bytes can be written at the current position.
func (c *cursor) grow(n int) {
	if end := c.pos + n; end > len(c.buf) {
		c.buf = append(c.buf, make([]byte, end-len(c.buf))...)
	}
}

// readBytes returns a view of the next n bytes.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}

	out := c.buf[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// writeBytes writes raw bytes at the current position.
func (c *cursor) writeBytes(b []byte) {
	c.grow(len(b))
	copy(c.buf[c.pos:], b)
	c.pos += len(b)
}

func (c *cursor) readU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}

	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readU16() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}

	return c.order.Uint16(b), nil
}

func (c *cursor) readU32() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}

	return c.order.Uint32(b), nil
}

func (c *cursor) readU64() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}

	return c.order.Uint64(b), nil
}

func (c *cursor) readI16() (int16, error) {
	v, err := c.readU16()
	return int16(v), err
}

func (c *cursor) readI32() (int32, error) {
	v, err := c.readU32()
	return int32(v), err
}

func (c *cursor) readI64() (int64, error) {
	v, err := c.readU64()
	return int64(v), err
}

func (c *cursor) writeU8(v uint8) {
	c.grow(1)
	c.buf[c.pos] = v
	c.pos++
}

func (c *cursor) writeU16(v uint16) {
	var b [2]byte
	c.order.PutUint16(b[:], v)
	c.writeBytes(b[:])
}

func (c *cursor) writeU32(v uint32) {
	var b [4]byte
	c.order.PutUint32(b[:], v)
	c.writeBytes(b[:])
}

func (c *cursor) writeU64(v uint64) {
	var b [8]byte
	c.order.PutUint64(b[:], v)
	c.writeBytes(b[:])
}

func (c *cursor) writeI16(v int16) { c.writeU16(uint16(v)) }
func (c *cursor) writeI32(v int32) { c.writeU32(uint32(v)) }
func (c *cursor) writeI64(v int64) { c.writeU64(uint64(v)) }

// readCString reads a NUL-terminated string from the current position.
func (c *cursor) readCString() (string, error) {
	idx := bytes.IndexByte(c.buf[c.pos:], 0)
	if idx < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrTruncatedData, c.pos)
	}

	s := string(c.buf[c.pos : c.pos+idx])
	c.pos += idx + 1
	return s, nil
}

// writeCString writes a NUL-terminated string. Strings containing NUL cannot
// be represented and fail with ErrEncoding.
func (c *cursor) writeCString(s string) error {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return fmt.Errorf("%w: embedded NUL in %q", ErrEncoding, s)
	}

	c.writeBytes([]byte(s))
	c.writeU8(0)
	return nil
}

// skipAlign advances the read position to the next n-byte boundary.
func (c *cursor) skipAlign(n int) error {
	pad := alignPad(c.pos, n)
	if pad == 0 {
		return nil
	}

	_, err := c.readBytes(pad)
	return err
}

// padAlign zero-pads the write position to the next n-byte boundary.
func (c *cursor) padAlign(n int) {
	if pad := alignPad(c.pos, n); pad > 0 {
		c.writeBytes(make([]byte, pad))
	}
}

// alignPad returns the number of bytes needed to align pos to boundary n.
func alignPad(pos, n int) int {
	if n <= 1 {
		return 0
	}

	return (n - pos%n) % n
}
