// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"github.com/creachadair/jstep/codec"
	"go4.org/mem"
)

// A Buffer is a growable sequence of code points stored as UTF-8. Code points
// are appended one at a time and read back by byte offset. The zero value is
// ready for use as an empty buffer.
type Buffer struct {
	buf []byte
}

// AppendRune appends the UTF-8 encoding of r to b. It reports false without
// modifying b if r is not a valid code point.
func (b *Buffer) AppendRune(r rune) bool {
	var n int
	b.buf, n = codec.Append(codec.UTF8, b.buf, r)
	return n != 0
}

// Set replaces the contents of b with a copy of text, which must be valid
// UTF-8.
func (b *Buffer) Set(text []byte) { b.buf = append(b.buf[:0], text...) }

// SetString replaces the contents of b with s, which must be valid UTF-8.
func (b *Buffer) SetString(s string) { b.buf = append(b.buf[:0], s...) }

// Reset discards the contents of b, retaining its storage.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Len reports the length of b in bytes.
func (b *Buffer) Len() int { return len(b.buf) }

// RuneAt decodes the code point starting at byte offset off, and reports it
// along with its length in bytes. At or past the end of b, it returns (0, 0).
func (b *Buffer) RuneAt(off int) (rune, int) {
	if off < 0 || off >= len(b.buf) {
		return 0, 0
	}
	return codec.Decode(codec.UTF8, b.buf[off:])
}

// Bytes returns a view of the contents of b. The view is only valid until the
// next modification of b.
func (b *Buffer) Bytes() []byte { return b.buf }

// RO returns a read-only view of the contents of b.
func (b *Buffer) RO() mem.RO { return mem.B(b.buf) }

// String returns a copy of the contents of b as a string.
func (b *Buffer) String() string { return string(b.buf) }

// Equal reports whether b contains exactly the code points of text.
func (b *Buffer) Equal(text mem.RO) bool { return mem.B(b.buf).Equal(text) }

// Truncate discards all but the first n bytes of b.
func (b *Buffer) Truncate(n int) {
	if n >= 0 && n < len(b.buf) {
		b.buf = b.buf[:n]
	}
}
