// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode"

	"github.com/creachadair/jstep/codec"
	"go4.org/mem"
)

var controlEsc = [...]byte{
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	' ':  ' ', // sentinel
}

var hexDigit = []rune("0123456789abcdef")

// MaxRunes is the largest number of runes produced by Append for a single
// input rune: a surrogate pair written as two \uXXXX escapes.
const MaxRunes = 12

// IsLiteral reports whether r may appear in the text of a literal value.
// Literals are not interpreted, so this admits numbers, true, false, null,
// and other bare words alike.
func IsLiteral(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		r == '+' || r == '-' || r == '.'
}

// NeedsEscape reports whether r must be escaped inside a JSON string.
func NeedsEscape(r rune) bool {
	return r < ' ' || r == '"' || r == '\\' || !unicode.IsPrint(r)
}

// Append appends the JSON string representation of r to dst.  Quotation marks
// and backslashes are escaped, control characters use their short escapes
// where they have one, and other characters with no printable representation
// are written as \uXXXX escapes, as a surrogate pair if necessary.
func Append(dst []rune, r rune) []rune {
	switch {
	case r == '"' || r == '\\':
		return append(dst, '\\', r)
	case r < ' ':
		if b := controlEsc[r]; b != 0 {
			return append(dst, '\\', rune(b))
		}
		return appendHex4(dst, r)
	case !NeedsEscape(r):
		return append(dst, r)
	case r >= 0x10000:
		hi, lo := codec.SplitSurrogates(r)
		return appendHex4(appendHex4(dst, hi), lo)
	default:
		return appendHex4(dst, r)
	}
}

func appendHex4(dst []rune, u rune) []rune {
	return append(dst, '\\', 'u',
		hexDigit[(u>>12)&15], hexDigit[(u>>8)&15], hexDigit[(u>>4)&15], hexDigit[u&15])
}

// Quote encodes a string to escape characters for inclusion in a JSON string.
// Invalid UTF-8 sequences in src are replaced by the Unicode replacement rune.
func Quote(src mem.RO) []byte {
	buf := make([]byte, 0, src.Len())
	var tmp [MaxRunes]rune
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		for _, e := range Append(tmp[:0], r) {
			buf, _ = codec.Append(codec.UTF8, buf, e)
		}
		src = src.SliceFrom(n)
	}
	return buf
}
