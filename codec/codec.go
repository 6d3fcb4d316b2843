// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package codec converts between Unicode code points and their UTF-8 and
// UTF-16 byte encodings, with strict validation.
//
// Decoding never reports an error value: an invalid or overlong sequence, a
// lone surrogate, or a value outside the Unicode range yields a consumed
// length of zero. Callers translate that sentinel into their own errors.
package codec

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding is a wire encoding for Unicode text.
type Encoding byte

// Constants defining the supported encodings.
const (
	UTF8    Encoding = iota // UTF-8
	UTF16BE                 // UTF-16, big-endian
	UTF16LE                 // UTF-16, little-endian
)

var encName = [...]string{
	UTF8:    "utf8",
	UTF16BE: "utf16be",
	UTF16LE: "utf16le",
}

func (e Encoding) String() string {
	if int(e) < len(encName) {
		return encName[e]
	}
	return fmt.Sprintf("Encoding(%d)", e)
}

// ParseEncoding returns the encoding with the given name. Names are matched
// without regard to case, and dashes are ignored ("UTF-16LE" is accepted).
func ParseEncoding(name string) (Encoding, error) {
	norm := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	for i, s := range encName {
		if s == norm {
			return Encoding(i), nil
		}
	}
	return UTF8, fmt.Errorf("unknown encoding %q", name)
}

// BOM is the byte-order mark code point.
const BOM = '\uFEFF'

// MaxLen is the largest number of bytes used to encode one code point in any
// supported encoding.
const MaxLen = 4

// Valid reports whether r is a Unicode scalar value: at most U+10FFFF and not
// in the surrogate range.
func Valid(r rune) bool { return utf8.ValidRune(r) }

// IsHighSurrogate reports whether u is a UTF-16 high (leading) surrogate.
func IsHighSurrogate(u rune) bool { return u >= 0xD800 && u <= 0xDBFF }

// IsLowSurrogate reports whether u is a UTF-16 low (trailing) surrogate.
func IsLowSurrogate(u rune) bool { return u >= 0xDC00 && u <= 0xDFFF }

// CombineSurrogates returns the code point encoded by the surrogate pair
// (hi, lo), or -1 if the pair is not a valid high+low sequence.
func CombineSurrogates(hi, lo rune) rune {
	if !IsHighSurrogate(hi) || !IsLowSurrogate(lo) {
		return -1
	}
	return utf16.DecodeRune(hi, lo)
}

// SplitSurrogates returns the UTF-16 surrogate pair encoding r. If r does not
// need a surrogate pair (or is invalid), it returns U+FFFD twice.
func SplitSurrogates(r rune) (hi, lo rune) { return utf16.EncodeRune(r) }

// FullRune reports whether src begins with enough bytes to decode a complete
// code point in encoding e. It also reports true when the prefix is already
// known to be invalid, so that Decode can report it.
func FullRune(e Encoding, src []byte) bool {
	switch e {
	case UTF8:
		return utf8.FullRune(src)
	case UTF16BE, UTF16LE:
		if len(src) < 2 {
			return false
		}
		if IsHighSurrogate(unit16(e, src)) {
			return len(src) >= 4
		}
		return true
	}
	return true
}

// Decode decodes the code point at the start of src in encoding e, and
// returns it along with the number of bytes consumed. If src does not begin
// with a complete, valid encoding, Decode returns (0, 0).
func Decode(e Encoding, src []byte) (rune, int) {
	switch e {
	case UTF8:
		if len(src) == 0 {
			return 0, 0
		}
		if src[0] < utf8.RuneSelf {
			return rune(src[0]), 1
		}
		r, n := utf8.DecodeRune(src)
		if r == utf8.RuneError && n <= 1 {
			return 0, 0 // overlong, surrogate, out of range, or truncated
		}
		return r, n

	case UTF16BE, UTF16LE:
		if len(src) < 2 {
			return 0, 0
		}
		u := unit16(e, src)
		switch {
		case IsHighSurrogate(u):
			if len(src) < 4 {
				return 0, 0
			}
			if r := CombineSurrogates(u, unit16(e, src[2:])); r >= 0 {
				return r, 4
			}
			return 0, 0
		case IsLowSurrogate(u):
			return 0, 0
		default:
			return u, 2
		}
	}
	return 0, 0
}

// Len reports the number of bytes needed to encode r in encoding e, or 0 if r
// is not a valid code point.
func Len(e Encoding, r rune) int {
	if !Valid(r) {
		return 0
	}
	switch e {
	case UTF8:
		return utf8.RuneLen(r)
	case UTF16BE, UTF16LE:
		if r >= 0x10000 {
			return 4
		}
		return 2
	}
	return 0
}

// Append appends the encoding of r in encoding e to dst and returns the
// extended slice along with the number of bytes added. If r is not a valid
// code point, dst is returned unmodified with a length of 0.
func Append(e Encoding, dst []byte, r rune) ([]byte, int) {
	n := Len(e, r)
	if n == 0 {
		return dst, 0
	}
	switch e {
	case UTF8:
		return utf8.AppendRune(dst, r), n
	default:
		if n == 4 {
			hi, lo := SplitSurrogates(r)
			dst = appendUnit16(e, dst, hi)
			return appendUnit16(e, dst, lo), n
		}
		return appendUnit16(e, dst, r), n
	}
}

// AppendBOM appends the byte-order mark for e to dst.
func AppendBOM(e Encoding, dst []byte) []byte {
	out, _ := Append(e, dst, BOM)
	return out
}

// Detect inspects up to the first three bytes of src and reports the encoding
// they indicate, along with the length of the byte-order mark to skip. A BOM
// is honored if present; otherwise a zero byte in either of the first two
// positions indicates UTF-16 of the corresponding byte order. By default,
// Detect reports UTF-8 with no skip.
func Detect(src []byte) (Encoding, int) {
	switch {
	case len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF:
		return UTF8, 3
	case len(src) >= 2 && src[0] == 0xFE && src[1] == 0xFF:
		return UTF16BE, 2
	case len(src) >= 2 && src[0] == 0xFF && src[1] == 0xFE:
		return UTF16LE, 2
	case len(src) >= 2 && src[0] == 0 && src[1] != 0:
		return UTF16BE, 0
	case len(src) >= 2 && src[0] != 0 && src[1] == 0:
		return UTF16LE, 0
	}
	return UTF8, 0
}

func unit16(e Encoding, src []byte) rune {
	if e == UTF16LE {
		return rune(src[0]) | rune(src[1])<<8
	}
	return rune(src[0])<<8 | rune(src[1])
}

func appendUnit16(e Encoding, dst []byte, u rune) []byte {
	if e == UTF16LE {
		return append(dst, byte(u), byte(u>>8))
	}
	return append(dst, byte(u>>8), byte(u))
}
