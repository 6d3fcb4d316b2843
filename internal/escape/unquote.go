// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jstep/codec"
	"go4.org/mem"
)

// Short returns the character denoted by the single-character escape \c, and
// reports whether c is a valid short escape in a JSON string.
func Short(c rune) (rune, bool) {
	switch c {
	case '"', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// HexValue reports the value of c as a hexadecimal digit, or -1.
func HexValue(c rune) rune {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return -1
}

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. In addition
// to the JSON escapes, each character in extra may be escaped by a backslash
// to stand for itself. A \uXXXX escape for a high surrogate must be followed
// immediately by one for a low surrogate. Unquote reports an error for an
// invalid or incomplete escape sequence, or invalid UTF-8.
func Unquote(src mem.RO, extra string) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		if !validUTF8(src) {
			return nil, errors.New("invalid UTF-8")
		}
		return mem.Append(dec, src), nil
	}

	putRune := func(r rune) { dec, _ = codec.Append(codec.UTF8, dec, r) }
	for src.Len() != 0 {
		if !validUTF8(src.SliceTo(i)) {
			return nil, errors.New("invalid UTF-8")
		}
		dec = mem.Append(dec, src.SliceTo(i))

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(n)
		if r == 'u' {
			u, rest, err := unicodeEscape(src)
			if err != nil {
				return nil, err
			}
			putRune(u)
			src = rest
		} else if c, ok := Short(r); ok {
			putRune(c)
		} else if strings.ContainsRune(extra, r) {
			putRune(r)
		} else {
			return nil, fmt.Errorf("invalid %q after escape", r)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			if !validUTF8(src) {
				return nil, errors.New("invalid UTF-8")
			}
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

// unicodeEscape decodes the hex digits of a \u escape at the front of src,
// along with the following low surrogate escape if the first is a high
// surrogate.
func unicodeEscape(src mem.RO) (rune, mem.RO, error) {
	u, err := parseHex4(src)
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	switch {
	case codec.IsLowSurrogate(u):
		return 0, src, fmt.Errorf("unpaired surrogate \\u%04x", u)
	case !codec.IsHighSurrogate(u):
		return u, src, nil
	}
	if src.Len() < 2 || src.At(0) != '\\' || src.At(1) != 'u' {
		return 0, src, fmt.Errorf("unpaired surrogate \\u%04x", u)
	}
	lo, err := parseHex4(src.SliceFrom(2))
	if err != nil {
		return 0, src, err
	}
	r := codec.CombineSurrogates(u, lo)
	if r < 0 {
		return 0, src, fmt.Errorf("invalid surrogate pair \\u%04x\\u%04x", u, lo)
	}
	return r, src.SliceFrom(6), nil
}

func parseHex4(data mem.RO) (rune, error) {
	if data.Len() < 4 {
		return 0, errors.New("incomplete Unicode escape")
	}
	var v rune
	for i := 0; i < 4; i++ {
		d := HexValue(rune(data.At(i)))
		if d < 0 {
			return 0, fmt.Errorf("invalid hex digit %q", data.At(i))
		}
		v = v<<4 | d
	}
	return v, nil
}

// validUTF8 reports whether m consists entirely of valid UTF-8 sequences.
func validUTF8(m mem.RO) bool {
	for m.Len() != 0 {
		r, n := mem.DecodeRune(m)
		if r == utf8.RuneError && n <= 1 {
			return false
		}
		m = m.SliceFrom(n)
	}
	return true
}
