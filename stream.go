// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jstep

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/jstep/ast"
	"github.com/creachadair/jstep/codec"
)

// bufSize is the size of the buffers used by Decode and Encode.
const bufSize = 4096

// DecodeOptions control the behavior of Decode.
type DecodeOptions struct {
	// If true, comments are checked for syntax but not added to the tree.
	StripComments bool

	// If non-nil, the input is decoded with this encoding. Otherwise the
	// encoding is detected from a byte-order mark or the pattern of the
	// leading bytes, defaulting to UTF-8.
	Encoding *codec.Encoding
}

// Decode reads a complete document from r and returns its tree. A leading
// byte-order mark is consumed and does not appear in the tree. In case of a
// syntax error, the returned error has type [*SyntaxError].
func Decode(r io.Reader, opts DecodeOptions) (*ast.Tree, error) {
	t := ast.New()
	if err := DecodeInto(t, r, opts); err != nil {
		return nil, err
	}
	return t, nil
}

// DecodeString is shorthand for Decode on the contents of s.
func DecodeString(s string, opts DecodeOptions) (*ast.Tree, error) {
	return Decode(strings.NewReader(s), opts)
}

// DecodeInto reads a complete document from r and adds it under the root of
// t, which should have no value. On error, t may hold a partial document.
func DecodeInto(t *ast.Tree, r io.Reader, opts DecodeOptions) error {
	p := NewParser(t, opts.StripComments)
	defer p.End()

	var enc codec.Encoding
	detected := opts.Encoding != nil
	if detected {
		enc = *opts.Encoding
	}
	var buf [bufSize]byte
	var n int      // bytes unconsumed in buf
	var begun bool // a possible BOM has been checked for
	var eof bool
	for {
		if !eof && n < len(buf) {
			nr, err := r.Read(buf[n:])
			n += nr
			if errors.Is(err, io.EOF) {
				eof = true
			} else if err != nil {
				return err
			}
		}
		if !detected {
			if n < 3 && !eof {
				continue
			}
			var skip int
			enc, skip = codec.Detect(buf[:n])
			n = copy(buf[:], buf[skip:n])
			detected, begun = true, true
		}
		if !begun {
			if !codec.FullRune(enc, buf[:n]) && !eof {
				continue
			}
			if r, w := codec.Decode(enc, buf[:n]); w != 0 && r == codec.BOM {
				n = copy(buf[:], buf[w:n])
			}
			begun = true
		}

		used, st := p.Feed(enc, buf[:n])
		n = copy(buf[:], buf[used:n])
		switch st {
		case Error:
			return p.Err()
		case Complete:
			return nil // an explicit NUL ends the input
		}
		if eof {
			if n != 0 {
				return fmt.Errorf("truncated %v sequence at end of input", enc)
			}
			if p.Finish() != Complete {
				return p.Err()
			}
			return nil
		}
	}
}

// Encode writes the formatted text of the document in t to w in the given
// encoding.
func Encode(w io.Writer, t *ast.Tree, enc codec.Encoding, opts FormatOptions) error {
	return EncodeNode(w, t, t.Root(), enc, opts)
}

// EncodeNode writes the formatted text of the subtree of t rooted at n to w
// in the given encoding.
func EncodeNode(w io.Writer, t *ast.Tree, n ast.Node, enc codec.Encoding, opts FormatOptions) error {
	f := NewFormatter(t, n, opts)
	defer f.End()

	var buf [bufSize]byte
	for {
		nw, st := f.Next(enc, buf[:])
		if nw != 0 {
			if _, err := w.Write(buf[:nw]); err != nil {
				return err
			}
		}
		switch st {
		case Complete:
			return nil
		case Error:
			return f.Err()
		}
	}
}

// FormatToString returns the formatted text of the document in t.
func FormatToString(t *ast.Tree, opts FormatOptions) (string, error) {
	var sb strings.Builder
	f := NewFormatter(t, t.Root(), opts)
	defer f.End()
	for {
		r, st := f.Step()
		switch st {
		case Complete:
			return sb.String(), nil
		case Error:
			return "", f.Err()
		}
		sb.WriteRune(r)
	}
}
