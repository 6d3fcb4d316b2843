// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package path implements a compact textual address for locating and
// creating nodes in an element tree.
package path

import (
	"errors"
	"fmt"

	"github.com/creachadair/jstep/internal/escape"
	"go4.org/mem"
)

/*
Grammar:

  path  = { comp }
  comp  = "/"                       ; an object
  comp  = name                      ; an object key
  comp  = ":" value                 ; a terminal value under a key
  comp  = "[" path "]"              ; an array element matching path
  name  = WORD | QTEXT
 value  = WORD | QTEXT

  WORD  = { any character except unescaped / : [ ] }
  QTEXT = '"' { any character except unescaped " } '"'

Spaces around each component are ignored. Within a component, the escapes
\/ \: \[ \] \\ \" and \uXXXX (including surrogate pairs) denote the
corresponding characters. A value is a string if it is quoted, otherwise it
is a literal.
*/

// Errors reported by path operations. Errors returned by this package wrap
// one of these values.
var (
	ErrSyntax   = errors.New("invalid path")
	ErrNotFound = errors.New("path not found")
	ErrMismatch = errors.New("path does not match tree")
)

// A Path is a read-only view of the text of a path. Subpaths derived from a
// path share its underlying storage.
type Path struct{ ro mem.RO }

// New returns a path viewing s.
func New(s string) Path { return Path{mem.S(s)} }

// FromBytes returns a path viewing b. The caller must not modify b while the
// path is in use.
func FromBytes(b []byte) Path { return Path{mem.B(b)} }

// Len reports the length of p in bytes.
func (p Path) Len() int { return p.ro.Len() }

// String returns a copy of the text of p.
func (p Path) String() string { return p.ro.StringCopy() }

// Left returns the first n bytes of p.
func (p Path) Left(n int) Path { return Path{p.ro.SliceTo(n)} }

// Right returns the bytes of p from offset n onward.
func (p Path) Right(n int) Path { return Path{p.ro.SliceFrom(n)} }

// Middle returns the bytes of p from offset i up to but not including j.
func (p Path) Middle(i, j int) Path { return Path{p.ro.Slice(i, j)} }

// TrimSpace returns p without leading and trailing spaces.
func (p Path) TrimSpace() Path {
	i, j := 0, p.Len()
	for i < j && isSpace(p.ro.At(i)) {
		i++
	}
	for j > i && isSpace(p.ro.At(j-1)) {
		j--
	}
	return p.Middle(i, j)
}

// Kind identifies the type of a path component.
type Kind byte

// Constants defining the component kinds.
const (
	Invalid Kind = iota
	Object       // "/"
	Key          // name or "name"
	Literal      // :value
	String       // :"value"
	Array        // [path]
)

var kindStr = [...]string{
	Invalid: "invalid",
	Object:  "object",
	Key:     "key",
	Literal: "literal",
	String:  "string",
	Array:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return kindStr[Invalid]
}

// A Component is a single parsed component of a path.
type Component struct {
	Kind Kind

	// For Key, Literal and String components, the decoded text.
	// For Array components, the undecoded text of the element path.
	Text string
}

func (c Component) String() string {
	switch c.Kind {
	case Object:
		return "/"
	case Key:
		return quote(c.Text)
	case Literal:
		return ":" + c.Text
	case String:
		return ":" + quote(c.Text)
	case Array:
		return "[" + c.Text + "]"
	}
	return "?"
}

func quote(s string) string { return `"` + string(escape.Quote(mem.S(s))) + `"` }

// Next parses the first component of p, and returns it along with the rest
// of p following the component. If p is empty or blank, Next returns a
// component of kind Invalid and an empty path.
func (p Path) Next() (Component, Path, error) {
	p = p.TrimSpace()
	if p.Len() == 0 {
		return Component{}, p, nil
	}
	switch c := p.ro.At(0); c {
	case '/':
		return Component{Kind: Object}, p.Right(1), nil

	case '[':
		end, err := p.matchBracket()
		if err != nil {
			return Component{}, p, err
		}
		return Component{Kind: Array, Text: p.Middle(1, end).String()}, p.Right(end + 1), nil

	case ']':
		return Component{}, p, fmt.Errorf("%w: unexpected %q", ErrSyntax, c)

	case ':':
		v := p.Right(1).TrimSpace()
		text, rest, quoted, err := v.token()
		if err != nil {
			return Component{}, p, err
		}
		if rest.TrimSpace().Len() != 0 {
			return Component{}, p, fmt.Errorf("%w: value must be last, followed by %q", ErrSyntax, rest.String())
		}
		if quoted {
			return Component{Kind: String, Text: text}, rest, nil
		} else if text == "" {
			return Component{}, p, fmt.Errorf("%w: empty value", ErrSyntax)
		}
		for _, r := range text {
			if !escape.IsLiteral(r) {
				return Component{}, p, fmt.Errorf("%w: invalid character %q in literal", ErrSyntax, r)
			}
		}
		return Component{Kind: Literal, Text: text}, rest, nil
	}

	text, rest, _, err := p.token()
	if err != nil {
		return Component{}, p, err
	}
	return Component{Kind: Key, Text: text}, rest, nil
}

// Split parses all the components of p.
func (p Path) Split() ([]Component, error) {
	var out []Component
	for {
		c, rest, err := p.Next()
		if err != nil {
			return nil, err
		} else if c.Kind == Invalid {
			return out, nil
		}
		out = append(out, c)
		p = rest
	}
}

// token parses a quoted or bare word at the front of p, and returns its
// decoded text and the rest of p following it.
func (p Path) token() (text string, rest Path, quoted bool, _ error) {
	var raw Path
	if p.Len() != 0 && p.ro.At(0) == '"' {
		end := scan(p.Right(1), func(c byte) bool { return c == '"' })
		if end < 0 {
			return "", p, false, fmt.Errorf("%w: unterminated quotation", ErrSyntax)
		}
		raw, rest, quoted = p.Middle(1, end+1), p.Right(end+2), true
	} else {
		end := scan(p, isReserved)
		if end < 0 {
			end = p.Len()
		}
		raw, rest = p.Left(end).TrimSpace(), p.Right(end)
	}
	dec, err := escape.Unquote(raw.ro, `:[]`)
	if err != nil {
		return "", p, false, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return string(dec), rest, quoted, nil
}

// matchBracket returns the offset of the "]" matching the "[" at the front
// of p. Brackets inside quotations or escaped do not count.
func (p Path) matchBracket() (int, error) {
	depth, inQuote := 0, false
	for i := 0; i < p.Len(); i++ {
		switch c := p.ro.At(i); {
		case c == '\\':
			i++
		case c == '"':
			inQuote = !inQuote
		case inQuote:
			// skip
		case c == '[':
			depth++
		case c == ']':
			if depth--; depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: unterminated bracket", ErrSyntax)
}

// scan returns the offset of the first unescaped byte of p for which stop
// reports true, or -1.
func scan(p Path, stop func(byte) bool) int {
	for i := 0; i < p.Len(); i++ {
		c := p.ro.At(i)
		if c == '\\' {
			i++
		} else if stop(c) {
			return i
		}
	}
	return -1
}

func isReserved(c byte) bool { return c == '/' || c == ':' || c == '[' || c == ']' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
