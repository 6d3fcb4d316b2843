// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jstep

import (
	"fmt"

	"github.com/creachadair/jstep/ast"
	"github.com/creachadair/jstep/codec"
	"github.com/creachadair/jstep/internal/escape"
)

// Status is the result of a single step of a Parser or Formatter.
type Status byte

// Constants defining the Status values.
const (
	Incomplete Status = iota // more input or output remains
	Complete                 // the document is finished
	Error                    // the operation failed; the state is terminal
)

var statusStr = [...]string{
	Incomplete: "incomplete",
	Complete:   "complete",
	Error:      "error",
}

func (s Status) String() string {
	if int(s) < len(statusStr) {
		return statusStr[s]
	}
	return fmt.Sprintf("Status(%d)", s)
}

// pstate is the state of the parser automaton.
type pstate byte

const (
	psValue        pstate = iota // expecting a value
	psKeyStart                   // expecting an object key or close brace
	psKey                        // inside the text of a key
	psColon                      // after a key, expecting ":"
	psString                     // inside the text of a string value
	psEscape                     // after "\" in a key or string
	psHex                        // inside the digits of a \u escape
	psLiteral                    // inside a literal value
	psEnd                        // after a complete value
	psSlash                      // after "/", expecting "/" or "*"
	psLineComment                // inside a line comment
	psBlockComment               // inside a block comment
	psBlockStar                  // inside a block comment, after "*"
	psDone                       // the document is complete
	psError                      // the parse failed
)

// A Parser is a resumable state machine that consumes one code point at a
// time and builds the element tree for a single JSON document with comments.
//
// The parser holds all its progress in the Parser value itself, so input may
// be fed in arbitrarily small pieces, and the parser may be paused between
// any two characters. Feeding the NUL code point signals the end of input.
// The parser keeps a handle into its tree between calls; the tree must not be
// modified by anything else while a parse is in progress.
type Parser struct {
	tree  *ast.Tree
	strip bool // parse comments but do not record them

	state pstate
	ret   pstate   // state to resume after an escape or comment
	top   ast.Node // the container receiving new nodes
	cur   ast.Node // the last child of top, or top itself when it has none
	text  ast.Node // the node receiving text, or None
	empty bool     // top has no members or values yet

	hex  rune // accumulated \u escape digits
	nhex int  // number of \u escape digits seen
	high rune // pending high surrogate from a \u escape, or 0

	pos LineCol // location of the next character
	off int     // offset of the next character
	err error
}

// NewParser constructs a parser that builds a document under the root of t.
// The root of t should have no value. If stripComments is true, comments are
// checked for syntax but not added to the tree.
func NewParser(t *ast.Tree, stripComments bool) *Parser {
	p := new(Parser)
	p.Begin(t, stripComments)
	return p
}

// Begin resets p to parse a new document under the root of t.
func (p *Parser) Begin(t *ast.Tree, stripComments bool) {
	root := t.Root()
	*p = Parser{
		tree:  t,
		strip: stripComments,
		state: psValue,
		top:   root,
		cur:   root,
		text:  ast.None,
		pos:   LineCol{Line: 1},
	}
	if last := t.Last(root); last != ast.None {
		p.cur = last
	}
}

// End detaches p from its tree. Any further input is an error.
func (p *Parser) End() {
	p.tree = nil
	if p.state != psError {
		p.state = psError
		p.err = &SyntaxError{Location: p.pos, Offset: p.off, Message: "parser ended"}
	}
}

// Err returns the error that caused p to report Error, or nil.
func (p *Parser) Err() error { return p.err }

// Status reports the current status of p without consuming input.
func (p *Parser) Status() Status {
	switch p.state {
	case psDone:
		return Complete
	case psError:
		return Error
	}
	return Incomplete
}

// Finish signals the end of input to p, and reports whether the document is
// complete. It is equivalent to Step(0).
func (p *Parser) Finish() Status { return p.Step(0) }

// Feed decodes code points from src in encoding e and feeds them to p until
// src is exhausted, the document is complete, or an error occurs. It returns
// the number of bytes consumed. Bytes at the end of src that do not form a
// complete code point are not consumed; the caller should present them again
// with more input.
func (p *Parser) Feed(e codec.Encoding, src []byte) (int, Status) {
	off, st := 0, p.Status()
	for off < len(src) && st == Incomplete {
		if !codec.FullRune(e, src[off:]) {
			break
		}
		r, n := codec.Decode(e, src[off:])
		if n == 0 {
			return off, p.fail("invalid %v sequence", e)
		}
		off += n
		st = p.Step(r)
	}
	return off, st
}

// Step feeds a single code point to p and reports the resulting status.
// The NUL code point marks the end of input.
func (p *Parser) Step(r rune) Status {
	switch p.state {
	case psError:
		return Error
	case psDone:
		if r == 0 {
			return Complete
		}
		return p.fail("unexpected %q after end of input", r)
	}
	if !codec.Valid(r) {
		return p.fail("invalid code point %U", r)
	}
	st := p.step(r)
	if st != Error {
		p.pos = p.pos.advance(r)
		p.off++
	}
	return st
}

func (p *Parser) step(r rune) Status {
	switch p.state {
	case psValue:
		return p.stepValue(r)
	case psKeyStart:
		return p.stepKeyStart(r)
	case psKey, psString:
		return p.stepText(r)
	case psColon:
		return p.stepColon(r)
	case psEscape:
		return p.stepEscape(r)
	case psHex:
		return p.stepHex(r)
	case psLiteral:
		if escape.IsLiteral(r) {
			return p.appendText(r)
		}
		p.text = ast.None
		p.state = psEnd
		return p.step(r)
	case psEnd:
		return p.stepEnd(r)
	case psSlash:
		return p.stepSlash(r)
	case psLineComment:
		return p.stepLineComment(r)
	case psBlockComment, psBlockStar:
		return p.stepBlockComment(r)
	}
	return p.fail("invalid parser state %d", p.state)
}

// stepValue handles the state where a value is expected: at the start of
// input, after ":" in an object, and after "[" or "," in an array.
func (p *Parser) stepValue(r rune) Status {
	switch {
	case isSpace(r):
		return Incomplete
	case r == '/':
		return p.beginComment()
	case r == '{':
		p.state = psKeyStart
		return p.open(ast.Object)
	case r == '[':
		return p.open(ast.Array)
	case r == '"':
		p.state = psString
		return p.beginText(ast.String)
	case r == ']' && p.empty && p.tree.Kind(p.top) == ast.Array:
		return p.close()
	case escape.IsLiteral(r):
		p.state = psLiteral
		if st := p.beginText(ast.Literal); st == Error {
			return st
		}
		return p.appendText(r)
	case r == 0:
		return p.fail("unexpected end of input, expecting a value")
	}
	return p.fail("unexpected %q, expecting a value", r)
}

// stepKeyStart handles the state after "{" or after "," in an object.
func (p *Parser) stepKeyStart(r rune) Status {
	switch {
	case isSpace(r):
		return Incomplete
	case r == '/':
		return p.beginComment()
	case r == '"':
		p.state = psKey
		return p.beginText(ast.Key)
	case r == '}' && p.empty:
		return p.close()
	case r == 0:
		return p.fail("unexpected end of input, expecting an object key")
	}
	return p.fail("unexpected %q, expecting an object key", r)
}

// stepText handles characters inside a key or string value.
func (p *Parser) stepText(r rune) Status {
	if p.high != 0 && r != '\\' {
		return p.fail("unpaired surrogate escape")
	}
	switch r {
	case '"':
		if p.state == psKey {
			// Subsequent comments and the value belong to the key.
			p.top = p.cur
			p.state = psColon
		} else {
			p.state = psEnd
		}
		p.text = ast.None
		return Incomplete
	case '\\':
		p.ret = p.state
		p.state = psEscape
		return Incomplete
	case 0:
		return p.fail("unexpected end of input in string")
	}
	// N.B. Unescaped control characters are accepted here.
	return p.appendText(r)
}

func (p *Parser) stepEscape(r rune) Status {
	if p.high != 0 && r != 'u' {
		return p.fail("unpaired surrogate escape")
	}
	if r == 'u' {
		p.hex, p.nhex = 0, 0
		p.state = psHex
		return Incomplete
	}
	c, ok := escape.Short(r)
	if !ok {
		return p.fail("invalid %q after escape", r)
	}
	p.state = p.ret
	return p.appendText(c)
}

func (p *Parser) stepHex(r rune) Status {
	d := escape.HexValue(r)
	if d < 0 {
		return p.fail("invalid hex digit %q in Unicode escape", r)
	}
	p.hex = p.hex<<4 | d
	if p.nhex++; p.nhex < 4 {
		return Incomplete
	}
	p.state = p.ret

	u := p.hex
	switch {
	case p.high != 0:
		c := codec.CombineSurrogates(p.high, u)
		if c < 0 {
			return p.fail("invalid surrogate pair \\u%04x\\u%04x", p.high, u)
		}
		p.high = 0
		return p.appendText(c)
	case codec.IsHighSurrogate(u):
		p.high = u
		return Incomplete
	case codec.IsLowSurrogate(u):
		return p.fail("unpaired surrogate escape \\u%04x", u)
	}
	return p.appendText(u)
}

func (p *Parser) stepColon(r rune) Status {
	switch {
	case isSpace(r):
		return Incomplete
	case r == '/':
		return p.beginComment()
	case r == ':':
		p.empty = false
		p.state = psValue
		return Incomplete
	case r == 0:
		return p.fail("unexpected end of input, expecting \":\"")
	}
	return p.fail("unexpected %q, expecting \":\"", r)
}

// stepEnd handles the state after a complete value. What may follow depends
// on the container holding the value.
func (p *Parser) stepEnd(r rune) Status {
	if isSpace(r) {
		return Incomplete
	} else if r == '/' {
		return p.beginComment()
	}
	switch p.tree.Kind(p.top) {
	case ast.Key:
		switch r {
		case ',':
			p.cur = p.top
			p.top = p.tree.Parent(p.top)
			p.state = psKeyStart
			return Incomplete
		case '}':
			p.cur = p.top
			p.top = p.tree.Parent(p.top)
			return p.close()
		}
		return p.unexpected(r, `"," or "}"`)

	case ast.Array:
		switch r {
		case ',':
			p.state = psValue
			return Incomplete
		case ']':
			return p.close()
		}
		return p.unexpected(r, `"," or "]"`)

	case ast.Root:
		if r == 0 {
			p.state = psDone
			return Complete
		}
		return p.unexpected(r, "end of input")
	}
	return p.fail("invalid container %v", p.tree.Kind(p.top))
}

func (p *Parser) stepSlash(r rune) Status {
	switch r {
	case '/':
		p.state = psLineComment
	case '*':
		p.state = psBlockComment
	default:
		return p.unexpected(r, `"/" or "*"`)
	}
	if p.strip {
		p.text = ast.None
		return Incomplete
	}
	n, ok := p.link(ast.Comment)
	if !ok {
		return p.fail("cannot add a comment to %v", p.tree.Kind(p.top))
	}
	p.cur, p.text = n, n
	return Incomplete
}

func (p *Parser) stepLineComment(r rune) Status {
	if r != '\n' && r != 0 {
		return p.appendText(r)
	}
	if p.text != ast.None {
		if b := p.tree.Name(p.text); b.Len() != 0 && b.Bytes()[b.Len()-1] == '\r' {
			b.Truncate(b.Len() - 1)
		}
	}
	p.text = ast.None
	p.state = p.ret
	if r == 0 {
		return p.step(r) // the end of input also ends the comment
	}
	return Incomplete
}

func (p *Parser) stepBlockComment(r rune) Status {
	if r == 0 {
		return p.fail("unexpected end of input in block comment")
	}
	if p.state == psBlockStar {
		if r == '/' {
			p.text = ast.None
			p.state = p.ret
			return Incomplete
		} else if st := p.appendText('*'); st == Error {
			return st
		}
	}
	if r == '*' {
		p.state = psBlockStar
		return Incomplete
	}
	p.state = psBlockComment
	return p.appendText(r)
}

// beginComment records the state to resume after a comment.
func (p *Parser) beginComment() Status {
	p.ret = p.state
	p.state = psSlash
	return Incomplete
}

// link allocates a new node of the given kind after the current position.
func (p *Parser) link(kind ast.Kind) (ast.Node, bool) {
	if p.cur == p.top {
		return p.tree.AllocChild(p.top, kind)
	}
	return p.tree.AllocSibling(p.cur, kind)
}

// open allocates a new object or array and makes it the current container.
func (p *Parser) open(kind ast.Kind) Status {
	n, ok := p.link(kind)
	if !ok {
		return p.fail("cannot add %v to %v", kind, p.tree.Kind(p.top))
	}
	p.top, p.cur, p.empty = n, n, true
	if kind == ast.Array {
		p.state = psValue
	}
	return Incomplete
}

// close ends the current container, which becomes the current value.
func (p *Parser) close() Status {
	p.cur = p.top
	p.top = p.tree.Parent(p.top)
	p.empty = false
	p.state = psEnd
	return Incomplete
}

// beginText allocates a new node of the given kind to receive text.
func (p *Parser) beginText(kind ast.Kind) Status {
	n, ok := p.link(kind)
	if !ok {
		return p.fail("cannot add %v to %v", kind, p.tree.Kind(p.top))
	}
	p.cur, p.text, p.empty = n, n, false
	return Incomplete
}

func (p *Parser) appendText(r rune) Status {
	if p.text == ast.None {
		return Incomplete // a stripped comment
	}
	if !p.tree.Name(p.text).AppendRune(r) {
		return p.fail("invalid code point %U", r)
	}
	return Incomplete
}

func (p *Parser) unexpected(r rune, want string) Status {
	if r == 0 {
		return p.fail("unexpected end of input, expecting %s", want)
	}
	return p.fail("unexpected %q, expecting %s", r, want)
}

func (p *Parser) fail(msg string, args ...any) Status {
	p.state = psError
	p.err = &SyntaxError{
		Location: p.pos,
		Offset:   p.off,
		Message:  fmt.Sprintf(msg, args...),
	}
	return Error
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\r' || r == '\n' || r == '\t'
}
