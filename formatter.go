// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jstep

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creachadair/jstep/ast"
	"github.com/creachadair/jstep/codec"
	"github.com/creachadair/jstep/internal/escape"
)

// Style selects the layout of formatted output.
type Style byte

// Constants defining the output styles.
const (
	Compress Style = iota // no inserted whitespace
	Space                 // a single space after ":" and ","
	Indent                // one member or element per line, indented by depth
)

var styleStr = [...]string{Compress: "compress", Space: "space", Indent: "indent"}

func (s Style) String() string {
	if int(s) < len(styleStr) {
		return styleStr[s]
	}
	return fmt.Sprintf("Style(%d)", s)
}

// ParseStyle returns the style with the given name.
func ParseStyle(name string) (Style, error) {
	for i, s := range styleStr {
		if s == strings.ToLower(name) {
			return Style(i), nil
		}
	}
	return 0, fmt.Errorf("unknown style %q", name)
}

// CommentPolicy selects how comments are written by the formatter.
type CommentPolicy byte

// Constants defining the comment policies.
const (
	CommentNone  CommentPolicy = iota // comments are omitted
	CommentLine                       // comments are written as "//" lines
	CommentBlock                      // adjacent comments are merged into "/* */" blocks
)

var policyStr = [...]string{CommentNone: "none", CommentLine: "line", CommentBlock: "block"}

func (c CommentPolicy) String() string {
	if int(c) < len(policyStr) {
		return policyStr[c]
	}
	return fmt.Sprintf("CommentPolicy(%d)", c)
}

// ParseCommentPolicy returns the comment policy with the given name.
func ParseCommentPolicy(name string) (CommentPolicy, error) {
	for i, s := range policyStr {
		if s == strings.ToLower(name) {
			return CommentPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown comment policy %q", name)
}

// FormatOptions control the output of a Formatter.
type FormatOptions struct {
	Style      Style
	IndentSize int // spaces per nesting level, in Indent style
	Comments   CommentPolicy
	BOM        bool // begin the output with a byte-order mark
}

type fstate byte

const (
	fsBegin   fstate = iota // nothing written yet
	fsEnter                 // about to write the current node
	fsText                  // writing the text of the current node
	fsTextEnd               // after the text of the current node
	fsLeave                 // after the current node and its children
	fsDone                  // output is complete
	fsError                 // formatting failed
)

// A Formatter is a resumable state machine that walks an element tree and
// produces the formatted text of the document one code point at a time. It
// is the dual of a Parser.
//
// The formatter walks the tree through its parent and sibling links and keeps
// no stack, so a formatter may be paused between any two characters. The
// tree must not be modified while formatting is in progress.
type Formatter struct {
	tree  *ast.Tree
	opts  FormatOptions
	start ast.Node // the node being formatted
	skip  bool     // omit comments

	state  fstate
	node   ast.Node // the current node
	first  bool     // node is the first child written in its parent
	off    int      // byte offset of the next character of node's text
	prev   rune     // previous comment text character
	level  int      // nesting depth of node, for indentation
	needNL bool     // a line break is required before anything else

	q  []rune // pending output
	qi int    // next unread index of q

	held    rune // a character that did not fit in the output of Next
	hasHeld bool

	err error
}

// NewFormatter constructs a formatter that writes the subtree of t rooted at
// n, typically the root of t.
func NewFormatter(t *ast.Tree, n ast.Node, opts FormatOptions) *Formatter {
	f := new(Formatter)
	f.Begin(t, n, opts)
	return f
}

// Begin resets f to format the subtree of t rooted at n.
func (f *Formatter) Begin(t *ast.Tree, n ast.Node, opts FormatOptions) {
	*f = Formatter{
		tree:  t,
		opts:  opts,
		start: n,
		skip:  opts.Comments == CommentNone,
		state: fsBegin,
		node:  n,
		q:     f.q[:0],
	}
}

// End detaches f from its tree. Any further call reports an error.
func (f *Formatter) End() {
	f.tree = nil
	if f.state != fsError {
		f.state = fsError
		f.err = errors.New("formatter ended")
	}
	f.q, f.qi = f.q[:0], 0
}

// Err returns the error that caused f to report Error, or nil.
func (f *Formatter) Err() error { return f.err }

// Step returns the next code point of the output. It reports Incomplete
// along with each code point, then Complete (with no code point) once the
// whole document has been written.
func (f *Formatter) Step() (rune, Status) {
	for {
		if f.qi < len(f.q) {
			r := f.q[f.qi]
			f.qi++
			return r, Incomplete
		}
		f.q, f.qi = f.q[:0], 0
		switch f.state {
		case fsDone:
			return 0, Complete
		case fsError:
			return 0, Error
		}
		f.advance()
	}
}

// Next writes as many whole encoded characters of the output as fit in dst,
// starting at offset 0, and returns the number of bytes written. It reports
// Incomplete if output remains after filling dst.
func (f *Formatter) Next(e codec.Encoding, dst []byte) (int, Status) {
	var n int
	for {
		if !f.hasHeld {
			r, st := f.Step()
			if st != Incomplete {
				return n, st
			}
			f.held, f.hasHeld = r, true
		}
		w := codec.Len(e, f.held)
		if w == 0 {
			return n, f.fail("cannot encode %U as %v", f.held, e)
		} else if n+w > len(dst) {
			return n, Incomplete
		}
		codec.Append(e, dst[:n], f.held)
		n += w
		f.hasHeld = false
	}
}

// advance performs a single transition, queueing zero or more characters.
func (f *Formatter) advance() {
	switch f.state {
	case fsBegin:
		f.begin()
	case fsEnter:
		f.enter()
	case fsText:
		f.text()
	case fsTextEnd:
		f.textEnd()
	case fsLeave:
		f.leave()
	default:
		f.fail("invalid formatter state %d", f.state)
	}
}

func (f *Formatter) begin() {
	if f.opts.BOM {
		f.push(codec.BOM)
	}
	switch f.tree.Kind(f.start) {
	case ast.Invalid:
		f.fail("invalid start node %v", f.start)
		return
	case ast.Root:
		if f.tree.Value(f.start) == ast.None {
			f.fail("document has no value")
			return
		}
		f.node = f.tree.Child(f.start, f.skip)
	}
	f.first = true
	f.state = fsEnter
}

func (f *Formatter) enter() {
	if f.node != f.start {
		f.separate()
	}
	f.off, f.prev = 0, 0
	switch kind := f.tree.Kind(f.node); kind {
	case ast.Comment:
		if f.opts.Comments == CommentBlock {
			f.push('/', '*')
		} else {
			f.push('/', '/')
		}
		f.state = fsText

	case ast.Key:
		if pk := f.tree.Kind(f.tree.Parent(f.node)); pk != ast.Object {
			f.fail("key %q in %v", f.tree.Name(f.node).String(), pk)
			return
		}
		if f.tree.Value(f.node) == ast.None {
			f.fail("key %q has no value", f.tree.Name(f.node).String())
			return
		}
		f.push('"')
		f.state = fsText

	case ast.String:
		f.push('"')
		f.state = fsText

	case ast.Literal:
		if f.tree.Name(f.node).Len() == 0 {
			f.fail("empty literal")
			return
		}
		f.state = fsText

	case ast.Object, ast.Array:
		lb, rb := '{', '}'
		if kind == ast.Array {
			lb, rb = '[', ']'
		}
		f.push(lb)
		if c := f.tree.Child(f.node, f.skip); c != ast.None {
			f.level++
			f.node, f.first = c, true
		} else {
			f.push(rb)
			f.state = fsLeave
		}

	default:
		f.fail("cannot format %v", kind)
	}
}

// separate queues the whitespace that precedes the current node.
func (f *Formatter) separate() {
	pk := f.tree.Kind(f.tree.Parent(f.node))
	switch {
	case f.needNL:
		f.breakLine(0)
	case f.opts.Style == Indent && (pk == ast.Object || pk == ast.Array || (pk == ast.Root && !f.first)):
		f.breakLine(0)
	case !f.first && f.opts.Style != Compress:
		f.push(' ')
	}
}

// text queues the encoding of the next character of the current node.
func (f *Formatter) text() {
	name := f.tree.Name(f.node)
	r, n := name.RuneAt(f.off)
	if n == 0 {
		if f.off < name.Len() {
			f.fail("invalid text at offset %d", f.off)
		} else {
			f.state = fsTextEnd
		}
		return
	}
	f.off += n

	switch f.tree.Kind(f.node) {
	case ast.Key, ast.String:
		var tmp [escape.MaxRunes]rune
		f.push(escape.Append(tmp[:0], r)...)

	case ast.Literal:
		if !escape.IsLiteral(r) {
			f.fail("invalid character %q in literal", r)
			return
		}
		f.push(r)

	case ast.Comment:
		f.commentText(r)
	}
}

func (f *Formatter) commentText(r rune) {
	defer func() { f.prev = r }()
	if f.opts.Comments == CommentLine {
		switch r {
		case '\r':
			// dropped
		case '\n':
			f.breakLine(0)
			f.push('/', '/')
		default:
			f.push(r)
		}
		return
	}
	switch {
	case r == '\r':
		// dropped
	case r == '\n':
		f.breakLine(2)
	case r == '/' && f.prev == '*':
		f.push(' ', r) // keep "*/" from closing the comment
	default:
		f.push(r)
	}
}

func (f *Formatter) textEnd() {
	switch f.tree.Kind(f.node) {
	case ast.Key:
		f.push('"', ':')
		if f.opts.Style != Compress {
			f.push(' ')
		}
		f.node, f.first = f.tree.Child(f.node, f.skip), true
		f.state = fsEnter
		return

	case ast.String:
		f.push('"')

	case ast.Comment:
		if f.opts.Comments == CommentLine {
			f.needNL = true
			break
		}
		if next := f.tree.Next(f.node, false); f.node != f.start && f.tree.Kind(next) == ast.Comment {
			// Merge an adjacent comment into the same block.
			f.breakLine(2)
			f.node, f.off, f.prev = next, 0, 0
			f.state = fsText
			return
		}
		if f.prev == '*' {
			f.push(' ')
		}
		f.push('*', '/')
	}
	f.state = fsLeave
}

func (f *Formatter) leave() {
	if f.node == f.start {
		f.finish()
		return
	}
	parent := f.tree.Parent(f.node)
	pk := f.tree.Kind(parent)
	if f.tree.Kind(f.node) != ast.Comment && (pk == ast.Object || pk == ast.Array) &&
		f.tree.Next(f.node, true) != ast.None {
		if f.needNL {
			f.breakLine(0)
		}
		f.push(',')
	}
	if next := f.tree.Next(f.node, f.skip); next != ast.None {
		f.node, f.first = next, false
		f.state = fsEnter
		return
	}

	// No siblings remain; the parent is complete.
	f.node = parent
	switch pk {
	case ast.Root:
		f.finish()
	case ast.Key:
		// Stay in fsLeave for the key itself.
	case ast.Object, ast.Array:
		f.level--
		if f.opts.Style == Indent || f.needNL {
			f.breakLine(0)
		}
		if pk == ast.Object {
			f.push('}')
		} else {
			f.push(']')
		}
	default:
		f.fail("cannot format children of %v", pk)
	}
}

func (f *Formatter) finish() {
	if f.needNL {
		f.push('\n')
		f.needNL = false
	}
	f.state = fsDone
}

// breakLine queues a line break followed by indentation for the current
// nesting level plus extra spaces.
func (f *Formatter) breakLine(extra int) {
	f.push('\n')
	n := extra
	if f.opts.Style == Indent {
		n += f.level * f.opts.IndentSize
	}
	for i := 0; i < n; i++ {
		f.q = append(f.q, ' ')
	}
	f.needNL = false
}

func (f *Formatter) push(rs ...rune) { f.q = append(f.q, rs...) }

func (f *Formatter) fail(msg string, args ...any) Status {
	f.state = fsError
	f.err = fmt.Errorf("format: "+msg, args...)
	f.q, f.qi = f.q[:0], 0
	return Error
}
