// Package testutil defines support code for unit tests.
package testutil

import (
	"strconv"
	"strings"

	"github.com/creachadair/jstep/ast"
)

// Shape renders the subtree of t rooted at n as a compact string showing the
// kind and text of each node, for comparison in tests. For example:
//
//	{"a": [1, "b"]} // c
//
// renders as
//
//	(root (object (key "a" (array 1 "b"))) (comment " c"))
//
// Literals are shown bare, other text is shown Go-quoted.
func Shape(t *ast.Tree, n ast.Node) string {
	var sb strings.Builder
	render(&sb, t, n)
	return sb.String()
}

func render(sb *strings.Builder, t *ast.Tree, n ast.Node) {
	kind := t.Kind(n)
	if kind == ast.Literal {
		sb.WriteString(t.Name(n).String())
		return
	} else if kind == ast.String {
		sb.WriteString(strconv.Quote(t.Name(n).String()))
		return
	}
	sb.WriteString("(")
	sb.WriteString(kind.String())
	if kind == ast.Key || kind == ast.Comment {
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(t.Name(n).String()))
	}
	for c := t.Child(n, false); c != ast.None; c = t.Next(c, false) {
		sb.WriteString(" ")
		render(sb, t, c)
	}
	sb.WriteString(")")
}

// MustParse builds a tree from a compact shape description, the inverse of
// Shape for the kinds it renders. It is intended for building fixtures and
// panics on malformed input.
func MustParse(s string) *ast.Tree {
	t := ast.New()
	p := &shapeParser{src: s}
	p.expect("(root")
	p.children(t, t.Root())
	if p.skipSpace(); p.pos != len(p.src) {
		panic("testutil: trailing input in shape: " + p.src[p.pos:])
	}
	return t
}

type shapeParser struct {
	src string
	pos int
}

func (p *shapeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *shapeParser) expect(tok string) {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		panic("testutil: expected " + tok + " at " + strconv.Itoa(p.pos))
	}
	p.pos += len(tok)
}

func (p *shapeParser) quoted() string {
	p.skipSpace()
	q, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil {
		panic("testutil: bad quoted text at " + strconv.Itoa(p.pos))
	}
	p.pos += len(q)
	s, _ := strconv.Unquote(q)
	return s
}

// children parses nodes up to and including a closing parenthesis, adding
// them under parent.
func (p *shapeParser) children(t *ast.Tree, parent ast.Node) {
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			panic("testutil: unterminated shape")
		}
		switch c := p.src[p.pos]; {
		case c == ')':
			p.pos++
			return
		case c == '"':
			t.AddText(parent, ast.String, p.quoted())
		case c == '(':
			p.pos++
			end := strings.IndexAny(p.src[p.pos:], " )")
			if end < 0 {
				panic("testutil: unterminated shape")
			}
			word := p.src[p.pos : p.pos+end]
			p.pos += end
			switch word {
			case "object":
				p.children(t, t.Add(parent, ast.Object))
			case "array":
				p.children(t, t.Add(parent, ast.Array))
			case "key":
				p.children(t, t.AddText(parent, ast.Key, p.quoted()))
			case "comment":
				t.AddText(parent, ast.Comment, p.quoted())
				p.expect(")")
			default:
				panic("testutil: unknown node kind " + word)
			}
		default:
			end := strings.IndexAny(p.src[p.pos:], " )")
			if end < 0 {
				end = len(p.src) - p.pos
			}
			t.AddText(parent, ast.Literal, p.src[p.pos:p.pos+end])
			p.pos += end
		}
	}
}
