// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an ordered element tree for JSON documents with
// comments.
//
// A Tree is an arena of nodes addressed by Node handles. Each node has a Kind,
// an optional name (key text, string or literal text, or comment text), a
// parent, a first child, and a next sibling. The children of a node form an
// ordered list linked through their next pointers.
//
// Not every placement is legal. The Root holds a single value; an Object holds
// Key members; an Array holds values; a Key holds a single value; String,
// Literal and Comment nodes hold nothing. Comments may be placed anywhere a
// container holds children, before or after its value or members.
package ast

import (
	"fmt"

	"github.com/creachadair/mds/stack"
)

// Kind is the type of a node in a Tree.
type Kind byte

// Constants defining the node kinds.
const (
	Invalid Kind = iota // an unused or freed node
	Root                // the top of a tree
	Key                 // an object member name, holding its value
	Object              // an object, holding keys
	Array               // an array, holding values
	String              // a string value
	Literal             // a literal value (number, true, false, null, ...)
	Comment             // a line or block comment
)

var kindStr = [...]string{
	Invalid: "invalid",
	Root:    "root",
	Key:     "key",
	Object:  "object",
	Array:   "array",
	String:  "string",
	Literal: "literal",
	Comment: "comment",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return kindStr[Invalid]
}

// IsValue reports whether k is the kind of a JSON value.
func (k Kind) IsValue() bool {
	return k == Object || k == Array || k == String || k == Literal
}

// IsScalar reports whether k is a String or Literal.
func (k Kind) IsScalar() bool { return k == String || k == Literal }

// canHold reports whether a node of kind p may have a child of kind c.
func canHold(p, c Kind) bool {
	switch p {
	case Root:
		return c != Root && c != Invalid
	case Object:
		return c == Key || c == Comment
	case Array, Key:
		return c.IsValue() || c == Comment
	}
	return false
}

// holdsOne reports whether a node of kind p holds at most one non-comment
// child.
func holdsOne(p Kind) bool { return p == Root || p == Key }

// A Node is a handle to a node of a Tree. Handles of freed nodes may be reused
// by later allocations.
type Node int32

// None is the handle of no node.
const None Node = -1

type node struct {
	kind   Kind
	name   Buffer
	parent Node
	child  Node
	next   Node
}

func (n *node) clear() {
	n.kind = Invalid
	n.name.Reset()
	n.parent, n.child, n.next = None, None, None
}

// Nodes are stored in fixed-size blocks so that pointers into the arena
// remain stable as it grows.
const blockBits = 8
const blockSize = 1 << blockBits

// A Tree is an arena of nodes rooted at a single Root node.
// A Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	blocks [][]node
	size   int                // number of node slots in use or on the free list
	live   int                // number of allocated nodes, including the root
	free   *stack.Stack[Node] // freed slots available for reuse
}

// New constructs a new empty tree consisting of a Root node.
func New() *Tree {
	t := &Tree{free: stack.New[Node]()}
	t.alloc(Root, None)
	return t
}

// Root returns the handle of the root node of t.
func (t *Tree) Root() Node { return 0 }

// Len reports the number of live nodes in t, including the root.
func (t *Tree) Len() int { return t.live }

func (t *Tree) get(n Node) *node {
	if n < 0 || int(n) >= t.size {
		return nil
	}
	p := &t.blocks[n>>blockBits][n&(blockSize-1)]
	if p.kind == Invalid {
		return nil
	}
	return p
}

// Valid reports whether n is the handle of a live node of t.
func (t *Tree) Valid(n Node) bool { return t.get(n) != nil }

func (t *Tree) alloc(kind Kind, parent Node) Node {
	var n Node
	if id, ok := t.free.Pop(); ok {
		n = id
	} else {
		if t.size%blockSize == 0 {
			t.blocks = append(t.blocks, make([]node, blockSize))
		}
		n = Node(t.size)
		t.size++
	}
	p := &t.blocks[n>>blockBits][n&(blockSize-1)]
	p.clear()
	p.kind = kind
	p.parent = parent
	t.live++
	return n
}

// Kind reports the kind of n, or Invalid if n is not a live node.
func (t *Tree) Kind(n Node) Kind {
	if p := t.get(n); p != nil {
		return p.kind
	}
	return Invalid
}

// Name returns the name buffer of n: the text of a key, string, literal, or
// comment. It returns nil if n is not a live node. The buffer remains valid
// until n is freed.
func (t *Tree) Name(n Node) *Buffer {
	if p := t.get(n); p != nil {
		return &p.name
	}
	return nil
}

// SetName replaces the name of n with a copy of text.
func (t *Tree) SetName(n Node, text []byte) bool {
	if p := t.get(n); p != nil && p.kind != Root {
		p.name.Set(text)
		return true
	}
	return false
}

// Parent returns the parent of n, or None if n is the root or not live.
func (t *Tree) Parent(n Node) Node {
	if p := t.get(n); p != nil {
		return p.parent
	}
	return None
}

// Child returns the first child of n, or None. If skipComments is true,
// comment children are skipped.
func (t *Tree) Child(n Node, skipComments bool) Node {
	p := t.get(n)
	if p == nil {
		return None
	}
	return t.skip(p.child, skipComments)
}

// Next returns the next sibling of n, or None. If skipComments is true,
// comment siblings are skipped.
func (t *Tree) Next(n Node, skipComments bool) Node {
	p := t.get(n)
	if p == nil {
		return None
	}
	return t.skip(p.next, skipComments)
}

func (t *Tree) skip(n Node, skipComments bool) Node {
	for n != None && skipComments {
		p := t.get(n)
		if p.kind != Comment {
			break
		}
		n = p.next
	}
	return n
}

// Value returns the first non-comment child of n, or None. For a Root or a
// Key, this is the single value it holds.
func (t *Tree) Value(n Node) Node { return t.Child(n, true) }

// Last returns the last child of n, including comments, or None.
func (t *Tree) Last(n Node) Node {
	c := t.Child(n, false)
	if c == None {
		return None
	}
	for {
		next := t.get(c).next
		if next == None {
			return c
		}
		c = next
	}
}

// AllocChild allocates a new node of the given kind as the last child of
// parent. It reports false without modifying t if the placement is illegal.
func (t *Tree) AllocChild(parent Node, kind Kind) (Node, bool) {
	p := t.get(parent)
	if p == nil || !t.canAdd(p, kind) {
		return None, false
	}
	if p.child == None {
		n := t.alloc(kind, parent)
		t.get(parent).child = n
		return n, true
	}
	return t.insertAfter(t.Last(parent), kind), true
}

// AllocSibling allocates a new node of the given kind as the next sibling of
// n, in the same parent. It reports false without modifying t if the
// placement is illegal.
func (t *Tree) AllocSibling(n Node, kind Kind) (Node, bool) {
	c := t.get(n)
	if c == nil || c.parent == None {
		return None, false
	}
	if !t.canAdd(t.get(c.parent), kind) {
		return None, false
	}
	return t.insertAfter(n, kind), true
}

func (t *Tree) canAdd(p *node, kind Kind) bool {
	if !canHold(p.kind, kind) {
		return false
	}
	if kind != Comment && holdsOne(p.kind) {
		return t.skip(p.child, true) == None
	}
	return true
}

func (t *Tree) insertAfter(prev Node, kind Kind) Node {
	n := t.alloc(kind, t.get(prev).parent)
	pp := t.get(prev)
	t.get(n).next = pp.next
	pp.next = n
	return n
}

// Add allocates a new node of the given kind as the last child of parent and
// returns its handle. It panics if the placement is illegal.
func (t *Tree) Add(parent Node, kind Kind) Node {
	n, ok := t.AllocChild(parent, kind)
	if !ok {
		panic(fmt.Sprintf("cannot add %v to %v", kind, t.Kind(parent)))
	}
	return n
}

// AddText is shorthand for Add followed by setting the name of the new node
// to text.
func (t *Tree) AddText(parent Node, kind Kind, text string) Node {
	n := t.Add(parent, kind)
	t.get(n).name.SetString(text)
	return n
}

// Retype changes the kind of scalar node n to kind, which must also be a
// scalar kind. It reports whether the change was made.
func (t *Tree) Retype(n Node, kind Kind) bool {
	p := t.get(n)
	if p == nil || !p.kind.IsScalar() || !kind.IsScalar() {
		return false
	}
	p.kind = kind
	return true
}

// Detach removes n from the children of its parent, leaving it (and its own
// children) allocated but unreachable from the root. It reports false if n is
// the root or not live.
func (t *Tree) Detach(n Node) bool {
	c := t.get(n)
	if c == nil || c.parent == None {
		return false
	}
	p := t.get(c.parent)
	if p.child == n {
		p.child = c.next
	} else {
		prev := p.child
		for prev != None && t.get(prev).next != n {
			prev = t.get(prev).next
		}
		if prev == None {
			return false
		}
		t.get(prev).next = c.next
	}
	c.parent, c.next = None, None
	return true
}

// Free releases n, all its descendants, and all its following siblings. If n
// is the root, its children are released and the root is left empty. Freeing
// a node that is not live has no effect.
//
// To release a single node that is still attached to a parent, Detach it
// first; otherwise its parent is left holding a stale handle. A freed handle
// may be reused by a later allocation, so a stale handle must not be freed
// again.
func (t *Tree) Free(n Node) {
	if t.get(n) == nil {
		return
	}
	work := []Node{n}
	for len(work) != 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		p := t.get(cur)
		if p == nil {
			continue
		}
		if p.child != None {
			work = append(work, p.child)
		}
		if cur == t.Root() {
			p.child = None
			p.name.Reset()
			continue
		}
		if p.next != None {
			work = append(work, p.next)
		}
		p.clear()
		t.free.Push(cur)
		t.live--
	}
}

// Equal reports whether the subtree of a in ta has the same shape and text as
// the subtree of b in tb, including comments.
func Equal(ta *Tree, a Node, tb *Tree, b Node) bool {
	type pair struct{ a, b Node }
	work := []pair{{a, b}}
	for len(work) != 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		na, nb := ta.get(p.a), tb.get(p.b)
		if na == nil || nb == nil {
			if na != nb {
				return false
			}
			continue
		}
		if na.kind != nb.kind || !na.name.Equal(nb.name.RO()) {
			return false
		}
		ca, cb := na.child, nb.child
		for ca != None && cb != None {
			work = append(work, pair{ca, cb})
			ca, cb = ta.get(ca).next, tb.get(cb).next
		}
		if ca != cb { // one list is longer than the other
			return false
		}
	}
	return true
}
