// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package path

import (
	"fmt"

	"github.com/creachadair/jstep/ast"
	"go4.org/mem"
)

// Find resolves the path s starting from the root of t, and returns the node
// it addresses. If create is true, missing objects, arrays, keys, elements
// and values along the path are added to t, and an existing scalar value
// that differs from a terminal value of the path is replaced.
//
// A path ending in a key addresses the key node. A path ending in a value
// addresses the value node. A path ending in an array element addresses the
// element.
func Find(t *ast.Tree, s string, create bool) (ast.Node, error) {
	return FindFrom(t, t.Root(), New(s), create)
}

// FindBytes is as Find, but for a path given as bytes.
func FindBytes(t *ast.Tree, b []byte, create bool) (ast.Node, error) {
	return FindFrom(t, t.Root(), FromBytes(b), create)
}

// FindFrom resolves p starting from node n of t. If n is the root or a key,
// the path applies to its value; otherwise it applies to n itself.
//
// On failure, FindFrom returns ast.None and an error wrapping one of
// ErrSyntax, ErrNotFound or ErrMismatch. Nodes created before a failure are
// not removed, except for a partly-built array element.
func FindFrom(t *ast.Tree, n ast.Node, p Path, create bool) (ast.Node, error) {
	if !t.Valid(n) {
		return ast.None, fmt.Errorf("%w: invalid start node", ErrNotFound)
	}
	comps, err := p.Split()
	if err != nil {
		return ast.None, err
	}
	r := resolver{tree: t, create: create}
	at, err := r.resolve(n, comps)
	if err != nil {
		return ast.None, fmt.Errorf("path %q: %w", p.String(), err)
	}
	return at, nil
}

type resolver struct {
	tree   *ast.Tree
	create bool
}

func isSlot(k ast.Kind) bool { return k == ast.Root || k == ast.Key }

// resolve applies comps in order starting from at.
func (r resolver) resolve(at ast.Node, comps []Component) (ast.Node, error) {
	var err error
	for i, c := range comps {
		switch c.Kind {
		case Object:
			at, err = r.container(at, ast.Object)
		case Key:
			at, err = r.key(at, c.Text)
		case Literal:
			at, err = r.value(at, ast.Literal, c.Text)
		case String:
			at, err = r.value(at, ast.String, c.Text)
		case Array:
			at, err = r.element(at, c.Text)
		default:
			err = fmt.Errorf("%w: component %d has kind %v", ErrSyntax, i+1, c.Kind)
		}
		if err != nil {
			return ast.None, fmt.Errorf("at %v: %w", c, err)
		}
	}
	return at, nil
}

// container moves from at to a container of the given kind. If at is a slot,
// the container is its value, added if necessary. Otherwise at must already
// be a container of that kind.
func (r resolver) container(at ast.Node, kind ast.Kind) (ast.Node, error) {
	t := r.tree
	if k := t.Kind(at); !isSlot(k) {
		if k != kind {
			return ast.None, fmt.Errorf("%w: have %v, want %v", ErrMismatch, k, kind)
		}
		return at, nil
	}
	v := t.Value(at)
	if v == ast.None {
		if !r.create {
			return ast.None, fmt.Errorf("%w: no %v", ErrNotFound, kind)
		}
		return t.Add(at, kind), nil
	}
	if k := t.Kind(v); k != kind {
		return ast.None, fmt.Errorf("%w: have %v, want %v", ErrMismatch, k, kind)
	}
	return v, nil
}

// key moves from at to the key named text in the object at at. A key with no
// preceding object component implies one.
func (r resolver) key(at ast.Node, text string) (ast.Node, error) {
	t := r.tree
	obj, err := r.container(at, ast.Object)
	if err != nil {
		return ast.None, err
	}
	want := mem.S(text)
	for k := t.Child(obj, true); k != ast.None; k = t.Next(k, true) {
		if t.Name(k).Equal(want) {
			return k, nil
		}
	}
	if !r.create {
		return ast.None, fmt.Errorf("%w: no key %q", ErrNotFound, text)
	}
	return t.AddText(obj, ast.Key, text), nil
}

// value moves from at to a scalar of the given kind and text. If at is a
// slot, the scalar is its value; otherwise at must be the scalar.
func (r resolver) value(at ast.Node, kind ast.Kind, text string) (ast.Node, error) {
	t := r.tree
	want := mem.S(text)
	if k := t.Kind(at); !isSlot(k) {
		if k != kind || !t.Name(at).Equal(want) {
			return ast.None, fmt.Errorf("%w: value differs", ErrNotFound)
		}
		return at, nil
	}
	v := t.Value(at)
	switch {
	case v == ast.None:
		if !r.create {
			return ast.None, fmt.Errorf("%w: no value", ErrNotFound)
		}
		return t.AddText(at, kind, text), nil
	case t.Kind(v) == kind && t.Name(v).Equal(want):
		return v, nil
	case !t.Kind(v).IsScalar():
		return ast.None, fmt.Errorf("%w: have %v, want %v", ErrMismatch, t.Kind(v), kind)
	case !r.create:
		return ast.None, fmt.Errorf("%w: value differs", ErrNotFound)
	}
	t.Name(v).SetString(text)
	t.Retype(v, kind)
	return v, nil
}

// element moves from at to the first element of an array matching the
// subpath sub. An empty subpath addresses the array itself.
func (r resolver) element(at ast.Node, sub string) (ast.Node, error) {
	t := r.tree
	arr, err := r.container(at, ast.Array)
	if err != nil {
		return ast.None, err
	}
	comps, err := New(sub).Split()
	if err != nil {
		return ast.None, err
	} else if len(comps) == 0 {
		return arr, nil
	}

	// Matching never modifies the tree.
	match := resolver{tree: t}
	for e := t.Child(arr, true); e != ast.None; e = t.Next(e, true) {
		if _, err := match.resolve(e, comps); err == nil {
			return e, nil
		}
	}
	if !r.create {
		return ast.None, fmt.Errorf("%w: no matching element", ErrNotFound)
	}

	// Build a new element from the subpath, and discard it if the subpath
	// cannot be satisfied.
	var e ast.Node
	switch c := comps[0]; c.Kind {
	case Object, Key:
		e = t.Add(arr, ast.Object)
	case Array:
		e = t.Add(arr, ast.Array)
	case Literal:
		e = t.AddText(arr, ast.Literal, c.Text)
	case String:
		e = t.AddText(arr, ast.String, c.Text)
	default:
		return ast.None, fmt.Errorf("%w: invalid element path", ErrSyntax)
	}
	if _, err := r.resolve(e, comps); err != nil {
		t.Detach(e)
		t.Free(e)
		return ast.None, err
	}
	return e, nil
}
