// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package jstep implements resumable, character-at-a-time parsing and
// formatting of JSON documents with comments.
//
// # Parsing
//
// A Parser consumes one code point per call to its Step method and builds
// an element tree (see package ast). Every step reports a Status: Incomplete
// while more input is needed, Complete once the document is finished, or
// Error. The end of input is signaled by the NUL code point:
//
//	t := ast.New()
//	p := jstep.NewParser(t, false)
//	for _, r := range input {
//	   if p.Step(r) == jstep.Error {
//	      log.Fatalf("Parse failed: %v", p.Err())
//	   }
//	}
//	if p.Finish() != jstep.Complete {
//	   log.Fatalf("Parse failed: %v", p.Err())
//	}
//
// The Feed method decodes raw bytes in a given encoding (see package codec)
// and reports how many bytes it consumed, so that a caller can refill its
// buffer with arbitrarily small pieces of input. The Decode function wraps
// this loop for an io.Reader, with detection of the input encoding.
//
// Literal values (numbers, true, false, null) are not interpreted: any run
// of letters, digits, and the characters "+-." is recorded verbatim.
//
// # Formatting
//
// A Formatter is the dual of a Parser. It walks a tree and produces one code
// point per call to its Step method, in one of three styles:
//
//	Style    | Output
//	-------- | ---------------------------------------------
//	Compress | {"k":[1,2]}
//	Space    | {"k": [1, 2]}
//	Indent   | one member or element per line, indented
//
// A CommentPolicy controls whether comments are omitted (CommentNone), each
// written as "//" lines (CommentLine), or merged into "/* */" blocks
// (CommentBlock). The Next method encodes as many whole characters as fit
// in an output buffer, and the Encode function wraps this for an io.Writer.
//
// # Paths
//
// Package path locates nodes of a tree with a compact textual address, and
// optionally creates the nodes it names:
//
//	n, err := path.Find(t, `/servers[/name:"a"]/port:8080`, true)
//
// Neither a Parser nor a Formatter keeps a call stack: each holds all its
// progress in its own fields, so either may be paused between any two
// characters and resumed later, provided the tree it refers to is not
// otherwise modified in the meantime.
package jstep
