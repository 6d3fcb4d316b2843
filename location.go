// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstep

import "fmt"

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // character offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// advance returns the location following the character r at lc.
func (lc LineCol) advance(r rune) LineCol {
	if r == '\n' {
		return LineCol{Line: lc.Line + 1}
	}
	return LineCol{Line: lc.Line, Column: lc.Column + 1}
}

// SyntaxError is the concrete type of errors reported by the parser.
type SyntaxError struct {
	Location LineCol // where the offending character occurred
	Offset   int     // character offset of the offending character, 0-based
	Message  string
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}
