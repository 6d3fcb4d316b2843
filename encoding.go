// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstep

import (
	"errors"
	"strings"

	"github.com/creachadair/jstep/internal/escape"
	"go4.org/mem"
)

// Quote returns src encoded as a JSON string, in quotation marks, escaped the
// same way the Formatter escapes string and key text.
func Quote(src string) string { return string(AppendQuote(nil, src)) }

// AppendQuote appends the quoted JSON string encoding of src to dst and
// returns the extended slice.
func AppendQuote(dst []byte, src string) []byte {
	dst = append(dst, '"')
	dst = append(dst, escape.Quote(mem.S(src))...)
	return append(dst, '"')
}

// Unquote decodes a JSON string in quotation marks. It reports an error for
// a missing quotation mark, an invalid or incomplete escape sequence, an
// unpaired surrogate escape, or invalid UTF-8.
func Unquote(src string) ([]byte, error) {
	body, ok := strings.CutPrefix(src, `"`)
	if ok {
		body, ok = strings.CutSuffix(body, `"`)
	}
	if !ok {
		return nil, errors.New("missing quotation marks")
	}
	return escape.Unquote(mem.S(body), "")
}
