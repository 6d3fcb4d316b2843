// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package codec_test

import (
	"testing"

	"github.com/creachadair/jstep/codec"
	"github.com/google/go-cmp/cmp"
)

var allEncodings = []codec.Encoding{codec.UTF8, codec.UTF16BE, codec.UTF16LE}

func TestDecode(t *testing.T) {
	tests := []struct {
		enc   codec.Encoding
		input []byte
		want  rune
		n     int
	}{
		{codec.UTF8, []byte("a"), 'a', 1},
		{codec.UTF8, []byte("éx"), 'é', 2},
		{codec.UTF8, []byte("€"), '€', 3},
		{codec.UTF8, []byte("\U0001F600"), 0x1F600, 4},
		{codec.UTF8, []byte{0xEF, 0xBF, 0xBD}, 0xFFFD, 3}, // real replacement rune

		// Invalid UTF-8.
		{codec.UTF8, nil, 0, 0},
		{codec.UTF8, []byte{0x80}, 0, 0},                   // stray continuation
		{codec.UTF8, []byte{0xC0, 0x80}, 0, 0},             // overlong NUL
		{codec.UTF8, []byte{0xE0, 0x80, 0xAF}, 0, 0},       // overlong
		{codec.UTF8, []byte{0xF0, 0x80, 0x80, 0xAF}, 0, 0}, // overlong
		{codec.UTF8, []byte{0xED, 0xA0, 0x80}, 0, 0},       // U+D800
		{codec.UTF8, []byte{0xED, 0xBF, 0xBF}, 0, 0},       // U+DFFF
		{codec.UTF8, []byte{0xF4, 0x90, 0x80, 0x80}, 0, 0}, // U+110000
		{codec.UTF8, []byte{0xE2, 0x82}, 0, 0},             // truncated

		{codec.UTF16BE, []byte{0x00, 0x41}, 'A', 2},
		{codec.UTF16LE, []byte{0x41, 0x00}, 'A', 2},
		{codec.UTF16BE, []byte{0xD8, 0x3D, 0xDE, 0x00}, 0x1F600, 4},
		{codec.UTF16LE, []byte{0x3D, 0xD8, 0x00, 0xDE}, 0x1F600, 4},

		// Invalid UTF-16.
		{codec.UTF16BE, []byte{0x00}, 0, 0},
		{codec.UTF16BE, []byte{0xDC, 0x00, 0x00, 0x41}, 0, 0}, // lone low
		{codec.UTF16BE, []byte{0xD8, 0x00, 0x00, 0x41}, 0, 0}, // high + non-low
		{codec.UTF16BE, []byte{0xD8, 0x00, 0xD8, 0x00}, 0, 0}, // high + high
		{codec.UTF16LE, []byte{0x00, 0xD8}, 0, 0},             // truncated pair
	}
	for _, tc := range tests {
		r, n := codec.Decode(tc.enc, tc.input)
		if r != tc.want || n != tc.n {
			t.Errorf("Decode(%v, % x): got (%U, %d), want (%U, %d)", tc.enc, tc.input, r, n, tc.want, tc.n)
		}
	}
}

func TestFullRune(t *testing.T) {
	tests := []struct {
		enc   codec.Encoding
		input []byte
		want  bool
	}{
		{codec.UTF8, nil, false},
		{codec.UTF8, []byte("a"), true},
		{codec.UTF8, []byte{0xE2}, false},
		{codec.UTF8, []byte{0xE2, 0x82}, false},
		{codec.UTF8, []byte{0xE2, 0x82, 0xAC}, true},
		{codec.UTF8, []byte{0xFF}, true}, // invalid, decodable as an error

		{codec.UTF16BE, []byte{0x00}, false},
		{codec.UTF16BE, []byte{0x00, 0x41}, true},
		{codec.UTF16BE, []byte{0xD8, 0x3D}, false},
		{codec.UTF16BE, []byte{0xD8, 0x3D, 0xDE}, false},
		{codec.UTF16BE, []byte{0xD8, 0x3D, 0xDE, 0x00}, true},
		{codec.UTF16LE, []byte{0x3D, 0xD8}, false},
		{codec.UTF16LE, []byte{0x00, 0xDC}, true}, // lone low is known-bad
	}
	for _, tc := range tests {
		if got := codec.FullRune(tc.enc, tc.input); got != tc.want {
			t.Errorf("FullRune(%v, % x): got %v, want %v", tc.enc, tc.input, got, tc.want)
		}
	}
}

func TestAppend(t *testing.T) {
	tests := []struct {
		enc  codec.Encoding
		r    rune
		want []byte
	}{
		{codec.UTF8, 'A', []byte("A")},
		{codec.UTF8, 0x1F600, []byte("\U0001F600")},
		{codec.UTF16BE, 'A', []byte{0x00, 0x41}},
		{codec.UTF16LE, 'A', []byte{0x41, 0x00}},
		{codec.UTF16BE, 0x10437, []byte{0xD8, 0x01, 0xDC, 0x37}},
		{codec.UTF16LE, 0x10437, []byte{0x01, 0xD8, 0x37, 0xDC}},

		// Invalid code points append nothing.
		{codec.UTF8, 0xD800, nil},
		{codec.UTF16BE, 0xDFFF, nil},
		{codec.UTF16LE, 0x110000, nil},
		{codec.UTF8, -1, nil},
	}
	for _, tc := range tests {
		got, n := codec.Append(tc.enc, nil, tc.r)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Append(%v, %U) (-want, +got):\n%s", tc.enc, tc.r, diff)
		}
		if n != len(tc.want) {
			t.Errorf("Append(%v, %U): got length %d, want %d", tc.enc, tc.r, n, len(tc.want))
		}
		if ln := codec.Len(tc.enc, tc.r); ln != n {
			t.Errorf("Len(%v, %U): got %d, want %d", tc.enc, tc.r, ln, n)
		}
	}
}

func TestSurrogates(t *testing.T) {
	t.Run("Supplementary", func(t *testing.T) {
		for r := rune(0x10000); r <= 0x10FFFF; r++ {
			hi, lo := codec.SplitSurrogates(r)
			if !codec.IsHighSurrogate(hi) || !codec.IsLowSurrogate(lo) {
				t.Fatalf("SplitSurrogates(%U): got (%X, %X), not a pair", r, hi, lo)
			}
			if got := codec.CombineSurrogates(hi, lo); got != r {
				t.Fatalf("CombineSurrogates(%X, %X): got %U, want %U", hi, lo, got, r)
			}
			for _, enc := range allEncodings {
				buf, n := codec.Append(enc, nil, r)
				if n != 4 {
					t.Fatalf("Append(%v, %U): got %d bytes, want 4", enc, r, n)
				}
				if got, m := codec.Decode(enc, buf); got != r || m != 4 {
					t.Fatalf("Decode(%v, % x): got (%U, %d), want (%U, 4)", enc, buf, got, m, r)
				}
			}
		}
	})
	t.Run("Rejected", func(t *testing.T) {
		for u := rune(0xD800); u <= 0xDFFF; u++ {
			// Hand-encode the surrogate since Append refuses to.
			u8 := []byte{0xE0 | byte(u>>12), 0x80 | byte(u>>6)&0x3F, 0x80 | byte(u)&0x3F}
			if _, n := codec.Decode(codec.UTF8, u8); n != 0 {
				t.Fatalf("Decode(UTF8, % x): got length %d, want 0", u8, n)
			}
			be := []byte{byte(u >> 8), byte(u), 0x00, 0x20}
			if _, n := codec.Decode(codec.UTF16BE, be); n != 0 {
				t.Fatalf("Decode(UTF16BE, % x): got length %d, want 0", be, n)
			}
			le := []byte{byte(u), byte(u >> 8), 0x20, 0x00}
			if _, n := codec.Decode(codec.UTF16LE, le); n != 0 {
				t.Fatalf("Decode(UTF16LE, % x): got length %d, want 0", le, n)
			}
			if codec.Valid(u) {
				t.Fatalf("Valid(%U): got true, want false", u)
			}
		}
	})
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input []byte
		enc   codec.Encoding
		skip  int
	}{
		{nil, codec.UTF8, 0},
		{[]byte("{}"), codec.UTF8, 0},
		{[]byte{0xEF, 0xBB, 0xBF, '{'}, codec.UTF8, 3},
		{[]byte{0xFE, 0xFF, 0x00, '{'}, codec.UTF16BE, 2},
		{[]byte{0xFF, 0xFE, '{', 0x00}, codec.UTF16LE, 2},
		{[]byte{0x00, '{', 0x00, '}'}, codec.UTF16BE, 0},
		{[]byte{'{', 0x00, '}', 0x00}, codec.UTF16LE, 0},
		{[]byte{0xEF, 0xBB}, codec.UTF8, 0}, // short BOM prefix
	}
	for _, tc := range tests {
		enc, skip := codec.Detect(tc.input)
		if enc != tc.enc || skip != tc.skip {
			t.Errorf("Detect(% x): got (%v, %d), want (%v, %d)", tc.input, enc, skip, tc.enc, tc.skip)
		}
	}
}

func TestBOM(t *testing.T) {
	for _, enc := range allEncodings {
		bom := codec.AppendBOM(enc, nil)
		got, skip := codec.Detect(append(bom, make([]byte, 4)...))
		if got != enc || skip != len(bom) {
			t.Errorf("Detect(BOM %v): got (%v, %d), want (%v, %d)", enc, got, skip, enc, len(bom))
		}
	}
}

func TestParseEncoding(t *testing.T) {
	for _, tc := range []struct {
		name string
		want codec.Encoding
		fail bool
	}{
		{"utf8", codec.UTF8, false},
		{"UTF-8", codec.UTF8, false},
		{"utf-16be", codec.UTF16BE, false},
		{"UTF16LE", codec.UTF16LE, false},
		{"latin1", codec.UTF8, true},
	} {
		got, err := codec.ParseEncoding(tc.name)
		if (err != nil) != tc.fail {
			t.Errorf("ParseEncoding(%q): got error %v, want fail=%v", tc.name, err, tc.fail)
		} else if got != tc.want {
			t.Errorf("ParseEncoding(%q): got %v, want %v", tc.name, got, tc.want)
		}
		if err == nil && got.String() != tc.want.String() {
			t.Errorf("String: got %q, want %q", got.String(), tc.want.String())
		}
	}
}
