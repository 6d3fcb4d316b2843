// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package path_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jstep"
	"github.com/creachadair/jstep/ast"
	"github.com/creachadair/jstep/internal/testutil"
	"github.com/creachadair/jstep/path"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/go-cmp/cmp"
)

func TestSplit(t *testing.T) {
	obj := path.Component{Kind: path.Object}
	key := func(s string) path.Component { return path.Component{Kind: path.Key, Text: s} }
	lit := func(s string) path.Component { return path.Component{Kind: path.Literal, Text: s} }
	str := func(s string) path.Component { return path.Component{Kind: path.String, Text: s} }
	arr := func(s string) path.Component { return path.Component{Kind: path.Array, Text: s} }

	tests := []struct {
		input string
		want  []path.Component
	}{
		{"", nil},
		{"   ", nil},
		{"/", []path.Component{obj}},
		{"/a/b:1", []path.Component{obj, key("a"), obj, key("b"), lit("1")}},
		{`a / "b c" : "v"`, []path.Component{key("a"), obj, key("b c"), str("v")}},
		{`a@@/b@@:c@@[d@@]`, []path.Component{key("a/b:c[d]")}},
		{`"q[]:/"`, []path.Component{key("q[]:/")}},
		{`"say @@"hi@@""`, []path.Component{key(`say "hi"`)}},
		{`k:"@@u00e9@@ud83d@@ude00"`, []path.Component{key("k"), str("é\U0001F600")}},
		{`k:""`, []path.Component{key("k"), str("")}},
		{`xs[/k:"v"]/n`, []path.Component{key("xs"), arr(`/k:"v"`), obj, key("n")}},
		{`[[:1]]`, []path.Component{arr("[:1]")}},
		{`[ "]" ]`, []path.Component{arr(` "]" `)}},
		{`[]`, []path.Component{arr("")}},
		{`:-1.5e3`, []path.Component{lit("-1.5e3")}},
	}
	for _, tc := range tests {
		input := strings.ReplaceAll(tc.input, "@@", `\`)
		got, err := path.New(input).Split()
		if err != nil {
			t.Errorf("Split %#q: unexpected error: %v", input, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Split %#q (-want, +got):\n%s", input, diff)
		}
	}
}

func TestSplitErrors(t *testing.T) {
	for _, input := range []string{
		`:`,            // empty value
		`a:1/b`,        // value is not last
		`a:"x" y`,      // value is not last
		`[a`,           // unterminated bracket
		`a]`,           // unmatched bracket
		`"abc`,         // unterminated quotation
		`k:"abc`,       // unterminated quotation
		`k@@x`,         // unknown escape
		`k:@@u12`,      // short escape
		`k:"@@ud800"`,  // unpaired surrogate
		`a: x y`,       // space in literal
		`a:1}`,         // punctuation in literal
		`a:@@u0041@@/`, // escaped punctuation in literal
	} {
		input = strings.ReplaceAll(input, "@@", `\`)
		got, err := path.New(input).Split()
		if !errors.Is(err, path.ErrSyntax) {
			t.Errorf("Split %#q: got (%v, %v), want ErrSyntax", input, got, err)
		}
	}
}

func TestPathView(t *testing.T) {
	p := path.New("  /a/b  ")
	if got := p.TrimSpace().String(); got != "/a/b" {
		t.Errorf("TrimSpace: got %q, want %q", got, "/a/b")
	}
	q := p.TrimSpace()
	if got := q.Left(2).String(); got != "/a" {
		t.Errorf("Left(2): got %q", got)
	}
	if got := q.Right(2).String(); got != "/b" {
		t.Errorf("Right(2): got %q", got)
	}
	if got := q.Middle(1, 3).String(); got != "a/" {
		t.Errorf("Middle(1, 3): got %q", got)
	}
	if got := path.FromBytes([]byte("x")).Len(); got != 1 {
		t.Errorf("Len: got %d, want 1", got)
	}

	c, rest, err := q.Next()
	if err != nil || c.Kind != path.Object || rest.String() != "a/b" {
		t.Errorf("Next: got (%v, %q, %v), want (/, %q, nil)", c, rest.String(), err, "a/b")
	}
}

func TestComponentString(t *testing.T) {
	const input = `/ "a b" [:1] / k : "v"`
	comps, err := path.New(input).Split()
	if err != nil {
		t.Fatalf("Split: unexpected error: %v", err)
	}
	var parts []string
	for _, c := range comps {
		parts = append(parts, c.String())
	}
	got := strings.Join(parts, "")
	if want := `/"a b"[:1]/"k":"v"`; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}

	// The rendered path has the same components.
	again, err := path.New(got).Split()
	if err != nil {
		t.Fatalf("Split %q: unexpected error: %v", got, err)
	}
	if diff := cmp.Diff(comps, again); diff != "" {
		t.Errorf("Split %q (-want, +got):\n%s", got, diff)
	}
}

func mustDecode(t *testing.T, input string) *ast.Tree {
	t.Helper()
	tr, err := jstep.DecodeString(input, jstep.DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode %q: unexpected error: %v", input, err)
	}
	return tr
}

func TestFind(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		path   string
		create bool
		want   string // shape of the result node
		tree   string // shape of the tree afterward
	}{
		{"CreateNested", `{}`, `/a/b:1`, true,
			`1`, `(root (object (key "a" (object (key "b" 1)))))`},
		{"FindNested", `{"a":{"b":1}}`, `/a/b:1`, false,
			`1`, `(root (object (key "a" (object (key "b" 1)))))`},
		{"ImpliedObject", `{"a":{"b":1}}`, `a/b:1`, false,
			`1`, `(root (object (key "a" (object (key "b" 1)))))`},
		{"FindKey", `{"a":{"b":1}}`, `a/b`, false,
			`(key "b" 1)`, `(root (object (key "a" (object (key "b" 1)))))`},
		{"Replace", `{"a":{"b":1}}`, `/a/b:"x"`, true,
			`"x"`, `(root (object (key "a" (object (key "b" "x")))))`},
		{"AddKey", `{"a":1}`, `b:true`, true,
			`true`, `(root (object (key "a" 1) (key "b" true)))`},
		{"EscapedKey", `{}`, `a@@/b:null`, true,
			`null`, `(root (object (key "a/b" null)))`},
		{"UnicodeKey", `{"é":"😀"}`, `"@@u00e9":"@@ud83d@@ude00"`, false,
			`"😀"`, `(root (object (key "é" "😀")))`},
		{"Comments", `{/*c*/"a":/*d*/1}`, `a:1`, false,
			`1`, `(root (object (comment "c") (key "a" (comment "d") 1)))`},
		{"Empty", `[1]`, ``, false,
			`(root (array 1))`, `(root (array 1))`},
		{"RootValue", ``, `:"s"`, true,
			`"s"`, `(root "s")`},
		{"RootArray", ``, `[:0]`, true,
			`0`, `(root (array 0))`},

		{"FindElement", `{"xs":[{"k":"u"},{"k":"v","n":1}]}`, `xs[/k:"v"]/n:1`, false,
			`1`, `(root (object (key "xs" (array (object (key "k" "u")) (object (key "k" "v") (key "n" 1))))))`},
		{"CreateElement", `{"xs":[{"k":"u"}]}`, `xs[k:"v"]`, true,
			`(object (key "k" "v"))`, `(root (object (key "xs" (array (object (key "k" "u")) (object (key "k" "v"))))))`},
		{"ScalarElement", `{"xs":[1,2]}`, `xs[:2]`, false,
			`2`, `(root (object (key "xs" (array 1 2))))`},
		{"AppendElement", `{"xs":[1,2]}`, `xs[:3]`, true,
			`3`, `(root (object (key "xs" (array 1 2 3))))`},
		{"WholeArray", `{"xs":[1,2]}`, `xs[]`, false,
			`(array 1 2)`, `(root (object (key "xs" (array 1 2))))`},
		{"NestedArray", `{}`, `/m[[:1]]`, true,
			`(array 1)`, `(root (object (key "m" (array (array 1)))))`},
		{"ElementThenKey", `{"xs":[]}`, `xs[/id:7]/tag:"x"`, true,
			`"x"`, `(root (object (key "xs" (array (object (key "id" 7) (key "tag" "x"))))))`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := ast.New()
			if tc.input != "" {
				tr = mustDecode(t, tc.input)
			}
			p := strings.ReplaceAll(tc.path, "@@", `\`)
			got, err := path.Find(tr, p, tc.create)
			if err != nil {
				t.Fatalf("Find %#q: unexpected error: %v", p, err)
			}
			if diff := cmp.Diff(tc.want, testutil.Shape(tr, got)); diff != "" {
				t.Errorf("Find %#q result (-want, +got):\n%s", p, diff)
			}
			if diff := cmp.Diff(tc.tree, testutil.Shape(tr, tr.Root())); diff != "" {
				t.Errorf("Find %#q tree (-want, +got):\n%s", p, diff)
			}

			// Resolving again without create finds the same node.
			again, err := path.FindBytes(tr, []byte(p), false)
			if err != nil {
				t.Fatalf("Find %#q again: unexpected error: %v", p, err)
			}
			if again != got {
				t.Errorf("Find %#q again: got node %v, want %v", p, again, got)
			}
		})
	}
}

func TestFindErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		path   string
		create bool
		want   error
	}{
		{"ValueDiffers", `{"a":{"b":1}}`, `/a/b:2`, false, path.ErrNotFound},
		{"KindDiffers", `{"a":{"b":1}}`, `/a/b:"1"`, false, path.ErrNotFound},
		{"NoKey", `{"a":{}}`, `/a/c`, false, path.ErrNotFound},
		{"NoElement", `{"xs":[1]}`, `xs[:2]`, false, path.ErrNotFound},
		{"NotObject", `{"a":[1]}`, `a/b`, true, path.ErrMismatch},
		{"NotArray", `{"a":{}}`, `a[:1]`, true, path.ErrMismatch},
		{"ReplaceContainer", `{"a":{"b":[]}}`, `a/b:1`, true, path.ErrMismatch},
		{"Syntax", `{}`, `a:1/b`, true, path.ErrSyntax},
		{"LiteralText", `{}`, `/a: hello world`, true, path.ErrSyntax},
		{"ElementSyntax", `{"xs":[]}`, `xs[/a:1/b]`, true, path.ErrSyntax},
		{"ElementBuild", `{"xs":[]}`, `xs[/[]]`, true, path.ErrMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := mustDecode(t, tc.input)
			before := testutil.Shape(tr, tr.Root())
			got, err := path.Find(tr, tc.path, tc.create)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Find %#q: got error %v, want %v", tc.path, err, tc.want)
			}
			if got != ast.None {
				t.Errorf("Find %#q: got node %v, want None", tc.path, got)
			}
			if diff := cmp.Diff(before, testutil.Shape(tr, tr.Root())); diff != "" {
				t.Errorf("Find %#q changed the tree (-want, +got):\n%s", tc.path, diff)
			}
		})
	}
}

func TestFindFrom(t *testing.T) {
	tr := mustDecode(t, `{"a":{"b":[{"c":1}]}}`)
	a, err := path.Find(tr, "a", false)
	if err != nil {
		t.Fatalf("Find a: unexpected error: %v", err)
	}
	got, err := path.FindFrom(tr, a, path.New("b[c:1]/c"), false)
	if err != nil {
		t.Fatalf("FindFrom: unexpected error: %v", err)
	}
	if diff := cmp.Diff(`(key "c" 1)`, testutil.Shape(tr, got)); diff != "" {
		t.Errorf("FindFrom (-want, +got):\n%s", diff)
	}

	// Starting from a value node applies the path to the node itself.
	obj := tr.Value(a)
	if _, err := path.FindFrom(tr, obj, path.New("/b"), false); err != nil {
		t.Errorf("FindFrom object: unexpected error: %v", err)
	}
	if _, err := path.FindFrom(tr, ast.Node(999), path.New("/b"), false); !errors.Is(err, path.ErrNotFound) {
		t.Errorf("FindFrom invalid node: got %v, want ErrNotFound", err)
	}
}

// TestPatchEquivalence checks that creating paths gives the same documents as
// the corresponding JSON Patch operations.
func TestPatchEquivalence(t *testing.T) {
	tests := []struct {
		doc, patch, path string
	}{
		{`{"a":{}}`, `[{"op":"add","path":"/a/b","value":1}]`, `/a/b:1`},
		{`{"a":{"b":"x"}}`, `[{"op":"replace","path":"/a/b","value":"y"}]`, `a/b:"y"`},
		{`{"m":{"n":null}}`, `[{"op":"replace","path":"/m/n","value":false}]`, `m/n:false`},
		{`{}`, `[{"op":"add","path":"/a~1b","value":true}]`, `a\/b:true`},
		{`{"xs":[1,2]}`, `[{"op":"add","path":"/xs/-","value":3}]`, `xs[:3]`},
		{`{"xs":[{"k":"u"}]}`, `[{"op":"add","path":"/xs/-","value":{"k":"v"}}]`, `xs[/k:"v"]`},
		{`{"a":{"b":1}}`, `[{"op":"add","path":"/a/c","value":"t u"}]`, `a/c:"t u"`},
	}
	for _, tc := range tests {
		p, err := jsonpatch.DecodePatch([]byte(tc.patch))
		if err != nil {
			t.Fatalf("DecodePatch %s: unexpected error: %v", tc.patch, err)
		}
		patched, err := p.Apply([]byte(tc.doc))
		if err != nil {
			t.Fatalf("Apply %s: unexpected error: %v", tc.patch, err)
		}

		tr := mustDecode(t, tc.doc)
		if _, err := path.Find(tr, tc.path, true); err != nil {
			t.Fatalf("Find %#q: unexpected error: %v", tc.path, err)
		}
		out, err := jstep.FormatToString(tr, jstep.FormatOptions{Style: jstep.Compress})
		if err != nil {
			t.Fatalf("Format: unexpected error: %v", err)
		}

		var want, got any
		if err := json.Unmarshal(patched, &want); err != nil {
			t.Fatalf("Unmarshal patched: %v", err)
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("Unmarshal %q: %v", out, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Find %#q vs. patch %s (-patch, +find):\n%s", tc.path, tc.patch, diff)
		}
	}
}
