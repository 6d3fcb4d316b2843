// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jfmt reads JSON documents, which may contain comments, and writes
// them out in a normalized format.
//
// Usage:
//
//	jfmt [flags] [file ...]
//
// With no files, jfmt reads standard input. Each document is written to
// standard output, unless -w is set to rewrite files in place or -d is set to
// print a line diff between the input and the formatted output.
//
// The --set flag may be given multiple times to create or replace values at
// a path before formatting, and --find selects the subtree at a path to
// write instead of the whole document. Paths have the form:
//
//	/key/"quoted key"/list[/id:1]/name:"value"
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/creachadair/jstep"
	"github.com/creachadair/jstep/ast"
	"github.com/creachadair/jstep/codec"
	"github.com/creachadair/jstep/path"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/pflag"
)

// Exit codes reported by the program.
const (
	exitFormat = 1 // a document could not be parsed or formatted
	exitUsage  = 2 // invalid flags or arguments
	exitPath   = 3 // a path could not be resolved
	exitIO     = 4 // a file could not be read or written
)

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }
func (e exitError) ExitCode() int { return e.code }

func exitf(code int, msg string, args ...any) error {
	return exitError{code: code, err: fmt.Errorf(msg, args...)}
}

func main() {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		label := color.New(color.FgRed, color.Bold)
		if useColor {
			label.EnableColor()
		} else {
			label.DisableColor()
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", label.Sprint("jfmt:"), err)

		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(exitFormat)
	}
}

// settings are the parsed command-line settings.
type settings struct {
	format   jstep.FormatOptions
	decode   jstep.DecodeOptions
	outEnc   codec.Encoding
	find     string
	set      []string
	diff     bool
	write    bool
	colorize bool
	log      *slog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		style, comments, inEnc, outEnc string
		verbose                        bool
		cfg                            settings
	)
	fs := pflag.NewFlagSet("jfmt", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&style, "style", "indent", "output style (compress, space, indent)")
	fs.IntVar(&cfg.format.IndentSize, "indent", 2, "spaces per indentation level for --style=indent")
	fs.StringVar(&comments, "comments", "none", "comment policy (none, line, block)")
	fs.BoolVar(&cfg.decode.StripComments, "strip-comments", false, "discard comments while parsing")
	fs.StringVar(&inEnc, "in-encoding", "auto", "input encoding (auto, utf8, utf16be, utf16le)")
	fs.StringVar(&outEnc, "out-encoding", "utf8", "output encoding (utf8, utf16be, utf16le)")
	fs.BoolVar(&cfg.format.BOM, "bom", false, "write a byte-order mark before the output")
	fs.StringVar(&cfg.find, "find", "", "write only the subtree at this path")
	fs.StringArrayVar(&cfg.set, "set", nil, "create or replace the value at this path (repeatable)")
	fs.BoolVarP(&cfg.diff, "diff", "d", false, "print a line diff instead of the formatted output")
	fs.BoolVarP(&cfg.write, "write", "w", false, "rewrite files in place")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: jfmt [flags] [file ...]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return exitError{code: exitUsage, err: err}
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var err error
	if cfg.format.Style, err = jstep.ParseStyle(style); err != nil {
		return exitError{code: exitUsage, err: err}
	}
	if cfg.format.Comments, err = jstep.ParseCommentPolicy(comments); err != nil {
		return exitError{code: exitUsage, err: err}
	}
	if cfg.format.IndentSize < 0 {
		return exitf(exitUsage, "invalid --indent %d", cfg.format.IndentSize)
	}
	if inEnc != "auto" {
		e, err := codec.ParseEncoding(inEnc)
		if err != nil {
			return exitError{code: exitUsage, err: err}
		}
		cfg.decode.Encoding = &e
	}
	if cfg.outEnc, err = codec.ParseEncoding(outEnc); err != nil {
		return exitError{code: exitUsage, err: err}
	}
	if cfg.diff && cfg.write {
		return exitf(exitUsage, "--diff and --write are mutually exclusive")
	}
	for _, p := range append([]string{cfg.find}, cfg.set...) {
		if _, err := path.New(p).Split(); err != nil {
			return exitError{code: exitUsage, err: err}
		}
	}
	if f, ok := stdout.(*os.File); ok {
		cfg.colorize = isatty.IsTerminal(f.Fd())
	}

	files := fs.Args()
	if len(files) == 0 {
		if cfg.write {
			return exitf(exitUsage, "--write requires file arguments")
		}
		files = []string{"-"}
	}
	for _, name := range files {
		if err := cfg.processFile(name, stdin, stdout); err != nil {
			return err
		}
	}
	return nil
}

func (s *settings) processFile(name string, stdin io.Reader, stdout io.Writer) error {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return exitError{code: exitIO, err: err}
	}
	label := name
	if label == "-" {
		label = "<stdin>"
	}

	tr, err := jstep.Decode(bytes.NewReader(data), s.decode)
	if err != nil {
		return exitf(exitFormat, "%s: %w", label, err)
	}
	s.log.Debug("decoded document", "file", label, "bytes", len(data), "nodes", tr.Len())

	for _, p := range s.set {
		n, err := path.Find(tr, p, true)
		if err != nil {
			return exitf(exitPath, "%s: set: %w", label, err)
		}
		s.log.Debug("set path", "file", label, "path", p, "kind", tr.Kind(n))
	}
	start := tr.Root()
	if s.find != "" {
		n, err := path.Find(tr, s.find, false)
		if err != nil {
			return exitf(exitPath, "%s: find: %w", label, err)
		}
		if tr.Kind(n) == ast.Key {
			n = tr.Value(n)
		}
		start = n
	}

	var sb strings.Builder
	opts := s.format
	opts.BOM = false
	if err := jstep.EncodeNode(&sb, tr, start, codec.UTF8, opts); err != nil {
		return exitf(exitFormat, "%s: %w", label, err)
	}
	text := sb.String()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	if s.diff {
		old, err := decodeText(data, s.decode.Encoding)
		if err != nil {
			return exitf(exitFormat, "%s: %w", label, err)
		}
		if old != text {
			writeDiff(stdout, label, old, text, s.colorize)
		}
		return nil
	}

	out := transcode(text, s.outEnc, s.format.BOM)
	if s.write {
		if bytes.Equal(out, data) {
			s.log.Debug("file unchanged", "file", label)
			return nil
		}
		if err := os.WriteFile(name, out, 0644); err != nil {
			return exitError{code: exitIO, err: err}
		}
		s.log.Info("rewrote file", "file", label, "bytes", len(out))
		return nil
	}
	if _, err := stdout.Write(out); err != nil {
		return exitError{code: exitIO, err: err}
	}
	return nil
}

// transcode encodes UTF-8 text in enc, optionally preceded by a byte-order
// mark.
func transcode(text string, enc codec.Encoding, bom bool) []byte {
	if enc == codec.UTF8 && !bom {
		return []byte(text)
	}
	var out []byte
	if bom {
		out = codec.AppendBOM(enc, out)
	}
	for _, r := range text {
		out, _ = codec.Append(enc, out, r)
	}
	return out
}

// decodeText converts data to UTF-8 text, using enc if it is non-nil or else
// detecting the encoding. A leading byte-order mark is discarded.
func decodeText(data []byte, enc *codec.Encoding) (string, error) {
	e, skip := codec.Detect(data)
	if enc != nil {
		e = *enc
		if r, n := codec.Decode(e, data); n != 0 && r == codec.BOM {
			skip = n
		} else {
			skip = 0
		}
	}
	data = data[skip:]
	var sb strings.Builder
	for len(data) != 0 {
		r, n := codec.Decode(e, data)
		if n == 0 {
			return "", fmt.Errorf("invalid %v input", e)
		}
		sb.WriteRune(r)
		data = data[n:]
	}
	return sb.String(), nil
}

// writeDiff writes a line-oriented diff from before to after.
func writeDiff(w io.Writer, label, before, after string, colorize bool) {
	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	hdr := color.New(color.Bold)
	for _, c := range []*color.Color{del, ins, hdr} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	hdr.Fprintf(w, "--- %s\n+++ %s (formatted)\n", label, label)
	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", del
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", ins
		default:
			prefix = " "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if c != nil {
				c.Fprint(w, prefix+line)
			} else {
				fmt.Fprint(w, prefix+line)
			}
		}
	}
}
