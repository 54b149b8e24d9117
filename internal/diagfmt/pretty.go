package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"graft/internal/diag"
	"graft/internal/source"
)

// Pretty formats diagnostics for humans. It walks bag.Items() in order
// (call bag.SortStable() first if a stable order matters) and prints, per
// diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// followed by the source line with a ^~~~ underline covering the span, and
// the Notes in the same location format when ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, _ := fs.Resolve(d.Primary)
	path := formatPath(fs, d.Primary.File, opts.PathMode)

	sev := d.Severity.String()
	code := d.Code.ID()
	if opts.Color {
		c := severityColor(d.Severity)
		sev = c.Sprint(sev)
		code = c.Sprint(code)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, d.Message)

	writeSnippet(w, d.Primary, fs, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			np := formatPath(fs, n.Span.File, opts.PathMode)
			fmt.Fprintf(w, "  note: %s:%d:%d: %s\n", np, ns.Line, ns.Col, n.Msg)
		}
	}
}

// writeSnippet prints the span's source line with surrounding context and a
// caret underline. Multi-line spans underline only the first line.
func writeSnippet(w io.Writer, sp source.Span, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}

	ctx := uint32(0)
	if opts.Context > 0 {
		ctx = uint32(opts.Context)
	}
	first := start.Line
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	for line := first; line < start.Line; line++ {
		writeContextLine(w, line, f.GetLine(line), opts.Width)
	}

	text := f.GetLine(start.Line)
	writeContextLine(w, start.Line, text, opts.Width)

	underline := uint32(1)
	if end.Line == start.Line && end.Col > start.Col {
		underline = end.Col - start.Col
	} else if end.Line > start.Line {
		if n := uint32(len(text)) + 1; n > start.Col {
			underline = n - start.Col
		}
	}
	marker := "^" + strings.Repeat("~", int(underline-1))
	fmt.Fprintf(w, "  %4s | %s%s\n", "", strings.Repeat(" ", int(start.Col-1)), marker)

	for line := start.Line + 1; line <= start.Line+ctx; line++ {
		text := f.GetLine(line)
		if text == "" && line > uint32(len(f.LineIdx))+1 {
			break
		}
		writeContextLine(w, line, text, opts.Width)
	}
}

func writeContextLine(w io.Writer, num uint32, text string, width uint8) {
	if width > 0 && len(text) > int(width) {
		text = text[:width]
	}
	fmt.Fprintf(w, "  %4d | %s\n", num, text)
}

func severityColor(s diag.Severity) *color.Color {
	var c *color.Color
	switch s {
	case diag.SevError:
		c = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgCyan)
	}
	c.EnableColor()
	return c
}

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path
	case PathModeRelative, PathModeAuto:
		if rel, err := filepath.Rel(fs.BaseDir(), f.Path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
		return f.Path
	}
	return f.Path
}
