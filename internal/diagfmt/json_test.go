package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"graft/internal/diag"
	"graft/internal/source"
)

func TestJSONOutputShape(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("src/shop.ts", []byte("export const x = 1;\nexport const y = 2;\n"))

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.ResNoManifest, source.Span{File: fileID, Start: 0, End: 6}, "no package.json above src/shop.ts"))
	bag.Add(diag.NewWarning(diag.RegKindMismatch, source.Span{File: fileID, Start: 20, End: 26}, "extension kind mismatch").
		WithNote(source.Span{File: fileID, Start: 0, End: 6}, "registered as component"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, diagnostics = %d, want 2 each", out.Count, len(out.Diagnostics))
	}

	first := out.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "GR3001" {
		t.Errorf("first = %s %s, want ERROR GR3001", first.Severity, first.Code)
	}
	if first.Location.File != "shop.ts" {
		t.Errorf("file = %q, want basename", first.Location.File)
	}
	if first.Location.StartLine != 1 || first.Location.StartCol != 1 {
		t.Errorf("start = %d:%d, want 1:1", first.Location.StartLine, first.Location.StartCol)
	}

	second := out.Diagnostics[1]
	if second.Location.StartLine != 2 {
		t.Errorf("second start line = %d, want 2", second.Location.StartLine)
	}
	if len(second.Notes) != 1 || second.Notes[0].Message != "registered as component" {
		t.Errorf("notes = %+v", second.Notes)
	}
}

func TestJSONMaxTruncatesOutput(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("mod.ts", []byte("const a = 1;\n"))

	bag := diag.NewBag(8)
	for range 5 {
		bag.Add(diag.NewWarning(diag.RwSkippedExport, source.Span{File: fileID}, "skipped"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	if bag.Len() != 5 {
		t.Fatalf("bag mutated, len = %d", bag.Len())
	}
}
