package source_test

import (
	"testing"

	"graft/internal/source"
)

func TestResolveLineCol(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("mod.ts", []byte("const a = 1;\nexport default a;\n"))

	tests := []struct {
		name      string
		span      source.Span
		wantLine  uint32
		wantCol   uint32
	}{
		{"start of file", source.Span{File: id, Start: 0, End: 5}, 1, 1},
		{"second line", source.Span{File: id, Start: 13, End: 19}, 2, 1},
		{"mid second line", source.Span{File: id, Start: 20, End: 27}, 2, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(tt.span)
			if start.Line != tt.wantLine || start.Col != tt.wantCol {
				t.Errorf("Resolve(%v) start = %d:%d, want %d:%d",
					tt.span, start.Line, start.Col, tt.wantLine, tt.wantCol)
			}
		})
	}
}

func TestLoadNormalizesCRLF(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("win.ts", []byte("a\r\nb"), 0)
	f := fs.Get(id)
	if string(f.Content) != "a\r\nb" {
		t.Fatalf("Add must not normalize, got %q", f.Content)
	}

	id2 := fs.AddVirtual("v.ts", []byte("x = 1"))
	if fs.Get(id2).Flags&source.FileVirtual == 0 {
		t.Error("AddVirtual should set FileVirtual flag")
	}
}

func TestGetLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.ts", []byte("one\ntwo\nthree"))
	f := fs.Get(id)

	for i, want := range []string{"one", "two", "three"} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i+1, got, want)
		}
	}
	if got := f.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := source.Span{File: 0, Start: 5, End: 10}
	b := source.Span{File: 0, Start: 2, End: 7}
	c := a.Cover(b)
	if c.Start != 2 || c.End != 10 {
		t.Errorf("Cover = %v, want 0:2-10", c)
	}
	other := source.Span{File: 1, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("Cover across files must be a no-op, got %v", got)
	}
}
