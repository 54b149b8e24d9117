package diag_test

import (
	"testing"

	"graft/internal/diag"
	"graft/internal/source"
)

func TestBagCap(t *testing.T) {
	b := diag.NewBag(2)
	for i := 0; i < 3; i++ {
		ok := b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{}, "x"))
		if i < 2 && !ok {
			t.Fatalf("Add %d rejected below cap", i)
		}
		if i == 2 && ok {
			t.Fatal("Add beyond cap must return false")
		}
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	b := diag.NewBag(10)
	if b.HasErrors() || b.HasWarnings() {
		t.Fatal("empty bag must have no errors or warnings")
	}
	b.Add(diag.NewWarning(diag.RegDuplicateName, source.Span{}, "dup"))
	if b.HasErrors() {
		t.Error("warning must not count as error")
	}
	if !b.HasWarnings() {
		t.Error("HasWarnings should see the warning")
	}
	b.Add(diag.NewError(diag.ResNoManifest, source.Span{}, "missing"))
	if !b.HasErrors() {
		t.Error("HasErrors should see the error")
	}
}

func TestBagMergeGrows(t *testing.T) {
	a := diag.NewBag(1)
	a.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "a"))
	b := diag.NewBag(1)
	b.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "b"))

	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("Merge lost diagnostics: len = %d", a.Len())
	}
}

func TestBagSortStable(t *testing.T) {
	b := diag.NewBag(10)
	b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: 0, Start: 50, End: 51}, "late"))
	b.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: 0, Start: 3, End: 4}, "early"))
	b.SortStable()
	if b.Items()[0].Message != "early" {
		t.Errorf("SortStable order wrong: %q first", b.Items()[0].Message)
	}
}

func TestCodeID(t *testing.T) {
	if got := diag.ResNoManifest.ID(); got != "GR3001" {
		t.Errorf("ID = %q, want GR3001", got)
	}
}
