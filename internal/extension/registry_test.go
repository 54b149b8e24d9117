package extension

import (
	"errors"
	"testing"

	"graft/internal/diag"
)

func componentWrap() ComponentWrap {
	return func(props Props, next Renderer) any { return next(props) }
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry(nil)

	if err := reg.Register(Descriptor{
		Name:       "banner",
		ResourceID: "pkg/widgets/card",
		SortOrder:  -5,
		Kind:       KindComponent,
		Wrap:       componentWrap(),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(Descriptor{
		Name:       "tracker",
		ResourceID: "pkg/widgets/card",
		Kind:       KindComponent,
		Wrap:       componentWrap(),
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg.Freeze()

	got := reg.Lookup("pkg/widgets/card", KindComponent)
	if len(got) != 2 {
		t.Fatalf("Lookup returned %d entries, want 2", len(got))
	}
	if got[0].Name != "banner" || got[1].Name != "tracker" {
		t.Fatalf("registration order not preserved: %q, %q", got[0].Name, got[1].Name)
	}
	if n := len(reg.Lookup("pkg/widgets/other", KindComponent)); n != 0 {
		t.Fatalf("unregistered id returned %d entries", n)
	}
}

func TestRegisterAfterFreezeFails(t *testing.T) {
	bag := diag.NewBag(16)
	reg := NewRegistry(diag.BagReporter{Bag: bag})
	reg.Freeze()

	err := reg.Register(Descriptor{
		Name:       "late",
		ResourceID: "pkg/a",
		Kind:       KindComponent,
		Wrap:       componentWrap(),
	})
	if !errors.Is(err, ErrFrozen) {
		t.Fatalf("err = %v, want ErrFrozen", err)
	}
	if !bag.HasErrors() {
		t.Fatal("expected a frozen-registry diagnostic")
	}
}

func TestLookupFiltersKindMismatch(t *testing.T) {
	bag := diag.NewBag(16)
	reg := NewRegistry(diag.BagReporter{Bag: bag})

	must := func(d Descriptor) {
		t.Helper()
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register %q: %v", d.Name, err)
		}
	}
	must(Descriptor{Name: "comp", ResourceID: "pkg/a", Kind: KindComponent, Wrap: componentWrap()})
	must(Descriptor{Name: "fn", ResourceID: "pkg/a", Kind: KindFunction,
		Wrap: FuncWrap(func(next Func, args []any) any { return next(args...) })})
	reg.Freeze()

	got := reg.Lookup("pkg/a", KindComponent)
	if len(got) != 1 || got[0].Name != "comp" {
		t.Fatalf("Lookup = %+v, want only comp", got)
	}
	if n := len(bag.Items()); n != 1 {
		t.Fatalf("got %d diagnostics, want 1 kind-mismatch warning", n)
	}
}

func TestDuplicateNameWarns(t *testing.T) {
	bag := diag.NewBag(16)
	reg := NewRegistry(diag.BagReporter{Bag: bag})

	d := Descriptor{Name: "same", ResourceID: "pkg/a", Kind: KindValue,
		Wrap: ValueWrap(func(v any) any { return v })}
	if err := reg.Register(d); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(d); err != nil {
		t.Fatalf("duplicate Register should succeed, got %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (append-only)", reg.Len())
	}
	if bag.HasErrors() {
		t.Fatal("duplicate name must warn, not error")
	}
	if n := len(bag.Items()); n != 1 {
		t.Fatalf("got %d diagnostics, want 1 duplicate-name warning", n)
	}
}

func TestValidateRejectsWrongWrapShape(t *testing.T) {
	err := Descriptor{
		Name:       "bad",
		ResourceID: "pkg/a",
		Kind:       KindComponent,
		Wrap:       ValueWrap(func(v any) any { return v }),
	}.Validate()
	if err == nil {
		t.Fatal("expected a shape error for component kind with value behavior")
	}
}
