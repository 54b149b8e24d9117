package compose

import (
	"reflect"
	"testing"

	"graft/internal/extension"
	"graft/internal/resource"
)

func newRegistry(t *testing.T, descs ...extension.Descriptor) *extension.Registry {
	t.Helper()
	reg := extension.NewRegistry(nil)
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register %q: %v", d.Name, err)
		}
	}
	reg.Freeze()
	return reg
}

func funcPtr(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func TestZeroExtensionsReturnsOriginalReference(t *testing.T) {
	e := NewEngine(newRegistry(t))

	origRender := extension.Renderer(func(props extension.Props) any { return "card" })
	if got := e.Component("pkg/widgets/card", origRender); funcPtr(got) != funcPtr(origRender) {
		t.Fatal("Component with no extensions must return the original renderer itself")
	}

	origFn := extension.Func(func(args ...any) any { return "x" })
	if got := e.Function("pkg/util/fmt", origFn); funcPtr(got) != funcPtr(origFn) {
		t.Fatal("Function with no extensions must return the original callable itself")
	}

	if got := e.Value("pkg/config:limit", 42); got != 42 {
		t.Fatalf("Value with no extensions = %v, want 42", got)
	}
}

func TestComponentOrderIsAscendingSortOrder(t *testing.T) {
	const id resource.ID = "pkg/widgets/card"
	var entered []int

	wrapAt := func(order int) extension.ComponentWrap {
		return func(props extension.Props, next extension.Renderer) any {
			entered = append(entered, order)
			return next(props)
		}
	}
	// Registration order deliberately scrambled.
	reg := newRegistry(t,
		extension.Descriptor{Name: "ten", ResourceID: id, SortOrder: 10, Kind: extension.KindComponent, Wrap: wrapAt(10)},
		extension.Descriptor{Name: "minus", ResourceID: id, SortOrder: -10, Kind: extension.KindComponent, Wrap: wrapAt(-10)},
		extension.Descriptor{Name: "zero", ResourceID: id, SortOrder: 0, Kind: extension.KindComponent, Wrap: wrapAt(0)},
	)
	e := NewEngine(reg)

	composed := e.Component(id, func(props extension.Props) any { return "original" })
	if got := composed(nil); got != "original" {
		t.Fatalf("composed render = %v, want original passthrough", got)
	}
	if want := []int{-10, 0, 10}; !reflect.DeepEqual(entered, want) {
		t.Fatalf("outer-to-inner entry order = %v, want %v", entered, want)
	}

	name, ok := e.ChainName(id)
	if !ok || name != "minus -> zero -> ten" {
		t.Fatalf("ChainName = %q, %v", name, ok)
	}
}

func TestChainNameListsOnlyFoldedWrappers(t *testing.T) {
	const id resource.ID = "pkg/widgets/card"
	e := NewEngine(newRegistry(t))

	// Seed the sort cache directly: registration validates wrap shapes, so
	// a kind/behavior mismatch can only arrive through a stale or corrupted
	// descriptor list. The fold skips it and the recorded chain must too.
	e.sorted[cacheKey{id: id, kind: extension.KindComponent}] = []extension.Descriptor{
		{Name: "good", ResourceID: id, SortOrder: 0, Kind: extension.KindComponent,
			Wrap: extension.ComponentWrap(func(props extension.Props, next extension.Renderer) any {
				return next(props)
			})},
		{Name: "mismatched", ResourceID: id, SortOrder: 5, Kind: extension.KindComponent,
			Wrap: extension.FuncWrap(func(next extension.Func, args []any) any {
				return next(args...)
			})},
	}

	composed := e.Component(id, func(props extension.Props) any { return "card" })
	if got := composed(nil); got != "card" {
		t.Fatalf("render = %v, want card", got)
	}
	name, ok := e.ChainName(id)
	if !ok || name != "good" {
		t.Fatalf("ChainName = %q, %v; want just the wrapper that ran", name, ok)
	}
}

func TestComponentSuppressionSkipsInnerStages(t *testing.T) {
	const id resource.ID = "pkg/widgets/card"
	var entered []string

	reg := newRegistry(t,
		extension.Descriptor{Name: "gate", ResourceID: id, SortOrder: -5, Kind: extension.KindComponent,
			Wrap: extension.ComponentWrap(func(props extension.Props, next extension.Renderer) any {
				entered = append(entered, "gate")
				return "blocked"
			})},
		extension.Descriptor{Name: "inner", ResourceID: id, SortOrder: 0, Kind: extension.KindComponent,
			Wrap: extension.ComponentWrap(func(props extension.Props, next extension.Renderer) any {
				entered = append(entered, "inner")
				return next(props)
			})},
	)
	e := NewEngine(reg)

	composed := e.Component(id, func(props extension.Props) any {
		entered = append(entered, "original")
		return "card"
	})
	if got := composed(nil); got != "blocked" {
		t.Fatalf("render = %v, want blocked", got)
	}
	if want := []string{"gate"}; !reflect.DeepEqual(entered, want) {
		t.Fatalf("entered = %v, want only the gate", entered)
	}
}

func TestFunctionSuppressionShortCircuits(t *testing.T) {
	const id resource.ID = "pkg/api/load"
	var entered []int

	stage := func(order int, callNext bool) extension.FuncWrap {
		return func(next extension.Func, args []any) any {
			entered = append(entered, order)
			if !callNext {
				return "halted"
			}
			return next(args...)
		}
	}
	reg := newRegistry(t,
		extension.Descriptor{Name: "first", ResourceID: id, SortOrder: -10, Kind: extension.KindFunction, Wrap: stage(-10, true)},
		extension.Descriptor{Name: "halt", ResourceID: id, SortOrder: 0, Kind: extension.KindFunction, Wrap: stage(0, false)},
		extension.Descriptor{Name: "never", ResourceID: id, SortOrder: 10, Kind: extension.KindFunction, Wrap: stage(10, true)},
	)
	e := NewEngine(reg)

	called := false
	composed := e.Function(id, func(args ...any) any {
		called = true
		return "original"
	})

	if got := composed("a"); got != "halted" {
		t.Fatalf("call = %v, want halted", got)
	}
	if want := []int{-10, 0}; !reflect.DeepEqual(entered, want) {
		t.Fatalf("entered = %v, want %v", entered, want)
	}
	if called {
		t.Fatal("original must be suppressed when a stage skips next")
	}
}

func TestFunctionArgumentsFlowPerCall(t *testing.T) {
	const id resource.ID = "pkg/math/add"
	reg := newRegistry(t,
		extension.Descriptor{Name: "double", ResourceID: id, SortOrder: 0, Kind: extension.KindFunction,
			Wrap: extension.FuncWrap(func(next extension.Func, args []any) any {
				return next(args...).(int) * 2
			})},
	)
	e := NewEngine(reg)

	composed := e.Function(id, func(args ...any) any {
		return args[0].(int) + args[1].(int)
	})
	if got := composed(1, 2); got != 6 {
		t.Fatalf("composed(1,2) = %v, want 6", got)
	}
	if got := composed(10, 5); got != 30 {
		t.Fatalf("composed(10,5) = %v, want 30 (chain reused across calls)", got)
	}
}

func TestValueFoldsOnceInOrder(t *testing.T) {
	const id resource.ID = "pkg/config:currency"
	folds := 0

	reg := newRegistry(t,
		extension.Descriptor{Name: "swap", ResourceID: id, SortOrder: -10, Kind: extension.KindValue,
			Wrap: extension.ValueWrap(func(v any) any {
				folds++
				if v == "USD" {
					return "EUR"
				}
				return v
			})},
		extension.Descriptor{Name: "suffix", ResourceID: id, SortOrder: 0, Kind: extension.KindValue,
			Wrap: extension.ValueWrap(func(v any) any {
				folds++
				return v.(string) + "-001"
			})},
	)
	e := NewEngine(reg)

	if got := e.Value(id, "USD"); got != "EUR-001" {
		t.Fatalf("Value = %v, want EUR-001", got)
	}
	if got := e.Value(id, "USD"); got != "EUR-001" {
		t.Fatalf("second read = %v, want EUR-001", got)
	}
	if folds != 2 {
		t.Fatalf("fold ran %d stage calls, want 2 (computed once)", folds)
	}
}

func TestEndToEndComponentWrapping(t *testing.T) {
	const id resource.ID = "pkg/widgets/card"

	tag := func(name string) extension.ComponentWrap {
		return func(props extension.Props, next extension.Renderer) any {
			return name + "[" + next(props).(string) + "]"
		}
	}
	reg := newRegistry(t,
		extension.Descriptor{Name: "tracker", ResourceID: id, SortOrder: 0, Kind: extension.KindComponent, Wrap: tag("tracker")},
		extension.Descriptor{Name: "banner", ResourceID: id, SortOrder: -5, Kind: extension.KindComponent, Wrap: tag("banner")},
	)
	e := NewEngine(reg)

	composed := e.Component(id, func(props extension.Props) any { return "card" })
	if got := composed(nil); got != "banner[tracker[card]]" {
		t.Fatalf("render = %v, want banner[tracker[card]]", got)
	}
}
