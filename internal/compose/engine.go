package compose

import (
	"sort"
	"strings"
	"sync"

	"graft/internal/extension"
	"graft/internal/resource"
)

type cacheKey struct {
	id   resource.ID
	kind extension.Kind
}

// Engine folds registered extensions over original exports. It reads a
// frozen Registry, so the sorted-entry cache is populated lazily under a
// mutex and stays valid for the life of the process. No engine operation
// performs I/O or blocks.
type Engine struct {
	reg *extension.Registry

	mu     sync.Mutex
	sorted map[cacheKey][]extension.Descriptor
	values map[resource.ID]composedValue
	chains map[resource.ID]string
}

type composedValue struct {
	v any
}

// NewEngine wires an engine to its registry. The registry should be frozen
// before the first composition call.
func NewEngine(reg *extension.Registry) *Engine {
	return &Engine{
		reg:    reg,
		sorted: make(map[cacheKey][]extension.Descriptor),
		values: make(map[resource.ID]composedValue),
		chains: make(map[resource.ID]string),
	}
}

// Sorted returns the kind-matching descriptors for id, ascending by
// SortOrder, memoized per (id, kind). The sort is stable over registration
// order; equal SortOrder remains an unordered tie by contract.
func (e *Engine) Sorted(id resource.ID, kind extension.Kind) []extension.Descriptor {
	key := cacheKey{id: id, kind: kind}

	e.mu.Lock()
	if list, ok := e.sorted[key]; ok {
		e.mu.Unlock()
		return list
	}
	e.mu.Unlock()

	matched := e.reg.Lookup(id, kind)
	list := make([]extension.Descriptor, len(matched))
	copy(list, matched)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SortOrder < list[j].SortOrder
	})

	e.mu.Lock()
	e.sorted[key] = list
	e.mu.Unlock()
	return list
}

// Component wraps a markup-producing renderer. With no extensions the
// original is returned as-is; callers rely on func identity to skip
// redundant re-renders. Otherwise the lowest-SortOrder extension becomes
// the outermost wrapper: it is entered first and receives the rest of the
// chain as its inner renderer. A wrapper that never invokes its inner
// renderer suppresses every higher-SortOrder extension and the original
// for that render.
func (e *Engine) Component(id resource.ID, original extension.Renderer) extension.Renderer {
	list := e.Sorted(id, extension.KindComponent)
	if len(list) == 0 {
		return original
	}

	// Only descriptors with a component-shaped wrap take part in the fold;
	// the recorded chain must list exactly those.
	wrapped := make([]extension.Descriptor, 0, len(list))
	for _, d := range list {
		if _, ok := d.Wrap.(extension.ComponentWrap); ok {
			wrapped = append(wrapped, d)
		}
	}
	if len(wrapped) == 0 {
		return original
	}

	next := original
	for i := len(wrapped) - 1; i >= 0; i-- {
		wrap := wrapped[i].Wrap.(extension.ComponentWrap)
		inner := next
		next = func(props extension.Props) any {
			return wrap(props, inner)
		}
	}
	e.recordChain(id, wrapped)
	return next
}

// Function wraps a plain callable. The chain is built here, once per
// composition, and reused across every call of the returned Func; only the
// per-call arguments vary. Each stage receives the next stage plus the
// call's arguments; not invoking next short-circuits all later stages.
func (e *Engine) Function(id resource.ID, original extension.Func) extension.Func {
	list := e.Sorted(id, extension.KindFunction)
	if len(list) == 0 {
		return original
	}

	chain := original
	for i := len(list) - 1; i >= 0; i-- {
		wrap, ok := list[i].Wrap.(extension.FuncWrap)
		if !ok {
			continue
		}
		next := chain
		chain = func(args ...any) any {
			return wrap(next, args)
		}
	}
	return chain
}

// Value folds the extensions over the original eagerly, exactly once per
// resource id; every later read observes the same substituted value.
func (e *Engine) Value(id resource.ID, original any) any {
	e.mu.Lock()
	if cached, ok := e.values[id]; ok {
		e.mu.Unlock()
		return cached.v
	}
	e.mu.Unlock()

	acc := original
	for _, d := range e.Sorted(id, extension.KindValue) {
		if wrap, ok := d.Wrap.(extension.ValueWrap); ok {
			acc = wrap(acc)
		}
	}

	e.mu.Lock()
	e.values[id] = composedValue{v: acc}
	e.mu.Unlock()
	return acc
}

// ChainName reports the diagnostic name recorded for a composed component
// chain: wrapper names outermost first.
func (e *Engine) ChainName(id resource.ID) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	name, ok := e.chains[id]
	return name, ok
}

func (e *Engine) recordChain(id resource.ID, list []extension.Descriptor) {
	names := make([]string, len(list))
	for i, d := range list {
		names[i] = d.Name
	}
	e.mu.Lock()
	e.chains[id] = strings.Join(names, " -> ")
	e.mu.Unlock()
}
