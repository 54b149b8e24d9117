package extension

import (
	"fmt"

	"graft/internal/resource"
)

// Props carries a component invocation's named arguments.
type Props map[string]any

// Renderer produces a render result for one set of props. The original
// export and every wrapped stage share this shape.
type Renderer func(props Props) any

// Func is a plain callable export.
type Func func(args ...any) any

// ComponentWrap receives the caller's props plus the next-inner renderer.
// Not invoking next suppresses every later stage for that render.
type ComponentWrap func(props Props, next Renderer) any

// FuncWrap receives the next-stage callable plus the call's arguments.
// Not invoking next short-circuits every later stage for that call.
type FuncWrap func(next Func, args []any) any

// ValueWrap maps the accumulated value to its replacement.
type ValueWrap func(current any) any

// Descriptor is one registered extension: immutable after registration,
// never removed for the lifetime of the process.
type Descriptor struct {
	// Name identifies the extension in diagnostics. It should be unique
	// within its authoring module; duplicates are tolerated with a warning.
	Name       string
	ResourceID resource.ID
	// SortOrder orders composition: lower applies first and wraps
	// outermost. Defaults to 0. Equal orders are an unordered tie.
	SortOrder int
	Kind      Kind
	// Wrap holds the behavior. Its shape is fixed by Kind:
	// ComponentWrap, FuncWrap, or ValueWrap.
	Wrap any
}

// Validate checks the descriptor's required fields and that Wrap's shape
// matches Kind.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("extension descriptor has no name (resource %q)", d.ResourceID)
	}
	if d.ResourceID == "" {
		return fmt.Errorf("extension %q has no resource id", d.Name)
	}
	switch d.Kind {
	case KindComponent:
		if _, ok := d.Wrap.(ComponentWrap); !ok {
			return wrapShapeError(d, "ComponentWrap")
		}
	case KindFunction:
		if _, ok := d.Wrap.(FuncWrap); !ok {
			return wrapShapeError(d, "FuncWrap")
		}
	case KindValue:
		if _, ok := d.Wrap.(ValueWrap); !ok {
			return wrapShapeError(d, "ValueWrap")
		}
	default:
		return fmt.Errorf("extension %q has unknown kind %d", d.Name, d.Kind)
	}
	return nil
}

func wrapShapeError(d Descriptor, want string) error {
	return fmt.Errorf("extension %q (resource %q): %s kind requires a %s behavior, got %T",
		d.Name, d.ResourceID, d.Kind, want, d.Wrap)
}
