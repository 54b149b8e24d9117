package extension

import (
	"errors"
	"fmt"
	"sync"

	"graft/internal/diag"
	"graft/internal/resource"
	"graft/internal/source"
)

// ErrFrozen is returned when Register is called after Freeze.
var ErrFrozen = errors.New("extension registry is frozen")

// Registry is the process-wide, append-only table of extensions. Two-phase
// lifecycle: every Register happens during the load phase, then Freeze makes
// the table read-only for the rest of the process. The registry is an
// explicit value handed to its consumers, never ambient state.
type Registry struct {
	mu       sync.Mutex
	frozen   bool
	entries  map[resource.ID][]Descriptor
	count    int
	reporter diag.Reporter
}

// NewRegistry builds an empty registry. A nil reporter discards diagnostics.
func NewRegistry(reporter diag.Reporter) *Registry {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Registry{
		entries:  make(map[resource.ID][]Descriptor),
		reporter: reporter,
	}
}

// Register appends a descriptor to its resource id's list. Insertion order
// is preserved but carries no semantic guarantee. A duplicate name within
// the same resource id is accepted with a warning.
func (r *Registry) Register(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		diag.ReportError(r.reporter, diag.RegFrozen, source.Span{},
			fmt.Sprintf("extension %q registered after the load phase ended", d.Name))
		return ErrFrozen
	}
	for _, prev := range r.entries[d.ResourceID] {
		if prev.Name == d.Name {
			diag.ReportWarning(r.reporter, diag.RegDuplicateName, source.Span{},
				fmt.Sprintf("duplicate extension name %q for resource %q", d.Name, d.ResourceID))
			break
		}
	}
	r.entries[d.ResourceID] = append(r.entries[d.ResourceID], d)
	r.count++
	return nil
}

// Freeze ends the load phase. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the load phase has ended.
func (r *Registry) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Lookup returns the descriptors for id whose kind matches want, in
// registration order. Entries of another kind are dropped, each with a
// diagnostic naming the descriptor, the resource id, and both kinds.
func (r *Registry) Lookup(id resource.ID, want Kind) []Descriptor {
	r.mu.Lock()
	all := r.entries[id]
	r.mu.Unlock()

	out := make([]Descriptor, 0, len(all))
	for _, d := range all {
		if d.Kind != want {
			diag.ReportWarning(r.reporter, diag.RegKindMismatch, source.Span{},
				fmt.Sprintf("extension %q for resource %q is a %s, target expects a %s; skipped",
					d.Name, id, d.Kind, want))
			continue
		}
		out = append(out, d)
	}
	return out
}

// Len returns the total number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// IDs returns every resource id with at least one registration.
// Order is unspecified.
func (r *Registry) IDs() []resource.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]resource.ID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}
