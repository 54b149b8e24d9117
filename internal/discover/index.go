package discover

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"graft/internal/resource"
)

// Index answers "does this resource id have registered extensions" for the
// rewriter and records extension-set hashes so incremental builds can
// invalidate dependents when a set changes. Read-only once built.
type Index struct {
	root string
	byID map[resource.ID][]Extension
}

func newIndex(root string) *Index {
	return &Index{root: root, byID: make(map[resource.ID][]Extension)}
}

func (ix *Index) add(ext Extension) {
	ix.byID[ext.ID] = append(ix.byID[ext.ID], ext)
}

// HasExtensions reports whether at least one extension targets id.
func (ix *Index) HasExtensions(id resource.ID) bool {
	return len(ix.byID[id]) > 0
}

// Extensions returns the descriptors targeting id, in scan order.
func (ix *Index) Extensions(id resource.ID) []Extension {
	return ix.byID[id]
}

// IDs returns every targeted resource id, sorted.
func (ix *Index) IDs() []resource.ID {
	ids := make([]resource.ID, 0, len(ix.byID))
	for id := range ix.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of discovered descriptors.
func (ix *Index) Len() int {
	n := 0
	for _, exts := range ix.byID {
		n += len(exts)
	}
	return n
}

// SetHash digests the extension set for one id. It changes whenever a
// descriptor targeting the id is added, removed, renamed, or reordered, so
// it keys cache invalidation for modules rewritten against the set.
func (ix *Index) SetHash(id resource.ID) string {
	exts := append([]Extension(nil), ix.byID[id]...)
	sort.Slice(exts, func(i, j int) bool {
		if exts[i].Path != exts[j].Path {
			return exts[i].Path < exts[j].Path
		}
		return exts[i].Name < exts[j].Name
	})
	h := sha256.New()
	for _, e := range exts {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00", e.Name, e.Path, e.SortOrder)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// WriteAggregators emits one module per targeted resource id under aggDir.
// The module's default export is the array of the descriptors' default
// exports; list order carries no meaning. Returns the written paths.
func (ix *Index) WriteAggregators(aggDir string) ([]string, error) {
	ids := ix.IDs()
	if len(ids) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(aggDir, 0o755); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(ids))
	for _, id := range ids {
		path := filepath.Join(aggDir, id.Hash8()+".js")
		if err := os.WriteFile(path, []byte(ix.aggregatorSource(aggDir, id)), 0o644); err != nil {
			return written, fmt.Errorf("aggregator for %q: %w", id, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// aggregatorSource renders one aggregator module.
func (ix *Index) aggregatorSource(aggDir string, id resource.ID) string {
	var sb strings.Builder
	sb.WriteString("// Generated by graft for \"")
	sb.WriteString(id.String())
	sb.WriteString("\". Do not edit.\n")

	exts := ix.byID[id]
	names := make([]string, len(exts))
	for i, ext := range exts {
		names[i] = fmt.Sprintf("__graft_m%d", i)
		sb.WriteString("import ")
		sb.WriteString(names[i])
		sb.WriteString(" from \"")
		sb.WriteString(moduleSpecifier(aggDir, ext.Path))
		sb.WriteString("\";\n")
	}
	sb.WriteString("export default [")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString("];\n")
	return sb.String()
}

// moduleSpecifier builds the relative import path from the aggregator
// directory to an extension module.
func moduleSpecifier(aggDir, modulePath string) string {
	rel, err := filepath.Rel(aggDir, modulePath)
	if err != nil {
		rel = modulePath
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
