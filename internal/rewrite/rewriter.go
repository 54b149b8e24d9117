// Package rewrite turns a module's exported symbols into calls through the
// composition runtime. The transform is pure text to text: parse, build an
// immutable export-record table, splice span edits. Input is never mutated.
package rewrite

import (
	"fmt"
	"path/filepath"
	"strings"

	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/extension"
	"graft/internal/parser"
	"graft/internal/resource"
	"graft/internal/source"
)

// Options tunes one rewriter instance.
type Options struct {
	// HasExtensions answers whether a resource id has at least one
	// registered extension. Exports without any are left untouched.
	HasExtensions func(resource.ID) bool
	// InstrumentAll wraps every eligible export unconditionally, for
	// setups where extension sets are not known ahead of time.
	InstrumentAll bool
	// AggDir is the absolute directory aggregator imports point at. Empty
	// means the module's own package root plus its configured discover dir,
	// which only matches build output for single-package workspaces; builds
	// spanning nested packages must pass the directory they write to.
	AggDir   string
	Reporter diag.Reporter
}

// Rewriter rewrites modules against one resolver. Safe for concurrent use
// as long as the Reporter is.
type Rewriter struct {
	resolver *resource.Resolver
	opts     Options
}

func New(resolver *resource.Resolver, opts Options) *Rewriter {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	return &Rewriter{resolver: resolver, opts: opts}
}

// ExportRecord is one exported symbol found during a rewrite pass. The
// table is built per module and discarded after the pass.
type ExportRecord struct {
	Export *ast.Export
	// SpecIndex points into Export.Specs for pattern and specifier-list
	// entries, -1 otherwise.
	SpecIndex int
	// LocalName is the underlying binding, "" for inline default exprs.
	LocalName string
	// PublicName is the exported name, "" for default exports.
	PublicName string
	IsDefault  bool
	ID         resource.ID
	Kind       extension.Kind
}

// Result is the outcome of rewriting one module.
type Result struct {
	Output  string
	Changed bool
	Records []ExportRecord
}

// EligiblePath reports whether a module path may be rewritten at all:
// dependency trees, type-declaration files, and generated runtime files
// are off limits.
func EligiblePath(path string) bool {
	p := filepath.ToSlash(path)
	switch {
	case strings.Contains(p, "/node_modules/"):
		return false
	case strings.HasSuffix(p, ".d.ts"):
		return false
	case strings.Contains(p, "/.graft/"):
		return false
	}
	return true
}

// Rewrite routes the module's exports through the composition runtime.
// Parse failures and unresolvable resource ids are fatal for the module:
// the original text comes back unchanged alongside the error. Everything
// else degrades to "unmodified". Rewrite(Rewrite(x)) == Rewrite(x).
func (rw *Rewriter) Rewrite(fset *source.FileSet, absPath string, src string) (Result, error) {
	unchanged := Result{Output: src}
	if !EligiblePath(absPath) {
		return unchanged, nil
	}

	fileID := fset.Add(absPath, []byte(src), 0)
	file := fset.Get(fileID)
	text := string(file.Content)
	unchanged.Output = text

	parseBag := diag.NewBag(64)
	mod := parser.Parse(file, parser.Options{Reporter: diag.BagReporter{Bag: parseBag}})
	for _, d := range parseBag.Items() {
		rw.opts.Reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
	if parseBag.HasErrors() {
		return unchanged, fmt.Errorf("%s: parse failed", absPath)
	}

	if len(mod.Directives) > 0 && mod.Directives[0].Value == OptOutDirective {
		return unchanged, nil
	}
	if _, ok := mod.ImportOf(RuntimeModule); ok {
		// Already routed through the runtime.
		return unchanged, nil
	}

	records, err := rw.Enumerate(mod, absPath)
	if err != nil {
		diag.ReportError(rw.opts.Reporter, diag.ResNoManifest, source.Span{File: fileID}, err.Error())
		return unchanged, err
	}

	st := &rewriteState{
		rw:      rw,
		mod:     mod,
		src:     text,
		imports: make(map[resource.ID]bool),
	}
	for _, group := range groupByExport(records) {
		st.rewriteExport(group)
	}
	if len(st.edits) == 0 {
		return Result{Output: text, Records: records}, nil
	}

	header, err := rw.importHeader(absPath, st.orderedImports())
	if err != nil {
		diag.ReportError(rw.opts.Reporter, diag.ResBadManifest, source.Span{File: fileID}, err.Error())
		return unchanged, err
	}
	st.edits = append(st.edits, Edit{
		Span:    source.Span{File: fileID, Start: mod.PrologueEnd(), End: mod.PrologueEnd()},
		NewText: header,
	})

	out, err := applyEdits(text, st.edits)
	if err != nil {
		diag.ReportError(rw.opts.Reporter, diag.RwInternal, source.Span{File: fileID}, err.Error())
		return unchanged, err
	}
	return Result{Output: out, Changed: true, Records: records}, nil
}

// Enumerate builds the export-record table for a parsed module, resolving
// a resource id and inferring a kind for every exported symbol.
func (rw *Rewriter) Enumerate(mod *ast.Module, absPath string) ([]ExportRecord, error) {
	records := make([]ExportRecord, 0, len(mod.Exports))
	add := func(rec ExportRecord) error {
		// Ids carry the public name; consumers never see the local one.
		name := rec.PublicName
		if name == "" {
			name = rec.LocalName
		}
		id, err := rw.resolver.Resolve(absPath, name, rec.IsDefault)
		if err != nil {
			return err
		}
		rec.ID = id
		records = append(records, rec)
		return nil
	}

	for _, ex := range mod.Exports {
		switch ex.Form {
		case ast.ExportVar:
			if ex.Expr == nil {
				continue
			}
			if err := add(ExportRecord{
				Export: ex, SpecIndex: -1,
				LocalName: ex.LocalName, PublicName: ex.ExportedName,
				Kind: classifyExpr(mod, ex.Expr),
			}); err != nil {
				return nil, err
			}

		case ast.ExportFunc, ast.ExportClass:
			if err := add(ExportRecord{
				Export: ex, SpecIndex: -1,
				LocalName: ex.LocalName, PublicName: ex.ExportedName,
				Kind: classifyExpr(mod, ex.Expr),
			}); err != nil {
				return nil, err
			}

		case ast.ExportDefault:
			if err := add(ExportRecord{
				Export: ex, SpecIndex: -1,
				LocalName: ex.LocalName, IsDefault: true,
				Kind: classifyExpr(mod, ex.Expr),
			}); err != nil {
				return nil, err
			}

		case ast.ExportDefaultName:
			if err := add(ExportRecord{
				Export: ex, SpecIndex: -1,
				LocalName: ex.LocalName, IsDefault: true,
				Kind: classifyLocal(mod, ex.LocalName),
			}); err != nil {
				return nil, err
			}

		case ast.ExportVarPattern:
			for i, s := range ex.Specs {
				// For patterns the binding is the aliased side.
				if err := add(ExportRecord{
					Export: ex, SpecIndex: i,
					LocalName: s.Exported, PublicName: s.Exported,
					Kind: extension.KindValue,
				}); err != nil {
					return nil, err
				}
			}

		case ast.ExportSpecifiers:
			for i, s := range ex.Specs {
				isDefault := s.Exported == "default"
				if err := add(ExportRecord{
					Export: ex, SpecIndex: i,
					LocalName: s.Local, PublicName: s.Exported, IsDefault: isDefault,
					Kind: classifyLocal(mod, s.Local),
				}); err != nil {
					return nil, err
				}
			}

		case ast.ExportReExport:
			// Rewritten at the owning module, not here.
		}
	}
	return records, nil
}

// shouldWrap decides whether one record gets instrumented.
func (rw *Rewriter) shouldWrap(rec ExportRecord) bool {
	if rw.opts.InstrumentAll {
		return true
	}
	return rw.opts.HasExtensions != nil && rw.opts.HasExtensions(rec.ID)
}

// importHeader renders the runtime import plus one aggregator import per
// wrapped id with known extensions, as a single insertion.
func (rw *Rewriter) importHeader(absPath string, ids []resource.ID) (string, error) {
	var sb strings.Builder
	sb.WriteString(runtimeImport)
	sb.WriteByte('\n')

	if len(ids) > 0 {
		aggDir, err := rw.aggDir(absPath)
		if err != nil {
			return "", err
		}
		moduleDir := filepath.Dir(absPath)
		for _, id := range ids {
			sb.WriteString("import ")
			sb.WriteString(aggBinding(id))
			sb.WriteString(` from "`)
			sb.WriteString(aggImportPath(moduleDir, aggDir, id))
			sb.WriteString("\";\n")
		}
	}
	return sb.String(), nil
}

// aggDir locates the aggregator output directory for a module's workspace.
func (rw *Rewriter) aggDir(absPath string) (string, error) {
	if rw.opts.AggDir != "" {
		return rw.opts.AggDir, nil
	}
	root, err := rw.resolver.PackageRoot(absPath)
	if err != nil {
		return "", err
	}
	cfg, err := rw.resolver.ConfigFor(filepath.Dir(absPath))
	if err != nil {
		return "", err
	}
	return filepath.Join(root, cfg.Discover.Dir), nil
}

func groupByExport(records []ExportRecord) [][]ExportRecord {
	groups := make([][]ExportRecord, 0, len(records))
	for i := 0; i < len(records); {
		j := i + 1
		for j < len(records) && records[j].Export == records[i].Export {
			j++
		}
		groups = append(groups, records[i:j])
		i = j
	}
	return groups
}
