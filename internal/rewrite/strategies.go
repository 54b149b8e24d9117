package rewrite

import (
	"fmt"
	"strings"

	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/extension"
	"graft/internal/resource"
	"graft/internal/source"
	"graft/internal/token"
)

// rewriteState accumulates the edits for one module pass.
type rewriteState struct {
	rw  *Rewriter
	mod *ast.Module
	src string

	edits       []Edit
	imports     map[resource.ID]bool
	importOrder []resource.ID
	skipped     map[source.Span]bool
	dTemp       int
	eTemp       int
}

// skipMixedStatement reports and suppresses edits for statements that mix a
// destructuring pattern with other declarators. The pattern strategy replaces
// its whole statement, so partial edits next to it would splice into the
// replacement text. Declarators from one statement share the keyword span.
func (st *rewriteState) skipMixedStatement(ex *ast.Export) bool {
	mixed := false
	for _, other := range st.mod.Exports {
		if other == ex || other.Keyword != ex.Keyword {
			continue
		}
		if ex.Form == ast.ExportVarPattern || other.Form == ast.ExportVarPattern {
			mixed = true
			break
		}
	}
	if !mixed {
		return false
	}
	if st.skipped == nil {
		st.skipped = make(map[source.Span]bool)
	}
	if !st.skipped[ex.Keyword] {
		st.skipped[ex.Keyword] = true
		diag.ReportWarning(st.rw.opts.Reporter, diag.RwSkippedExport, ex.Span,
			"export statement mixes a destructuring pattern with other declarators; left unmodified")
	}
	return true
}

func (st *rewriteState) orderedImports() []resource.ID {
	return st.importOrder
}

func (st *rewriteState) text(start, end uint32) string {
	return st.src[start:end]
}

// aliasFor picks the runtime entry point for a kind.
func aliasFor(kind extension.Kind) string {
	switch kind {
	case extension.KindComponent:
		return ComponentAlias
	case extension.KindFunction:
		return FunctionAlias
	default:
		return ValueAlias
	}
}

// listExpr yields the extension-list argument: the aggregator binding when
// the id's extension set is known, otherwise null (runtime looks the list
// up in its own registry).
func (st *rewriteState) listExpr(rec ExportRecord) string {
	if st.rw.opts.HasExtensions != nil && st.rw.opts.HasExtensions(rec.ID) {
		if !st.imports[rec.ID] {
			st.imports[rec.ID] = true
			st.importOrder = append(st.importOrder, rec.ID)
		}
		return aggBinding(rec.ID)
	}
	return "null"
}

// callText renders the runtime call wrapping one original expression.
func (st *rewriteState) callText(rec ExportRecord, origText string) string {
	return aliasFor(rec.Kind) + `("` + rec.ID.String() + `", ` + st.listExpr(rec) + `, ` + origText + `)`
}

// exprText renders an expression, normalizing implicit arrow returns to
// block form so composition folds see one body shape.
func (st *rewriteState) exprText(e *ast.Expr) string {
	if e.ImplicitReturn {
		head := st.text(e.Span.Start, e.Body.Start)
		body := st.text(e.Body.Start, e.Body.End)
		return head + "{ return " + strings.TrimRight(body, " \t") + "; }"
	}
	return st.text(e.Span.Start, e.Span.End)
}

// alreadyWrapped detects an initializer that is a call into the runtime.
func (st *rewriteState) alreadyWrapped(e *ast.Expr) bool {
	if e == nil || e.TokFirst >= len(st.mod.Tokens) {
		return false
	}
	t := st.mod.Tokens[e.TokFirst]
	return t.Kind == token.Ident && strings.HasPrefix(t.Text, "__graft_")
}

// rewriteExport splices one export group. Records in a group share their
// ast.Export; patterns and specifier lists produce one record per binding.
func (st *rewriteState) rewriteExport(group []ExportRecord) {
	ex := group[0].Export
	switch ex.Form {
	case ast.ExportVar:
		st.rewriteVar(group[0])
	case ast.ExportFunc, ast.ExportClass:
		st.rewriteDecl(group[0])
	case ast.ExportDefault, ast.ExportDefaultName:
		st.rewriteDefault(group[0])
	case ast.ExportVarPattern:
		st.rewritePattern(group)
	case ast.ExportSpecifiers:
		st.rewriteSpecifiers(group)
	}
}

func (st *rewriteState) rewriteVar(rec ExportRecord) {
	ex := rec.Export
	if ex.Expr == nil || !st.rw.shouldWrap(rec) {
		return
	}
	if st.alreadyWrapped(ex.Expr) {
		diag.ReportInfo(st.rw.opts.Reporter, diag.RwAlreadyWrapped, ex.Expr.Span,
			fmt.Sprintf("export %q already routed through the runtime", rec.LocalName))
		return
	}
	if st.skipMixedStatement(ex) {
		return
	}
	st.edits = append(st.edits, Edit{
		Span:    ex.Expr.Span,
		NewText: st.callText(rec, st.exprText(ex.Expr)),
	})
}

// rewriteDecl turns `export function f() {}` / `export class C {}` into a
// wrapped const binding of the same name.
func (st *rewriteState) rewriteDecl(rec ExportRecord) {
	ex := rec.Export
	if ex.Expr == nil || rec.LocalName == "" || !st.rw.shouldWrap(rec) {
		return
	}
	st.edits = append(st.edits, Edit{
		Span: ex.Span,
		NewText: "export const " + rec.LocalName + " = " +
			st.callText(rec, st.text(ex.Expr.Span.Start, ex.Expr.Span.End)) + ";",
	})
}

func (st *rewriteState) rewriteDefault(rec ExportRecord) {
	ex := rec.Export
	if ex.Expr == nil || !st.rw.shouldWrap(rec) {
		return
	}
	if st.alreadyWrapped(ex.Expr) {
		diag.ReportInfo(st.rw.opts.Reporter, diag.RwAlreadyWrapped, ex.Expr.Span,
			"default export already routed through the runtime")
		return
	}
	st.edits = append(st.edits, Edit{
		Span:    ex.Expr.Span,
		NewText: st.callText(rec, st.exprText(ex.Expr)),
	})
}

// rewritePattern replaces a destructuring export statement with a temp
// binding for the right-hand side (evaluated once) plus one export per
// pattern entry.
func (st *rewriteState) rewritePattern(group []ExportRecord) {
	ex := group[0].Export
	if ex.Expr == nil {
		return
	}
	anyWrapped := false
	for _, rec := range group {
		if st.rw.shouldWrap(rec) {
			anyWrapped = true
			break
		}
	}
	if !anyWrapped {
		return
	}
	if st.skipMixedStatement(ex) {
		return
	}

	temp := fmt.Sprintf("%s%d", destructureTempPrefix, st.dTemp)
	st.dTemp++
	kw := declKeyword(st.text(ex.Keyword.End, ex.Expr.Span.Start))

	var sb strings.Builder
	sb.WriteString("const " + temp + " = " + st.text(ex.Expr.Span.Start, ex.Expr.Span.End) + ";")
	for _, rec := range group {
		spec := ex.Specs[rec.SpecIndex]
		access := temp + "." + spec.Local
		if spec.Index >= 0 {
			access = fmt.Sprintf("%s[%d]", temp, spec.Index)
		}
		val := access
		if st.rw.shouldWrap(rec) {
			val = st.callText(rec, access)
		}
		sb.WriteString("\nexport " + kw + " " + spec.Exported + " = " + val + ";")
	}
	st.edits = append(st.edits, Edit{Span: ex.Span, NewText: sb.String()})
}

// rewriteSpecifiers replaces `export { a, b as c }` with wrapped temp
// bindings re-exported under the original public names.
func (st *rewriteState) rewriteSpecifiers(group []ExportRecord) {
	ex := group[0].Export
	anyWrapped := false
	for _, rec := range group {
		if st.rw.shouldWrap(rec) && !strings.HasPrefix(rec.LocalName, "__graft_") {
			anyWrapped = true
			break
		}
	}
	if !anyWrapped {
		return
	}

	var decls strings.Builder
	names := make([]string, 0, len(group))
	for _, rec := range group {
		spec := ex.Specs[rec.SpecIndex]
		if !st.rw.shouldWrap(rec) || strings.HasPrefix(rec.LocalName, "__graft_") {
			names = append(names, specText(spec.Local, spec.Exported))
			continue
		}
		temp := fmt.Sprintf("%s%d", specifierTempPrefix, st.eTemp)
		st.eTemp++
		decls.WriteString("const " + temp + " = " + st.callText(rec, spec.Local) + ";\n")
		names = append(names, specText(temp, spec.Exported))
	}

	st.edits = append(st.edits, Edit{
		Span:    ex.Span,
		NewText: decls.String() + "export { " + strings.Join(names, ", ") + " };",
	})
}

func specText(local, exported string) string {
	if local == exported {
		return local
	}
	return local + " as " + exported
}

// declKeyword extracts const/let/var from the statement head.
func declKeyword(head string) string {
	fields := strings.Fields(head)
	if len(fields) > 0 {
		switch fields[0] {
		case "const", "let", "var":
			return fields[0]
		}
	}
	return "const"
}
