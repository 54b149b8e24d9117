// Package ast models the top level of a JavaScript/TypeScript module: its
// directive prologue, imports, declarations, and exports. Expressions are
// not parsed into trees; they are token ranges with enough structure
// recovered (callable form, parameter list, body) for classification and
// span-based rewriting.
package ast

import (
	"graft/internal/source"
	"graft/internal/token"
)

// Module is the parse result for one source file.
type Module struct {
	File       *source.File
	Tokens     []token.Token
	Directives []Directive
	Imports    []Import
	Decls      []*Decl
	Exports    []*Export

	declByName map[string]*Decl
}

// Directive is one string-literal statement from the module prologue.
type Directive struct {
	Span  source.Span
	Value string // without quotes
}

// Import is one static import declaration.
type Import struct {
	Span      source.Span
	Specifier string // module specifier without quotes
	Clause    string // raw text between 'import' and 'from'
	// Bindings maps local names to the imported name ("default" for the
	// default binding, "*" for namespace imports).
	Bindings map[string]string
}

// DeclKind distinguishes top-level declaration statements.
type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclFunc
	DeclClass
)

// Decl is one top-level binding. A multi-declarator statement produces one
// Decl per declarator.
type Decl struct {
	Kind     DeclKind
	Name     string
	NameSpan source.Span
	// Span covers the whole statement for function/class declarations and
	// the single declarator (name through initializer) for var forms.
	Span source.Span
	Init *Expr // nil for class declarations and uninitialized vars
}

// Expr is a span-delimited expression with callable structure recovered.
type Expr struct {
	Span     source.Span
	TokFirst int // index into Module.Tokens, inclusive
	TokLast  int // inclusive

	Callable bool
	Arrow    bool
	Async    bool
	// ImplicitReturn is set for arrows whose body is a bare expression.
	ImplicitReturn bool
	// HeadEnd is the byte offset just past the '=>' for arrows, or past the
	// parameter list (and any return type) for function expressions.
	HeadEnd uint32
	// Body is the callable body: the block including braces, or the
	// implicit-return expression.
	Body         source.Span
	BodyTokFirst int
	BodyTokLast  int
}

// ExportForm identifies how an export is written in source.
type ExportForm uint8

const (
	// ExportVar is `export const/let/var name = init`.
	ExportVar ExportForm = iota
	// ExportVarPattern is `export const {a, b} = init` or the array form.
	ExportVarPattern
	// ExportFunc is `export [async] function name() {}`.
	ExportFunc
	// ExportClass is `export class Name {}`.
	ExportClass
	// ExportDefault is `export default <expr>`.
	ExportDefault
	// ExportDefaultName is `export default <identifier>` naming a local decl.
	ExportDefaultName
	// ExportSpecifiers is `export { a, b as c }` over local bindings.
	ExportSpecifiers
	// ExportReExport is `export ... from "spec"`; never rewritten here.
	ExportReExport
)

// ExportSpec is one entry of a specifier list or destructuring pattern.
type ExportSpec struct {
	Span     source.Span
	Local    string // local binding, or source property for patterns
	Exported string
	// Index is the element position for array patterns, -1 otherwise.
	Index int
}

// Export is one exported symbol occurrence.
type Export struct {
	Form ExportForm
	// Span covers the whole export statement.
	Span source.Span
	// Keyword is the span of the leading 'export' token.
	Keyword source.Span
	// LocalName is the underlying binding name, empty for inline default
	// expressions.
	LocalName string
	// ExportedName is the public name; empty for default exports.
	ExportedName string
	IsDefault    bool
	// Expr is the initializer or default expression, nil for specifier and
	// re-export forms.
	Expr *Expr
	// Decl is the resolved local declaration for ExportDefaultName and
	// ExportSpecifiers entries (resolved per specifier on those forms).
	Decl *Decl
	// Specs holds specifier-list or pattern entries.
	Specs []ExportSpec
}

// NewModule wires the declaration index for name resolution.
func NewModule(file *source.File, tokens []token.Token) *Module {
	return &Module{
		File:       file,
		Tokens:     tokens,
		declByName: make(map[string]*Decl),
	}
}

// AddDecl records a top-level declaration.
func (m *Module) AddDecl(d *Decl) {
	m.Decls = append(m.Decls, d)
	if d.Name != "" {
		m.declByName[d.Name] = d
	}
}

// LookupDecl resolves a top-level binding by name.
func (m *Module) LookupDecl(name string) (*Decl, bool) {
	d, ok := m.declByName[name]
	return d, ok
}

// HasDirective reports whether the prologue contains the given directive.
func (m *Module) HasDirective(value string) bool {
	for _, d := range m.Directives {
		if d.Value == value {
			return true
		}
	}
	return false
}

// ImportOf returns the import declaration for a module specifier, if present.
func (m *Module) ImportOf(specifier string) (*Import, bool) {
	for i := range m.Imports {
		if m.Imports[i].Specifier == specifier {
			return &m.Imports[i], true
		}
	}
	return nil, false
}

// PrologueEnd returns the byte offset just past the directive prologue,
// where generated imports are inserted.
func (m *Module) PrologueEnd() uint32 {
	if len(m.Directives) == 0 {
		return 0
	}
	last := m.Directives[len(m.Directives)-1].Span.End
	content := m.File.Content
	// Include the statement terminator and trailing newline, if present.
	for int(last) < len(content) && (content[last] == ';' || content[last] == '\r') {
		last++
	}
	if int(last) < len(content) && content[last] == '\n' {
		last++
	}
	return last
}
