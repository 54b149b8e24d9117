package parser

import (
	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/source"
	"graft/internal/token"
)

// parseExport dispatches on the export statement forms:
//
//	export const/let/var ...
//	export [async] function name() {}
//	export class Name {}
//	export default <expr | function | class | identifier>
//	export { a, b as c } [from "spec"]
//	export * [as ns] from "spec"
//	export type/interface ... (TS, ignored)
func (p *Parser) parseExport() {
	kw := p.advance() // 'export'

	switch p.cur().Kind {
	case token.KwDefault:
		p.advance()
		p.parseExportDefault(kw.Span)

	case token.KwConst, token.KwLet, token.KwVar:
		p.parseVarStatement(kw.Span, true)

	case token.KwFunction:
		p.parseFuncDecl(kw.Span, true, false)

	case token.KwAsync:
		if p.peekKind() == token.KwFunction {
			p.parseFuncDecl(kw.Span, true, false)
		} else {
			diag.ReportError(p.reporter, diag.SynUnexpectedToken, p.cur().Span,
				"expected 'function' after 'export async'")
			p.skipStatement()
		}

	case token.KwClass:
		p.parseClassDecl(kw.Span, true)

	case token.LBrace:
		p.parseExportSpecifiers(kw.Span)

	case token.Op:
		if p.cur().Text == "*" {
			// export * from / export * as ns from: pass-through re-export.
			p.mod.Exports = append(p.mod.Exports, &ast.Export{
				Form:    ast.ExportReExport,
				Span:    kw.Span.Cover(p.cur().Span),
				Keyword: kw.Span,
			})
		}
		p.skipStatement()

	case token.KwType, token.KwInterface, token.KwDeclare, token.KwEnum, token.KwNamespace:
		p.skipStatement()

	default:
		diag.ReportError(p.reporter, diag.SynUnexpectedToken, p.cur().Span,
			"unsupported export statement")
		p.skipStatement()
	}
}

// parseExportDefault handles the expression after `export default`.
func (p *Parser) parseExportDefault(exportKw source.Span) {
	if p.at(token.KwFunction) || (p.at(token.KwAsync) && p.peekKind() == token.KwFunction) {
		p.parseFuncDecl(exportKw, true, true)
		return
	}

	e := p.parseExpr(false)
	p.eatSemicolon()
	if e == nil {
		diag.ReportError(p.reporter, diag.SynExpectExpression, p.cur().Span,
			"expected expression after 'export default'")
		return
	}

	ex := &ast.Export{
		Form:      ast.ExportDefault,
		Span:      exportKw.Cover(e.Span),
		Keyword:   exportKw,
		IsDefault: true,
		Expr:      e,
	}
	if name, ok := p.exprIsLoneIdent(e); ok {
		ex.Form = ast.ExportDefaultName
		ex.LocalName = name
	}
	p.mod.Exports = append(p.mod.Exports, ex)
}

// parseExportSpecifiers handles `export { a, b as c }` and the re-export
// variant with a trailing `from "spec"`.
func (p *Parser) parseExportSpecifiers(exportKw source.Span) {
	p.advance() // '{'
	specs := make([]ast.ExportSpec, 0, 4)

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.KwType) && p.peekKind() != token.Comma && p.peekKind() != token.RBrace && p.peekKind() != token.KwAs {
			// Type-only specifier (TS): consume and drop.
			p.advance()
			p.advance()
			if p.at(token.KwAs) {
				p.advance()
				p.advance()
			}
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		local := p.advance()
		exported := local
		if p.at(token.KwAs) {
			p.advance()
			exported = p.advance()
		}
		if local.Kind != token.Ident {
			diag.ReportError(p.reporter, diag.SynBadExportSpecifier, local.Span,
				"expected local binding name in export specifier")
			p.skipStatement()
			return
		}
		specs = append(specs, ast.ExportSpec{
			Span:     local.Span.Cover(exported.Span),
			Local:    local.Text,
			Exported: exportedSpecName(exported),
			Index:    -1,
		})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "unterminated export specifier list")
	if !ok {
		p.skipStatement()
		return
	}

	span := exportKw.Cover(closeTok.Span)
	if p.at(token.KwFrom) {
		// Re-export: the owning module is the rewrite point, not this one.
		p.skipStatement()
		p.mod.Exports = append(p.mod.Exports, &ast.Export{
			Form:    ast.ExportReExport,
			Span:    span,
			Keyword: exportKw,
		})
		return
	}
	p.eatSemicolon()
	if p.pos > 0 {
		span = span.Cover(p.toks[p.pos-1].Span)
	}
	p.mod.Exports = append(p.mod.Exports, &ast.Export{
		Form:    ast.ExportSpecifiers,
		Span:    span,
		Keyword: exportKw,
		Specs:   specs,
	})
}

// exportedSpecName handles `a as default` and string alias names.
func exportedSpecName(t token.Token) string {
	switch t.Kind {
	case token.KwDefault:
		return "default"
	case token.String:
		return unquote(t.Text)
	default:
		return t.Text
	}
}
