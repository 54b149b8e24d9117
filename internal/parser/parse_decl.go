package parser

import (
	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/source"
	"graft/internal/token"
)

// parseVarStatement handles const/let/var statements, exported or not.
// exportKw is the span of the 'export' keyword when exported is true.
func (p *Parser) parseVarStatement(exportKw source.Span, exported bool) {
	declKw := p.advance() // const/let/var
	stmtStart := declKw.Span
	if exported {
		stmtStart = exportKw
	}

	for {
		switch p.cur().Kind {
		case token.Ident:
			name := p.advance()
			p.skipTypeAnnotation()
			var init *ast.Expr
			if p.at(token.Assign) {
				p.advance()
				init = p.parseExpr(true)
			}
			span := name.Span
			if init != nil {
				span = span.Cover(init.Span)
			}
			decl := &ast.Decl{
				Kind:     ast.DeclVar,
				Name:     name.Text,
				NameSpan: name.Span,
				Span:     span,
				Init:     init,
			}
			p.mod.AddDecl(decl)
			if exported {
				p.mod.Exports = append(p.mod.Exports, &ast.Export{
					Form:         ast.ExportVar,
					Span:         stmtStart.Cover(span),
					Keyword:      exportKw,
					LocalName:    name.Text,
					ExportedName: name.Text,
					Expr:         init,
				})
			}

		case token.LBrace, token.LBracket:
			p.parsePatternDeclarator(stmtStart, exportKw, exported)

		default:
			diag.ReportError(p.reporter, diag.SynExpectIdentifier, p.cur().Span,
				"expected binding name in declaration")
			p.skipStatement()
			return
		}

		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.eatSemicolon()

	// Extend exported statement spans through the terminator so pattern
	// rewrites can replace the whole statement.
	if exported && len(p.mod.Exports) > 0 {
		last := p.mod.Exports[len(p.mod.Exports)-1]
		if last.Form == ast.ExportVarPattern && p.pos > 0 {
			last.Span = last.Span.Cover(p.toks[p.pos-1].Span)
		}
	}
}

// parsePatternDeclarator handles `{a, b: c} = init` and `[x, y] = init`
// declarators. Only flat patterns of plain bindings are instrumentable;
// anything richer (defaults, nesting, rest) keeps its export untouched.
func (p *Parser) parsePatternDeclarator(stmtStart, exportKw source.Span, exported bool) {
	open := p.advance()
	isArray := open.Kind == token.LBracket
	closeKind := token.RBrace
	if isArray {
		closeKind = token.RBracket
	}

	specs := make([]ast.ExportSpec, 0, 4)
	simple := true
	index := 0
	depth := 0
	for !p.at(token.EOF) {
		if depth == 0 && p.at(closeKind) {
			break
		}
		t := p.cur()
		switch t.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
			simple = false
			p.advance()
		case token.RParen, token.RBrace, token.RBracket:
			depth--
			p.advance()
		case token.Ident:
			if depth > 0 {
				p.advance()
				continue
			}
			prop := p.advance()
			local := prop
			if !isArray && p.at(token.Colon) {
				p.advance()
				if !p.at(token.Ident) {
					simple = false
					continue
				}
				local = p.advance()
			}
			if p.at(token.Assign) || p.at(token.Ellipsis) {
				simple = false
			}
			idx := -1
			if isArray {
				idx = index
			}
			specs = append(specs, ast.ExportSpec{
				Span:     prop.Span.Cover(local.Span),
				Local:    prop.Text,
				Exported: local.Text,
				Index:    idx,
			})
		case token.Comma:
			if depth == 0 {
				index++
			}
			p.advance()
		case token.Ellipsis:
			simple = false
			p.advance()
		default:
			simple = false
			p.advance()
		}
	}
	closeTok, _ := p.expect(closeKind, diag.SynUnclosedDelimiter, "unterminated binding pattern")
	p.skipTypeAnnotation()

	var init *ast.Expr
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr(true)
	}

	// Every pattern binding becomes a top-level decl for name resolution.
	for _, s := range specs {
		p.mod.AddDecl(&ast.Decl{
			Kind:     ast.DeclVar,
			Name:     s.Exported,
			NameSpan: s.Span,
			Span:     s.Span,
		})
	}

	if !exported || init == nil {
		return
	}
	if !simple {
		diag.ReportInfo(p.reporter, diag.RwSkippedExport, open.Span.Cover(closeTok.Span),
			"destructured export uses defaults, nesting, or rest; left unmodified")
		return
	}
	p.mod.Exports = append(p.mod.Exports, &ast.Export{
		Form:    ast.ExportVarPattern,
		Span:    stmtStart.Cover(init.Span),
		Keyword: exportKw,
		Expr:    init,
		Specs:   specs,
	})
}

// parseFuncDecl handles `[async] function name() {}` declarations,
// optionally exported or default-exported.
func (p *Parser) parseFuncDecl(exportKw source.Span, exported, isDefault bool) {
	start := p.cur().Span
	if exported {
		start = exportKw
	}
	e := p.parseExpr(false)
	if e == nil {
		return
	}

	name := p.functionName(e)
	if name != "" {
		p.mod.AddDecl(&ast.Decl{
			Kind:     ast.DeclFunc,
			Name:     name,
			NameSpan: e.Span,
			Span:     e.Span,
			Init:     e,
		})
	}
	p.eatSemicolon()

	if !exported {
		return
	}
	form := ast.ExportFunc
	exportedName := name
	if isDefault {
		form = ast.ExportDefault
		exportedName = ""
	}
	p.mod.Exports = append(p.mod.Exports, &ast.Export{
		Form:         form,
		Span:         start.Cover(e.Span),
		Keyword:      exportKw,
		LocalName:    name,
		ExportedName: exportedName,
		IsDefault:    isDefault,
		Expr:         e,
	})
}

// functionName extracts the declared name from a function expression range.
func (p *Parser) functionName(e *ast.Expr) string {
	i := e.TokFirst
	if p.toks[i].Kind == token.KwAsync {
		i++
	}
	if i > e.TokLast || p.toks[i].Kind != token.KwFunction {
		return ""
	}
	i++
	if i <= e.TokLast && p.toks[i].Kind == token.Op && p.toks[i].Text == "*" {
		i++
	}
	if i <= e.TokLast && p.toks[i].Kind == token.Ident {
		return p.toks[i].Text
	}
	return ""
}

// parseClassDecl handles `class Name ... { ... }` declarations.
func (p *Parser) parseClassDecl(exportKw source.Span, exported bool) {
	start := p.cur().Span
	if exported {
		start = exportKw
	}
	e := p.parseExpr(false)
	if e == nil {
		return
	}
	name := ""
	if e.TokFirst+1 <= e.TokLast && p.toks[e.TokFirst+1].Kind == token.Ident {
		name = p.toks[e.TokFirst+1].Text
	}
	if name != "" {
		p.mod.AddDecl(&ast.Decl{
			Kind:     ast.DeclClass,
			Name:     name,
			NameSpan: e.Span,
			Span:     e.Span,
			Init:     e,
		})
	}
	p.eatSemicolon()

	if exported && name != "" {
		p.mod.Exports = append(p.mod.Exports, &ast.Export{
			Form:         ast.ExportClass,
			Span:         start.Cover(e.Span),
			Keyword:      exportKw,
			LocalName:    name,
			ExportedName: name,
			Expr:         e,
		})
	}
}
