package parser

import (
	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/token"
)

// parseImport handles static import declarations:
//
//	import "spec";
//	import def from "spec";
//	import * as ns from "spec";
//	import { a, b as c } from "spec";
//	import def, { a } from "spec";
//	import type { T } from "spec";   // bindings ignored
func (p *Parser) parseImport() {
	kw := p.advance() // 'import'
	imp := ast.Import{Bindings: make(map[string]string)}

	if p.at(token.String) {
		spec := p.advance()
		imp.Span = kw.Span.Cover(spec.Span)
		imp.Specifier = unquote(spec.Text)
		p.mod.Imports = append(p.mod.Imports, imp)
		p.eatSemicolon()
		return
	}

	typeOnly := false
	if p.at(token.KwType) && p.peekKind() != token.Comma && p.peekKind() != token.KwFrom {
		typeOnly = true
		p.advance()
	}

	clauseStart := p.cur().Span.Start
	clauseEnd := clauseStart

	// Default binding.
	if p.at(token.Ident) {
		name := p.advance()
		clauseEnd = name.Span.End
		if !typeOnly {
			imp.Bindings[name.Text] = "default"
		}
		if p.at(token.Comma) {
			p.advance()
		}
	}

	switch p.cur().Kind {
	case token.Op:
		if p.cur().Text == "*" {
			p.advance()
			if _, ok := p.expect(token.KwAs, diag.SynBadImport, "expected 'as' after '*'"); !ok {
				p.skipStatement()
				return
			}
			name, ok := p.expect(token.Ident, diag.SynBadImport, "expected namespace binding name")
			if !ok {
				p.skipStatement()
				return
			}
			clauseEnd = name.Span.End
			if !typeOnly {
				imp.Bindings[name.Text] = "*"
			}
		}
	case token.LBrace:
		p.advance()
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			// 'type' prefix on individual specifiers (TS).
			specTypeOnly := typeOnly
			if p.at(token.KwType) && p.peekKind() != token.Comma && p.peekKind() != token.RBrace && p.peekKind() != token.KwAs {
				specTypeOnly = true
				p.advance()
			}
			imported := p.advance()
			local := imported
			if p.at(token.KwAs) {
				p.advance()
				local = p.advance()
			}
			if !specTypeOnly && local.Kind == token.Ident {
				imp.Bindings[local.Text] = importedName(imported)
			}
			clauseEnd = local.Span.End
			if p.at(token.Comma) {
				p.advance()
			}
		}
		if rb, ok := p.expect(token.RBrace, diag.SynBadImport, "unterminated import clause"); ok {
			clauseEnd = rb.Span.End
		}
	}

	imp.Clause = string(p.file.Content[clauseStart:clauseEnd])

	if _, ok := p.expect(token.KwFrom, diag.SynBadImport, "expected 'from' in import declaration"); !ok {
		p.skipStatement()
		return
	}
	spec, ok := p.expect(token.String, diag.SynBadImport, "expected module specifier string")
	if !ok {
		p.skipStatement()
		return
	}
	imp.Span = kw.Span.Cover(spec.Span)
	imp.Specifier = unquote(spec.Text)
	p.mod.Imports = append(p.mod.Imports, imp)
	p.eatSemicolon()
}

// importedName returns the exported-side name of an import specifier token,
// which may be an identifier, 'default', or a string alias.
func importedName(t token.Token) string {
	switch t.Kind {
	case token.String:
		return unquote(t.Text)
	case token.KwDefault:
		return "default"
	default:
		return t.Text
	}
}
