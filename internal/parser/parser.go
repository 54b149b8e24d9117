// Package parser recovers the top-level structure of a JavaScript or
// TypeScript module: directive prologue, imports, declarations, and every
// export form the rewriter knows how to instrument. Statement bodies are
// consumed with bracket balancing; no expression trees are built.
package parser

import (
	"strings"

	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/lexer"
	"graft/internal/source"
	"graft/internal/token"
)

type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	reporter diag.Reporter
	mod      *ast.Module
}

// Options configures a parse.
type Options struct {
	Reporter diag.Reporter
}

// Parse tokenizes and parses one module. Lexical and syntactic diagnostics
// flow through opts.Reporter; a module with error diagnostics must not be
// rewritten.
func Parse(file *source.File, opts Options) *ast.Module {
	rep := opts.Reporter
	if rep == nil {
		rep = diag.NopReporter{}
	}
	lx := lexer.New(file, lexer.Options{
		Reporter: rep,
		// Plain .ts reserves '<' in expression position for type
		// assertions; everything else may contain JSX.
		Markup: !strings.HasSuffix(file.Path, ".ts"),
	})
	toks := lx.Tokens()

	p := &Parser{
		file:     file,
		toks:     toks,
		reporter: rep,
		mod:      ast.NewModule(file, toks),
	}
	p.parsePrologue()
	p.parseStatements()
	p.finalize()
	return p.mod
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) at(kind token.Kind) bool {
	return p.toks[p.pos].Kind == kind
}

func (p *Parser) peekKind() token.Kind {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1].Kind
	}
	return token.EOF
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(kind token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	diag.ReportError(p.reporter, code, p.cur().Span, msg)
	return p.cur(), false
}

func (p *Parser) eatSemicolon() {
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// parsePrologue consumes leading string-literal statements.
func (p *Parser) parsePrologue() {
	for p.at(token.String) {
		// A directive is a string expression statement: the literal must be
		// the whole statement.
		nextKind := p.peekKind()
		isStatement := nextKind == token.Semicolon || nextKind == token.EOF ||
			(p.pos+1 < len(p.toks) && p.toks[p.pos+1].NewlineBefore)
		if !isStatement {
			return
		}
		lit := p.advance()
		p.mod.Directives = append(p.mod.Directives, ast.Directive{
			Span:  lit.Span,
			Value: unquote(lit.Text),
		})
		p.eatSemicolon()
	}
}

func (p *Parser) parseStatements() {
	for !p.at(token.EOF) {
		start := p.pos
		switch p.cur().Kind {
		case token.KwImport:
			// Dynamic import() and import.meta are expressions, not
			// declarations.
			if k := p.peekKind(); k == token.LParen || k == token.Dot {
				p.skipStatement()
			} else {
				p.parseImport()
			}

		case token.KwExport:
			p.parseExport()

		case token.KwConst, token.KwLet, token.KwVar:
			p.parseVarStatement(source.Span{}, false)

		case token.KwAsync:
			if p.peekKind() == token.KwFunction {
				p.parseFuncDecl(source.Span{}, false, false)
			} else {
				p.skipStatement()
			}

		case token.KwFunction:
			p.parseFuncDecl(source.Span{}, false, false)

		case token.KwClass:
			p.parseClassDecl(source.Span{}, false)

		case token.KwDeclare, token.KwInterface, token.KwEnum, token.KwNamespace, token.KwType:
			p.skipStatement()

		default:
			p.skipStatement()
		}

		if p.pos == start {
			// Defensive progress guarantee.
			p.advance()
		}
	}
}

// skipStatement consumes one statement with bracket balancing. It stops
// after a top-level semicolon, or before a token that starts a new statement
// on a fresh line (automatic semicolon insertion).
func (p *Parser) skipStatement() {
	depth := 0
	started := false
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return
		}
		if depth == 0 {
			if t.Kind == token.Semicolon {
				p.advance()
				return
			}
			if started && t.NewlineBefore && canStartStatement(t.Kind) {
				return
			}
			if t.Kind == token.RParen || t.Kind == token.RBrace || t.Kind == token.RBracket {
				// Stray closer; let the caller's loop handle it.
				p.advance()
				return
			}
		}
		switch t.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		}
		p.advance()
		started = true
	}
}

func canStartStatement(k token.Kind) bool {
	switch k {
	case token.KwExport, token.KwImport, token.KwConst, token.KwLet, token.KwVar,
		token.KwFunction, token.KwClass, token.KwInterface, token.KwDeclare,
		token.KwEnum, token.KwNamespace, token.KwAsync:
		return true
	}
	return false
}

// finalize resolves name-referencing export forms against the declaration
// table. Function declarations hoist, so resolution must happen after the
// whole module is parsed.
func (p *Parser) finalize() {
	for _, ex := range p.mod.Exports {
		switch ex.Form {
		case ast.ExportDefaultName:
			if d, ok := p.mod.LookupDecl(ex.LocalName); ok {
				ex.Decl = d
			}
		case ast.ExportSpecifiers:
			// Specs resolve individually during rewriting; nothing to do.
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
