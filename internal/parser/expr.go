package parser

import (
	"graft/internal/ast"
	"graft/internal/token"
)

// parseExpr consumes one expression as a balanced token range and recovers
// its callable shape. stopAtComma ends the expression at a top-level comma
// (declarator lists); top-level semicolons and ASI boundaries always end it.
func (p *Parser) parseExpr(stopAtComma bool) *ast.Expr {
	first := p.pos
	depth := 0
	for {
		t := p.cur()
		if t.Kind == token.EOF || t.Kind == token.Invalid {
			break
		}
		if depth == 0 {
			if t.Kind == token.Semicolon {
				break
			}
			if stopAtComma && t.Kind == token.Comma {
				break
			}
			if t.Kind == token.RParen || t.Kind == token.RBrace || t.Kind == token.RBracket {
				break
			}
			if p.pos > first && t.NewlineBefore && canStartStatement(t.Kind) {
				break
			}
		}
		switch t.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		}
		p.advance()
	}

	if p.pos == first {
		return nil
	}
	e := &ast.Expr{
		TokFirst: first,
		TokLast:  p.pos - 1,
		Span:     p.toks[first].Span.Cover(p.toks[p.pos-1].Span),
	}
	p.analyzeCallable(e)
	return e
}

// analyzeCallable recognizes function expressions and arrow functions at the
// head of the expression and records their body spans.
func (p *Parser) analyzeCallable(e *ast.Expr) {
	i := e.TokFirst
	async := false
	if p.toks[i].Kind == token.KwAsync && i < e.TokLast {
		async = true
		i++
	}

	switch p.toks[i].Kind {
	case token.KwFunction:
		p.analyzeFunctionExpr(e, i, async)

	case token.Lt:
		// TS generic arrow: <T>(args) => body
		j, ok := matchAngle(p.toks, i, e.TokLast)
		if !ok || j+1 > e.TokLast || p.toks[j+1].Kind != token.LParen {
			return
		}
		p.analyzeParenArrow(e, j+1, async)

	case token.LParen:
		p.analyzeParenArrow(e, i, async)

	case token.Ident:
		if i+1 <= e.TokLast && p.toks[i+1].Kind == token.Arrow {
			p.markArrow(e, i+1, async)
		}
	}
}

func (p *Parser) analyzeFunctionExpr(e *ast.Expr, fnIdx int, async bool) {
	// [async] function [*] [name] ( params ) [: type] { body }
	i := fnIdx + 1
	if i <= e.TokLast && p.toks[i].Kind == token.Op && p.toks[i].Text == "*" {
		i++
	}
	if i <= e.TokLast && p.toks[i].Kind == token.Ident {
		i++
	}
	if i > e.TokLast || p.toks[i].Kind != token.LParen {
		return
	}
	closeIdx, ok := matchBracket(p.toks, i, e.TokLast)
	if !ok {
		return
	}
	bodyIdx, ok := findBodyBrace(p.toks, closeIdx+1, e.TokLast)
	if !ok {
		return
	}
	bodyClose, ok := matchBracket(p.toks, bodyIdx, e.TokLast)
	if !ok {
		return
	}
	e.Callable = true
	e.Async = async
	e.Body = p.toks[bodyIdx].Span.Cover(p.toks[bodyClose].Span)
	e.BodyTokFirst = bodyIdx
	e.BodyTokLast = bodyClose
	e.HeadEnd = e.Body.Start
}

func (p *Parser) analyzeParenArrow(e *ast.Expr, parenIdx int, async bool) {
	closeIdx, ok := matchBracket(p.toks, parenIdx, e.TokLast)
	if !ok {
		return
	}
	k := closeIdx + 1
	if k <= e.TokLast && p.toks[k].Kind == token.Colon {
		// Return type annotation: skip until the arrow at this level.
		arrowIdx, ok := findArrow(p.toks, k+1, e.TokLast)
		if !ok {
			return
		}
		k = arrowIdx
	}
	if k > e.TokLast || p.toks[k].Kind != token.Arrow {
		return
	}
	p.markArrow(e, k, async)
}

// markArrow fills callable fields for an arrow whose '=>' sits at arrowIdx.
func (p *Parser) markArrow(e *ast.Expr, arrowIdx int, async bool) {
	bodyFirst := arrowIdx + 1
	if bodyFirst > e.TokLast {
		return
	}
	e.Callable = true
	e.Arrow = true
	e.Async = async
	e.HeadEnd = p.toks[arrowIdx].Span.End

	if p.toks[bodyFirst].Kind == token.LBrace {
		if closeIdx, ok := matchBracket(p.toks, bodyFirst, e.TokLast); ok {
			e.Body = p.toks[bodyFirst].Span.Cover(p.toks[closeIdx].Span)
			e.BodyTokFirst = bodyFirst
			e.BodyTokLast = closeIdx
			return
		}
	}
	e.ImplicitReturn = true
	e.Body = p.toks[bodyFirst].Span.Cover(p.toks[e.TokLast].Span)
	e.BodyTokFirst = bodyFirst
	e.BodyTokLast = e.TokLast
}

// matchBracket returns the index of the token closing the bracket opened at
// open, scanning no further than last.
func matchBracket(toks []token.Token, open, last int) (int, bool) {
	depth := 0
	for i := open; i <= last; i++ {
		switch toks[i].Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// matchAngle balances '<'/'>' for TS generic parameter lists.
func matchAngle(toks []token.Token, open, last int) (int, bool) {
	depth := 0
	for i := open; i <= last; i++ {
		switch toks[i].Kind {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// findArrow locates a top-level '=>' starting at from.
func findArrow(toks []token.Token, from, last int) (int, bool) {
	depth := 0
	for i := from; i <= last; i++ {
		switch toks[i].Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		case token.Arrow:
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// findBodyBrace locates the brace opening a function body, skipping brace
// groups that belong to a TypeScript return-type annotation: object types
// inside generic arguments (angle depth > 0), type literals whose closing
// brace is followed by another brace, and union/intersection members.
func findBodyBrace(toks []token.Token, from, last int) (int, bool) {
	depth := 0
	angle := 0
	for i := from; i <= last; i++ {
		switch toks[i].Kind {
		case token.Lt:
			angle++
		case token.Gt:
			if angle > 0 {
				angle--
			}
		case token.Op:
			// Nested generic closers lex as one shift operator.
			for _, b := range []byte(toks[i].Text) {
				if b == '>' && angle > 0 {
					angle--
				}
			}
		case token.LBrace:
			if depth == 0 && angle == 0 {
				closeIdx, ok := matchBracket(toks, i, last)
				if !ok {
					return 0, false
				}
				if closeIdx+1 <= last {
					switch next := toks[closeIdx+1]; {
					case next.Kind == token.LBrace:
						i = closeIdx
						continue
					case next.Kind == token.Op && (next.Text == "|" || next.Text == "&"):
						i = closeIdx
						continue
					}
				}
				return i, true
			}
			depth++
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			depth--
		}
	}
	return 0, false
}

// exprIsLoneIdent reports whether the expression is exactly one identifier.
func (p *Parser) exprIsLoneIdent(e *ast.Expr) (string, bool) {
	if e != nil && e.TokFirst == e.TokLast && p.toks[e.TokFirst].Kind == token.Ident {
		return p.toks[e.TokFirst].Text, true
	}
	return "", false
}

// skipTypeAnnotation consumes a ': Type' annotation in a declarator, up to a
// top-level '=', ',' or ';'.
func (p *Parser) skipTypeAnnotation() {
	if !p.at(token.Colon) {
		return
	}
	p.advance()
	depth := 0
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return
		}
		if depth == 0 {
			switch t.Kind {
			case token.Assign, token.Comma, token.Semicolon:
				return
			}
			if t.NewlineBefore && canStartStatement(t.Kind) {
				return
			}
		}
		switch t.Kind {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBrace, token.RBracket:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}
