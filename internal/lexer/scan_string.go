package lexer

import (
	"graft/internal/diag"
	"graft/internal/token"
)

// scanString consumes a quoted string literal. Text keeps the quotes so the
// parser can compare directive prologues byte for byte.
func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Off
	lx.cursor.Bump() // opening quote

	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch ch {
		case '\\':
			lx.cursor.BumpN(2)
		case quote:
			lx.cursor.Bump()
			return token.Token{
				Kind: token.String,
				Span: lx.spanFrom(start),
				Text: lx.cursor.Slice(start, lx.cursor.Off),
			}
		case '\n':
			lx.report(diag.LexUnterminatedString, start, "string literal is never closed")
			return lx.invalidToken(start)
		default:
			lx.cursor.Bump()
		}
	}

	lx.report(diag.LexUnterminatedString, start, "string literal is never closed")
	return lx.invalidToken(start)
}

// scanTemplate consumes a template literal including nested ${ ... }
// substitutions. Substitutions may themselves contain templates; brace
// depth tracks the nesting.
func (lx *Lexer) scanTemplate() token.Token {
	start := lx.cursor.Off
	lx.cursor.Bump() // opening backtick

	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch ch {
		case '\\':
			lx.cursor.BumpN(2)
		case '`':
			lx.cursor.Bump()
			return token.Token{
				Kind: token.Template,
				Span: lx.spanFrom(start),
				Text: lx.cursor.Slice(start, lx.cursor.Off),
			}
		case '$':
			if lx.cursor.PeekAt(1) == '{' {
				lx.cursor.BumpN(2)
				if !lx.skipTemplateSubstitution(start) {
					return lx.invalidToken(start)
				}
			} else {
				lx.cursor.Bump()
			}
		default:
			lx.cursor.Bump()
		}
	}

	lx.report(diag.LexUnterminatedTemplate, start, "template literal is never closed")
	return lx.invalidToken(start)
}

// skipTemplateSubstitution consumes a ${...} body up to its closing brace.
func (lx *Lexer) skipTemplateSubstitution(tmplStart uint32) bool {
	depth := 1
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '{':
			depth++
			lx.cursor.Bump()
		case '}':
			depth--
			lx.cursor.Bump()
			if depth == 0 {
				return true
			}
		case '`':
			// Nested template inside the substitution.
			inner := lx.scanTemplate()
			if inner.Kind == token.Invalid {
				return false
			}
		case '\'', '"':
			inner := lx.scanString(lx.cursor.Peek())
			if inner.Kind == token.Invalid {
				return false
			}
		case '\\':
			lx.cursor.BumpN(2)
		default:
			lx.cursor.Bump()
		}
	}
	lx.report(diag.LexUnterminatedTemplate, tmplStart, "template substitution is never closed")
	return false
}

func (lx *Lexer) invalidToken(start uint32) token.Token {
	return token.Token{
		Kind: token.Invalid,
		Span: lx.spanFrom(start),
		Text: lx.cursor.Slice(start, lx.cursor.Off),
	}
}
