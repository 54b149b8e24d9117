package lexer

import (
	"graft/internal/diag"
	"graft/internal/token"
)

// markupAllowed reports whether a '<' at the current position can open a
// JSX element, judged by the previous significant token. Mirrors the
// expression-position rule used for regex literals.
func (lx *Lexer) markupAllowed() bool {
	if !lx.opts.Markup {
		return false
	}
	switch lx.prev {
	case token.Invalid, token.LParen, token.LBrace, token.LBracket,
		token.Comma, token.Semicolon, token.Colon, token.Question,
		token.Arrow, token.Assign, token.Op,
		token.KwReturn, token.KwDefault:
		return true
	default:
		return false
	}
}

// isMarkupStart checks the bytes after '<' for an element name or fragment.
func (lx *Lexer) isMarkupStart() bool {
	b := lx.cursor.PeekAt(1)
	return b == '>' || isIdentStartByte(b) || b >= utf8RuneSelf
}

// scanMarkup consumes one complete JSX element or fragment, including
// nested children and embedded {expression} blocks, as a single token.
// Children text is raw: only '<' and '{' are structural inside it.
func (lx *Lexer) scanMarkup() token.Token {
	start := lx.cursor.Off
	depth := 0

	for {
		if lx.cursor.EOF() {
			lx.report(diag.LexUnterminatedString, start, "markup element is never closed")
			return lx.invalidToken(start)
		}
		switch lx.cursor.Peek() {
		case '<':
			if lx.cursor.PeekAt(1) == '/' {
				// Closing tag.
				for !lx.cursor.EOF() && lx.cursor.Peek() != '>' {
					lx.cursor.Bump()
				}
				lx.cursor.Bump() // '>'
				depth--
				if depth <= 0 {
					return lx.markupToken(start)
				}
			} else {
				selfClosing, ok := lx.scanMarkupTag(start)
				if !ok {
					return lx.invalidToken(start)
				}
				if !selfClosing {
					depth++
				} else if depth == 0 {
					return lx.markupToken(start)
				}
			}
		case '{':
			if !lx.skipMarkupExpression(start) {
				return lx.invalidToken(start)
			}
		default:
			lx.cursor.Bump()
		}
	}
}

// scanMarkupTag consumes an opening tag from its '<' through '>' or '/>',
// honoring quoted attribute values and {expression} attributes.
func (lx *Lexer) scanMarkupTag(markupStart uint32) (selfClosing, ok bool) {
	lx.cursor.Bump() // '<'
	for {
		if lx.cursor.EOF() {
			lx.report(diag.LexUnterminatedString, markupStart, "markup tag is never closed")
			return false, false
		}
		switch lx.cursor.Peek() {
		case '>':
			lx.cursor.Bump()
			return false, true
		case '/':
			if lx.cursor.PeekAt(1) == '>' {
				lx.cursor.BumpN(2)
				return true, true
			}
			lx.cursor.Bump()
		case '"', '\'':
			q := lx.cursor.Peek()
			lx.cursor.Bump()
			for !lx.cursor.EOF() && lx.cursor.Peek() != q {
				lx.cursor.Bump()
			}
			lx.cursor.Bump()
		case '{':
			if !lx.skipMarkupExpression(markupStart) {
				return false, false
			}
		default:
			lx.cursor.Bump()
		}
	}
}

// skipMarkupExpression consumes a balanced {…} block re-entering JavaScript
// syntax: strings, templates, and comments are honored so braces inside
// them do not count.
func (lx *Lexer) skipMarkupExpression(markupStart uint32) bool {
	depth := 0
	for {
		if lx.cursor.EOF() {
			lx.report(diag.LexUnterminatedString, markupStart, "markup expression is never closed")
			return false
		}
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
		case '"', '\'':
			if tok := lx.scanString(lx.cursor.Peek()); tok.Kind == token.Invalid {
				return false
			}
		case '`':
			if tok := lx.scanTemplate(); tok.Kind == token.Invalid {
				return false
			}
		case '/':
			switch lx.cursor.PeekAt(1) {
			case '/':
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
			case '*':
				lx.cursor.BumpN(2)
				for !lx.cursor.EOF() && !(lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/') {
					lx.cursor.Bump()
				}
				lx.cursor.BumpN(2)
			default:
				lx.cursor.Bump()
			}
		default:
			lx.cursor.Bump()
		}
	}
}

func (lx *Lexer) markupToken(start uint32) token.Token {
	return token.Token{
		Kind: token.Markup,
		Span: lx.spanFrom(start),
		Text: lx.cursor.Slice(start, lx.cursor.Off),
	}
}
