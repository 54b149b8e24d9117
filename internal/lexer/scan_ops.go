package lexer

import (
	"graft/internal/diag"
	"graft/internal/token"
)

// scanRegex consumes a regular expression literal, honoring character
// classes and escapes, plus any trailing flags.
func (lx *Lexer) scanRegex() token.Token {
	start := lx.cursor.Off
	lx.cursor.Bump() // opening '/'
	inClass := false

	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.report(diag.LexUnterminatedString, start, "regular expression is never closed")
			return lx.invalidToken(start)
		}
		ch := lx.cursor.Peek()
		switch ch {
		case '\\':
			lx.cursor.BumpN(2)
			continue
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				lx.cursor.Bump()
				for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
					lx.cursor.Bump()
				}
				return token.Token{
					Kind: token.Regex,
					Span: lx.spanFrom(start),
					Text: lx.cursor.Slice(start, lx.cursor.Off),
				}
			}
		}
		lx.cursor.Bump()
	}
}

// scanOperatorOrPunct consumes one punctuation token. Only the shapes the
// module parser dispatches on get dedicated kinds; the rest collapse to Op.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Off
	ch := lx.cursor.Peek()

	simple := func(kind token.Kind, n uint32) token.Token {
		lx.cursor.BumpN(n)
		return token.Token{
			Kind: kind,
			Span: lx.spanFrom(start),
			Text: lx.cursor.Slice(start, lx.cursor.Off),
		}
	}

	switch ch {
	case '(':
		return simple(token.LParen, 1)
	case ')':
		return simple(token.RParen, 1)
	case '{':
		return simple(token.LBrace, 1)
	case '}':
		return simple(token.RBrace, 1)
	case '[':
		return simple(token.LBracket, 1)
	case ']':
		return simple(token.RBracket, 1)
	case ';':
		return simple(token.Semicolon, 1)
	case ',':
		return simple(token.Comma, 1)
	case ':':
		return simple(token.Colon, 1)
	case '@':
		return simple(token.At, 1)
	case '?':
		// ?. ?? ??= all collapse to Op; bare ? keeps its kind for ternaries.
		if lx.cursor.PeekAt(1) == '.' || lx.cursor.PeekAt(1) == '?' {
			return lx.scanOpRun(start)
		}
		return simple(token.Question, 1)
	case '.':
		if lx.cursor.PeekAt(1) == '.' && lx.cursor.PeekAt(2) == '.' {
			return simple(token.Ellipsis, 3)
		}
		return simple(token.Dot, 1)
	case '=':
		if lx.cursor.PeekAt(1) == '>' {
			return simple(token.Arrow, 2)
		}
		if lx.cursor.PeekAt(1) == '=' {
			return lx.scanOpRun(start)
		}
		return simple(token.Assign, 1)
	case '<':
		// '<=' and '<<' are plain operators; a bare '<' stays Lt so the
		// markup classifier can see element starts.
		if lx.cursor.PeekAt(1) == '=' || lx.cursor.PeekAt(1) == '<' {
			return lx.scanOpRun(start)
		}
		return simple(token.Lt, 1)
	case '>':
		if lx.cursor.PeekAt(1) == '=' || lx.cursor.PeekAt(1) == '>' {
			return lx.scanOpRun(start)
		}
		return simple(token.Gt, 1)
	}

	if isOpByte(ch) {
		return lx.scanOpRun(start)
	}

	lx.cursor.Bump()
	lx.report(diag.LexUnknownChar, start, "unexpected character")
	return lx.invalidToken(start)
}

// scanOpRun consumes a maximal run of operator bytes as one Op token.
func (lx *Lexer) scanOpRun(start uint32) token.Token {
	for !lx.cursor.EOF() && isOpByte(lx.cursor.Peek()) {
		// Never swallow a comment start.
		if lx.cursor.Peek() == '/' && (lx.cursor.PeekAt(1) == '/' || lx.cursor.PeekAt(1) == '*') {
			break
		}
		lx.cursor.Bump()
	}
	return token.Token{
		Kind: token.Op,
		Span: lx.spanFrom(start),
		Text: lx.cursor.Slice(start, lx.cursor.Off),
	}
}

func isOpByte(b byte) bool {
	switch b {
	case '+', '-', '*', '/', '%', '&', '|', '^', '!', '~', '=', '<', '>', '?':
		return true
	}
	return false
}
