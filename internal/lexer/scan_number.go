package lexer

import (
	"graft/internal/diag"
	"graft/internal/token"
)

// scanNumber consumes a numeric literal. The rewriter never interprets the
// value, so scanning is permissive: decimal, hex, octal, binary, floats,
// exponents, bigint suffix, and numeric separators all pass through.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Off

	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			lx.cursor.BumpN(2)
			digits := 0
			for !lx.cursor.EOF() && (isHex(lx.cursor.Peek()) || lx.cursor.Peek() == '_') {
				if lx.cursor.Peek() != '_' {
					digits++
				}
				lx.cursor.Bump()
			}
			if digits == 0 {
				lx.report(diag.LexBadNumber, start, "radix prefix without digits")
			}
			lx.eatBigintSuffix()
			return lx.numberToken(start)
		}
	}

	lx.eatDecDigits()
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		lx.eatDecDigits()
	}
	if ch := lx.cursor.Peek(); ch == 'e' || ch == 'E' {
		lx.cursor.Bump()
		if ch := lx.cursor.Peek(); ch == '+' || ch == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			lx.report(diag.LexBadNumber, start, "exponent without digits")
		}
		lx.eatDecDigits()
	}
	lx.eatBigintSuffix()
	return lx.numberToken(start)
}

func (lx *Lexer) eatDecDigits() {
	for !lx.cursor.EOF() && (isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_') {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) eatBigintSuffix() {
	if lx.cursor.Peek() == 'n' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) numberToken(start uint32) token.Token {
	return token.Token{
		Kind: token.Number,
		Span: lx.spanFrom(start),
		Text: lx.cursor.Slice(start, lx.cursor.Off),
	}
}

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
