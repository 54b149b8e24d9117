package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"graft/internal/token"
)

const utf8RuneSelf = utf8.RuneSelf

func isIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

func isDec(b byte) bool {
	return b >= '0' && b <= '9'
}

// scanIdentOrKeyword consumes an identifier, classifying keywords.
// Identifiers containing non-ASCII runes are NFC-normalized, matching how
// JavaScript engines canonicalize identifier names.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Off
	ascii := true

	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if isIdentContinueByte(ch) {
			lx.cursor.Bump()
			continue
		}
		if ch < utf8RuneSelf {
			break
		}
		r, size := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '‌' && r != '‍' {
			break
		}
		ascii = false
		lx.cursor.BumpN(uint32(size)) // #nosec G115 -- rune size is 1..4
	}

	text := lx.cursor.Slice(start, lx.cursor.Off)
	if !ascii {
		text = norm.NFC.String(text)
	}

	return token.Token{
		Kind: token.LookupKeyword(text),
		Span: lx.spanFrom(start),
		Text: text,
	}
}
