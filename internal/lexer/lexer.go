// Package lexer tokenizes the JavaScript/TypeScript subset the module
// rewriter needs: identifiers, literals, template strings, punctuation.
// Trivia (whitespace and comments) is skipped, but line terminators are
// recorded on the following token for statement-boundary recovery.
package lexer

import (
	"graft/internal/diag"
	"graft/internal/source"
	"graft/internal/token"
)

type Lexer struct {
	file     *source.File
	cursor   Cursor
	opts     Options
	look     *token.Token
	prev     token.Kind // last significant token, for regex disambiguation
	prevText string
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		prev:   token.Invalid,
	}
}

// Next returns the next significant token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		lx.remember(tok)
		return tok
	}

	newline := lx.skipTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind:          token.EOF,
			Span:          lx.emptySpan(),
			NewlineBefore: newline,
		}
		lx.remember(tok)
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '"' || ch == '\'':
		tok = lx.scanString(ch)

	case ch == '`':
		tok = lx.scanTemplate()

	case ch == '<' && lx.markupAllowed() && lx.isMarkupStart():
		tok = lx.scanMarkup()

	case ch == '/' && lx.regexAllowed():
		tok = lx.scanRegex()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.NewlineBefore = newline
	lx.remember(tok)
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look != nil {
		return *lx.look
	}
	savedPrev, savedText := lx.prev, lx.prevText
	t := lx.Next()
	lx.prev, lx.prevText = savedPrev, savedText
	lx.look = &t
	return t
}

// Tokens drains the lexer into a slice ending with EOF.
func (lx *Lexer) Tokens() []token.Token {
	var out []token.Token
	for {
		t := lx.Next()
		out = append(out, t)
		if t.Kind == token.EOF {
			return out
		}
	}
}

func (lx *Lexer) remember(t token.Token) {
	if t.Kind != token.EOF {
		lx.prev = t.Kind
		lx.prevText = t.Text
	}
}

// regexAllowed reports whether a '/' at the current position can start a
// regular expression literal, judged by the previous significant token.
func (lx *Lexer) regexAllowed() bool {
	switch lx.prev {
	case token.Invalid, token.LParen, token.LBrace, token.LBracket,
		token.Comma, token.Semicolon, token.Colon, token.Arrow, token.Assign,
		token.KwReturn, token.KwTypeof, token.KwNew, token.KwDefault,
		token.Op, token.Question:
		return true
	default:
		return false
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) spanFrom(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.cursor.Off}
}

func (lx *Lexer) report(code diag.Code, start uint32, msg string) {
	diag.ReportError(lx.opts.reporter(), code, lx.spanFrom(start), msg)
}
