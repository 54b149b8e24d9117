package lexer

import (
	"graft/internal/diag"
)

// skipTrivia consumes whitespace and comments and reports whether any line
// terminator was crossed.
func (lx *Lexer) skipTrivia() (newline bool) {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == '\n':
			newline = true
			lx.cursor.Bump()

		case ch == ' ' || ch == '\t' || ch == '\r':
			lx.cursor.Bump()

		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}

		case ch == '/' && lx.cursor.PeekAt(1) == '*':
			start := lx.cursor.Off
			lx.cursor.BumpN(2)
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '\n' {
					newline = true
				}
				if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.BumpN(2)
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.report(diag.LexUnterminatedBlockComment, start, "block comment is never closed")
			}

		default:
			return newline
		}
	}
	return newline
}
