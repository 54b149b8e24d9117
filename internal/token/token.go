package token

import (
	"fmt"

	"graft/internal/source"
)

// Token is one significant lexeme with its span in the original text.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
	// NewlineBefore is set when at least one line terminator occurred in the
	// trivia preceding this token. The module parser uses it for statement
	// boundaries where semicolons were omitted.
	NewlineBefore bool
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// Is reports whether the token is an identifier with exactly the given text.
func (t Token) Is(ident string) bool {
	return t.Kind == Ident && t.Text == ident
}
