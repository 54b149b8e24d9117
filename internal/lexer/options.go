package lexer

import "graft/internal/diag"

// Options configures a Lexer.
type Options struct {
	// Reporter receives lexical diagnostics. Nil means discard.
	Reporter diag.Reporter
	// Markup enables JSX element scanning. Callers enable it for every
	// extension except plain .ts, where '<' opens a type assertion instead.
	Markup bool
}

func (o Options) reporter() diag.Reporter {
	if o.Reporter == nil {
		return diag.NopReporter{}
	}
	return o.Reporter
}
