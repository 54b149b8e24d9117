package lexer_test

import (
	"testing"

	"graft/internal/diag"
	"graft/internal/lexer"
	"graft/internal/source"
	"graft/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.tsx", []byte(src))
	bag := diag.NewBag(16)
	lx := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}, Markup: true})
	return lx.Tokens(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	toks, bag := lex(t, "export const foo = bar")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{token.KwExport, token.KwConst, token.Ident, token.Assign, token.Ident, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), toks)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStringsAndTemplates(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind token.Kind
		text string
	}{
		{"double quoted", `"use no-plugins"`, token.String, `"use no-plugins"`},
		{"single quoted", `'hi'`, token.String, `'hi'`},
		{"escape", `"a\"b"`, token.String, `"a\"b"`},
		{"template", "`a${1 + 2}b`", token.Template, "`a${1 + 2}b`"},
		{"nested template", "`x${`y${z}`}w`", token.Template, "`x${`y${z}`}w`"},
		{"template with braces", "`${ {a: 1} }`", token.Template, "`${ {a: 1} }`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lex(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Items())
			}
			if toks[0].Kind != tt.kind || toks[0].Text != tt.text {
				t.Errorf("got %v %q, want %v %q", toks[0].Kind, toks[0].Text, tt.kind, tt.text)
			}
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	_, bag := lex(t, "\"abc\nmore")
	if !bag.HasErrors() {
		t.Fatal("expected unterminated string diagnostic")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Errorf("code = %v, want LexUnterminatedString", bag.Items()[0].Code)
	}
}

func TestCommentsAreTrivia(t *testing.T) {
	toks, bag := lex(t, "a // line\n/* block\n*/ b")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(toks) != 3 { // a, b, EOF
		t.Fatalf("got %d tokens: %v", len(toks), toks)
	}
	if !toks[1].NewlineBefore {
		t.Error("b should record a preceding newline")
	}
}

func TestRegexVsDivision(t *testing.T) {
	toks, _ := lex(t, "const re = /ab\\/c/g")
	last := toks[len(toks)-2]
	if last.Kind != token.Regex {
		t.Fatalf("expected regex literal, got %v", last)
	}

	toks, _ = lex(t, "a / b")
	if toks[1].Kind != token.Op || toks[1].Text != "/" {
		t.Fatalf("expected division operator, got %v", toks[1])
	}
}

func TestArrowAndEllipsis(t *testing.T) {
	toks, _ := lex(t, "(...args) => x")
	got := kinds(toks)
	want := []token.Kind{token.LParen, token.Ellipsis, token.Ident, token.RParen, token.Arrow, token.Ident, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v (%v)", i, got[i], want[i], toks)
		}
	}
}

func TestMarkupElement(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"self closing", "const a = <br/>;", "<br/>"},
		{"fragment", "const a = <>{x}</>;", "<>{x}</>"},
		{"nested", "const a = <div attr={fn({b: 1})}>don't<span/></div>;", "<div attr={fn({b: 1})}>don't<span/></div>"},
		{"after return", "() => { return <h1>{t}</h1>; }", "<h1>{t}</h1>"},
		{"ternary arms", "cond ? <A/> : <B/>", "<A/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lex(t, tt.src)
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Items())
			}
			var markup *token.Token
			for i := range toks {
				if toks[i].Kind == token.Markup {
					markup = &toks[i]
					break
				}
			}
			if markup == nil {
				t.Fatalf("no markup token in %v", toks)
			}
			if markup.Text != tt.want {
				t.Errorf("markup text = %q, want %q", markup.Text, tt.want)
			}
		})
	}
}

func TestMarkupDisabledForComparisons(t *testing.T) {
	// 'a < b' must never become markup, even in markup mode.
	toks, bag := lex(t, "a < b")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if toks[1].Kind != token.Lt {
		t.Fatalf("expected Lt, got %v", toks[1])
	}
}

func TestNumbers(t *testing.T) {
	for _, src := range []string{"0x1f", "0b1010", "1_000_000", "3.14e-2", "42n", ".5"} {
		toks, bag := lex(t, src)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", src, bag.Items())
		}
		if toks[0].Kind != token.Number || toks[0].Text != src {
			t.Errorf("%q: got %v %q", src, toks[0].Kind, toks[0].Text)
		}
	}
}
