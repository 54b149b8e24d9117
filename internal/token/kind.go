package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token (including contextual keywords).
	Ident
	// Number represents a numeric literal.
	Number
	// String represents a single- or double-quoted string literal.
	String
	// Template represents a template literal, including embedded ${} parts.
	Template
	// Regex represents a regular expression literal.
	Regex
	// Markup represents one whole JSX element or fragment, from its opening
	// '<' through the matching close. Produced only in markup-enabled files.
	Markup

	// KwExport represents the 'export' keyword.
	KwExport
	// KwImport represents the 'import' keyword.
	KwImport
	// KwDefault represents the 'default' keyword.
	KwDefault
	// KwConst represents the 'const' keyword.
	KwConst
	// KwLet represents the 'let' keyword.
	KwLet
	// KwVar represents the 'var' keyword.
	KwVar
	// KwFunction represents the 'function' keyword.
	KwFunction
	// KwClass represents the 'class' keyword.
	KwClass
	// KwAsync represents the 'async' keyword (contextual).
	KwAsync
	// KwReturn represents the 'return' keyword.
	KwReturn
	// KwFrom represents the 'from' contextual keyword.
	KwFrom
	// KwAs represents the 'as' contextual keyword.
	KwAs
	// KwNew represents the 'new' keyword.
	KwNew
	// KwTypeof represents the 'typeof' keyword.
	KwTypeof
	// KwInterface represents the 'interface' keyword (TS).
	KwInterface
	// KwType represents the 'type' contextual keyword (TS).
	KwType
	// KwEnum represents the 'enum' keyword (TS).
	KwEnum
	// KwDeclare represents the 'declare' contextual keyword (TS).
	KwDeclare
	// KwNamespace represents the 'namespace' contextual keyword (TS).
	KwNamespace

	// LParen '('
	LParen
	// RParen ')'
	RParen
	// LBrace '{'
	LBrace
	// RBrace '}'
	RBrace
	// LBracket '['
	LBracket
	// RBracket ']'
	RBracket
	// Semicolon ';'
	Semicolon
	// Comma ','
	Comma
	// Colon ':'
	Colon
	// Dot '.'
	Dot
	// Ellipsis '...'
	Ellipsis
	// Assign '='
	Assign
	// Arrow '=>'
	Arrow
	// Lt '<'
	Lt
	// Gt '>'
	Gt
	// Question '?'
	Question
	// At '@'
	At
	// Op is any other operator or punctuation the module scanner does not
	// need to distinguish (+, -, *, /, %, &&, ||, ==, !, etc.).
	Op
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "eof"
	case Ident:
		return "ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Template:
		return "template"
	case Regex:
		return "regex"
	case Markup:
		return "markup"
	case KwExport:
		return "export"
	case KwImport:
		return "import"
	case KwDefault:
		return "default"
	case KwConst:
		return "const"
	case KwLet:
		return "let"
	case KwVar:
		return "var"
	case KwFunction:
		return "function"
	case KwClass:
		return "class"
	case KwAsync:
		return "async"
	case KwReturn:
		return "return"
	case KwFrom:
		return "from"
	case KwAs:
		return "as"
	case KwNew:
		return "new"
	case KwTypeof:
		return "typeof"
	case KwInterface:
		return "interface"
	case KwType:
		return "type"
	case KwEnum:
		return "enum"
	case KwDeclare:
		return "declare"
	case KwNamespace:
		return "namespace"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Semicolon:
		return ";"
	case Comma:
		return ","
	case Colon:
		return ":"
	case Dot:
		return "."
	case Ellipsis:
		return "..."
	case Assign:
		return "="
	case Arrow:
		return "=>"
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Question:
		return "?"
	case At:
		return "@"
	case Op:
		return "op"
	}
	return "unknown"
}

// IsKeyword reports whether the kind is one of the keyword tokens.
func (k Kind) IsKeyword() bool {
	return k >= KwExport && k <= KwNamespace
}
