package token

// keywords maps reserved and contextual words the module scanner cares about.
// Everything else stays a plain Ident.
var keywords = map[string]Kind{
	"export":    KwExport,
	"import":    KwImport,
	"default":   KwDefault,
	"const":     KwConst,
	"let":       KwLet,
	"var":       KwVar,
	"function":  KwFunction,
	"class":     KwClass,
	"async":     KwAsync,
	"return":    KwReturn,
	"from":      KwFrom,
	"as":        KwAs,
	"new":       KwNew,
	"typeof":    KwTypeof,
	"interface": KwInterface,
	"type":      KwType,
	"enum":      KwEnum,
	"declare":   KwDeclare,
	"namespace": KwNamespace,
}

// LookupKeyword returns the keyword kind for ident, or Ident when it is not
// a recognized keyword.
func LookupKeyword(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}
