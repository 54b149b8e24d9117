package discover

import (
	"strconv"
	"strings"

	"graft/internal/ast"
	"graft/internal/diag"
	"graft/internal/resource"
	"graft/internal/source"
	"graft/internal/token"
)

// Extension is one discovered descriptor: the default export of an
// extension module.
type Extension struct {
	Name      string
	ID        resource.ID
	SortOrder int
	// Path is the absolute path of the authoring module.
	Path string
	Span source.Span
}

// parseDescriptor extracts {name, resourceId, sortOrder?} from a module's
// default-export object literal. The wrap field is behavior and stays in
// the module; only the addressing fields matter here.
func parseDescriptor(mod *ast.Module, absPath string, reporter diag.Reporter) (Extension, bool) {
	var def *ast.Export
	for _, ex := range mod.Exports {
		if ex.Form == ast.ExportDefault && ex.Expr != nil {
			def = ex
			break
		}
	}
	if def == nil {
		diag.ReportError(reporter, diag.DiscBadDescriptor, source.Span{},
			"extension module has no default-export descriptor")
		return Extension{}, false
	}

	toks := mod.Tokens
	i := def.Expr.TokFirst
	for i <= def.Expr.TokLast && toks[i].Kind == token.LParen {
		i++
	}
	if i > def.Expr.TokLast || toks[i].Kind != token.LBrace {
		diag.ReportError(reporter, diag.DiscBadDescriptor, def.Expr.Span,
			"extension descriptor must be an object literal")
		return Extension{}, false
	}

	ext := Extension{Path: absPath, Span: def.Expr.Span}
	depth := 0
	expectKey := false
	for ; i <= def.Expr.TokLast; i++ {
		switch toks[i].Kind {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
			if depth == 1 {
				expectKey = true
			}
		case token.RBrace, token.RParen, token.RBracket:
			depth--
		case token.Comma:
			if depth == 1 {
				expectKey = true
			}
		case token.Ident, token.String:
			if depth != 1 || !expectKey {
				continue
			}
			expectKey = false
			if i+1 > def.Expr.TokLast || toks[i+1].Kind != token.Colon {
				continue
			}
			key := toks[i].Text
			if toks[i].Kind == token.String {
				key = unquote(key)
			}
			readDescriptorField(&ext, key, toks, i+2, def.Expr.TokLast)
		}
	}

	if ext.Name == "" {
		diag.ReportError(reporter, diag.DiscMissingField, def.Expr.Span,
			"extension descriptor is missing \"name\"")
		return Extension{}, false
	}
	if ext.ID == "" {
		diag.ReportError(reporter, diag.DiscMissingField, def.Expr.Span,
			"extension descriptor is missing \"resourceId\"")
		return Extension{}, false
	}
	return ext, true
}

// readDescriptorField captures one scalar field value at token index i.
func readDescriptorField(ext *Extension, key string, toks []token.Token, i, last int) {
	if i > last {
		return
	}
	switch key {
	case "name":
		if toks[i].Kind == token.String {
			ext.Name = unquote(toks[i].Text)
		}
	case "resourceId":
		if toks[i].Kind == token.String {
			ext.ID = resource.ID(unquote(toks[i].Text))
		}
	case "sortOrder":
		neg := false
		if toks[i].Kind == token.Op && toks[i].Text == "-" {
			neg = true
			i++
		}
		if i <= last && toks[i].Kind == token.Number {
			if n, err := strconv.Atoi(toks[i].Text); err == nil {
				if neg {
					n = -n
				}
				ext.SortOrder = n
			}
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			return s[1 : len(s)-1]
		}
	}
	return s
}

// isExtensionModule matches *<suffix>.{js,jsx,ts,tsx} file names.
func isExtensionModule(name, suffix string) bool {
	for _, ext := range []string{".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(name, suffix+ext) {
			return true
		}
	}
	return false
}
