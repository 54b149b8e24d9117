package rewrite

import (
	"graft/internal/ast"
	"graft/internal/extension"
	"graft/internal/token"
)

// classifyExpr infers the composition kind of one exported expression.
// Callables get a structural scan of their body, including directly
// returned expressions, for markup syntax: any element or fragment makes
// the export a component, otherwise it is a plain function. Non-callable
// exports are always values.
func classifyExpr(mod *ast.Module, e *ast.Expr) extension.Kind {
	if e == nil || !e.Callable {
		return extension.KindValue
	}
	first, last := e.BodyTokFirst, e.BodyTokLast
	if first == 0 && last == 0 {
		first, last = e.TokFirst, e.TokLast
	}
	for i := first; i <= last && i < len(mod.Tokens); i++ {
		if mod.Tokens[i].Kind == token.Markup {
			return extension.KindComponent
		}
	}
	return extension.KindFunction
}

// classifyLocal infers the kind of a named top-level binding by its
// declaration's initializer. Classes and uninitialized bindings are values.
func classifyLocal(mod *ast.Module, name string) extension.Kind {
	d, ok := mod.LookupDecl(name)
	if !ok || d.Kind == ast.DeclClass {
		return extension.KindValue
	}
	return classifyExpr(mod, d.Init)
}
