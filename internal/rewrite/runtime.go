package rewrite

import (
	"path/filepath"
	"strings"

	"graft/internal/resource"
)

// Names making up the contract between rewritten modules and the runtime.
const (
	// RuntimeModule is the specifier rewritten modules import from. A module
	// that already imports it is considered rewritten and left alone.
	RuntimeModule = "@graft/runtime"

	ComponentAlias = "__graft_component"
	FunctionAlias  = "__graft_function"
	ValueAlias     = "__graft_value"

	// AggBindingPrefix plus the id's 8-hex hash names an imported
	// aggregator list.
	AggBindingPrefix = "__graft_x"

	// Prefixes for synthesized temporaries: destructured right-hand sides
	// and wrapped specifier bindings.
	destructureTempPrefix = "__graft_d"
	specifierTempPrefix   = "__graft_e"

	// OptOutDirective disables rewriting for a module when it is the first
	// prologue directive.
	OptOutDirective = "use no-plugins"
)

// runtimeImport is the import statement splicing the composition entry
// points into a rewritten module.
const runtimeImport = `import { composeComponent as ` + ComponentAlias +
	`, composeFunction as ` + FunctionAlias +
	`, composeValue as ` + ValueAlias +
	` } from "` + RuntimeModule + `";`

// aggBinding names the import binding for one resource id's aggregator.
func aggBinding(id resource.ID) string {
	return AggBindingPrefix + id.Hash8()
}

// aggImportPath builds the module-relative specifier for an aggregator
// file living under aggDir (absolute).
func aggImportPath(moduleDir, aggDir string, id resource.ID) string {
	target := filepath.Join(aggDir, id.Hash8()+".js")
	rel, err := filepath.Rel(moduleDir, target)
	if err != nil {
		rel = target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
