// Package runtimejs provides the embedded "@graft/runtime" module source
// that rewritten workspaces import at run time.
package runtimejs

import (
	"embed"
	"io/fs"
)

//go:embed js/*.js
var runtimeFS embed.FS

// RuntimeFS exposes the embedded runtime module sources.
func RuntimeFS() fs.FS {
	return runtimeFS
}

// Source returns the runtime module text.
func Source() ([]byte, error) {
	return runtimeFS.ReadFile("js/index.js")
}
