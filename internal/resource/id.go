package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ID canonically names one exported symbol across a workspace:
// "pkg/relpath" for a default export, "pkg/relpath:Name" for a named one.
// Stable across rebuilds as long as file layout and package metadata hold.
type ID string

// Make builds an ID from a package name, a slash-separated relative path
// with no extension, and an optional export name (empty for default).
func Make(pkg, relPath, exportName string) ID {
	var sb strings.Builder
	sb.WriteString(pkg)
	if relPath != "" {
		sb.WriteByte('/')
		sb.WriteString(relPath)
	}
	if exportName != "" {
		sb.WriteByte(':')
		sb.WriteString(exportName)
	}
	return ID(sb.String())
}

func (id ID) String() string { return string(id) }

// ExportName returns the named-export part, or "" for a default export.
func (id ID) ExportName() string {
	if i := strings.LastIndexByte(string(id), ':'); i >= 0 {
		return string(id)[i+1:]
	}
	return ""
}

// Hash8 returns the first 8 hex characters of the sha256 of the id.
// Aggregator module paths and import bindings are keyed by it.
func (id ID) Hash8() string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:4])
}
