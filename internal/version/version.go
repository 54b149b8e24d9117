// Package version holds the build metadata stamped into graft binaries.
// Release builds override the stamps through the linker:
//
//	go build -ldflags "-X graft/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import "github.com/fatih/color"

var (
	// Version is what `graft version` reports. Development builds carry
	// a -dev suffix; the segment colors drop out on non-terminal output.
	Version = color.New(color.FgYellow, color.Bold).Sprint("0") + "." +
		color.New(color.FgGreen, color.Bold).Sprint("1") + "." +
		color.New(color.FgBlue, color.Bold).Sprint("0") + "-dev"

	// GitCommit is the full hash of the commit the binary was built from.
	// Empty outside stamped builds.
	GitCommit = ""

	// BuildDate is the ISO-8601 timestamp of the build. Empty outside
	// stamped builds.
	BuildDate = ""
)
