package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"graft/internal/resource"
	runtimejs "graft/runtime"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a graft workspace",
	Long: `Initialize a graft workspace by creating a graft.toml config next to the
package manifest. If [path|name] is omitted, initializes the current
directory. If a non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit creates graft.toml at the target directory, plus a minimal
// package.json when none exists yet (the resolver needs one to anchor
// resource ids). It refuses to re-initialize an existing workspace.
func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "graft-workspace"
	}

	configPath := filepath.Join(target, resource.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("workspace already initialized: %s exists", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultWorkspaceConfig()), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	manifestPath := filepath.Join(target, resource.ManifestFileName)
	createdManifest := false
	if _, err := os.Stat(manifestPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		createdManifest = true
	}

	// Rewritten modules import "@graft/runtime"; drop the module source in
	// the workspace so bundlers can alias the specifier to it.
	runtimeDir := filepath.Join(target, ".graft", "runtime")
	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}
	runtimeSrc, err := runtimejs.Source()
	if err != nil {
		return fmt.Errorf("failed to read embedded runtime: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runtimeDir, "index.js"), runtimeSrc, 0o600); err != nil {
		return fmt.Errorf("failed to write runtime module: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized graft workspace in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", resource.ConfigFileName)
	if createdManifest {
		fmt.Fprintf(os.Stdout, "  - %s\n", resource.ManifestFileName)
	} else {
		fmt.Fprintf(os.Stdout, "  - %s (existing)\n", resource.ManifestFileName)
	}
	fmt.Fprintf(os.Stdout, "  - .graft/runtime/index.js\n")
	return nil
}

func defaultWorkspaceConfig() string {
	return `# Graft workspace config
# base anchors resource ids; module paths are taken relative to it.
base = "."

[discover]
suffix = ".extension"
dir = ".graft/agg"
`
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`{
  "name": %q,
  "version": "0.1.0",
  "private": true
}
`, name)
}
