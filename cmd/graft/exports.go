package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"graft/internal/diag"
	"graft/internal/parser"
	"graft/internal/resource"
	"graft/internal/rewrite"
	"graft/internal/source"
)

var exportsCmd = &cobra.Command{
	Use:   "exports [flags] <file>",
	Short: "List a module's exported symbols and their resource ids",
	Args:  cobra.ExactArgs(1),
	RunE:  runExports,
}

func init() {
	exportsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type exportJSON struct {
	Name       string `json:"name"`
	Default    bool   `json:"default,omitempty"`
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
}

func runExports(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fset := source.NewFileSetWithBase(filepath.Dir(abs))
	fileID, err := fset.Load(abs)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	bag := diag.NewBag(maxDiagnostics)
	mod := parser.Parse(fset.Get(fileID), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if perr := printBag(cmd, bag, fset); perr != nil {
		return perr
	}
	if bag.HasErrors() {
		return fmt.Errorf("parsing failed: %s", args[0])
	}

	rw := rewrite.New(resource.NewResolver(), rewrite.Options{})
	records, err := rw.Enumerate(mod, abs)
	if err != nil {
		return err
	}

	switch format {
	case "pretty":
		for _, rec := range records {
			name := rec.PublicName
			if rec.IsDefault {
				name = "default"
			}
			fmt.Fprintf(os.Stdout, "%-24s %-10s %s\n", name, rec.Kind, rec.ID)
		}
	case "json":
		out := make([]exportJSON, 0, len(records))
		for _, rec := range records {
			name := rec.PublicName
			if rec.IsDefault {
				name = "default"
			}
			out = append(out, exportJSON{
				Name:       name,
				Default:    rec.IsDefault,
				Kind:       rec.Kind.String(),
				ResourceID: rec.ID.String(),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	return nil
}
