package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"graft/internal/diag"
	"graft/internal/discover"
	"graft/internal/resource"
	"graft/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [path]",
	Short: "List the extension modules discovered in a workspace",
	Long: `Scan walks the workspace for extension modules, parses their
descriptors, and prints the discovered extensions grouped by the resource
id they target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	scanCmd.Flags().Bool("write", false, "also write the aggregator modules")
}

type extensionJSON struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
	Path      string `json:"path"`
}

type scanJSON struct {
	ResourceID string          `json:"resource_id"`
	Extensions []extensionJSON `json:"extensions"`
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	cfg, err := resource.NewResolver().ConfigFor(absRoot)
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiagnostics)
	fset := source.NewFileSetWithBase(absRoot)
	index, err := discover.Scan(cmd.Context(), absRoot, discover.Options{
		Suffix:   cfg.Discover.Suffix,
		Jobs:     jobs,
		Reporter: diag.BagReporter{Bag: bag},
		FileSet:  fset,
	})
	if perr := printBag(cmd, bag, fset); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return fmt.Errorf("failed to get write flag: %w", err)
	}
	if write && index.Len() > 0 {
		aggDir := filepath.Join(absRoot, cfg.Discover.Dir)
		written, werr := index.WriteAggregators(aggDir)
		if werr != nil {
			return werr
		}
		for _, path := range written {
			fmt.Fprintf(os.Stdout, "wrote %s\n", formatPathForOutput(absRoot, path))
		}
	}

	switch format {
	case "pretty":
		if index.Len() == 0 {
			fmt.Fprintln(os.Stdout, "no extensions found")
			return nil
		}
		for _, id := range index.IDs() {
			fmt.Fprintf(os.Stdout, "%s\n", id)
			for _, ext := range index.Extensions(id) {
				fmt.Fprintf(os.Stdout, "  %4d  %s  (%s)\n",
					ext.SortOrder, ext.Name, formatPathForOutput(absRoot, ext.Path))
			}
		}
	case "json":
		out := make([]scanJSON, 0, index.Len())
		for _, id := range index.IDs() {
			entry := scanJSON{ResourceID: id.String()}
			for _, ext := range index.Extensions(id) {
				entry.Extensions = append(entry.Extensions, extensionJSON{
					Name:      ext.Name,
					SortOrder: ext.SortOrder,
					Path:      formatPathForOutput(absRoot, ext.Path),
				})
			}
			out = append(out, entry)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	if bag.HasErrors() {
		return fmt.Errorf("scan finished with errors")
	}
	return nil
}
