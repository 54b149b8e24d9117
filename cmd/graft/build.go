// Package main implements the graft CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"graft/internal/driver"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Rewrite a workspace's exports through the composition runtime",
	Long: `Build scans the workspace for extension modules, generates their
aggregators, and rewrites every eligible module whose exports have
registered extensions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("out", "", "mirror rewritten modules under this directory instead of editing in place")
	buildCmd.Flags().Bool("all", false, "instrument every eligible export, not only those with extensions")
	buildCmd.Flags().Bool("dry-run", false, "report what would change without writing anything")
	buildCmd.Flags().Bool("no-cache", false, "disable the on-disk rewrite cache")
	buildCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Root:           root,
		OutDir:         outDir,
		InstrumentAll:  all,
		DryRun:         dryRun,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if !noCache && !dryRun {
		if cache, cacheErr := driver.OpenDiskCache("graft"); cacheErr == nil {
			opts.Cache = cache
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	var res *driver.Result
	if shouldUseTUI(uiModeValue) && !quiet {
		files, listErr := driver.ListModules(root)
		if listErr == nil && len(files) > 0 {
			res, err = runBuildWithUI(cmd.Context(), "graft build", absRoot, files, opts)
		} else {
			res, err = driver.Build(cmd.Context(), opts)
		}
	} else {
		res, err = driver.Build(cmd.Context(), opts)
	}
	if res != nil {
		if perr := printBag(cmd, res.WorkspaceBag, res.WorkspaceFSet); perr != nil {
			return perr
		}
		for _, fr := range res.Files {
			if perr := printBag(cmd, fr.Bag, fr.FSet); perr != nil {
				return perr
			}
		}
	}
	if err != nil {
		return err
	}

	if !quiet {
		for _, fr := range res.Files {
			if fr.Changed && !fr.Cached {
				fmt.Fprintf(os.Stdout, "rewrote %s\n", formatPathForOutput(absRoot, fr.Path))
			}
		}
		cached := 0
		for _, fr := range res.Files {
			if fr.Cached {
				cached++
			}
		}
		verb := "rewrote"
		if dryRun {
			verb = "would rewrite"
		}
		fmt.Fprintf(os.Stdout, "%s %d of %d modules (%d cached, %d failed, %d extensions)\n",
			verb, res.Changed, len(res.Files), cached, res.Failed, res.Index.Len())
	}

	if res.HasErrors() {
		return fmt.Errorf("build finished with errors")
	}
	return nil
}
