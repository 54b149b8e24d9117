package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"graft/internal/resource"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <file>",
	Short: "Print the resource id of a module or one of its exports",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("name", "", "resolve a named export")
	resolveCmd.Flags().Bool("default", false, "resolve the default export")
	resolveCmd.Flags().Bool("hash", false, "also print the aggregator hash")
}

func runResolve(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}
	isDefault, err := cmd.Flags().GetBool("default")
	if err != nil {
		return fmt.Errorf("failed to get default flag: %w", err)
	}
	showHash, err := cmd.Flags().GetBool("hash")
	if err != nil {
		return fmt.Errorf("failed to get hash flag: %w", err)
	}
	if name != "" && isDefault {
		return fmt.Errorf("--name and --default are mutually exclusive")
	}

	id, err := resource.NewResolver().Resolve(abs, name, isDefault)
	if err != nil {
		return err
	}
	if showHash {
		fmt.Fprintf(os.Stdout, "%s %s\n", id, id.Hash8())
		return nil
	}
	fmt.Fprintln(os.Stdout, id)
	return nil
}
