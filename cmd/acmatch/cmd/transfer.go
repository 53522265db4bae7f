package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <name> [file]",
	Short: "Write a stored set as a JSON snapshot",
	Long:  "Writes the set's snapshot to file, or to stdout. The snapshot can be imported elsewhere.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <name> <file>",
	Short: "Store a JSON snapshot under a name",
	Long:  "Validates the snapshot, builds it if it was exported unbuilt, and stores it. Use - for stdin.",
	Args:  cobra.ExactArgs(2),
	RunE:  runImport,
}

func init() {
	addBuildFlags(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		return a.Export(cmd.Context(), args[0], cmd.OutOrStdout())
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := a.Export(cmd.Context(), args[0], f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %s to %s\n", args[0], args[1])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name, source := args[0], args[1]
	r := cmd.InOrStdin()
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	res, err := a.Import(cmd.Context(), name, source, r)
	if err != nil {
		return err
	}
	p := painter(resolveColor(cmd.OutOrStdout(), colorFlag, noColor))
	fmt.Fprint(cmd.OutOrStdout(), formatCompile(p, res))
	return nil
}
