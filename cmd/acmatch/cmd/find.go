package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findValues bool

var findCmd = &cobra.Command{
	Use:   "find <name> [prefix]",
	Short: "List a set's patterns that start with a prefix",
	Long:  "Prints pattern and value, TAB-separated, in byte order. Without a prefix, lists every pattern.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findValues, "values", false, "Print values only")
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	prefix := ""
	if len(args) == 2 {
		prefix = args[1]
	}
	entries, err := a.Find(cmd.Context(), args[0], prefix)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return exitError{1}
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		if findValues {
			fmt.Fprintln(out, e.Value)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", e.Pattern, e.Value)
	}
	return nil
}
