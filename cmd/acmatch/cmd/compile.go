package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <name> <file>",
	Short: "Compile a pattern file and store it under a name",
	Long: "Reads a pattern file (.txt: one pattern per line, optional TAB-separated value;\n" +
		".yaml: a list of {pattern, value} or a pattern→value mapping), builds the automaton\n" +
		"and stores it. Recompiling a name replaces the stored set.",
	Args: cobra.ExactArgs(2),
	RunE: runCompile,
}

func init() {
	addBuildFlags(compileCmd)
}

// addBuildFlags registers the flags that override the build.* settings.
func addBuildFlags(c *cobra.Command) {
	c.Flags().Bool("cooperative", false, "Build in budgeted slices, yielding between them")
	c.Flags().Duration("budget", 0, "Time slice per step in cooperative mode (default: build.budget)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Compile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	p := painter(resolveColor(cmd.OutOrStdout(), colorFlag, noColor))
	fmt.Fprint(cmd.OutOrStdout(), formatCompile(p, res))
	return nil
}
