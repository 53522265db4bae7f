package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective settings",
	Long:  "Shows the settings after merging defaults, the config file, ACMATCH_* environment variables and flags.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	addBuildFlags(configCmd)
	configCmd.Flags().Bool("leftmost", false, "Report leftmost-longest non-overlapping matches")
	configCmd.Flags().Bool("decode", false, "Detect the input charset and decode to UTF-8 first")
	configCmd.Flags().Int("workers", 0, "Files scanned in parallel (default: scan.workers)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	s := settings
	file := s.File
	if file == "" {
		file = "(none)"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config file        %s\n", file)
	fmt.Fprintf(out, "db                 %s\n", s.DB)
	fmt.Fprintf(out, "log.level          %s\n", s.Log.Level)
	fmt.Fprintf(out, "build.cooperative  %t\n", s.Build.Cooperative)
	fmt.Fprintf(out, "build.budget       %d\n", s.Build.Budget)
	fmt.Fprintf(out, "scan.workers       %d\n", s.Scan.Workers)
	fmt.Fprintf(out, "scan.leftmost      %t\n", s.Scan.Leftmost)
	fmt.Fprintf(out, "scan.decode        %t\n", s.Scan.Decode)
	return nil
}
