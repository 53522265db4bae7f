package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pattern sets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	infos, err := a.List()
	if err != nil {
		return err
	}
	p := painter(resolveColor(cmd.OutOrStdout(), colorFlag, noColor))
	fmt.Fprint(cmd.OutOrStdout(), formatList(p, infos))
	return nil
}
