package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/app"
)

var verifyText string

var verifyCmd = &cobra.Command{
	Use:   "verify <name> [files...]",
	Short: "Cross-check a set's matches against reference engines",
	Long: "Matches the input with the stored set and with independent Aho-Corasick\n" +
		"implementations, then reports any occurrence they disagree on. Exits 1 on a mismatch.",
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyText, "text", "t", "", "Verify this text instead of files")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyText == "" && len(args) < 2 {
		return fmt.Errorf("verify needs --text or at least one file")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	au, _, err := a.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	type input struct {
		label string
		text  []byte
	}
	var inputs []input
	if verifyText != "" {
		inputs = append(inputs, input{text: []byte(verifyText)})
	}
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, input{label: path, text: data})
	}

	out := cmd.OutOrStdout()
	p := painter(resolveColor(out, colorFlag, noColor))
	ok := true
	for _, in := range inputs {
		reports, err := app.Verify(au, in.text)
		if err != nil {
			return err
		}
		if in.label != "" {
			fmt.Fprintln(out, p.paint(colorCyan, in.label))
		}
		fmt.Fprint(out, formatVerify(p, reports))
		for _, r := range reports {
			ok = ok && r.OK()
		}
	}
	if !ok {
		return exitError{1}
	}
	return nil
}
