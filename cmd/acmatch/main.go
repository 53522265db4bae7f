// acmatch compiles pattern sets into Aho-Corasick automata and scans text
// for every occurrence of every pattern in a single pass.
package main

import (
	"fmt"
	"os"

	"github.com/corey/acmatch/cmd/acmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
