// Command sasgo runs the SAS-subset interpreter: batch file execution,
// an interactive REPL, and lexer/parser debugging subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/sasgo/cmd/sasgo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
