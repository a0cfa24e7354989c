package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sasgo/internal/interpreter"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/parser"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive SAS REPL",
	Long: `Read SAS source one line at a time, feeding the accumulated buffer to
the parser after every line (the feed-a-line contract): a Complete
statement runs immediately and clears the buffer, Incomplete keeps
accumulating and reprompts, and Error reports the failure and clears the
buffer so a typo doesn't wedge the session.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	e, err := newEnvironment()
	if err != nil {
		return err
	}
	sink := listing.NewWriter(os.Stdout)
	in := interpreter.New(e, sink, newLogger())

	scanner := bufio.NewScanner(os.Stdin)
	var buf string
	fmt.Print("sasgo> ")
	for scanner.Scan() {
		if buf != "" {
			buf += "\n"
		}
		buf += scanner.Text()

		switch res := parser.New(buf).ParseStatement(); res.Kind {
		case parser.Complete:
			if rerr := in.RunStatement(res.Node); rerr != nil {
				fmt.Fprintln(os.Stderr, rerr)
			}
			buf = ""
			fmt.Print("sasgo> ")
		case parser.Incomplete:
			fmt.Print("     > ")
		case parser.Error:
			fmt.Fprintln(os.Stderr, res.Err.Format(true))
			buf = ""
			fmt.Print("sasgo> ")
		}
	}
	fmt.Println()
	return scanner.Err()
}
