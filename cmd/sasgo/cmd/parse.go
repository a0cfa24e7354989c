package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/parser"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a SAS program and display the AST",
	Long: `Parse SAS source and display the Abstract Syntax Tree, or report every
syntax error found (batch mode runs every top-level statement through
ParseStatement to exhaustion, resynchronizing after each error).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading from a file")
}

func runParseCmd(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	prog, perrs := parser.New(input).WithFile(filename).ParseProgram()
	if len(perrs) > 0 {
		fmt.Fprintln(os.Stderr, errors.FormatAll(perrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	fmt.Println("Abstract Syntax Tree:")
	fmt.Println("=====================")
	fmt.Println(prog.String())
	return nil
}
