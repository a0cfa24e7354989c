package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/interpreter"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/parser"
)

var (
	runEval    string
	runDumpAST bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a SAS program from a file or inline expression",
	Long: `Parse and execute a SAS program.

Examples:
  # Run a script file
  sasgo run script.sas

  # Run inline source
  sasgo run -e "data out; x = 1; run;"

  # Run with AST dump (for debugging)
  sasgo run --dump-ast script.sas`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline source instead of reading from a file")
	runCmd.Flags().BoolVar(&runDumpAST, "dump-ast", false, "dump the parsed AST before running")
}

func runRun(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(runEval, args)
	if err != nil {
		return err
	}

	prog, perrs := parser.New(input).WithFile(filename).ParseProgram()
	if len(perrs) > 0 {
		fmt.Fprintln(os.Stderr, errors.FormatAll(perrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	if runDumpAST {
		fmt.Println("AST:")
		fmt.Println(prog.String())
		fmt.Println()
	}

	e, err := newEnvironment()
	if err != nil {
		return err
	}
	sink := listing.NewWriter(os.Stdout)
	in := interpreter.New(e, sink, newLogger())

	if runErrs := in.Run(prog); len(runErrs) > 0 {
		fmt.Fprintln(os.Stderr, errors.FormatAll(runErrs, true))
		return fmt.Errorf("execution failed with %d error(s)", len(runErrs))
	}
	return nil
}

// readSource resolves run/parse/lex's common "-e expr, or file arg" input
// contract; with neither it returns an error (stdin is not read).
func readSource(eval string, args []string) (input, filename string, err error) {
	switch {
	case eval != "":
		return eval, "<eval>", nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	default:
		return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline source")
	}
}
