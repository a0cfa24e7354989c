package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/sasgo/internal/lexer"
)

var (
	lexEval       string
	lexShowPos    bool
	lexShowType   bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a SAS program or expression",
	Long: `Tokenize (lex) a SAS program and print the resulting tokens. Useful
for debugging the lexer and understanding how source is tokenized,
including DATALINES/CARDS blocks (lexed in a distinct line-buffered mode).

Examples:
  sasgo lex script.sas
  sasgo lex -e "data out; x = 1; run;"
  sasgo lex --show-type --show-pos script.sas
  sasgo lex --only-errors script.sas`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(lexEval, args)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)
	tokenCount, errorCount := 0, 0
	for {
		tok := l.NextToken()
		if lexOnlyErrors && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}
		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			errorCount++
		}
		printToken(tok)
		if tok.Type == lexer.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}
	if lexOnlyErrors && errorCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-12s]", tok.Type)
	}
	switch {
	case tok.Type == lexer.EOF:
		out += " EOF"
	case tok.Type == lexer.ILLEGAL:
		out += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	case tok.Literal == "":
		out += fmt.Sprintf(" %s", tok.Type)
	default:
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
