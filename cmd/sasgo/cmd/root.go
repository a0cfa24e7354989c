package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose    bool
	librefs    []string
	optionSets []string
)

var rootCmd = &cobra.Command{
	Use:   "sasgo",
	Short: "A SAS-subset interpreter",
	Long: `sasgo runs the SAS DATA-step/PROC scripting language subset described
in this project's specification: a row-oriented imperative DATA step for
constructing and transforming tabular datasets, and declarative PROC
procedures that consume datasets and produce new datasets or listing
reports.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringArrayVar(&librefs, "libname", nil, "assign a libref before running: --libname work=./work (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&optionSets, "set", nil, "set an OPTIONS name/value before running: --set linesize=120 (repeatable)")
}

// newLogger builds the root hclog.Logger for the §6 logging contract; the
// level is Info normally, Debug under --verbose.
func newLogger() hclog.Logger {
	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "sasgo",
		Level: level,
	})
}
