package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/persist"
)

// newEnvironment builds a Data Environment with the WORK library and the
// CSV persistence contract (§6/SPEC_FULL.md §B.1) wired in, applying any
// --libname/--set flags from the root command.
func newEnvironment() (*env.Environment, error) {
	e := env.New("", persist.CSV{}, persist.CSV{})
	for _, l := range librefs {
		ref, path, ok := strings.Cut(l, "=")
		if !ok {
			return nil, fmt.Errorf("--libname %q: expected ref=path", l)
		}
		e.Libname(ref, path)
	}
	for _, s := range optionSets {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected name=value", s)
		}
		e.SetOption(name, value)
	}
	return e, nil
}
