// Package listing implements the append-only, line-oriented report sink
// PROC handlers write to (spec.md §6 "Listing contract"), with tabular
// rendering via ryanuber/columnize.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/ryanuber/columnize"
)

// Sink is the append-only, line-oriented destination for PROC output.
type Sink interface {
	Writeln(line string)
}

// Writer adapts an io.Writer to Sink.
type Writer struct {
	W io.Writer
}

// NewWriter wraps w as a Sink.
func NewWriter(w io.Writer) *Writer { return &Writer{W: w} }

func (w *Writer) Writeln(line string) {
	fmt.Fprintln(w.W, line)
}

// Render formats headers and rows as an aligned table (PROC PRINT/CONTENTS)
// and writes each resulting line to sink.
func Render(sink Sink, headers []string, rows [][]string) {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, "|"))
	for _, r := range rows {
		lines = append(lines, strings.Join(r, "|"))
	}
	config := columnize.DefaultConfig()
	config.Glue = "  "
	out := columnize.Format(lines, config)
	for _, line := range strings.Split(out, "\n") {
		sink.Writeln(line)
	}
}

// Title writes a PROC's TITLE line, when one is active (spec.md §3
// Environment: "current title").
func Title(sink Sink, title string) {
	if title != "" {
		sink.Writeln(title)
	}
}
