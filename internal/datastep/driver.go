package datastep

import (
	"strconv"
	"strings"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// rowDriver advances the PDV to the next input row (spec.md §4.3 "Row
// source selection"); the three mutually exclusive sources (SET, MERGE,
// DATALINES) and the implicit single-iteration fallback all implement it.
type rowDriver interface {
	// Advance resets the row and loads the next source row, returning
	// false once the source is exhausted.
	Advance(p *pdv.PDV) (bool, error)
}

// singleIterationDriver drives a DATA step with no input source: one
// implicit pass through the body (spec.md §4.3: "used for DO-indexed data
// generation").
type singleIterationDriver struct{ done bool }

func (d *singleIterationDriver) Advance(p *pdv.PDV) (bool, error) {
	if d.done {
		return false, nil
	}
	p.ResetRow()
	d.done = true
	return true, nil
}

// setDriver concatenates rows across one or more SET datasets in order
// (spec.md §4.3 row source selection).
type setDriver struct {
	datasets []*env.Dataset
	dsIdx    int
	rowIdx   int
}

func newSetDriver(datasets []*env.Dataset) *setDriver {
	return &setDriver{datasets: datasets}
}

func (d *setDriver) Advance(p *pdv.PDV) (bool, error) {
	for d.dsIdx < len(d.datasets) && d.rowIdx >= len(d.datasets[d.dsIdx].Rows) {
		d.dsIdx++
		d.rowIdx = 0
	}
	if d.dsIdx >= len(d.datasets) {
		return false, nil
	}
	p.ResetRow()
	ds := d.datasets[d.dsIdx]
	row := ds.Rows[d.rowIdx]
	for ci, col := range ds.Columns {
		_ = p.Set(col.Name, row[ci])
	}
	d.rowIdx++
	return true, nil
}

// mergeDriver replays the pre-resolved MERGE+BY row sequence (spec.md
// §4.3.1), setting FIRST.var/LAST.var before each row's body executes.
type mergeDriver struct {
	rows []mergedRow
	pos  int
}

func newMergeDriver(datasets []*env.Dataset, byVars []string, desc []bool) *mergeDriver {
	steps := computeMergeSteps(datasets, byVars, desc)
	return &mergeDriver{rows: expandMergeSteps(steps, datasets, byVars)}
}

func (d *mergeDriver) Advance(p *pdv.PDV) (bool, error) {
	if d.pos >= len(d.rows) {
		return false, nil
	}
	p.ResetRow()
	mr := d.rows[d.pos]
	for name, v := range mr.values {
		_ = p.Set(name, v)
	}
	for byVar, first := range mr.first {
		p.SetFirst(byVar, first)
	}
	for byVar, last := range mr.last {
		p.SetLast(byVar, last)
	}
	d.pos++
	return true, nil
}

// datalinesDriver parses one INPUT-spec-described inline row per DATALINES
// line (spec.md §4.1 DATALINES block, §4.3 row source selection).
type datalinesDriver struct {
	lines []string
	vars  []inputVarSpec
	pos   int
}

type inputVarSpec struct {
	name   string
	isChar bool
}

func newDatalinesDriver(lines []string, vars []inputVarSpec) *datalinesDriver {
	return &datalinesDriver{lines: lines, vars: vars}
}

func (d *datalinesDriver) Advance(p *pdv.PDV) (bool, error) {
	if d.pos >= len(d.lines) {
		return false, nil
	}
	p.ResetRow()
	fields := strings.Fields(d.lines[d.pos])
	for i, v := range d.vars {
		var cell pdv.Cell
		if i < len(fields) {
			cell = parseInputField(fields[i], v.isChar)
		} else {
			cell = pdv.MissingCell
		}
		_ = p.Set(v.name, cell)
	}
	d.pos++
	return true, nil
}

func parseInputField(tok string, isChar bool) pdv.Cell {
	if isChar {
		return pdv.StrCell(tok)
	}
	if tok == "." {
		return pdv.MissingCell
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return pdv.MissingCell
	}
	return pdv.NumCell(f)
}
