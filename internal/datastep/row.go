package datastep

import (
	"fmt"
	"strings"

	"github.com/cwbudde/sasgo/internal/pdv"
	"github.com/cwbudde/sasgo/pkg/ident"
)

// pdvRow adapts a PDV plus its within-step ARRAY bindings to the
// evaluator.Row interface (spec.md §4.4: "the PDV ... presented via the
// same interface" a PROC uses for a Dataset row).
type pdvRow struct {
	pdv    *pdv.PDV
	arrays map[string][]string
}

func newPDVRow(p *pdv.PDV, arrays map[string][]string) *pdvRow {
	return &pdvRow{pdv: p, arrays: arrays}
}

// Get resolves a variable reference, including the automatic variables
// _N_ and _ERROR_, and the FIRST.var / LAST.var BY-group markers (spec.md
// §3 PDV invariant).
func (r *pdvRow) Get(name string) (pdv.Cell, bool) {
	upper := ident.Normalize(name)
	switch upper {
	case "_N_":
		return pdv.NumCell(float64(r.pdv.N())), true
	case "_ERROR_":
		if r.pdv.Error() {
			return pdv.NumCell(1), true
		}
		return pdv.NumCell(0), true
	}
	if strings.HasPrefix(upper, "FIRST.") {
		return boolCell(r.pdv.First(upper[len("FIRST."):])), true
	}
	if strings.HasPrefix(upper, "LAST.") {
		return boolCell(r.pdv.Last(upper[len("LAST."):])), true
	}
	return r.pdv.Get(name)
}

func boolCell(b bool) pdv.Cell {
	if b {
		return pdv.NumCell(1)
	}
	return pdv.NumCell(0)
}

// ArrayElement resolves arr{index} against the array alias table built
// from ARRAY statements (spec.md §4.3.4).
func (r *pdvRow) ArrayElement(arrayName string, index int) (pdv.Cell, bool, error) {
	vars, ok := r.arrays[ident.Normalize(arrayName)]
	if !ok {
		return pdv.MissingCell, false, fmt.Errorf("array %s is not defined", arrayName)
	}
	if index < 1 || index > len(vars) {
		return pdv.MissingCell, false, fmt.Errorf("subscript %d out of range for array %s{%d}", index, arrayName, len(vars))
	}
	return r.pdv.Get(vars[index-1])
}

// arrayVariable resolves arr{index} to the underlying PDV variable name,
// used by assignment to an array element (evaluator.Row has no Set).
func arrayVariable(arrays map[string][]string, arrayName string, index int) (string, error) {
	vars, ok := arrays[ident.Normalize(arrayName)]
	if !ok {
		return "", fmt.Errorf("array %s is not defined", arrayName)
	}
	if index < 1 || index > len(vars) {
		return "", fmt.Errorf("subscript %d out of range for array %s{%d}", index, arrayName, len(vars))
	}
	return vars[index-1], nil
}
