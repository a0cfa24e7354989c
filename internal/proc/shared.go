package proc

import (
	"sort"
	"strings"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/evaluator"
	"github.com/cwbudde/sasgo/internal/lexer"
	"github.com/cwbudde/sasgo/internal/pdv"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// datasetRow adapts a single Dataset row to evaluator.Row, the sibling of
// datastep.pdvRow, so WHERE clauses evaluate against PROC input exactly
// as assignment/IF expressions do inside a DATA step (spec.md §4.4: "a
// row from a Dataset presented via the same interface").
type datasetRow struct {
	d   *env.Dataset
	row []pdv.Cell
}

func (r *datasetRow) Get(name string) (pdv.Cell, bool) {
	i := r.d.ColumnIndex(name)
	if i < 0 {
		return pdv.MissingCell, false
	}
	return r.row[i], true
}

// ArrayElement is unsupported in PROC row context; no PROC clause
// references an ARRAY.
func (r *datasetRow) ArrayElement(arrayName string, index int) (pdv.Cell, bool, error) {
	return pdv.MissingCell, false, errors.New(errors.Semantic, errors.CodeUnknownArray, errors.Error, lexer.Position{},
		"arrays are not available in PROC expressions", errors.Fields{"array": arrayName})
}

// filterRows returns the subset of d's rows matching where, or every row
// when where is nil. Evaluation failures are treated as non-matching,
// logged via warn rather than aborting the PROC (spec.md §4.3.6's
// recoverable-failure model, reused for WHERE evaluation).
func filterRows(d *env.Dataset, where ast.Expression, warn func(string, errors.Fields)) [][]pdv.Cell {
	if where == nil {
		return d.Rows
	}
	var out [][]pdv.Cell
	for _, row := range d.Rows {
		ev := evaluator.New(&datasetRow{d: d, row: row}, warn)
		cond, ok := ev.Eval(where)
		if ok && truthy(cond) {
			out = append(out, row)
		}
	}
	return out
}

func truthy(c pdv.Cell) bool {
	if c.IsMissing() {
		return false
	}
	if c.IsNumeric() {
		return c.Num() != 0
	}
	return c.Str() != ""
}

// compareCell orders two Cells for BY-group sorting and comparison
// (spec.md §4.3.1 "rows are compared key by key"): missing sorts before
// any real value, numeric Cells compare by value, character Cells compare
// byte-wise.
func compareCell(a, b pdv.Cell) int {
	if a.IsMissing() && b.IsMissing() {
		return 0
	}
	if a.IsMissing() {
		return -1
	}
	if b.IsMissing() {
		return 1
	}
	if a.IsNumeric() && b.IsNumeric() {
		switch {
		case a.Num() < b.Num():
			return -1
		case a.Num() > b.Num():
			return 1
		default:
			return 0
		}
	}
	as, bs := a.Str(), b.Str()
	if as == "" {
		as = a.Display()
	}
	if bs == "" {
		bs = b.Display()
	}
	return strings.Compare(as, bs)
}

// sortRows stably sorts rows by the named columns, honoring a
// per-column descending flag (PROC SORT's DESCENDING keyword, spec.md
// §4.6). Columns named in byVars but absent from d are skipped. locale,
// when non-empty, requests a collation-aware comparison of character
// keys (SORTSEQ=LOCALE()) instead of the default byte-wise ordering.
func sortRows(d *env.Dataset, rows [][]pdv.Cell, byVars []string, desc []bool, locale string) [][]pdv.Cell {
	idx := make([]int, len(byVars))
	for i, v := range byVars {
		idx[i] = d.ColumnIndex(v)
	}
	cmp := compareCell
	if locale != "" {
		if tag, err := language.Parse(locale); err == nil {
			col := collate.New(tag)
			cmp = func(a, b pdv.Cell) int {
				if a.IsChar() && b.IsChar() {
					return col.CompareString(a.Str(), b.Str())
				}
				return compareCell(a, b)
			}
		}
	}
	out := make([][]pdv.Cell, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		for k, ci := range idx {
			if ci < 0 {
				continue
			}
			c := cmp(out[i][ci], out[j][ci])
			if c == 0 {
				continue
			}
			if k < len(desc) && desc[k] {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

// columnNames returns every column name when vars is empty, else vars
// filtered to the ones actually present on d (PROC PRINT/MEANS/FREQ VAR=
// defaulting, spec.md §4.6).
func columnNames(d *env.Dataset, vars []string) []string {
	if len(vars) == 0 {
		names := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			names[i] = c.Name
		}
		return names
	}
	var out []string
	for _, v := range vars {
		if d.ColumnIndex(v) >= 0 {
			out = append(out, v)
		}
	}
	return out
}

func requireDataset(ctx *Context, name string) (*env.Dataset, error) {
	if name == "" {
		return nil, errors.New(errors.Semantic, errors.CodeUnknownDataset, errors.Error, ctx.Stmt.Pos(),
			"missing required DATA= option", errors.Fields{"proc": ctx.Stmt.Name})
	}
	d, ok := ctx.Env.Dataset(name)
	if !ok {
		return nil, errors.New(errors.Semantic, errors.CodeUnknownDataset, errors.Error, ctx.Stmt.Pos(),
			"unknown dataset "+name, errors.Fields{"dataset": name, "proc": ctx.Stmt.Name})
	}
	return d, nil
}

func byVarsOf(by *ast.ByStatement) ([]string, []bool) {
	if by == nil {
		return nil, nil
	}
	return by.Variables, by.Descending
}
