package proc

import (
	"fmt"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// runFreq implements the supplemented PROC FREQ (SPEC_FULL.md §C):
// one-way frequency tables for each TABLES= entry, or a two-way crosstab
// for `var1*var2` entries, with percent and cumulative-percent columns
// unless NOPERCENT/NOCUM suppress them.
func runFreq(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.FreqClauses)
	if cl == nil {
		cl = &ast.FreqClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}
	listing.Title(ctx.Sink, ctx.Env.Title())

	for _, t := range cl.Tables {
		if t.Var2 == "" {
			oneWayFreq(ctx, d, t.Var1, cl)
		} else {
			twoWayFreq(ctx, d, t.Var1, t.Var2)
		}
	}
	return nil
}

func oneWayFreq(ctx *Context, d *env.Dataset, varName string, cl *ast.FreqClauses) {
	vi := d.ColumnIndex(varName)
	if vi < 0 {
		ctx.warn("unknown FREQ variable "+varName, nil)
		return
	}
	counts, order := tally(d.Rows, vi)
	total := len(d.Rows)

	headers := []string{varName, "FREQUENCY"}
	if !cl.NoPercent {
		headers = append(headers, "PERCENT")
	}
	if !cl.NoCum {
		headers = append(headers, "CUMFREQ")
		if !cl.NoPercent {
			headers = append(headers, "CUMPERCENT")
		}
	}

	var rows [][]string
	cumFreq := 0
	cumPct := 0.0
	for _, k := range order {
		n := counts[k]
		cumFreq += n
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(n) / float64(total)
		}
		cumPct += pct
		rec := []string{k, fmt.Sprintf("%d", n)}
		if !cl.NoPercent {
			rec = append(rec, pdv.NumCell(pct).Display())
		}
		if !cl.NoCum {
			rec = append(rec, fmt.Sprintf("%d", cumFreq))
			if !cl.NoPercent {
				rec = append(rec, pdv.NumCell(cumPct).Display())
			}
		}
		rows = append(rows, rec)
	}
	listing.Render(ctx.Sink, headers, rows)
}

func twoWayFreq(ctx *Context, d *env.Dataset, v1, v2 string) {
	i1, i2 := d.ColumnIndex(v1), d.ColumnIndex(v2)
	if i1 < 0 || i2 < 0 {
		ctx.warn("unknown FREQ crosstab variable", nil)
		return
	}
	_, colOrder := tally(d.Rows, i2)

	type cell struct{ row, col string }
	grid := make(map[cell]int)
	var rowOrder []string
	seenRow := make(map[string]bool)
	for _, r := range d.Rows {
		rk, ck := r[i1].Display(), r[i2].Display()
		grid[cell{rk, ck}]++
		if !seenRow[rk] {
			seenRow[rk] = true
			rowOrder = append(rowOrder, rk)
		}
	}

	headers := append([]string{v1 + "/" + v2}, colOrder...)
	var rows [][]string
	for _, rk := range rowOrder {
		rec := []string{rk}
		for _, ck := range colOrder {
			rec = append(rec, fmt.Sprintf("%d", grid[cell{rk, ck}]))
		}
		rows = append(rows, rec)
	}
	listing.Render(ctx.Sink, headers, rows)
}

// tally counts distinct displayed values of column ci across rows, in
// first-seen order.
func tally(rows [][]pdv.Cell, ci int) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, r := range rows {
		k := r[ci].Display()
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	return counts, order
}
