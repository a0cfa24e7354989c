package proc

import (
	"fmt"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/listing"
)

// runPrint implements PROC PRINT (spec.md §4.6): DATA= required, VAR=
// defaults to every column, NOOBS suppresses the observation number
// column, WHERE= filters rows, TITLE= overrides the Environment's current
// title for this listing only.
func runPrint(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.PrintClauses)
	if cl == nil {
		cl = &ast.PrintClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}

	title := cl.Title
	if title == "" {
		title = ctx.Env.Title()
	}
	listing.Title(ctx.Sink, title)

	names := columnNames(d, cl.Var)
	headers := make([]string, len(names))
	for i, n := range names {
		headers[i] = n
		if cl.Label {
			if ci := d.ColumnIndex(n); ci >= 0 && d.Columns[ci].Label != "" {
				headers[i] = d.Columns[ci].Label
			}
		}
	}
	if !cl.Noobs {
		headers = append([]string{"OBS"}, headers...)
	}

	rows := filterRows(d, cl.Where, ctx.warn)
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = d.ColumnIndex(n)
	}

	out := make([][]string, 0, len(rows))
	for obs, row := range rows {
		rec := make([]string, 0, len(headers))
		if !cl.Noobs {
			rec = append(rec, fmt.Sprintf("%d", obs+1))
		}
		for _, ci := range idx {
			rec = append(rec, row[ci].Display())
		}
		out = append(out, rec)
	}

	listing.Render(ctx.Sink, headers, out)
	return nil
}
