package proc

import (
	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/listing"
)

// runSQL implements the supplemented minimal PROC SQL subset
// (SPEC_FULL.md §C): a single SELECT against one source table, with an
// optional WHERE, no joins.
func runSQL(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.SQLSelectClauses)
	if cl == nil {
		ctx.warn("PROC SQL: no SELECT statement found", nil)
		return nil
	}
	d, err := requireDataset(ctx, cl.From)
	if err != nil {
		return err
	}

	names := columnNames(d, selectColumns(cl))
	rows := filterRows(d, cl.Where, ctx.warn)
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = d.ColumnIndex(n)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := make([]string, len(idx))
		for i, ci := range idx {
			rec[i] = row[ci].Display()
		}
		out = append(out, rec)
	}
	listing.Render(ctx.Sink, names, out)
	return nil
}

func selectColumns(cl *ast.SQLSelectClauses) []string {
	if len(cl.Columns) == 1 && cl.Columns[0] == "*" {
		return nil
	}
	return cl.Columns
}
