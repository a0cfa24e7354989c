package proc

import (
	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
)

// runSort implements PROC SORT (spec.md §4.6): stable multi-key sort by
// BY, ascending unless a key carries DESCENDING. OUT= writes a new
// dataset; its absence sorts DATA= in place, matching real SAS.
func runSort(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.SortClauses)
	if cl == nil {
		cl = &ast.SortClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}
	byVars, desc := byVarsOf(cl.By)

	sorted := sortRows(d, d.Rows, byVars, desc, cl.Locale)

	if cl.Out == "" {
		d.Rows = sorted
		return nil
	}
	lib, name := env.ParseQualifiedName(cl.Out)
	out := &env.Dataset{Library: lib, Name: name, Columns: append([]env.Column(nil), d.Columns...), Rows: sorted}
	ctx.Env.PutDataset(out)
	if perr := ctx.Env.Persist(out); perr != nil {
		ctx.warn("failed to persist dataset "+out.QualifiedName(), nil)
	}
	return nil
}
