package proc

import (
	"fmt"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/listing"
)

// runContents implements the supplemented PROC CONTENTS (SPEC_FULL.md
// §C): a listing of DATA='s column metadata (name, type, length, label,
// format, informat) plus the observation/variable counts.
func runContents(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.ContentsClauses)
	if cl == nil {
		cl = &ast.ContentsClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}

	listing.Title(ctx.Sink, ctx.Env.Title())
	ctx.Sink.Writeln(fmt.Sprintf("Data Set: %s   Observations: %d   Variables: %d",
		d.QualifiedName(), d.RowCount(), d.ColumnCount()))

	headers := []string{"VARIABLE", "TYPE", "LENGTH", "LABEL", "FORMAT", "INFORMAT"}
	rows := make([][]string, len(d.Columns))
	for i, c := range d.Columns {
		typ := "Num"
		if c.Type.String() == "char" {
			typ = "Char"
		}
		rows[i] = []string{c.Name, typ, fmt.Sprintf("%d", c.Length), c.Label, c.Format, c.Informat}
	}
	listing.Render(ctx.Sink, headers, rows)
	return nil
}
