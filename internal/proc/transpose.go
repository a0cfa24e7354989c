package proc

import (
	"fmt"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// runTranspose implements PROC TRANSPOSE (spec.md §4.6): each input
// variable in VAR= (numeric columns not named in BY, by default) becomes
// one output row; the _NAME_ column (renamed via the NAME= option) holds
// the original variable name, and one observation-column per input row
// holds its values, named from ID= (with an optional PREFIX=) or COL1,
// COL2, ... when no ID= is given. BY groups are transposed independently
// and stacked in the output.
func runTranspose(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.TransposeClauses)
	if cl == nil {
		cl = &ast.TransposeClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}

	nameCol := "_NAME_"
	if cl.Name != "" {
		nameCol = cl.Name
	}
	byVars, _ := byVarsOf(cl.By)

	vars := cl.Var
	if len(vars) == 0 {
		for _, c := range d.Columns {
			if c.Type != pdv.TypeNumeric {
				continue
			}
			if contains(byVars, c.Name) {
				continue
			}
			vars = append(vars, c.Name)
		}
	}

	groups := [][][]pdv.Cell{d.Rows}
	if len(byVars) > 0 {
		groups = nil
		for _, g := range groupRows(d, byVars) {
			groups = append(groups, g)
		}
	}

	outCols := []env.Column{{Name: nameCol, Type: pdv.TypeChar}}
	for _, bv := range byVars {
		if ci := d.ColumnIndex(bv); ci >= 0 {
			outCols = append(outCols, d.Columns[ci])
		}
	}

	var outRows [][]pdv.Cell
	var colNames []string

	for _, group := range groups {
		names := transposeColumnNames(d, cl, group)
		for _, n := range names {
			if !contains(colNames, n) {
				colNames = append(colNames, n)
			}
		}
	}
	for _, n := range colNames {
		outCols = append(outCols, env.Column{Name: n, Type: pdv.TypeNumeric})
	}

	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		names := transposeColumnNames(d, cl, group)
		byVals := make([]pdv.Cell, len(byVars))
		for i, bv := range byVars {
			if ci := d.ColumnIndex(bv); ci >= 0 {
				byVals[i] = group[0][ci]
			}
		}
		for _, v := range vars {
			vi := d.ColumnIndex(v)
			if vi < 0 {
				continue
			}
			row := make([]pdv.Cell, len(outCols))
			row[0] = pdv.StrCell(v)
			off := 1
			for i := range byVars {
				row[off+i] = byVals[i]
			}
			off += len(byVars)
			valByName := make(map[string]pdv.Cell, len(group))
			for ri, r := range group {
				valByName[names[ri]] = r[vi]
			}
			for i, n := range colNames {
				if val, ok := valByName[n]; ok {
					row[off+i] = val
				} else {
					row[off+i] = pdv.MissingCell
				}
			}
			outRows = append(outRows, row)
		}
	}

	out := &env.Dataset{Columns: outCols, Rows: outRows}
	if cl.Out != "" {
		out.Library, out.Name = env.ParseQualifiedName(cl.Out)
	} else {
		out.Library, out.Name = "work", "transposed"
	}
	ctx.Env.PutDataset(out)
	if perr := ctx.Env.Persist(out); perr != nil {
		ctx.warn("failed to persist dataset "+out.QualifiedName(), nil)
	}
	return nil
}

// transposeColumnNames derives one observation-column name per row in
// group: ID= values (with PREFIX=) when given, else COL1, COL2, ...
func transposeColumnNames(d *env.Dataset, cl *ast.TransposeClauses, group [][]pdv.Cell) []string {
	prefix := cl.Prefix
	if prefix == "" {
		prefix = "COL"
	}
	if cl.ID == "" {
		names := make([]string, len(group))
		for i := range group {
			names[i] = fmt.Sprintf("%s%d", prefix, i+1)
		}
		return names
	}
	idIdx := d.ColumnIndex(cl.ID)
	names := make([]string, len(group))
	for i, row := range group {
		if idIdx >= 0 {
			names[i] = cl.Prefix + row[idIdx].Display()
		} else {
			names[i] = fmt.Sprintf("%s%d", prefix, i+1)
		}
	}
	return names
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// groupRows partitions d's rows into consecutive equal-BY-key groups,
// matching the pre-sorted-by-BY-vars assumption PROC SORT establishes
// (spec.md §4.3.1, reused here for TRANSPOSE's BY support).
func groupRows(d *env.Dataset, byVars []string) [][][]pdv.Cell {
	idx := make([]int, len(byVars))
	for i, v := range byVars {
		idx[i] = d.ColumnIndex(v)
	}
	var groups [][][]pdv.Cell
	var cur [][]pdv.Cell
	var curKey []pdv.Cell
	for _, row := range d.Rows {
		key := make([]pdv.Cell, len(idx))
		for i, ci := range idx {
			if ci >= 0 {
				key[i] = row[ci]
			}
		}
		if cur != nil && !cellsEqual(key, curKey) {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, row)
		curKey = key
	}
	if cur != nil {
		groups = append(groups, cur)
	}
	return groups
}

func cellsEqual(a, b []pdv.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if compareCell(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}
