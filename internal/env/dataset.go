// Package env implements the process-wide Data Environment: libraries,
// datasets, options, title/footnote (spec.md §3 Library/Environment).
package env

import (
	"fmt"
	"strings"

	"github.com/cwbudde/sasgo/internal/pdv"
	"github.com/cwbudde/sasgo/pkg/ident"
)

// Column is one variable's metadata within a Dataset, mirroring pdv.VarMeta
// but scoped to the persisted table rather than a single step's PDV.
type Column struct {
	Name     string
	Type     pdv.VarType
	Length   int
	Label    string
	Format   string
	Informat string
}

// Dataset is a named table: ordered column metadata plus row-major Cell
// storage (spec.md §3). Datasets are mutable during DATA step execution
// (appending rows and columns) but are treated as immutable by PROCs
// during a single invocation.
type Dataset struct {
	Library string // libref, lowercased; "work" for temporary datasets
	Name    string // lowercased
	Columns []Column
	Rows    [][]pdv.Cell
}

// QualifiedName returns "library.name".
func (d *Dataset) QualifiedName() string {
	return d.Library + "." + d.Name
}

// ColumnIndex returns the index of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if ident.Equal(c.Name, name) {
			return i
		}
	}
	return -1
}

// AppendColumn adds a new column to the dataset, back-filling every
// already-emitted row with missing (spec.md §4.3.2 PDV-to-dataset sync).
func (d *Dataset) AppendColumn(col Column) int {
	idx := len(d.Columns)
	d.Columns = append(d.Columns, col)
	fill := pdv.MissingCell
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], fill)
	}
	return idx
}

// AppendRow appends a row built by name from a source map (typically a
// PDV snapshot), writing missing for any dataset column the source does
// not supply.
func (d *Dataset) AppendRow(values map[string]pdv.Cell) {
	row := make([]pdv.Cell, len(d.Columns))
	for i, c := range d.Columns {
		if v, ok := values[ident.Normalize(c.Name)]; ok {
			row[i] = v
		} else {
			row[i] = pdv.MissingCell
		}
	}
	d.Rows = append(d.Rows, row)
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return len(d.Rows) }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.Columns) }

// ParseQualifiedName splits "lib.name" into its parts, defaulting the
// library to "work" when no libref is given.
func ParseQualifiedName(qualified string) (library, name string) {
	if i := strings.IndexByte(qualified, '.'); i >= 0 {
		return strings.ToLower(qualified[:i]), strings.ToLower(qualified[i+1:])
	}
	return "work", strings.ToLower(qualified)
}

// ErrUnknownDataset describes an unbound dataset name. Environment.Dataset
// does not return it; it reports a missing dataset with a false ok flag.
type ErrUnknownDataset struct{ Name string }

func (e *ErrUnknownDataset) Error() string {
	return fmt.Sprintf("dataset %s does not exist", e.Name)
}
