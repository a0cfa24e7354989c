package env

import (
	"testing"

	"github.com/cwbudde/sasgo/internal/pdv"
)

func TestNewDatasetAndLookup(t *testing.T) {
	e := New("", nil, nil)
	d := e.NewDataset("have")
	if d.Library != "work" {
		t.Errorf("unqualified name should default to work library, got %q", d.Library)
	}

	got, ok := e.Dataset("work.have")
	if !ok || got != d {
		t.Fatalf("Dataset(work.have) did not return the dataset just created")
	}
}

func TestDatasetAppendColumnAndRow(t *testing.T) {
	d := &Dataset{Library: "work", Name: "have"}
	d.Columns = append(d.Columns, Column{Name: "x", Type: pdv.TypeNumeric})
	d.AppendRow(map[string]pdv.Cell{"X": pdv.NumCell(1)})

	d.AppendColumn(Column{Name: "y", Type: pdv.TypeNumeric})
	if len(d.Rows[0]) != 2 {
		t.Fatalf("AppendColumn should backfill existing rows, row has %d cells", len(d.Rows[0]))
	}
	if !d.Rows[0][1].IsMissing() {
		t.Errorf("backfilled cell should be missing, got %v", d.Rows[0][1])
	}

	d.AppendRow(map[string]pdv.Cell{"X": pdv.NumCell(2), "Y": pdv.NumCell(3)})
	if d.RowCount() != 2 || d.ColumnCount() != 2 {
		t.Fatalf("unexpected dataset shape: %d rows, %d cols", d.RowCount(), d.ColumnCount())
	}
}

func TestOptionsDefaultAndOverride(t *testing.T) {
	e := New("", nil, nil)
	if e.LineSize() != 120 {
		t.Errorf("default LINESIZE = %d, want 120", e.LineSize())
	}
	e.SetOption("linesize", "80")
	if e.LineSize() != 80 {
		t.Errorf("LINESIZE after override = %d, want 80", e.LineSize())
	}
	e.SetOption("somethingunknown", "x")
	if v, ok := e.Option("somethingunknown"); !ok || v != "x" {
		t.Errorf("unknown options should still be stored, got %q, %v", v, ok)
	}
}
