package persist

import (
	"testing"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
)

func TestCSVSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := &env.Dataset{Library: "mylib", Name: "have"}
	d.Columns = []env.Column{
		{Name: "NAME", Type: pdv.TypeChar, Label: "Employee name"},
		{Name: "SALARY", Type: pdv.TypeNumeric, Format: "DOLLAR10."},
	}
	d.Rows = [][]pdv.Cell{
		{pdv.StrCell("Ann"), pdv.NumCell(50000)},
		{pdv.StrCell("Bo"), pdv.MissingCell},
	}

	var c CSV
	if err := c.Save(d, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := c.Load(dir, "have")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.ColumnCount() != 2 || loaded.RowCount() != 2 {
		t.Fatalf("loaded shape = %d cols, %d rows; want 2, 2", loaded.ColumnCount(), loaded.RowCount())
	}
	if loaded.Columns[1].Format != "DOLLAR10." {
		t.Errorf("FORMAT did not round-trip through the sidecar, got %q", loaded.Columns[1].Format)
	}
	if loaded.Columns[0].Label != "Employee name" {
		t.Errorf("LABEL did not round-trip through the sidecar, got %q", loaded.Columns[0].Label)
	}
	if !loaded.Rows[1][1].IsMissing() {
		t.Errorf("missing numeric cell did not round-trip as missing")
	}
	if loaded.Rows[0][0].Str() != "Ann" {
		t.Errorf("Rows[0][0] = %q, want Ann", loaded.Rows[0][0].Str())
	}
}
