// Package persist implements the dataset persistence contract (spec.md §6):
// load(path) -> Dataset and save(dataset, path). CSV is implemented
// directly; a readstat-compatible binary format is documented in
// SPEC_FULL.md §B.1 as a second Format a future collaborator would
// provide, reached only through the env.Loader/env.Saver interfaces.
package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/metadata"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// CSV implements env.Loader and env.Saver for the CSV dataset format:
// header row = column names, field-level type inference is numeric-else-
// string, with label/format/informat/length round-tripped via a
// ".meta.json" sidecar (internal/metadata) since plain CSV cannot carry
// them.
type CSV struct{}

func dataPath(libPath, name string) string {
	return filepath.Join(libPath, name+".csv")
}

// Load reads datasetName from libPath/datasetName.csv.
func (CSV) Load(libPath, datasetName string) (*env.Dataset, error) {
	path := dataPath(libPath, datasetName)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("persist: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("persist: %s has no header row", path)
	}

	header := records[0]
	sidecar, _ := metadata.Read(path)
	sidecarByName := make(map[string]metadata.VarEntry, len(sidecar))
	for _, e := range sidecar {
		sidecarByName[e.Name] = e
	}

	d := &env.Dataset{Name: datasetName}
	colType := make([]pdv.VarType, len(header))
	for i, h := range header {
		col := env.Column{Name: h, Type: pdv.TypeChar}
		if se, ok := sidecarByName[h]; ok {
			if se.Type == "numeric" {
				col.Type = pdv.TypeNumeric
			}
			col.Length = se.Length
			col.Label = se.Label
			col.Format = se.Format
			col.Informat = se.Informat
		}
		colType[i] = col.Type
		d.Columns = append(d.Columns, col)
	}

	// Infer numeric-else-string per column when no sidecar typed it,
	// scanning every data row (spec.md §6: "field-level type inference
	// numeric-else-string").
	if len(sidecar) == 0 {
		for i := range colType {
			colType[i] = pdv.TypeNumeric
			for _, row := range records[1:] {
				if i >= len(row) || row[i] == "" {
					continue
				}
				if _, err := strconv.ParseFloat(row[i], 64); err != nil {
					colType[i] = pdv.TypeChar
					break
				}
			}
			d.Columns[i].Type = colType[i]
		}
	}

	for _, rec := range records[1:] {
		row := make([]pdv.Cell, len(d.Columns))
		for i := range d.Columns {
			var field string
			if i < len(rec) {
				field = rec[i]
			}
			if colType[i] == pdv.TypeNumeric {
				if field == "" {
					row[i] = pdv.MissingCell
					continue
				}
				n, err := strconv.ParseFloat(field, 64)
				if err != nil {
					row[i] = pdv.MissingCell
					continue
				}
				row[i] = pdv.NumCell(n)
			} else {
				row[i] = pdv.StrCell(field)
			}
		}
		d.Rows = append(d.Rows, row)
	}

	return d, nil
}

// Save writes d to libPath/d.Name.csv, plus its metadata sidecar.
func (CSV) Save(d *env.Dataset, libPath string) error {
	if err := os.MkdirAll(libPath, 0o755); err != nil {
		return err
	}
	path := dataPath(libPath, d.Name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range d.Rows {
		rec := make([]string, len(row))
		for i, cell := range row {
			if !cell.IsMissing() {
				rec[i] = cell.Display()
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	return metadata.Write(path, d)
}
