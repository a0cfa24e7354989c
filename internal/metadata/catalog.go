// Package metadata implements the variable-metadata sidecar that survives
// a dataset save/load round-trip even when the backing file format (plain
// CSV) cannot itself carry label/format/informat/length (SPEC_FULL.md
// §B.1). It is independent of the backing file format.
package metadata

import (
	"os"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// VarEntry is one column's carried-over metadata.
type VarEntry struct {
	Name     string
	Type     string // "numeric" or "char"
	Length   int
	Label    string
	Format   string
	Informat string
}

// SidecarPath returns the ".meta.json" path for a dataset file.
func SidecarPath(dataPath string) string {
	return dataPath + ".meta.json"
}

// Write serializes a dataset's column metadata to its sidecar path, using
// sjson to build the document incrementally and pretty to keep it
// human-readable on disk.
func Write(path string, d *env.Dataset) error {
	doc := "{}"
	var err error
	for i, c := range d.Columns {
		base := "columns." + itoa(i)
		typ := "numeric"
		if c.Type.String() == "char" {
			typ = "char"
		}
		if doc, err = sjson.Set(doc, base+".name", c.Name); err != nil {
			return err
		}
		if doc, err = sjson.Set(doc, base+".type", typ); err != nil {
			return err
		}
		if doc, err = sjson.Set(doc, base+".length", c.Length); err != nil {
			return err
		}
		if doc, err = sjson.Set(doc, base+".label", c.Label); err != nil {
			return err
		}
		if doc, err = sjson.Set(doc, base+".format", c.Format); err != nil {
			return err
		}
		if doc, err = sjson.Set(doc, base+".informat", c.Informat); err != nil {
			return err
		}
	}
	return os.WriteFile(SidecarPath(path), pretty.Pretty([]byte(doc)), 0o644)
}

// Read loads column metadata from a dataset's sidecar file, if present.
// A missing sidecar is not an error: CSV-only datasets simply fall back to
// field-level type inference (spec.md §6).
func Read(path string) ([]VarEntry, error) {
	raw, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []VarEntry
	gjson.GetBytes(raw, "columns").ForEach(func(_, col gjson.Result) bool {
		entries = append(entries, VarEntry{
			Name:     col.Get("name").String(),
			Type:     col.Get("type").String(),
			Length:   int(col.Get("length").Int()),
			Label:    col.Get("label").String(),
			Format:   col.Get("format").String(),
			Informat: col.Get("informat").String(),
		})
		return true
	})
	return entries, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}
