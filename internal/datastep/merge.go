package datastep

import (
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
	"github.com/cwbudde/sasgo/pkg/ident"
)

// byGroup is a run of consecutive rows sharing one BY-key within a single
// dataset (spec.md §4.3.1: inputs are "pre-sorted by the BY variables").
type byGroup struct {
	key  []pdv.Cell
	rows [][]pdv.Cell
}

func groupByKey(d *env.Dataset, byVars []string) []byGroup {
	colIdx := make([]int, len(byVars))
	for i, v := range byVars {
		colIdx[i] = d.ColumnIndex(v)
	}
	var groups []byGroup
	for _, row := range d.Rows {
		key := make([]pdv.Cell, len(byVars))
		for i, ci := range colIdx {
			if ci >= 0 {
				key[i] = row[ci]
			} else {
				key[i] = pdv.MissingCell
			}
		}
		if n := len(groups); n > 0 && keysEqual(groups[n-1].key, key) {
			groups[n-1].rows = append(groups[n-1].rows, row)
		} else {
			groups = append(groups, byGroup{key: key, rows: [][]pdv.Cell{row}})
		}
	}
	return groups
}

func keysEqual(a, b []pdv.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// keysEqualPrefix reports whether a and b agree on their first n elements;
// a nil key (no previous/next group) never matches.
func keysEqualPrefix(a, b []pdv.Cell, n int) bool {
	if a == nil || b == nil {
		return false
	}
	for i := 0; i < n && i < len(a) && i < len(b); i++ {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func compareCell(a, b pdv.Cell) int {
	if a.IsMissing() && b.IsMissing() {
		return 0
	}
	if a.IsMissing() {
		return -1
	}
	if b.IsMissing() {
		return 1
	}
	if a.IsNumeric() && b.IsNumeric() {
		switch {
		case a.Num() < b.Num():
			return -1
		case a.Num() > b.Num():
			return 1
		default:
			return 0
		}
	}
	as, bs := a.Display(), b.Display()
	if a.IsChar() {
		as = a.Str()
	}
	if b.IsChar() {
		bs = b.Str()
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func compareKeys(a, b []pdv.Cell, desc []bool) int {
	for i := range a {
		c := compareCell(a[i], b[i])
		if i < len(desc) && desc[i] {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// mergeStep is one resolved BY-key across all input datasets: which
// datasets participate (have a matching group) and their contributing
// rows.
type mergeStep struct {
	key          []pdv.Cell
	participants map[int][][]pdv.Cell // dataset index -> rows in its group
}

// computeMergeSteps performs the n-way merge-by-key walk described in
// spec.md §4.3.1, entirely up front since inputs are already fully
// materialized in memory.
func computeMergeSteps(datasets []*env.Dataset, byVars []string, desc []bool) []mergeStep {
	groups := make([][]byGroup, len(datasets))
	for i, d := range datasets {
		groups[i] = groupByKey(d, byVars)
	}
	cursor := make([]int, len(datasets))

	var steps []mergeStep
	for {
		minIdx := -1
		var minKey []pdv.Cell
		for i := range datasets {
			if cursor[i] >= len(groups[i]) {
				continue
			}
			k := groups[i][cursor[i]].key
			if minIdx == -1 || compareKeys(k, minKey, desc) < 0 {
				minIdx = i
				minKey = k
			}
		}
		if minIdx == -1 {
			break
		}
		participants := map[int][][]pdv.Cell{}
		for i := range datasets {
			if cursor[i] < len(groups[i]) && keysEqual(groups[i][cursor[i]].key, minKey) {
				participants[i] = groups[i][cursor[i]].rows
				cursor[i]++
			}
		}
		steps = append(steps, mergeStep{key: minKey, participants: participants})
	}
	return steps
}

// mergedRow is one fully-resolved output row of a MERGE, with per-BY-
// variable FIRST/LAST markers (spec.md §4.3.1).
type mergedRow struct {
	values map[string]pdv.Cell
	first  map[string]bool
	last   map[string]bool
}

// expandMergeSteps turns the resolved BY-key steps into the flat sequence
// of PDV loads the row loop performs, handling groups with unequal row
// counts per dataset by repeating the last row of a shorter group (SAS's
// one-to-many / many-to-many MERGE behavior).
func expandMergeSteps(steps []mergeStep, datasets []*env.Dataset, byVars []string) []mergedRow {
	var out []mergedRow
	for si, st := range steps {
		maxRows := 1
		for _, rows := range st.participants {
			if len(rows) > maxRows {
				maxRows = len(rows)
			}
		}
		var prevKey, nextKey []pdv.Cell
		if si > 0 {
			prevKey = steps[si-1].key
		}
		if si < len(steps)-1 {
			nextKey = steps[si+1].key
		}
		for j := 0; j < maxRows; j++ {
			values := map[string]pdv.Cell{}
			for i, d := range datasets {
				rows, ok := st.participants[i]
				if !ok {
					continue
				}
				row := rows[len(rows)-1]
				if j < len(rows) {
					row = rows[j]
				}
				for ci, col := range d.Columns {
					values[ident.Normalize(col.Name)] = row[ci]
				}
			}
			mr := mergedRow{values: values, first: map[string]bool{}, last: map[string]bool{}}
			for vi, v := range byVars {
				key := ident.Normalize(v)
				mr.first[key] = j == 0 && !keysEqualPrefix(prevKey, st.key, vi+1)
				mr.last[key] = j == maxRows-1 && !keysEqualPrefix(nextKey, st.key, vi+1)
			}
			out = append(out, mr)
		}
	}
	return out
}
