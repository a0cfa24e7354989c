package proc

import (
	"fmt"
	"math"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/pdv"
)

var defaultMeansStats = []string{"N", "MEAN", "STD", "MIN", "MAX"}

// runMeans implements the supplemented PROC MEANS/SUMMARY (SPEC_FULL.md
// §C): per-BY-group (or whole-dataset, with no BY) descriptive statistics
// over VAR=, defaulting to N MEAN STD MIN MAX.
func runMeans(ctx *Context) error {
	cl, _ := ctx.Stmt.Clauses.(*ast.MeansClauses)
	if cl == nil {
		cl = &ast.MeansClauses{}
	}
	d, err := requireDataset(ctx, cl.Data)
	if err != nil {
		return err
	}
	stats := cl.Stats
	if len(stats) == 0 {
		stats = defaultMeansStats
	}
	vars := columnNames(d, cl.Var)
	byVars, _ := byVarsOf(cl.By)

	listing.Title(ctx.Sink, ctx.Env.Title())

	groups := [][][]pdv.Cell{d.Rows}
	if len(byVars) > 0 {
		groups = groupRows(d, byVars)
	}

	headers := append(append([]string{}, byVars...), "VARIABLE")
	for _, s := range stats {
		headers = append(headers, s)
	}

	var rows [][]string
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		for _, v := range vars {
			vi := d.ColumnIndex(v)
			if vi < 0 {
				continue
			}
			values := make([]float64, 0, len(group))
			for _, r := range group {
				if r[vi].IsNumeric() {
					values = append(values, r[vi].Num())
				}
			}
			rec := make([]string, 0, len(headers))
			for _, bv := range byVars {
				if bi := d.ColumnIndex(bv); bi >= 0 {
					rec = append(rec, group[0][bi].Display())
				} else {
					rec = append(rec, "")
				}
			}
			rec = append(rec, v)
			summary := summarize(values)
			for _, s := range stats {
				rec = append(rec, summary(s))
			}
			rows = append(rows, rec)
		}
	}
	listing.Render(ctx.Sink, headers, rows)
	return nil
}

// summarize returns a function computing one named statistic over values.
func summarize(values []float64) func(stat string) string {
	n := len(values)
	var sum, min, max float64
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}
	var variance float64
	if n > 1 {
		for _, v := range values {
			d := v - mean
			variance += d * d
		}
		variance /= float64(n - 1)
	}
	std := math.Sqrt(variance)

	return func(stat string) string {
		switch stat {
		case "N":
			return fmt.Sprintf("%d", n)
		case "SUM":
			return pdv.NumCell(sum).Display()
		case "MEAN":
			if n == 0 {
				return "."
			}
			return pdv.NumCell(mean).Display()
		case "STD":
			if n < 2 {
				return "."
			}
			return pdv.NumCell(std).Display()
		case "MIN":
			if n == 0 {
				return "."
			}
			return pdv.NumCell(min).Display()
		case "MAX":
			if n == 0 {
				return "."
			}
			return pdv.NumCell(max).Display()
		default:
			return "."
		}
	}
}
