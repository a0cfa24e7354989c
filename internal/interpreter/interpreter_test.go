package interpreter_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/interpreter"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/parser"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// seedDataset registers a dataset directly (bypassing DATA step execution)
// so a scenario's script can SET/MERGE/PROC against known input, mirroring
// spec.md §8's "inline dataset" scenario inputs.
func seedDataset(e *env.Environment, qualified string, columns []string, rows [][]pdv.Cell) {
	lib, name := env.ParseQualifiedName(qualified)
	d := &env.Dataset{Library: lib, Name: name}
	for _, c := range columns {
		d.Columns = append(d.Columns, env.Column{Name: c, Type: pdv.TypeNumeric})
	}
	d.Rows = rows
	e.PutDataset(d)
}

func num(v float64) pdv.Cell { return pdv.NumCell(v) }
func str(v string) pdv.Cell  { return pdv.StrCell(v) }

func runScript(t *testing.T, e *env.Environment, sink listing.Sink, source string) {
	t.Helper()
	prog, errs := parser.New(source).ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", source, errs[0].Message)
	}
	in := interpreter.New(e, sink, nil)
	if runErrs := in.Run(prog); len(runErrs) > 0 {
		t.Fatalf("execution errors for %q: %v", source, runErrs[0].Message)
	}
}

func column(d *env.Dataset, row int, name string) pdv.Cell {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return pdv.MissingCell
	}
	return d.Rows[row][idx]
}

// Scenario A: implicit output with a retained accumulator.
func TestScenarioA_RetainedAccumulator(t *testing.T) {
	e := env.New("", nil, nil)
	seedDataset(e, "work.in", []string{"x"}, [][]pdv.Cell{
		{num(1)}, {num(2)}, {num(3)}, {num(4)},
	})

	runScript(t, e, listing.NewWriter(&bytes.Buffer{}),
		"data work.out; set work.in; retain total 0; total = total + x; run;")

	out, ok := e.Dataset("work.out")
	if !ok {
		t.Fatal("work.out was not created")
	}
	if out.RowCount() != 4 {
		t.Fatalf("expected 4 rows, got %d", out.RowCount())
	}
	wantTotals := []float64{1, 3, 6, 10}
	for i, want := range wantTotals {
		got := column(out, i, "total")
		if !got.IsNumeric() || got.Num() != want {
			t.Errorf("row %d: total = %v, want %v", i, got, want)
		}
	}
}

// Scenario B: conditional OUTPUT suppresses the implicit end-of-body output.
func TestScenarioB_ConditionalOutput(t *testing.T) {
	e := env.New("", nil, nil)
	seedDataset(e, "work.in", []string{"x"}, [][]pdv.Cell{
		{num(1)}, {num(2)}, {num(3)}, {num(4)}, {num(5)},
	})

	runScript(t, e, listing.NewWriter(&bytes.Buffer{}),
		"data work.out; set work.in; if x >= 3 then output; run;")

	out, ok := e.Dataset("work.out")
	if !ok {
		t.Fatal("work.out was not created")
	}
	if out.RowCount() != 3 {
		t.Fatalf("expected 3 rows, got %d", out.RowCount())
	}
	for i, want := range []float64{3, 4, 5} {
		got := column(out, i, "x")
		if got.Num() != want {
			t.Errorf("row %d: x = %v, want %v", i, got, want)
		}
	}
}

// Scenario C: ARRAY + DO loop, a dropped loop index, and new-column
// emergence.
func TestScenarioC_ArrayDoLoop(t *testing.T) {
	e := env.New("", nil, nil)
	seedDataset(e, "work.in", []string{"s1", "s2", "s3"}, [][]pdv.Cell{
		{num(10), num(20), num(30)},
	})

	runScript(t, e, listing.NewWriter(&bytes.Buffer{}),
		"data work.out; set work.in; array a{3} s1 s2 s3; total=0; "+
			"do i=1 to 3; a{i}=a{i}+5; total=total+a{i}; end; drop i; run;")

	out, ok := e.Dataset("work.out")
	if !ok {
		t.Fatal("work.out was not created")
	}
	if out.ColumnIndex("i") >= 0 {
		t.Error("dropped column i leaked into work.out")
	}
	wantCols := map[string]float64{"s1": 15, "s2": 25, "s3": 35, "total": 75}
	for name, want := range wantCols {
		got := column(out, 0, name)
		if !got.IsNumeric() || got.Num() != want {
			t.Errorf("column %s = %v, want %v", name, got, want)
		}
	}
}

// Scenario D: MERGE + BY, including unmatched sides producing missing.
func TestScenarioD_MergeByMissing(t *testing.T) {
	e := env.New("", nil, nil)
	seedDataset(e, "work.a", []string{"id", "v1"}, [][]pdv.Cell{
		{num(1), str("x")}, {num(2), str("y")}, {num(3), str("z")},
	})
	seedDataset(e, "work.b", []string{"id", "v2"}, [][]pdv.Cell{
		{num(1), num(10)}, {num(2), num(20)}, {num(4), num(40)},
	})

	runScript(t, e, listing.NewWriter(&bytes.Buffer{}),
		"data work.m; merge work.a work.b; by id; run;")

	out, ok := e.Dataset("work.m")
	if !ok {
		t.Fatal("work.m was not created")
	}
	if out.RowCount() != 4 {
		t.Fatalf("expected 4 rows, got %d", out.RowCount())
	}
	v1 := column(out, 2, "v1")
	v2 := column(out, 2, "v2")
	if !v1.IsChar() || v1.Str() != "z" || !v2.IsMissing() {
		t.Errorf("row for id=3: v1=%v v2=%v, want v1=z v2=missing", v1, v2)
	}
	v1row3 := column(out, 3, "v1")
	v2row3 := column(out, 3, "v2")
	if !v1row3.IsMissing() || !v2row3.IsNumeric() || v2row3.Num() != 40 {
		t.Errorf("row for id=4: v1=%v v2=%v, want v1=missing v2=40", v1row3, v2row3)
	}
}

// Scenario E: REPL incomplete-then-complete, feeding one line at a time
// through the real tri-state parser contract.
func TestScenarioE_REPLIncompleteThenComplete(t *testing.T) {
	e := env.New("", nil, nil)
	in := interpreter.New(e, listing.NewWriter(&bytes.Buffer{}), nil)

	var buf string
	feed := func(line string) parser.ResultKind {
		if buf != "" {
			buf += "\n"
		}
		buf += line
		res := parser.New(buf).ParseStatement()
		if res.Kind == parser.Complete {
			if err := in.RunStatement(res.Node); err != nil {
				t.Fatalf("executing completed statement: %v", err)
			}
			buf = ""
		}
		return res.Kind
	}

	if kind := feed("data work.t;"); kind != parser.Incomplete {
		t.Fatalf("after 'data work.t;': got %v, want Incomplete", kind)
	}
	if kind := feed("x=1;"); kind != parser.Incomplete {
		t.Fatalf("after 'x=1;': got %v, want Incomplete", kind)
	}
	if kind := feed("run;"); kind != parser.Complete {
		t.Fatalf("after 'run;': got %v, want Complete", kind)
	}

	out, ok := e.Dataset("work.t")
	if !ok {
		t.Fatal("work.t was not created")
	}
	if out.RowCount() != 1 {
		t.Fatalf("expected 1 row, got %d", out.RowCount())
	}
	if got := column(out, 0, "x"); !got.IsNumeric() || got.Num() != 1 {
		t.Errorf("x = %v, want 1", got)
	}
}

// Scenario F: PROC PRINT with WHERE and VAR, asserting the rendered
// listing.
func TestScenarioF_ProcPrintWhereVar(t *testing.T) {
	e := env.New("", nil, nil)
	seedDataset(e, "work.emp", []string{"id", "name", "age", "salary"}, [][]pdv.Cell{
		{num(1), str("A"), num(30), num(60000)},
		{num(2), str("B"), num(25), num(55000)},
		{num(3), str("C"), num(35), num(70000)},
		{num(4), str("D"), num(28), num(58000)},
	})

	var buf bytes.Buffer
	runScript(t, e, listing.NewWriter(&buf),
		"proc print data=work.emp noobs; var name salary; where age >= 28; run;")

	output := buf.String()
	for _, want := range []string{"A", "60000", "C", "70000", "D", "58000"} {
		if !strings.Contains(output, want) {
			t.Errorf("listing output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "B") {
		t.Errorf("listing output should exclude age<28 row for B:\n%s", output)
	}
}

// Testable property 5: parser incompleteness for any truncated prefix of a
// well-formed script, versus Complete for the full script and Error for an
// ill-formed one.
func TestProperty_ParserIncompleteness(t *testing.T) {
	full := "data work.out; set work.in; x = 1; run;"
	for i := 1; i < len(full); i++ {
		prefix := full[:i]
		if strings.HasSuffix(prefix, "run;") {
			continue
		}
		res := parser.New(prefix).ParseStatement()
		if res.Kind != parser.Incomplete {
			t.Errorf("prefix %q: got %v, want Incomplete", prefix, res.Kind)
		}
	}

	res := parser.New(full).ParseStatement()
	if res.Kind != parser.Complete {
		t.Fatalf("full script: got %v, want Complete", res.Kind)
	}

	illFormed := "data work.out set work.in; run;" // missing ';' after dataset name
	if res := parser.New(illFormed).ParseStatement(); res.Kind != parser.Error {
		t.Errorf("ill-formed script: got %v, want Error", res.Kind)
	}
}
