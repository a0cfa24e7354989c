package datastep

import (
	"testing"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
)

func num(v float64) *ast.NumberLiteral  { return &ast.NumberLiteral{Value: v} }
func vref(name string) *ast.VariableRef { return &ast.VariableRef{Name: name} }

func binop(op string, l, r ast.Expression) *ast.BinaryExpression {
	return &ast.BinaryExpression{Operator: op, Left: l, Right: r}
}

func assign(target ast.Expression, value ast.Expression) *ast.AssignStatement {
	return &ast.AssignStatement{Target: target, Value: value}
}

func newEnv() *env.Environment { return env.New("", nil, nil) }

// Scenario A: implicit output with a retained accumulator.
func TestScenarioA_RetainedAccumulator(t *testing.T) {
	e := newEnv()
	in := e.NewDataset("work.in")
	in.Columns = []env.Column{{Name: "X", Type: pdv.TypeNumeric}}
	for _, v := range []float64{1, 2, 3, 4} {
		in.AppendRow(map[string]pdv.Cell{"X": pdv.NumCell(v)})
	}

	ds := &ast.DataStatement{
		Names: []string{"work.out"},
		Body: []ast.Statement{
			&ast.SetStatement{Datasets: []string{"work.in"}},
			&ast.RetainStatement{Variables: []string{"TOTAL"}, Initial: num(0)},
			assign(vref("TOTAL"), binop("+", vref("TOTAL"), vref("X"))),
		},
	}

	ex := New(e, nil)
	if err := ex.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, ok := e.Dataset("work.out")
	if !ok {
		t.Fatal("work.out was not created")
	}
	if out.RowCount() != 4 {
		t.Fatalf("row count = %d, want 4", out.RowCount())
	}
	totalIdx := out.ColumnIndex("TOTAL")
	if totalIdx < 0 {
		t.Fatal("TOTAL column missing")
	}
	want := []float64{1, 3, 6, 10}
	for i, w := range want {
		if got := out.Rows[i][totalIdx].Num(); got != w {
			t.Errorf("row %d TOTAL = %v, want %v", i, got, w)
		}
	}
}

// Scenario B: conditional OUTPUT suppresses the implicit one.
func TestScenarioB_ConditionalOutput(t *testing.T) {
	e := newEnv()
	in := e.NewDataset("work.in")
	in.Columns = []env.Column{{Name: "X", Type: pdv.TypeNumeric}}
	for v := 1; v <= 5; v++ {
		in.AppendRow(map[string]pdv.Cell{"X": pdv.NumCell(float64(v))})
	}

	ds := &ast.DataStatement{
		Names: []string{"work.out"},
		Body: []ast.Statement{
			&ast.SetStatement{Datasets: []string{"work.in"}},
			&ast.IfStatement{
				Condition: binop(">=", vref("X"), num(3)),
				Then:      &ast.OutputStatement{},
			},
		},
	}

	ex := New(e, nil)
	if err := ex.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := e.Dataset("work.out")
	if out.RowCount() != 3 {
		t.Fatalf("row count = %d, want 3", out.RowCount())
	}
	xi := out.ColumnIndex("X")
	want := []float64{3, 4, 5}
	for i, w := range want {
		if got := out.Rows[i][xi].Num(); got != w {
			t.Errorf("row %d X = %v, want %v", i, got, w)
		}
	}
}

// Scenario C: ARRAY with DO loop, DROP of the induction variable, new
// column emergence (TOTAL never existed on the input dataset).
func TestScenarioC_ArrayDoLoop(t *testing.T) {
	e := newEnv()
	in := e.NewDataset("work.in")
	in.Columns = []env.Column{
		{Name: "S1", Type: pdv.TypeNumeric},
		{Name: "S2", Type: pdv.TypeNumeric},
		{Name: "S3", Type: pdv.TypeNumeric},
	}
	in.AppendRow(map[string]pdv.Cell{"S1": pdv.NumCell(10), "S2": pdv.NumCell(20), "S3": pdv.NumCell(30)})

	arrRef := func(idx ast.Expression) *ast.ArrayElementRef {
		return &ast.ArrayElementRef{Array: "A", Index: idx}
	}

	ds := &ast.DataStatement{
		Names: []string{"work.out"},
		Body: []ast.Statement{
			&ast.SetStatement{Datasets: []string{"work.in"}},
			&ast.ArrayStatement{Name: "A", Size: 3, Variables: []string{"S1", "S2", "S3"}},
			assign(vref("TOTAL"), num(0)),
			&ast.DoStatement{
				Kind:  ast.DoIndexed,
				Index: "I",
				Start: num(1),
				Stop:  num(3),
				Body: []ast.Statement{
					assign(arrRef(vref("I")), binop("+", arrRef(vref("I")), num(5))),
					assign(vref("TOTAL"), binop("+", vref("TOTAL"), arrRef(vref("I")))),
				},
			},
			&ast.DropStatement{Variables: []string{"I"}},
		},
	}

	ex := New(e, nil)
	if err := ex.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := e.Dataset("work.out")
	if out.ColumnIndex("I") >= 0 {
		t.Error("I should have been dropped from the output")
	}
	for _, name := range []string{"S1", "S2", "S3", "TOTAL"} {
		if out.ColumnIndex(name) < 0 {
			t.Errorf("missing expected column %s", name)
		}
	}
	want := map[string]float64{"S1": 15, "S2": 25, "S3": 35, "TOTAL": 75}
	for name, w := range want {
		if got := out.Rows[0][out.ColumnIndex(name)].Num(); got != w {
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}
}

// Scenario D: MERGE with BY and FIRST./LAST. producing missing for
// unmatched keys.
func TestScenarioD_MergeByKey(t *testing.T) {
	e := newEnv()
	a := e.NewDataset("work.a")
	a.Columns = []env.Column{{Name: "ID", Type: pdv.TypeNumeric}, {Name: "V1", Type: pdv.TypeChar}}
	a.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(1), "V1": pdv.StrCell("x")})
	a.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(2), "V1": pdv.StrCell("y")})
	a.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(3), "V1": pdv.StrCell("z")})

	b := e.NewDataset("work.b")
	b.Columns = []env.Column{{Name: "ID", Type: pdv.TypeNumeric}, {Name: "V2", Type: pdv.TypeNumeric}}
	b.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(1), "V2": pdv.NumCell(10)})
	b.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(2), "V2": pdv.NumCell(20)})
	b.AppendRow(map[string]pdv.Cell{"ID": pdv.NumCell(4), "V2": pdv.NumCell(40)})

	ds := &ast.DataStatement{
		Names: []string{"work.m"},
		Body: []ast.Statement{
			&ast.MergeStatement{Datasets: []string{"work.a", "work.b"}},
			&ast.ByStatement{Variables: []string{"ID"}},
		},
	}

	ex := New(e, nil)
	if err := ex.Run(ds); err != nil {
		t.Fatalf("Run: %v", err)
	}
	m, _ := e.Dataset("work.m")
	if m.RowCount() != 4 {
		t.Fatalf("row count = %d, want 4", m.RowCount())
	}
	idI, v1I, v2I := m.ColumnIndex("ID"), m.ColumnIndex("V1"), m.ColumnIndex("V2")
	type want struct {
		id        float64
		v1        string
		v1Missing bool
		v2        float64
		v2Missing bool
	}
	wants := []want{
		{1, "x", false, 10, false},
		{2, "y", false, 20, false},
		{3, "z", false, 0, true},
		{4, "", true, 40, false},
	}
	for i, w := range wants {
		if got := m.Rows[i][idI].Num(); got != w.id {
			t.Errorf("row %d ID = %v, want %v", i, got, w.id)
		}
		if w.v1Missing {
			if !m.Rows[i][v1I].IsMissing() {
				t.Errorf("row %d V1 should be missing", i)
			}
		} else if got := m.Rows[i][v1I].Str(); got != w.v1 {
			t.Errorf("row %d V1 = %q, want %q", i, got, w.v1)
		}
		if w.v2Missing {
			if !m.Rows[i][v2I].IsMissing() {
				t.Errorf("row %d V2 should be missing", i)
			}
		} else if got := m.Rows[i][v2I].Num(); got != w.v2 {
			t.Errorf("row %d V2 = %v, want %v", i, got, w.v2)
		}
	}
}
