package proc

import (
	"strings"
	"testing"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/pdv"
)

type bufSink struct{ lines []string }

func (b *bufSink) Writeln(line string) { b.lines = append(b.lines, line) }
func (b *bufSink) text() string        { return strings.Join(b.lines, "\n") }

func newScores() *env.Environment {
	e := env.New("", nil, nil)
	d := e.NewDataset("work.scores")
	d.Columns = []env.Column{
		{Name: "NAME", Type: pdv.TypeChar},
		{Name: "GROUP", Type: pdv.TypeChar},
		{Name: "SCORE", Type: pdv.TypeNumeric},
	}
	rows := []struct {
		name, group string
		score       float64
	}{
		{"ALICE", "A", 90},
		{"BOB", "A", 70},
		{"CARL", "B", 80},
		{"DANA", "B", 60},
	}
	for _, r := range rows {
		d.AppendRow(map[string]pdv.Cell{
			"NAME":  pdv.StrCell(r.name),
			"GROUP": pdv.StrCell(r.group),
			"SCORE": pdv.NumCell(r.score),
		})
	}
	return e
}

func TestDispatchUnsupportedProc(t *testing.T) {
	d := NewDispatcher()
	ctx := &Context{Env: newScores(), Sink: &bufSink{}, Stmt: &ast.ProcStatement{Name: "REPORT"}}
	if err := d.Dispatch(ctx); err == nil {
		t.Fatal("expected UnsupportedProc error")
	}
}

func TestPrintListsRows(t *testing.T) {
	sink := &bufSink{}
	ctx := &Context{Env: newScores(), Sink: sink, Stmt: &ast.ProcStatement{Name: "PRINT",
		Clauses: &ast.PrintClauses{Data: "work.scores", Noobs: true}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !strings.Contains(sink.text(), "ALICE") {
		t.Errorf("expected ALICE in output, got:\n%s", sink.text())
	}
}

func TestPrintWhereFilters(t *testing.T) {
	sink := &bufSink{}
	where := &ast.BinaryExpression{
		Operator: ">=",
		Left:     &ast.VariableRef{Name: "SCORE"},
		Right:    &ast.NumberLiteral{Value: 80},
	}
	ctx := &Context{Env: newScores(), Sink: sink, Stmt: &ast.ProcStatement{Name: "PRINT",
		Clauses: &ast.PrintClauses{Data: "work.scores", Noobs: true, Where: where}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	out := sink.text()
	if strings.Contains(out, "BOB") || strings.Contains(out, "DANA") {
		t.Errorf("WHERE should have excluded BOB/DANA:\n%s", out)
	}
	if !strings.Contains(out, "ALICE") || !strings.Contains(out, "CARL") {
		t.Errorf("expected ALICE and CARL in output:\n%s", out)
	}
}

func TestSortDescendingByScore(t *testing.T) {
	e := newScores()
	ctx := &Context{Env: e, Sink: &bufSink{}, Stmt: &ast.ProcStatement{Name: "SORT",
		Clauses: &ast.SortClauses{Data: "work.scores", By: &ast.ByStatement{Variables: []string{"SCORE"}, Descending: []bool{true}}}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	d, _ := e.Dataset("work.scores")
	si := d.ColumnIndex("SCORE")
	want := []float64{90, 80, 70, 60}
	for i, w := range want {
		if got := d.Rows[i][si].Num(); got != w {
			t.Errorf("row %d SCORE = %v, want %v", i, got, w)
		}
	}
}

func TestSortLocaleCollation(t *testing.T) {
	e := newScores()
	ctx := &Context{Env: e, Sink: &bufSink{}, Stmt: &ast.ProcStatement{Name: "SORT",
		Clauses: &ast.SortClauses{Data: "work.scores",
			By:     &ast.ByStatement{Variables: []string{"NAME"}},
			Locale: "en"}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	d, _ := e.Dataset("work.scores")
	ni := d.ColumnIndex("NAME")
	if got := d.Rows[0][ni].Str(); got != "ALICE" {
		t.Errorf("first row NAME = %q, want ALICE", got)
	}
}

func TestMeansPerGroup(t *testing.T) {
	sink := &bufSink{}
	ctx := &Context{Env: newScores(), Sink: sink, Stmt: &ast.ProcStatement{Name: "MEANS",
		Clauses: &ast.MeansClauses{Data: "work.scores", Var: []string{"SCORE"},
			By: &ast.ByStatement{Variables: []string{"GROUP"}}, Stats: []string{"N", "MEAN"}}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	out := sink.text()
	if !strings.Contains(out, "80") { // mean of group A: (90+70)/2
		t.Errorf("expected group A mean 80 in output:\n%s", out)
	}
}

func TestFreqOneWay(t *testing.T) {
	sink := &bufSink{}
	ctx := &Context{Env: newScores(), Sink: sink, Stmt: &ast.ProcStatement{Name: "FREQ",
		Clauses: &ast.FreqClauses{Data: "work.scores", Tables: []ast.FreqTable{{Var1: "GROUP"}}}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	out := sink.text()
	if !strings.Contains(out, "50") {
		t.Errorf("expected 50 percent for each 2-of-4 group:\n%s", out)
	}
}

func TestTransposeWideFormat(t *testing.T) {
	e := newScores()
	ctx := &Context{Env: e, Sink: &bufSink{}, Stmt: &ast.ProcStatement{Name: "TRANSPOSE",
		Clauses: &ast.TransposeClauses{Data: "work.scores", Out: "work.wide", Var: []string{"SCORE"}, ID: "NAME"}}}
	if err := NewDispatcher().Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	out, ok := e.Dataset("work.wide")
	if !ok {
		t.Fatal("work.wide was not created")
	}
	if out.RowCount() != 1 {
		t.Fatalf("row count = %d, want 1", out.RowCount())
	}
	if ci := out.ColumnIndex("ALICE"); ci < 0 {
		t.Errorf("expected column ALICE, columns: %+v", out.Columns)
	}
}
