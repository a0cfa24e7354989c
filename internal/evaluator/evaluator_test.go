package evaluator

import (
	"testing"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/pdv"
)

type fakeRow struct {
	vars   map[string]pdv.Cell
	arrays map[string][]pdv.Cell
}

func (r *fakeRow) Get(name string) (pdv.Cell, bool) {
	v, ok := r.vars[name]
	return v, ok
}

func (r *fakeRow) ArrayElement(arrayName string, index int) (pdv.Cell, bool, error) {
	elems, ok := r.arrays[arrayName]
	if !ok {
		return pdv.MissingCell, false, nil
	}
	if index < 1 || index > len(elems) {
		return pdv.MissingCell, false, nil
	}
	return elems[index-1], true, nil
}

func newEval(row *fakeRow) *Evaluator {
	return New(row, nil)
}

func TestEvalArithmeticMissingPropagates(t *testing.T) {
	row := &fakeRow{vars: map[string]pdv.Cell{"X": pdv.MissingCell, "Y": pdv.NumCell(2)}}
	e := newEval(row)
	expr := &ast.BinaryExpression{
		Operator: "+",
		Left:     &ast.VariableRef{Name: "X"},
		Right:    &ast.VariableRef{Name: "Y"},
	}
	got, ok := e.Eval(expr)
	if !ok || !got.IsMissing() {
		t.Fatalf("X+Y with X missing = %v, %v; want missing, true", got, ok)
	}
}

func TestEvalDivisionByZeroWarnsAndReturnsMissing(t *testing.T) {
	var warned bool
	row := &fakeRow{vars: map[string]pdv.Cell{"X": pdv.NumCell(1), "Y": pdv.NumCell(0)}}
	e := New(row, func(msg string, fields errors.Fields) { warned = true })
	expr := &ast.BinaryExpression{
		Operator: "/",
		Left:     &ast.VariableRef{Name: "X"},
		Right:    &ast.VariableRef{Name: "Y"},
	}
	got, ok := e.Eval(expr)
	if !ok || !got.IsMissing() {
		t.Fatalf("X/Y with Y=0 = %v, %v; want missing, true", got, ok)
	}
	if !warned {
		t.Error("division by zero should emit a warning")
	}
}

func TestEvalComparisonAndConcat(t *testing.T) {
	row := &fakeRow{vars: map[string]pdv.Cell{"A": pdv.StrCell("ab"), "B": pdv.StrCell("cd")}}
	e := newEval(row)
	concat := &ast.BinaryExpression{Operator: "||", Left: &ast.VariableRef{Name: "A"}, Right: &ast.VariableRef{Name: "B"}}
	got, ok := e.Eval(concat)
	if !ok || got.Str() != "abcd" {
		t.Fatalf("A||B = %v, want abcd", got)
	}

	cmp := &ast.BinaryExpression{Operator: "<", Left: &ast.VariableRef{Name: "A"}, Right: &ast.VariableRef{Name: "B"}}
	got, ok = e.Eval(cmp)
	if !ok || got.Num() != 1 {
		t.Fatalf("A<B = %v, want 1 (true)", got)
	}
}

func TestEvalArrayElementRef(t *testing.T) {
	row := &fakeRow{
		vars:   map[string]pdv.Cell{"I": pdv.NumCell(2)},
		arrays: map[string][]pdv.Cell{"SCORES": {pdv.NumCell(10), pdv.NumCell(20), pdv.NumCell(30)}},
	}
	e := newEval(row)
	ref := &ast.ArrayElementRef{Array: "SCORES", Index: &ast.VariableRef{Name: "I"}}
	got, ok := e.Eval(ref)
	if !ok || got.Num() != 20 {
		t.Fatalf("SCORES{I} with I=2 = %v, want 20", got)
	}
}

func TestEvalFunctionCall(t *testing.T) {
	row := &fakeRow{vars: map[string]pdv.Cell{"NAME": pdv.StrCell("  bob  ")}}
	e := newEval(row)
	call := &ast.FunctionCall{
		Name:      "UPCASE",
		Arguments: []ast.Expression{&ast.FunctionCall{Name: "TRIM", Arguments: []ast.Expression{&ast.VariableRef{Name: "NAME"}}}},
	}
	got, ok := e.Eval(call)
	if !ok || got.Str() != "  BOB" {
		t.Fatalf("UPCASE(TRIM(NAME)) = %q, want %q", got.Str(), "  BOB")
	}
}

func TestBuiltinSubstrAndScan(t *testing.T) {
	r := DefaultRegistry()
	fn, ok := r.Lookup("substr")
	if !ok {
		t.Fatal("SUBSTR not registered")
	}
	got, err := fn.Call([]pdv.Cell{pdv.StrCell("HELLO WORLD"), pdv.NumCell(7)})
	if err != nil || got.Str() != "WORLD" {
		t.Fatalf("SUBSTR(HELLO WORLD, 7) = %v, %v; want WORLD", got, err)
	}

	scan, _ := r.Lookup("SCAN")
	got, err = scan.Call([]pdv.Cell{pdv.StrCell("a,b,c"), pdv.NumCell(2), pdv.StrCell(",")})
	if err != nil || got.Str() != "b" {
		t.Fatalf("SCAN(a,b,c, 2, ',') = %v, %v; want b", got, err)
	}
}

func TestBuiltinArityError(t *testing.T) {
	r := DefaultRegistry()
	fn, _ := r.Lookup("ABS")
	if err := checkArity(fn, []pdv.Cell{pdv.NumCell(1), pdv.NumCell(2)}); err == nil {
		t.Fatal("expected arity error for ABS with 2 arguments")
	}
}

func TestBuiltinIntckYear(t *testing.T) {
	r := DefaultRegistry()
	fn, _ := r.Lookup("INTCK")
	from := pdv.NumCell(0)  // 1960-01-01
	to := pdv.NumCell(366)  // roughly one year later
	got, err := fn.Call([]pdv.Cell{pdv.StrCell("YEAR"), from, to})
	if err != nil || got.Num() != 1 {
		t.Fatalf("INTCK(YEAR,...) = %v, %v; want 1", got, err)
	}
}
