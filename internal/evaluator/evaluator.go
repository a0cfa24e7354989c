// Package evaluator implements expression evaluation shared by the DATA
// step executor and PROC WHERE filtering (spec.md §4.4): given an
// expression AST node and a row source, produce a Cell.
package evaluator

import (
	"math"
	"strconv"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/pdv"
)

// Row is the minimal interface an expression evaluates against: the PDV
// during DATA step execution, or a single Dataset row adapter when invoked
// by a PROC (spec.md §4.4: "a row from a Dataset presented via the same
// interface").
type Row interface {
	Get(name string) (pdv.Cell, bool)
	ArrayElement(arrayName string, index int) (pdv.Cell, bool, error)
}

// Evaluator evaluates expression ASTs against a Row, logging warnings for
// recoverable failures (spec.md §4.3.6) rather than aborting.
type Evaluator struct {
	Row      Row
	Warn     func(msg string, fields errors.Fields)
	Funcs    *Registry
}

// New creates an Evaluator over row, using the default function Registry.
func New(row Row, warn func(string, errors.Fields)) *Evaluator {
	if warn == nil {
		warn = func(string, errors.Fields) {}
	}
	return &Evaluator{Row: row, Warn: warn, Funcs: DefaultRegistry()}
}

// Eval evaluates expr, returning a Cell. Recoverable failures (division by
// zero, undefined function, array bounds, type mismatch) return
// pdv.MissingCell and log a warning rather than returning a Go error
// (spec.md §4.3.6); the PDV's _ERROR_ bit is the caller's responsibility to
// set from the returned ok flag.
func (e *Evaluator) Eval(expr ast.Expression) (pdv.Cell, bool) {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return pdv.NumCell(n.Value), true
	case *ast.StringLiteral:
		return pdv.StrCell(n.Value), true
	case *ast.VariableRef:
		return e.evalVariableRef(n)
	case *ast.ArrayElementRef:
		return e.evalArrayElementRef(n)
	case *ast.GroupedExpression:
		return e.Eval(n.Inner)
	case *ast.UnaryExpression:
		return e.evalUnary(n)
	case *ast.BinaryExpression:
		return e.evalBinary(n)
	case *ast.FunctionCall:
		return e.evalCall(n)
	default:
		e.Warn("unsupported expression node", nil)
		return pdv.MissingCell, false
	}
}

func (e *Evaluator) evalVariableRef(n *ast.VariableRef) (pdv.Cell, bool) {
	if v, ok := e.Row.Get(n.Name); ok {
		return v, true
	}
	e.Warn("reference to undeclared variable", errors.Fields{"variable": n.Name})
	return pdv.MissingCell, false
}

func (e *Evaluator) evalArrayElementRef(n *ast.ArrayElementRef) (pdv.Cell, bool) {
	idxCell, ok := e.Eval(n.Index)
	if !ok || !idxCell.IsNumeric() {
		e.Warn("array subscript did not evaluate to a number", errors.Fields{"array": n.Array})
		return pdv.MissingCell, false
	}
	idx := int(idxCell.Num())
	v, ok, err := e.Row.ArrayElement(n.Array, idx)
	if err != nil {
		e.Warn(err.Error(), errors.Fields{"array": n.Array, "index": idx})
		return pdv.MissingCell, false
	}
	return v, ok
}

// asNumber coerces a Cell to float64 following spec.md §4.4: a character
// value coerces if it parses as a number, otherwise the coercion fails.
func asNumber(c pdv.Cell) (float64, bool) {
	if c.IsMissing() {
		return math.NaN(), true // missing propagates, not a failure
	}
	if c.IsNumeric() {
		return c.Num(), true
	}
	f, err := strconv.ParseFloat(c.Str(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func asString(c pdv.Cell) string {
	if c.IsChar() {
		return c.Str()
	}
	if c.IsMissing() {
		return ""
	}
	return c.Display()
}

func (e *Evaluator) evalUnary(n *ast.UnaryExpression) (pdv.Cell, bool) {
	v, ok := e.Eval(n.Right)
	if !ok {
		return pdv.MissingCell, false
	}
	switch n.Operator {
	case "-":
		f, ok := asNumber(v)
		if !ok {
			e.Warn("unary minus applied to non-numeric value", nil)
			return pdv.MissingCell, false
		}
		if math.IsNaN(f) {
			return pdv.MissingCell, true
		}
		return pdv.NumCell(-f), true
	case "NOT":
		return boolCell(!truthy(v)), true
	case "+":
		return v, true
	default:
		e.Warn("unknown unary operator "+n.Operator, nil)
		return pdv.MissingCell, false
	}
}

func truthy(c pdv.Cell) bool {
	if c.IsMissing() {
		return false
	}
	if c.IsNumeric() {
		return c.Num() != 0
	}
	f, err := strconv.ParseFloat(c.Str(), 64)
	if err == nil {
		return f != 0
	}
	return c.Str() != ""
}

func boolCell(b bool) pdv.Cell {
	if b {
		return pdv.NumCell(1)
	}
	return pdv.NumCell(0)
}

func (e *Evaluator) evalBinary(n *ast.BinaryExpression) (pdv.Cell, bool) {
	switch n.Operator {
	case "AND":
		l, ok := e.Eval(n.Left)
		if !ok {
			return pdv.MissingCell, false
		}
		if !truthy(l) {
			return boolCell(false), true
		}
		r, ok := e.Eval(n.Right)
		if !ok {
			return pdv.MissingCell, false
		}
		return boolCell(truthy(r)), true
	case "OR":
		l, ok := e.Eval(n.Left)
		if !ok {
			return pdv.MissingCell, false
		}
		if truthy(l) {
			return boolCell(true), true
		}
		r, ok := e.Eval(n.Right)
		if !ok {
			return pdv.MissingCell, false
		}
		return boolCell(truthy(r)), true
	case "||":
		l, ok := e.Eval(n.Left)
		if !ok {
			return pdv.MissingCell, false
		}
		r, ok := e.Eval(n.Right)
		if !ok {
			return pdv.MissingCell, false
		}
		return pdv.StrCell(asString(l) + asString(r)), true
	}

	l, ok := e.Eval(n.Left)
	if !ok {
		return pdv.MissingCell, false
	}
	r, ok := e.Eval(n.Right)
	if !ok {
		return pdv.MissingCell, false
	}

	switch n.Operator {
	case "+", "-", "*", "/", "**":
		return e.evalArith(n.Operator, l, r)
	case "=", "==", "NE", "<>", "<", ">", "<=", ">=":
		return e.evalCompare(n.Operator, l, r)
	default:
		e.Warn("unknown binary operator "+n.Operator, nil)
		return pdv.MissingCell, false
	}
}

func (e *Evaluator) evalArith(op string, l, r pdv.Cell) (pdv.Cell, bool) {
	lf, ok1 := asNumber(l)
	rf, ok2 := asNumber(r)
	if !ok1 || !ok2 {
		e.Warn("arithmetic operator applied to non-numeric operand", errors.Fields{"operator": op})
		return pdv.MissingCell, false
	}
	if math.IsNaN(lf) || math.IsNaN(rf) {
		return pdv.MissingCell, true
	}
	switch op {
	case "+":
		return pdv.NumCell(lf + rf), true
	case "-":
		return pdv.NumCell(lf - rf), true
	case "*":
		return pdv.NumCell(lf * rf), true
	case "/":
		if rf == 0 {
			e.Warn("division by zero", nil)
			return pdv.MissingCell, true
		}
		return pdv.NumCell(lf / rf), true
	case "**":
		return pdv.NumCell(math.Pow(lf, rf)), true
	}
	return pdv.MissingCell, false
}

func (e *Evaluator) evalCompare(op string, l, r pdv.Cell) (pdv.Cell, bool) {
	var cmp int
	if l.IsChar() && r.IsChar() {
		cmp = compareBytes(l.Str(), r.Str())
	} else {
		lf, ok1 := asNumber(l)
		rf, ok2 := asNumber(r)
		if !ok1 || !ok2 {
			e.Warn("comparison between incompatible types", errors.Fields{"operator": op})
			return boolCell(false), true
		}
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	}
	switch op {
	case "=", "==":
		return boolCell(cmp == 0), true
	case "NE", "<>":
		return boolCell(cmp != 0), true
	case "<":
		return boolCell(cmp < 0), true
	case ">":
		return boolCell(cmp > 0), true
	case "<=":
		return boolCell(cmp <= 0), true
	case ">=":
		return boolCell(cmp >= 0), true
	}
	return boolCell(false), true
}

func compareBytes(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Evaluator) evalCall(n *ast.FunctionCall) (pdv.Cell, bool) {
	fn, ok := e.Funcs.Lookup(n.Name)
	if !ok {
		e.Warn("call to undefined function "+n.Name, errors.Fields{"function": n.Name})
		return pdv.MissingCell, false
	}
	args := make([]pdv.Cell, len(n.Arguments))
	for i, a := range n.Arguments {
		v, ok := e.Eval(a)
		if !ok {
			return pdv.MissingCell, false
		}
		args[i] = v
	}
	result, err := fn.Call(args)
	if err != nil {
		e.Warn(err.Error(), errors.Fields{"function": n.Name})
		return pdv.MissingCell, false
	}
	return result, true
}
