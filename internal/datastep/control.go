package datastep

import (
	"fmt"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/evaluator"
	"github.com/cwbudde/sasgo/internal/pdv"
)

type ctrlSignal int

const (
	ctrlNone ctrlSignal = iota
	ctrlLeave
	ctrlContinue
	ctrlAbort
)

type ctrlResult struct {
	signal ctrlSignal
	err    error
}

// execStatements runs stmts in order, short-circuiting on LEAVE/CONTINUE/
// abort (spec.md §4.3.5). loopDepth tracks whether LEAVE/CONTINUE are
// legal at this point (spec.md §7 NotInLoop).
func (ex *Executor) execStatements(stmts []ast.Statement, p *pdv.PDV, row evaluator.Row, arrays map[string][]string, outputs []*env.Dataset, scan *bodyScan, target string, loopDepth int) ctrlResult {
	for _, st := range stmts {
		res := ex.execStatement(st, p, row, arrays, outputs, scan, target, loopDepth)
		if res.signal != ctrlNone {
			return res
		}
	}
	return ctrlResult{signal: ctrlNone}
}

func (ex *Executor) execStatement(st ast.Statement, p *pdv.PDV, row evaluator.Row, arrays map[string][]string, outputs []*env.Dataset, scan *bodyScan, target string, loopDepth int) ctrlResult {
	switch n := st.(type) {
	case *ast.AssignStatement:
		ex.execAssign(n, p, row, arrays)
		return ctrlResult{}

	case *ast.OutputStatement:
		ex.emitRow(p, outputs, n.Dataset, scan)
		return ctrlResult{}

	case *ast.IfStatement:
		ev := evaluator.New(row, ex.Warn)
		cond, ok := ev.Eval(n.Condition)
		if !ok {
			p.SetError()
			return ctrlResult{}
		}
		if truthyCell(cond) {
			return ex.execStatement(n.Then, p, row, arrays, outputs, scan, target, loopDepth)
		}
		if n.Else != nil {
			return ex.execStatement(n.Else, p, row, arrays, outputs, scan, target, loopDepth)
		}
		return ctrlResult{}

	case *ast.BlockStatement:
		return ex.execStatements(n.Statements, p, row, arrays, outputs, scan, target, loopDepth)

	case *ast.DoStatement:
		return ex.execDo(n, p, row, arrays, outputs, scan, target, loopDepth)

	case *ast.LeaveStatement:
		if loopDepth == 0 {
			return ctrlResult{signal: ctrlAbort, err: errors.New(errors.ControlFlow, errors.CodeNotInLoop, errors.Error, n.Pos(), "LEAVE used outside a loop", nil)}
		}
		return ctrlResult{signal: ctrlLeave}

	case *ast.ContinueStatement:
		if loopDepth == 0 {
			return ctrlResult{signal: ctrlAbort, err: errors.New(errors.ControlFlow, errors.CodeNotInLoop, errors.Error, n.Pos(), "CONTINUE used outside a loop", nil)}
		}
		return ctrlResult{signal: ctrlContinue}

	case *ast.NullStatement,
		*ast.SetStatement, *ast.MergeStatement, *ast.ByStatement,
		*ast.InputStatement, *ast.DatalinesStatement,
		*ast.DropStatement, *ast.KeepStatement, *ast.RetainStatement,
		*ast.ArrayStatement, *ast.LengthStatement, *ast.FormatStatement,
		*ast.InformatStatement, *ast.LabelStatement:
		// Source-selection and variable-declarative statements are fully
		// applied during the pre-scan (spec.md §4.3); they are no-ops when
		// encountered again as ordinary body statements during the loop.
		return ctrlResult{}

	default:
		return ctrlResult{}
	}
}

func (ex *Executor) execAssign(n *ast.AssignStatement, p *pdv.PDV, row evaluator.Row, arrays map[string][]string) {
	ev := evaluator.New(row, ex.Warn)
	val, ok := ev.Eval(n.Value)
	if !ok {
		p.SetError()
		val = pdv.MissingCell
	}

	switch target := n.Target.(type) {
	case *ast.VariableRef:
		if m, ok := p.Meta(target.Name); ok && val.IsChar() {
			if _, cut := m.Truncate(val.Str()); cut {
				ex.Warn("character value truncated to declared length", errors.Fields{"variable": target.Name, "length": m.Length})
			}
		}
		if err := p.Set(target.Name, val); err != nil {
			p.SetError()
			ex.Warn(err.Error(), errors.Fields{"variable": target.Name})
		}
	case *ast.ArrayElementRef:
		idxCell, ok := ev.Eval(target.Index)
		if !ok || !idxCell.IsNumeric() {
			p.SetError()
			ex.Warn("array subscript did not evaluate to a number", errors.Fields{"array": target.Array})
			return
		}
		varName, err := arrayVariable(arrays, target.Array, int(idxCell.Num()))
		if err != nil {
			p.SetError()
			ex.Warn(err.Error(), errors.Fields{"array": target.Array})
			return
		}
		if m, ok := p.Meta(varName); ok && val.IsChar() {
			if _, cut := m.Truncate(val.Str()); cut {
				ex.Warn("character value truncated to declared length", errors.Fields{"variable": varName, "length": m.Length})
			}
		}
		if err := p.Set(varName, val); err != nil {
			p.SetError()
			ex.Warn(err.Error(), errors.Fields{"variable": varName})
		}
	default:
		ex.Warn(fmt.Sprintf("unsupported assignment target %T", n.Target), nil)
	}
}

func (ex *Executor) execDo(n *ast.DoStatement, p *pdv.PDV, row evaluator.Row, arrays map[string][]string, outputs []*env.Dataset, scan *bodyScan, target string, loopDepth int) ctrlResult {
	ev := evaluator.New(row, ex.Warn)

	switch n.Kind {
	case ast.DoIndexed:
		start, ok := ev.Eval(n.Start)
		if !ok {
			p.SetError()
			return ctrlResult{}
		}
		stop, ok := ev.Eval(n.Stop)
		if !ok {
			p.SetError()
			return ctrlResult{}
		}
		step := 1.0
		if n.Step != nil {
			s, ok := ev.Eval(n.Step)
			if !ok {
				p.SetError()
				return ctrlResult{}
			}
			step = s.Num()
		}
		_ = p.Set(n.Index, pdv.NumCell(start.Num()))
		for loopCond(p, n.Index, stop.Num(), step) {
			res := ex.execStatements(n.Body, p, row, arrays, outputs, scan, target, loopDepth+1)
			switch res.signal {
			case ctrlAbort:
				return res
			case ctrlLeave:
				return ctrlResult{}
			}
			cur, _ := p.Get(n.Index)
			_ = p.Set(n.Index, pdv.NumCell(cur.Num()+step))
		}
		return ctrlResult{}

	case ast.DoWhile:
		for {
			cond, ok := ev.Eval(n.Condition)
			if !ok {
				p.SetError()
				return ctrlResult{}
			}
			if !truthyCell(cond) {
				return ctrlResult{}
			}
			res := ex.execStatements(n.Body, p, row, arrays, outputs, scan, target, loopDepth+1)
			switch res.signal {
			case ctrlAbort:
				return res
			case ctrlLeave:
				return ctrlResult{}
			}
		}

	case ast.DoUntil:
		for {
			res := ex.execStatements(n.Body, p, row, arrays, outputs, scan, target, loopDepth+1)
			switch res.signal {
			case ctrlAbort:
				return res
			case ctrlLeave:
				return ctrlResult{}
			}
			cond, ok := ev.Eval(n.Condition)
			if !ok {
				p.SetError()
				return ctrlResult{}
			}
			if truthyCell(cond) {
				return ctrlResult{}
			}
		}

	default: // ast.DoBlock: a bare DO...END is not a loop; LEAVE/CONTINUE pass through.
		return ex.execStatements(n.Body, p, row, arrays, outputs, scan, target, loopDepth)
	}
}

func loopCond(p *pdv.PDV, index string, stop, step float64) bool {
	cur, _ := p.Get(index)
	if step >= 0 {
		return cur.Num() <= stop
	}
	return cur.Num() >= stop
}

func truthyCell(c pdv.Cell) bool {
	if c.IsMissing() {
		return false
	}
	if c.IsNumeric() {
		return c.Num() != 0
	}
	return c.Str() != ""
}
