// Package datastep implements the DATA step execution engine (spec.md
// §4.3): the pre-scan, the PDV-driven row loop, MERGE+BY, PDV-to-dataset
// sync, ARRAY access, control flow, and the recoverable/unrecoverable
// failure model.
package datastep

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/pdv"
	"github.com/cwbudde/sasgo/pkg/ident"
)

// Executor runs DATA step statements against a Data Environment, grounded
// on the teacher's tree-walking Interpreter pattern but rebuilt around the
// PDV row loop instead of a general-purpose statement visitor.
type Executor struct {
	Env  *env.Environment
	Warn func(msg string, fields errors.Fields)
}

// New creates an Executor over env, logging every recoverable (§4.3.6)
// failure (truncation, division-by-zero, array bounds) through log at
// Warn level. A nil log discards them.
func New(e *env.Environment, log hclog.Logger) *Executor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	warn := func(msg string, fields errors.Fields) {
		log.Warn(msg, fields.Args()...)
	}
	return &Executor{Env: e, Warn: warn}
}

// Run executes one DATA step. On an unrecoverable failure the partial
// output is discarded and the step's own error is returned; the caller
// (the top-level program driver) continues with the next statement per
// spec.md §7.
func (ex *Executor) Run(stmt *ast.DataStatement) error {
	scan := scanBody(stmt.Body)
	p := pdv.New()

	var sources []*env.Dataset
	switch {
	case scan.mergeStmt != nil:
		for _, name := range scan.mergeStmt.Datasets {
			d, ok := ex.Env.Dataset(name)
			if !ok {
				return ex.abort(stmt, errors.CodeUnknownDataset, "unknown dataset "+name, errors.Fields{"dataset": name})
			}
			sources = append(sources, d)
			declareColumns(p, d)
		}
	case scan.setStmt != nil:
		for _, name := range scan.setStmt.Datasets {
			d, ok := ex.Env.Dataset(name)
			if !ok {
				return ex.abort(stmt, errors.CodeUnknownDataset, "unknown dataset "+name, errors.Fields{"dataset": name})
			}
			sources = append(sources, d)
			declareColumns(p, d)
		}
	}

	if scan.inputStmt != nil {
		for _, v := range scan.inputStmt.Variables {
			typ := pdv.TypeNumeric
			if v.IsChar {
				typ = pdv.TypeChar
			}
			p.Declare(v.Name, typ)
		}
	}

	applyDeclarations(p, scan)

	for _, v := range scan.assignedVars {
		if !p.Has(v) {
			p.Declare(v, pdv.TypeNumeric)
		}
	}

	arrays := arrayTable(scan)

	driver, err := ex.buildDriver(scan, sources)
	if err != nil {
		return ex.abort(stmt, errors.CodeUnknownDataset, err.Error(), nil)
	}

	outputs := make([]*env.Dataset, len(stmt.Names))
	for i, name := range stmt.Names {
		lib, n := env.ParseQualifiedName(name)
		outputs[i] = &env.Dataset{Library: lib, Name: n}
	}

	row := newPDVRow(p, arrays)

	for {
		more, err := driver.Advance(p)
		if err != nil {
			return ex.abort(stmt, errors.CodeIOFailure, err.Error(), nil)
		}
		if !more {
			break
		}

		res := ex.execStatements(scan.body, p, row, arrays, outputs, scan, "", 0)
		if res.signal == ctrlAbort {
			if ee, ok := res.err.(*errors.EngineError); ok {
				ex.Warn(ee.Message, ee.Fields)
				return ee
			}
			return ex.abort(stmt, errors.CodeTypeMismatch, res.err.Error(), nil)
		}
		if !scan.hasOutput {
			ex.emitRow(p, outputs, "", scan)
		}
	}

	for _, d := range outputs {
		ex.Env.PutDataset(d)
		if perr := ex.Env.Persist(d); perr != nil {
			ex.Warn("failed to persist dataset "+d.QualifiedName(), errors.Fields{"error": perr.Error()})
		}
	}
	return nil
}

func (ex *Executor) abort(stmt *ast.DataStatement, code errors.Code, msg string, fields errors.Fields) error {
	e := errors.New(errors.Runtime, code, errors.Error, stmt.Pos(), msg, fields)
	ex.Warn(msg, fields)
	return e
}

func declareColumns(p *pdv.PDV, d *env.Dataset) {
	for _, c := range d.Columns {
		m := p.Declare(c.Name, c.Type)
		m.Length = c.Length
		m.Label = c.Label
		m.Format = c.Format
		m.Informat = c.Informat
	}
}

// applyDeclarations processes LENGTH/FORMAT/INFORMAT/LABEL/RETAIN/ARRAY
// statements collected by the pre-scan, establishing PDV metadata before
// the row loop begins (spec.md §4.3 pre-scan, §4.3.3 LENGTH enforcement).
func applyDeclarations(p *pdv.PDV, scan *bodyScan) {
	for _, lv := range scan.lengths {
		typ := pdv.TypeNumeric
		if lv.IsChar {
			typ = pdv.TypeChar
		}
		m := p.Declare(lv.Name, typ)
		m.Type = typ
		m.Length = lv.Length
	}
	for _, a := range scan.arrays {
		for _, v := range a.Variables {
			p.Declare(v, pdv.TypeNumeric)
		}
	}
	for _, r := range scan.retains {
		var initial pdv.Cell
		hasInitial := r.Initial != nil
		if hasInitial {
			initial = literalCell(r.Initial)
		}
		for _, v := range r.Variables {
			m := p.Declare(v, pdv.TypeNumeric)
			m.Retain = true
			if hasInitial {
				_ = p.Set(v, initial)
			}
		}
	}
	for _, f := range scan.formats {
		for _, v := range f.Variables {
			m := p.Declare(v, pdv.TypeNumeric)
			m.Format = f.Format
		}
	}
	for _, inf := range scan.informats {
		for _, v := range inf.Variables {
			m := p.Declare(v, pdv.TypeNumeric)
			m.Informat = inf.Informat
		}
	}
	for _, l := range scan.labels {
		m := p.Declare(l.Variable, pdv.TypeNumeric)
		m.Label = l.Label
	}
}

// literalCell evaluates a constant expression used as a RETAIN initial
// value; only the literal forms the grammar allows there are supported.
func literalCell(expr ast.Expression) pdv.Cell {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		return pdv.NumCell(n.Value)
	case *ast.StringLiteral:
		return pdv.StrCell(n.Value)
	default:
		return pdv.MissingCell
	}
}

func (ex *Executor) buildDriver(scan *bodyScan, sources []*env.Dataset) (rowDriver, error) {
	switch {
	case scan.mergeStmt != nil:
		var byVars []string
		var desc []bool
		if scan.byStmt != nil {
			byVars = scan.byStmt.Variables
			desc = scan.byStmt.Descending
		}
		return newMergeDriver(sources, byVars, desc), nil
	case scan.setStmt != nil:
		return newSetDriver(sources), nil
	case scan.datalinesStmt != nil:
		if scan.inputStmt == nil {
			return nil, fmt.Errorf("datalines with no preceding input statement")
		}
		vars := make([]inputVarSpec, len(scan.inputStmt.Variables))
		for i, v := range scan.inputStmt.Variables {
			vars[i] = inputVarSpec{name: v.Name, isChar: v.IsChar}
		}
		return newDatalinesDriver(scan.datalinesStmt.Lines, vars), nil
	default:
		return &singleIterationDriver{}, nil
	}
}

// emitRow performs the PDV-to-dataset sync (spec.md §4.3.2) and appends
// one row to every matching output dataset.
func (ex *Executor) emitRow(p *pdv.PDV, outputs []*env.Dataset, target string, scan *bodyScan) {
	values := make(map[string]pdv.Cell)
	for _, name := range p.Names() {
		if !includeColumn(name, scan) {
			continue
		}
		v, _ := p.Get(name)
		values[ident.Normalize(name)] = v
	}
	for _, d := range outputs {
		if target != "" && !ident.Equal(d.Name, target) {
			continue
		}
		syncColumns(d, p, scan)
		d.AppendRow(values)
	}
}

func includeColumn(name string, scan *bodyScan) bool {
	key := ident.Normalize(name)
	if len(scan.keepSet) > 0 {
		return scan.keepSet[key]
	}
	if len(scan.dropSet) > 0 {
		return !scan.dropSet[key]
	}
	return true
}

func syncColumns(d *env.Dataset, p *pdv.PDV, scan *bodyScan) {
	for _, name := range p.Names() {
		if !includeColumn(name, scan) {
			continue
		}
		if d.ColumnIndex(name) >= 0 {
			continue
		}
		m, _ := p.Meta(name)
		d.AppendColumn(env.Column{
			Name:     m.Name,
			Type:     m.Type,
			Length:   m.Length,
			Label:    m.Label,
			Format:   m.Format,
			Informat: m.Informat,
		})
	}
}
