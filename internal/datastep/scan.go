package datastep

import (
	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/pkg/ident"
)

// bodyScan is the result of the pre-scan pass (spec.md §4.3): the
// input-source statements, the variable-declarative statements, and the
// set of variables first assigned on the left-hand side of an expression,
// collected once before the row loop begins.
type bodyScan struct {
	body []ast.Statement

	setStmt       *ast.SetStatement
	mergeStmt     *ast.MergeStatement
	byStmt        *ast.ByStatement
	datalinesStmt *ast.DatalinesStatement
	inputStmt     *ast.InputStatement

	lengths   []ast.LengthVar
	formats   []*ast.FormatStatement
	informats []*ast.InformatStatement
	labels    []*ast.LabelStatement
	retains   []*ast.RetainStatement
	arrays    []*ast.ArrayStatement

	dropSet map[string]bool
	keepSet map[string]bool

	hasOutput    bool
	assignedVars []string // first-mention order
}

// scanBody walks a DATA step body once, recursing into IF/DO/block
// statements to find assignment targets, per spec.md §4.3's pre-scan.
func scanBody(body []ast.Statement) *bodyScan {
	s := &bodyScan{body: body, dropSet: map[string]bool{}, keepSet: map[string]bool{}}
	seen := map[string]bool{}

	note := func(name string) {
		key := ident.Normalize(name)
		if !seen[key] {
			seen[key] = true
			s.assignedVars = append(s.assignedVars, name)
		}
	}

	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, st := range stmts {
			switch n := st.(type) {
			case *ast.SetStatement:
				s.setStmt = n
			case *ast.MergeStatement:
				s.mergeStmt = n
			case *ast.ByStatement:
				s.byStmt = n
			case *ast.DatalinesStatement:
				s.datalinesStmt = n
			case *ast.InputStatement:
				s.inputStmt = n
				for _, v := range n.Variables {
					note(v.Name)
				}
			case *ast.LengthStatement:
				s.lengths = append(s.lengths, n.Variables...)
				for _, v := range n.Variables {
					note(v.Name)
				}
			case *ast.FormatStatement:
				s.formats = append(s.formats, n)
			case *ast.InformatStatement:
				s.informats = append(s.informats, n)
			case *ast.LabelStatement:
				s.labels = append(s.labels, n)
			case *ast.RetainStatement:
				s.retains = append(s.retains, n)
				for _, v := range n.Variables {
					note(v)
				}
			case *ast.ArrayStatement:
				s.arrays = append(s.arrays, n)
				for _, v := range n.Variables {
					note(v)
				}
			case *ast.DropStatement:
				for _, v := range n.Variables {
					s.dropSet[ident.Normalize(v)] = true
				}
			case *ast.KeepStatement:
				for _, v := range n.Variables {
					s.keepSet[ident.Normalize(v)] = true
				}
			case *ast.OutputStatement:
				s.hasOutput = true
			case *ast.AssignStatement:
				if vr, ok := n.Target.(*ast.VariableRef); ok {
					note(vr.Name)
				}
			case *ast.IfStatement:
				walk([]ast.Statement{n.Then})
				if n.Else != nil {
					walk([]ast.Statement{n.Else})
				}
			case *ast.DoStatement:
				if n.Kind == ast.DoIndexed {
					note(n.Index)
				}
				walk(n.Body)
			case *ast.BlockStatement:
				walk(n.Statements)
			}
		}
	}
	walk(body)
	return s
}

// arrayTable maps a normalized array name to its bound PDV variable names,
// built from the pre-scan's ARRAY statements (spec.md §3 Array, §4.3.4).
func arrayTable(scan *bodyScan) map[string][]string {
	t := make(map[string][]string, len(scan.arrays))
	for _, a := range scan.arrays {
		t[ident.Normalize(a.Name)] = a.Variables
	}
	return t
}
