package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/sasgo/internal/lexer"
)

// AssignStatement is a PDV assignment: target = expr;
type AssignStatement struct {
	Token  lexer.Token // the '=' token
	Target Expression  // VariableRef or ArrayElementRef
	Value  Expression
}

func (a *AssignStatement) statementNode()       {}
func (a *AssignStatement) TokenLiteral() string { return a.Token.Literal }
func (a *AssignStatement) Pos() lexer.Position  { return a.Token.Pos }
func (a *AssignStatement) String() string {
	return a.Target.String() + " = " + a.Value.String() + ";"
}

// SetStatement reads rows from one or more existing datasets in sequence
// (concatenation), spec.md §4.3 row source selection.
type SetStatement struct {
	Token    lexer.Token // the SET token
	Datasets []string    // qualified names, e.g. "work.have"
}

func (s *SetStatement) statementNode()       {}
func (s *SetStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SetStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *SetStatement) String() string {
	return "set " + strings.Join(s.Datasets, " ") + ";"
}

// MergeStatement reads BY-group-merged rows from two or more datasets,
// spec.md §4.3.1.
type MergeStatement struct {
	Token    lexer.Token // the MERGE token
	Datasets []string
}

func (m *MergeStatement) statementNode()       {}
func (m *MergeStatement) TokenLiteral() string { return m.Token.Literal }
func (m *MergeStatement) Pos() lexer.Position  { return m.Token.Pos }
func (m *MergeStatement) String() string {
	return "merge " + strings.Join(m.Datasets, " ") + ";"
}

// ByStatement names the BY variables for a preceding MERGE (or for PROC
// steps, the grouping variables). Descending is parallel to Variables.
type ByStatement struct {
	Token       lexer.Token // the BY token
	Variables   []string
	Descending  []bool
}

func (b *ByStatement) statementNode()       {}
func (b *ByStatement) TokenLiteral() string { return b.Token.Literal }
func (b *ByStatement) Pos() lexer.Position  { return b.Token.Pos }
func (b *ByStatement) String() string {
	parts := make([]string, len(b.Variables))
	for i, v := range b.Variables {
		if i < len(b.Descending) && b.Descending[i] {
			parts[i] = "descending " + v
		} else {
			parts[i] = v
		}
	}
	return "by " + strings.Join(parts, " ") + ";"
}

// InputVar is one variable named in an INPUT statement; IsChar marks the
// trailing '$' that selects character-variable parsing.
type InputVar struct {
	Name   string
	IsChar bool
}

// InputStatement reads fields from the current DATALINES line (or an
// external file, left as a future SET-style source) into the PDV.
type InputStatement struct {
	Token     lexer.Token // the INPUT token
	Variables []InputVar
	Trailing  bool // '@' suffix: hold the current line for the next INPUT
}

func (n *InputStatement) statementNode()       {}
func (n *InputStatement) TokenLiteral() string { return n.Token.Literal }
func (n *InputStatement) Pos() lexer.Position  { return n.Token.Pos }
func (n *InputStatement) String() string {
	parts := make([]string, len(n.Variables))
	for i, v := range n.Variables {
		if v.IsChar {
			parts[i] = v.Name + " $"
		} else {
			parts[i] = v.Name
		}
	}
	out := "input " + strings.Join(parts, " ")
	if n.Trailing {
		out += " @"
	}
	return out + ";"
}

// DatalinesStatement marks the start of an inline data block; its Lines are
// the raw text captured by the lexer's datalines mode.
type DatalinesStatement struct {
	Token lexer.Token // the DATALINES/CARDS token
	Lines []string
}

func (d *DatalinesStatement) statementNode()       {}
func (d *DatalinesStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DatalinesStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DatalinesStatement) String() string {
	var out bytes.Buffer
	out.WriteString("datalines;\n")
	for _, l := range d.Lines {
		out.WriteString(l)
		out.WriteString("\n")
	}
	out.WriteString(";")
	return out.String()
}

// OutputStatement appends the current PDV to the output dataset (spec.md
// §4.3.2). A bare OUTPUT; targets the step's default output dataset.
type OutputStatement struct {
	Token   lexer.Token // the OUTPUT token
	Dataset string      // optional explicit target; empty means the default
}

func (o *OutputStatement) statementNode()       {}
func (o *OutputStatement) TokenLiteral() string { return o.Token.Literal }
func (o *OutputStatement) Pos() lexer.Position  { return o.Token.Pos }
func (o *OutputStatement) String() string {
	if o.Dataset == "" {
		return "output;"
	}
	return "output " + o.Dataset + ";"
}

// DropStatement removes variables from the output dataset's column list.
type DropStatement struct {
	Token     lexer.Token // the DROP token
	Variables []string
}

func (d *DropStatement) statementNode()       {}
func (d *DropStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DropStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DropStatement) String() string {
	return "drop " + strings.Join(d.Variables, " ") + ";"
}

// KeepStatement restricts the output dataset's column list.
type KeepStatement struct {
	Token     lexer.Token // the KEEP token
	Variables []string
}

func (k *KeepStatement) statementNode()       {}
func (k *KeepStatement) TokenLiteral() string { return k.Token.Literal }
func (k *KeepStatement) Pos() lexer.Position  { return k.Token.Pos }
func (k *KeepStatement) String() string {
	return "keep " + strings.Join(k.Variables, " ") + ";"
}

// RetainStatement marks variables whose value survives across row
// iterations, with an optional initial value.
type RetainStatement struct {
	Token     lexer.Token // the RETAIN token
	Variables []string
	Initial   Expression // nil if no initial value was given
}

func (r *RetainStatement) statementNode()       {}
func (r *RetainStatement) TokenLiteral() string { return r.Token.Literal }
func (r *RetainStatement) Pos() lexer.Position  { return r.Token.Pos }
func (r *RetainStatement) String() string {
	out := "retain " + strings.Join(r.Variables, " ")
	if r.Initial != nil {
		out += " " + r.Initial.String()
	}
	return out + ";"
}

// ArrayStatement declares a within-step name/index-range alias over a list
// of PDV variables (spec.md §3 Array, §4.2 grammar).
type ArrayStatement struct {
	Token     lexer.Token // the ARRAY token
	Name      string
	Size      int
	Variables []string
}

func (a *ArrayStatement) statementNode()       {}
func (a *ArrayStatement) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayStatement) Pos() lexer.Position  { return a.Token.Pos }
func (a *ArrayStatement) String() string {
	return "array " + a.Name + "{" + itoa(a.Size) + "} " + strings.Join(a.Variables, " ") + ";"
}

// LabelStatement attaches a display label to the named variable.
type LabelStatement struct {
	Token    lexer.Token // the LABEL token
	Variable string
	Label    string
}

func (l *LabelStatement) statementNode()       {}
func (l *LabelStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LabelStatement) Pos() lexer.Position  { return l.Token.Pos }
func (l *LabelStatement) String() string {
	return "label " + l.Variable + "='" + l.Label + "';"
}

// LengthVar is one variable named in a LENGTH statement.
type LengthVar struct {
	Name   string
	IsChar bool // leading '$'
	Length int
}

// LengthStatement declares the storage width (and numeric/character type)
// of one or more variables, spec.md §4.3.3.
type LengthStatement struct {
	Token     lexer.Token // the LENGTH token
	Variables []LengthVar
}

func (l *LengthStatement) statementNode()       {}
func (l *LengthStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LengthStatement) Pos() lexer.Position  { return l.Token.Pos }
func (l *LengthStatement) String() string {
	parts := make([]string, len(l.Variables))
	for i, v := range l.Variables {
		if v.IsChar {
			parts[i] = v.Name + " $" + itoa(v.Length)
		} else {
			parts[i] = v.Name + " " + itoa(v.Length)
		}
	}
	return "length " + strings.Join(parts, " ") + ";"
}

// FormatStatement attaches a display format to one or more variables.
type FormatStatement struct {
	Token     lexer.Token // the FORMAT token
	Variables []string
	Format    string
}

func (f *FormatStatement) statementNode()       {}
func (f *FormatStatement) TokenLiteral() string { return f.Token.Literal }
func (f *FormatStatement) Pos() lexer.Position  { return f.Token.Pos }
func (f *FormatStatement) String() string {
	return "format " + strings.Join(f.Variables, " ") + " " + f.Format + ";"
}

// InformatStatement attaches a read format to one or more variables.
type InformatStatement struct {
	Token     lexer.Token // the INFORMAT token
	Variables []string
	Informat  string
}

func (i *InformatStatement) statementNode()       {}
func (i *InformatStatement) TokenLiteral() string { return i.Token.Literal }
func (i *InformatStatement) Pos() lexer.Position  { return i.Token.Pos }
func (i *InformatStatement) String() string {
	return "informat " + strings.Join(i.Variables, " ") + " " + i.Informat + ";"
}

// DataStatement is a full DATA step: `DATA name(options); body RUN;`.
type DataStatement struct {
	Token      lexer.Token // the DATA token
	Names      []string    // output dataset names (DATA a b; is legal, writes both)
	Options    map[string]string
	Body       []Statement
}

func (d *DataStatement) statementNode()       {}
func (d *DataStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DataStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DataStatement) String() string {
	var out bytes.Buffer
	out.WriteString("data " + strings.Join(d.Names, " ") + ";\n")
	for _, s := range d.Body {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(s.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("run;")
	return out.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
