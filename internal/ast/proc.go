package ast

import (
	"strings"

	"github.com/cwbudde/sasgo/internal/lexer"
)

// ProcStatement is the closed tagged variant over supported PROC steps
// (spec.md §4.6). Clauses is one of the *Clauses types below, selected by
// Name (case-insensitive); the PROC dispatcher looks up a handler by Name
// and hands it Clauses plus the Data Environment.
type ProcStatement struct {
	Token   lexer.Token // the PROC token
	Name    string      // PRINT, SORT, MEANS, FREQ, TRANSPOSE, CONTENTS, SQL, ...
	Clauses any
	Body    []Statement // not set by the parser for any PROC; SQL's SELECT is carried in Clauses
}

func (p *ProcStatement) statementNode()       {}
func (p *ProcStatement) TokenLiteral() string { return p.Token.Literal }
func (p *ProcStatement) Pos() lexer.Position  { return p.Token.Pos }
func (p *ProcStatement) String() string {
	return "proc " + strings.ToLower(p.Name) + " ...;\nrun;"
}

// PrintClauses is PROC PRINT's parsed clause set.
type PrintClauses struct {
	Data   string
	Var    []string // empty means every column
	Noobs  bool
	Label  bool
	Where  Expression
	Title  string
}

// SortClauses is PROC SORT's parsed clause set.
type SortClauses struct {
	Data   string
	Out    string // empty means sort in place
	By     *ByStatement
	Locale string // BCP-47 tag from an optional SORTSEQ=LOCALE() option; "" means byte-wise ordering
}

// TransposeClauses is PROC TRANSPOSE's parsed clause set.
type TransposeClauses struct {
	Data   string
	Out    string
	By     *ByStatement
	Var    []string
	ID     string
	Prefix string
	Name   string
}

// MeansClauses is PROC MEANS's parsed clause set (supplemented, SPEC_FULL.md
// §C: not detailed in the distilled spec's §4.6 but named in its PROC list).
type MeansClauses struct {
	Data  string
	Var   []string
	By    *ByStatement
	Stats []string // N MEAN STD MIN MAX SUM; default N MEAN STD MIN MAX
}

// FreqClauses is PROC FREQ's parsed clause set (supplemented).
type FreqClauses struct {
	Data       string
	Tables     []FreqTable
	NoPercent  bool
	NoCum      bool
}

// FreqTable is one TABLES= entry: a single variable, or `var1*var2` for a
// two-way crosstab.
type FreqTable struct {
	Var1 string
	Var2 string // empty for a one-way table
}

// ContentsClauses is PROC CONTENTS's parsed clause set (supplemented).
type ContentsClauses struct {
	Data string
}

// SQLSelectClauses is the minimal PROC SQL subset's parsed SELECT (supplemented,
// SPEC_FULL.md §C): `SELECT col, col FROM lib.ds WHERE expr`, single source,
// no joins.
type SQLSelectClauses struct {
	Columns []string // "*" for every column
	From    string
	Where   Expression
}
