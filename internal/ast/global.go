package ast

import (
	"strings"

	"github.com/cwbudde/sasgo/internal/lexer"
)

// OptionsStatement sets one or more engine/session options (LINESIZE,
// PAGESIZE, and arbitrary name/value pairs per spec.md §4.5/§6).
type OptionsStatement struct {
	Token   lexer.Token // the OPTIONS token
	Options map[string]string
}

func (o *OptionsStatement) statementNode()       {}
func (o *OptionsStatement) TokenLiteral() string { return o.Token.Literal }
func (o *OptionsStatement) Pos() lexer.Position  { return o.Token.Pos }
func (o *OptionsStatement) String() string {
	parts := make([]string, 0, len(o.Options))
	for k, v := range o.Options {
		parts = append(parts, k+"="+v)
	}
	return "options " + strings.Join(parts, " ") + ";"
}

// LibnameStatement binds a libref to a filesystem path (spec.md §3 Library).
type LibnameStatement struct {
	Token lexer.Token // the LIBNAME token
	Libref string
	Path   string
}

func (l *LibnameStatement) statementNode()       {}
func (l *LibnameStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LibnameStatement) Pos() lexer.Position  { return l.Token.Pos }
func (l *LibnameStatement) String() string {
	return "libname " + l.Libref + " '" + l.Path + "';"
}

// TitleStatement sets the current report title.
type TitleStatement struct {
	Token lexer.Token // the TITLE token
	Text  string
}

func (t *TitleStatement) statementNode()       {}
func (t *TitleStatement) TokenLiteral() string { return t.Token.Literal }
func (t *TitleStatement) Pos() lexer.Position  { return t.Token.Pos }
func (t *TitleStatement) String() string       { return "title '" + t.Text + "';" }

// FootnoteStatement sets the current report footnote.
type FootnoteStatement struct {
	Token lexer.Token // the FOOTNOTE token
	Text  string
}

func (f *FootnoteStatement) statementNode()       {}
func (f *FootnoteStatement) TokenLiteral() string { return f.Token.Literal }
func (f *FootnoteStatement) Pos() lexer.Position  { return f.Token.Pos }
func (f *FootnoteStatement) String() string       { return "footnote '" + f.Text + "';" }
