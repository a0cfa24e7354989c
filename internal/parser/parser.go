// Package parser implements the SAS-subset parser using Pratt parsing for
// expressions and recursive descent for statements (spec.md §4.2).
//
// The central contract is the tri-state ParseResult returned by
// ParseStatement: Complete, Incomplete, or Error. Incompleteness is
// signalled the moment the token stream runs dry before a statement's
// terminator (RUN;, QUIT;, a matching END;, or a bare ';') is seen — this
// is what lets a REPL tell "keep reading" apart from "that's a syntax
// error". Internally both Incomplete and Error are raised as a panic
// carrying a parseSignal and recovered at the outermost ParseStatement
// call, so that deeply nested recursive-descent code never has to thread
// an error value back up through every return.
package parser

import (
	"fmt"
	"strings"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/lexer"
)

// Precedence levels for expression operators (lowest to highest), per
// spec.md §4.2: OR; AND; comparison; additive (also string CONCAT);
// multiplicative; exponentiation (right-associative); unary; primary.
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	COMPARE
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
)

var precedences = map[lexer.TokenType]int{
	lexer.KEYWORD_OR:  OR_PREC,
	lexer.KEYWORD_AND: AND_PREC,

	lexer.ASSIGN:      COMPARE,
	lexer.EQ_OP:       COMPARE,
	lexer.NE_OP:       COMPARE,
	lexer.LT_OP:       COMPARE,
	lexer.GT_OP:       COMPARE,
	lexer.LE_OP:       COMPARE,
	lexer.GE_OP:       COMPARE,
	lexer.KEYWORD_EQ:  COMPARE,
	lexer.KEYWORD_NE:  COMPARE,
	lexer.KEYWORD_LT:  COMPARE,
	lexer.KEYWORD_GT:  COMPARE,
	lexer.KEYWORD_LE:  COMPARE,
	lexer.KEYWORD_GE:  COMPARE,

	lexer.PLUS:   ADDITIVE,
	lexer.MINUS:  ADDITIVE,
	lexer.CONCAT: ADDITIVE,

	lexer.ASTERISK: MULTIPLICATIVE,
	lexer.SLASH:    MULTIPLICATIVE,

	lexer.STARSTAR: EXPONENT,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// signalKind distinguishes the two non-local-return conditions a parse
// function can raise.
type signalKind int

const (
	sigIncomplete signalKind = iota
	sigError
)

// parseSignal is what gets panicked (and recovered in ParseStatement) to
// unwind out of arbitrarily deep recursive descent.
type parseSignal struct {
	kind signalKind
	err  *errors.EngineError
}

// Parser holds one lexer and the one token of lookahead recursive-descent
// parsing needs, plus the prefix/infix tables the expression climber uses.
type Parser struct {
	l    *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token

	source string
	file   string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over source, priming the first two tokens of
// lookahead. Each REPL attempt constructs a fresh Parser over the full
// accumulated buffer (spec.md §6's feed-a-line contract): the parser
// keeps no state beyond the returned ParseResult, so discarding one on
// Incomplete or Error has no partial side effects.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source), source: source}
	p.registerExpressionFns()
	p.advance()
	p.advance()
	return p
}

// WithFile attaches a file name used only for error message formatting.
func (p *Parser) WithFile(file string) *Parser {
	p.file = file
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	before := len(p.l.Errors())
	p.peek = p.l.NextToken()
	if len(p.l.Errors()) > before {
		le := p.l.Errors()[len(p.l.Errors())-1]
		p.fail(errors.CodeUnknownCharacter, le.Pos, le.Message, nil)
	}
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peek.Type == tt }

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// expectPeek advances past peek when it matches tt, otherwise raises
// Incomplete (peek is EOF: the terminator just hasn't arrived yet) or
// Error (peek is some other, wrong, token).
func (p *Parser) expectPeek(tt lexer.TokenType, what string) lexer.Token {
	if p.peek.Type == lexer.EOF {
		p.failIncomplete()
	}
	if p.peek.Type != tt {
		p.fail(errors.CodeSyntaxError, p.peek.Pos,
			fmt.Sprintf("expected %s, got %q", what, p.peek.Literal),
			errors.Fields{"got": p.peek.Literal})
	}
	p.advance()
	return p.cur
}

// advanceOrIncomplete advances past the current token, treating an
// immediate EOF as Incomplete rather than letting the caller dereference
// a meaningless token.
func (p *Parser) advanceOrIncomplete() {
	if p.peek.Type == lexer.EOF {
		p.failIncomplete()
	}
	p.advance()
}

func (p *Parser) failIncomplete() {
	panic(parseSignal{kind: sigIncomplete})
}

func (p *Parser) fail(code errors.Code, pos lexer.Position, msg string, fields errors.Fields) {
	panic(parseSignal{kind: sigError, err: errors.New(errors.Syntactic, code, errors.Error, pos, msg, fields)})
}

// ParseStatement attempts to parse exactly one top-level statement
// starting at the parser's current position, returning the tri-state
// result spec.md §4.2 describes. It never leaves the Parser in a state
// that would make a second call on a fresh Incomplete/Error unsafe.
func (p *Parser) ParseStatement() (result ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(parseSignal)
			if !ok {
				panic(r)
			}
			if sig.kind == sigIncomplete {
				result = incomplete()
				return
			}
			result = failure(sig.err.WithSource(p.source, p.file))
		}
	}()

	if p.cur.Type == lexer.EOF {
		return incomplete()
	}
	stmt := p.parseTopLevelStatement()
	return complete(stmt)
}

// ParseProgram runs ParseStatement to exhaustion for batch-mode input
// (cmd run / cmd parse): every Complete statement is appended to the
// Program, every Error is recorded and the parser resynchronizes by
// skipping to the next ';' (spec.md §4.2's top-level error recovery), and
// a trailing Incomplete (script ended mid-statement) is reported as a
// final error, since a batch script has no "more input" to wait for.
func (p *Parser) ParseProgram() (*ast.Program, []*errors.EngineError) {
	prog := &ast.Program{}
	var errs []*errors.EngineError
	for p.cur.Type != lexer.EOF {
		res := p.ParseStatement()
		switch res.Kind {
		case Complete:
			prog.Statements = append(prog.Statements, res.Node)
			if p.cur.Type != lexer.EOF {
				p.advance()
			}
		case Incomplete:
			errs = append(errs, errors.New(errors.Syntactic, errors.CodeSyntaxError, errors.Error, p.cur.Pos,
				"unexpected end of input: statement not terminated", nil).WithSource(p.source, p.file))
			return prog, errs
		case Error:
			errs = append(errs, res.Err)
			p.synchronize()
		}
	}
	return prog, errs
}

// synchronize implements panic-mode recovery: skip tokens until the next
// ';' (or EOF) and resume parsing from just after it.
func (p *Parser) synchronize() {
	for p.cur.Type != lexer.SEMICOLON && p.cur.Type != lexer.EOF {
		p.advance()
	}
	if p.cur.Type == lexer.SEMICOLON {
		p.advance()
	}
}

func (p *Parser) parseTopLevelStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.KEYWORD_DATA:
		return p.parseDataStatement()
	case lexer.KEYWORD_PROC:
		return p.parseProcStatement()
	case lexer.KEYWORD_OPTIONS:
		return p.parseOptionsStatement()
	case lexer.KEYWORD_LIBNAME:
		return p.parseLibnameStatement()
	case lexer.KEYWORD_TITLE:
		return p.parseTitleStatement()
	case lexer.KEYWORD_FOOTNOTE:
		return p.parseFootnoteStatement()
	case lexer.SEMICOLON:
		return &ast.NullStatement{Token: p.cur}
	default:
		if p.cur.Type == lexer.IDENT && p.peek.Type == lexer.EOF {
			word := strings.ToUpper(p.cur.Literal)
			for _, kw := range []string{"DATA", "PROC", "OPTIONS", "LIBNAME", "TITLE", "FOOTNOTE"} {
				if strings.HasPrefix(kw, word) {
					p.failIncomplete()
				}
			}
		}
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected token at top level: "+p.cur.Literal,
			errors.Fields{"token": p.cur.Literal})
		return nil
	}
}

// parseQualifiedNameTail combines the current IDENT token with a
// following '.'IDENT into one "lib.name" string (Environment lowercases
// and defaults the library on lookup). Assumes p.cur is already the first
// identifier of the name.
func (p *Parser) parseQualifiedNameTail() string {
	name := p.cur.Literal
	if p.peek.Type == lexer.DOT {
		p.advance()
		p.advanceOrIncomplete()
		name += "." + p.cur.Literal
	}
	return name
}

// parseIdentList collects space-separated identifiers (VAR/DROP/KEEP/BY
// variable lists) while the lookahead keeps being IDENT.
func (p *Parser) parseIdentList() []string {
	var out []string
	for p.peek.Type == lexer.IDENT {
		p.advance()
		out = append(out, p.cur.Literal)
	}
	return out
}
