package parser

import (
	"strconv"
	"strings"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/lexer"
)

// parseStatementsUntilKeyword parses body statements, advancing one token
// at a time, until the keyword stop is reached as the current token (the
// shared body of DATA...RUN and DO...END, spec.md §4.3/§4.3.5).
func (p *Parser) parseStatementsUntilKeyword(stop lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for {
		p.advanceOrIncomplete()
		if p.cur.Type == stop {
			return stmts
		}
		stmts = append(stmts, p.parseBodyStatement())
	}
}

func (p *Parser) parseBodyStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.IDENT:
		return p.parseAssignStatement()
	case lexer.KEYWORD_SET:
		return p.parseSetStatement()
	case lexer.KEYWORD_MERGE:
		return p.parseMergeStatement()
	case lexer.KEYWORD_BY:
		return p.parseByStatement()
	case lexer.KEYWORD_IF:
		return p.parseIfStatement()
	case lexer.KEYWORD_DO:
		return p.parseDoStatement()
	case lexer.KEYWORD_OUTPUT:
		return p.parseOutputStatement()
	case lexer.KEYWORD_DROP:
		return p.parseDropStatement()
	case lexer.KEYWORD_KEEP:
		return p.parseKeepStatement()
	case lexer.KEYWORD_RETAIN:
		return p.parseRetainStatement()
	case lexer.KEYWORD_ARRAY:
		return p.parseArrayStatement()
	case lexer.KEYWORD_LABEL:
		return p.parseLabelStatement()
	case lexer.KEYWORD_LENGTH:
		return p.parseLengthStatement()
	case lexer.KEYWORD_FORMAT:
		return p.parseFormatStatement()
	case lexer.KEYWORD_INFORMAT:
		return p.parseInformatStatement()
	case lexer.KEYWORD_INPUT:
		return p.parseInputStatement()
	case lexer.KEYWORD_DATALINES:
		return p.parseDatalinesStatement()
	case lexer.KEYWORD_LEAVE:
		tok := p.cur
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.LeaveStatement{Token: tok}
	case lexer.KEYWORD_CONTINUE:
		tok := p.cur
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.ContinueStatement{Token: tok}
	case lexer.SEMICOLON:
		return &ast.NullStatement{Token: p.cur}
	default:
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected token in DATA step body: "+p.cur.Literal,
			errors.Fields{"token": p.cur.Literal})
		return nil
	}
}

func (p *Parser) parseDataStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	names := []string{p.parseQualifiedNameTail()}
	for p.peek.Type == lexer.IDENT {
		p.advance()
		names = append(names, p.parseQualifiedNameTail())
	}
	options := map[string]string{}
	if p.peek.Type == lexer.LPAREN {
		p.advance()
		options = p.parseParenOptions()
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	body := p.parseStatementsUntilKeyword(lexer.KEYWORD_RUN)
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.DataStatement{Token: tok, Names: names, Options: options, Body: body}
}

// parseParenOptions assumes p.cur is '('.
func (p *Parser) parseParenOptions() map[string]string {
	opts := map[string]string{}
	if p.peek.Type == lexer.RPAREN {
		p.advance()
		return opts
	}
	for {
		p.advanceOrIncomplete()
		key := p.cur.Literal
		p.expectPeek(lexer.ASSIGN, "'='")
		p.advanceOrIncomplete()
		opts[strings.ToUpper(key)] = p.parseOptionValue()
		if p.peek.Type == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expectPeek(lexer.RPAREN, "')'")
	return opts
}

func (p *Parser) parseOptionValue() string {
	switch p.cur.Type {
	case lexer.STRING, lexer.IDENT, lexer.NUMBER:
		return p.cur.Literal
	default:
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected option value, got "+p.cur.Literal, nil)
		return ""
	}
}

func (p *Parser) parseAssignStatement() ast.Statement {
	target := p.parseIdentifierExpr()
	eq := p.expectPeek(lexer.ASSIGN, "'='")
	p.advanceOrIncomplete()
	value := p.parseExpression(LOWEST)
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.AssignStatement{Token: eq, Target: target, Value: value}
}

func (p *Parser) parseSetStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	datasets := []string{p.parseQualifiedNameTail()}
	for p.peek.Type == lexer.IDENT {
		p.advance()
		datasets = append(datasets, p.parseQualifiedNameTail())
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.SetStatement{Token: tok, Datasets: datasets}
}

func (p *Parser) parseMergeStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	datasets := []string{p.parseQualifiedNameTail()}
	for p.peek.Type == lexer.IDENT {
		p.advance()
		datasets = append(datasets, p.parseQualifiedNameTail())
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.MergeStatement{Token: tok, Datasets: datasets}
}

// parseByStatement is shared by the DATA step's BY and every PROC clause
// grammar that accepts one (spec.md §4.6).
func (p *Parser) parseByStatement() ast.Statement {
	tok := p.cur
	var vars []string
	var desc []bool
	for {
		p.advanceOrIncomplete()
		d := false
		if p.cur.Type == lexer.KEYWORD_DESCENDING {
			d = true
			p.advanceOrIncomplete()
		}
		if p.cur.Type != lexer.IDENT {
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected variable name in BY list, got "+p.cur.Literal, nil)
		}
		vars = append(vars, p.cur.Literal)
		desc = append(desc, d)
		if p.peek.Type == lexer.IDENT || p.peek.Type == lexer.KEYWORD_DESCENDING {
			continue
		}
		break
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.ByStatement{Token: tok, Variables: vars, Descending: desc}
}

func (p *Parser) parseOutputStatement() ast.Statement {
	tok := p.cur
	dataset := ""
	if p.peek.Type == lexer.IDENT {
		p.advance()
		dataset = p.parseQualifiedNameTail()
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.OutputStatement{Token: tok, Dataset: dataset}
}

func (p *Parser) parseDropStatement() ast.Statement {
	tok := p.cur
	vars := p.parseIdentList()
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.DropStatement{Token: tok, Variables: vars}
}

func (p *Parser) parseKeepStatement() ast.Statement {
	tok := p.cur
	vars := p.parseIdentList()
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.KeepStatement{Token: tok, Variables: vars}
}

func (p *Parser) parseRetainStatement() ast.Statement {
	tok := p.cur
	vars := p.parseIdentList()
	var initial ast.Expression
	if p.peek.Type != lexer.SEMICOLON {
		p.advanceOrIncomplete()
		initial = p.parseExpression(LOWEST)
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.RetainStatement{Token: tok, Variables: vars, Initial: initial}
}

func (p *Parser) parseArrayStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	name := p.cur.Literal
	p.expectPeek(lexer.LBRACE, "'{'")
	p.advanceOrIncomplete()
	size := 0
	switch p.cur.Type {
	case lexer.NUMBER:
		v, err := strconv.Atoi(p.cur.Literal)
		if err != nil {
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "invalid array size: "+p.cur.Literal, nil)
		}
		size = v
	case lexer.ASTERISK:
		size = -1
	default:
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected array size, got "+p.cur.Literal, nil)
	}
	p.expectPeek(lexer.RBRACE, "'}'")
	vars := p.parseIdentList()
	if size == -1 {
		size = len(vars)
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.ArrayStatement{Token: tok, Name: name, Size: size, Variables: vars}
}

// parseLabelStatement handles exactly one `var='label text';` pair, matching
// ast.LabelStatement's single Variable/Label fields.
func (p *Parser) parseLabelStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	v := p.cur.Literal
	p.expectPeek(lexer.ASSIGN, "'='")
	p.expectPeek(lexer.STRING, "quoted label text")
	label := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.LabelStatement{Token: tok, Variable: v, Label: label}
}

func (p *Parser) parseLengthStatement() ast.Statement {
	tok := p.cur
	var vars []ast.LengthVar
	for p.peek.Type == lexer.IDENT {
		p.advance()
		name := p.cur.Literal
		isChar := false
		if p.peek.Type == lexer.DOLLAR {
			isChar = true
			p.advance()
		}
		p.expectPeek(lexer.NUMBER, "a length")
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil {
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "invalid length: "+p.cur.Literal, nil)
		}
		vars = append(vars, ast.LengthVar{Name: name, IsChar: isChar, Length: n})
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.LengthStatement{Token: tok, Variables: vars}
}

// parseFormatStatement is restricted to a quoted-string format value
// (FORMAT var1 var2 'fmt';): SAS's real unquoted format-name grammar
// (best12., dollar10.2) is ambiguous against a bare identifier list with
// this token set, and isn't exercised by any bundled PROC.
func (p *Parser) parseFormatStatement() ast.Statement {
	tok := p.cur
	vars := p.parseIdentList()
	p.expectPeek(lexer.STRING, "a quoted format string")
	format := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.FormatStatement{Token: tok, Variables: vars, Format: format}
}

func (p *Parser) parseInformatStatement() ast.Statement {
	tok := p.cur
	vars := p.parseIdentList()
	p.expectPeek(lexer.STRING, "a quoted informat string")
	informat := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.InformatStatement{Token: tok, Variables: vars, Informat: informat}
}

func (p *Parser) parseInputStatement() ast.Statement {
	tok := p.cur
	var vars []ast.InputVar
	trailing := false
	for {
		if p.peek.Type == lexer.IDENT {
			p.advance()
			name := p.cur.Literal
			isChar := false
			if p.peek.Type == lexer.DOLLAR {
				isChar = true
				p.advance()
			}
			vars = append(vars, ast.InputVar{Name: name, IsChar: isChar})
			continue
		}
		if p.peek.Type == lexer.ATSIGN {
			p.advance()
			trailing = true
		}
		break
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.InputStatement{Token: tok, Variables: vars, Trailing: trailing}
}

// parseDatalinesStatement switches the lexer into line-buffered datalines
// mode before consuming the ';' that follows DATALINES/CARDS, so the
// one-token lookahead fetched by that consumption already scans in the new
// mode (see lexer.Lexer.EnterDatalinesMode).
func (p *Parser) parseDatalinesStatement() ast.Statement {
	tok := p.cur
	if p.peek.Type != lexer.SEMICOLON {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.fail(errors.CodeSyntaxError, p.peek.Pos, "expected ';' after "+tok.Literal, nil)
	}
	p.l.EnterDatalinesMode()
	p.advance() // cur = ';'; peek is now fetched in datalines mode
	var lines []string
	for p.peek.Type == lexer.RAWLINE {
		p.advance()
		lines = append(lines, p.cur.Literal)
	}
	p.expectPeek(lexer.SEMICOLON, "';' closing the "+tok.Literal+" block")
	return &ast.DatalinesStatement{Token: tok, Lines: lines}
}
