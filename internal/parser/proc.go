package parser

import (
	"strings"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/lexer"
)

// parseProcStatement dispatches on the PROC name (a plain IDENT; PROC names
// are not reserved words) to the per-PROC clause grammar. An unrecognized
// name is parsed permissively (parseGenericProc) and left to fail at
// dispatch time as *UnsupportedProc* (spec.md §4.6) — that is a semantic
// failure, not a syntactic one.
func (p *Parser) parseProcStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	if p.cur.Type != lexer.IDENT {
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected a PROC name, got "+p.cur.Literal, nil)
	}
	name := strings.ToUpper(p.cur.Literal)
	switch name {
	case "PRINT":
		return p.parsePrintProc(tok)
	case "SORT":
		return p.parseSortProc(tok)
	case "MEANS", "SUMMARY":
		return p.parseMeansProc(tok, name)
	case "FREQ":
		return p.parseFreqProc(tok)
	case "TRANSPOSE":
		return p.parseTransposeProc(tok)
	case "CONTENTS":
		return p.parseContentsProc(tok)
	case "SQL":
		return p.parseSQLProc(tok)
	default:
		return p.parseGenericProc(tok, name)
	}
}

// parseProcOptionsLine scans the inline KEY=VALUE / bare-flag options on the
// `PROC <name> ...;` line itself, stopping at the line's ';'. Reserved
// keyword tokens (NOOBS, LABEL, NOPRINT) and plain-IDENT pseudo-keywords
// (DATA=, OUT=, PREFIX=, NAME=, N, MEAN, ..., NOPERCENT, NOCUM) are both
// accepted, since the lexer only reserves the former. SORTSEQ=LOCALE('tag')
// is special-cased inline; it is PROC SORT-only but harmless to recognize
// generally.
func (p *Parser) parseProcOptionsLine() map[string]string {
	opts := map[string]string{}
	for p.peek.Type != lexer.SEMICOLON {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		switch p.cur.Type {
		case lexer.KEYWORD_NOOBS:
			opts["NOOBS"] = "YES"
		case lexer.KEYWORD_LABEL:
			opts["LABEL"] = "YES"
		case lexer.KEYWORD_NOPRINT:
			opts["NOPRINT"] = "YES"
		case lexer.KEYWORD_DESCENDING:
			opts["DESCENDING"] = "YES"
		case lexer.IDENT:
			key := strings.ToUpper(p.cur.Literal)
			if key == "SORTSEQ" {
				p.expectPeek(lexer.ASSIGN, "'='")
				p.advanceOrIncomplete()
				if !(p.cur.Type == lexer.IDENT && strings.ToUpper(p.cur.Literal) == "LOCALE") {
					p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected LOCALE(...), got "+p.cur.Literal, nil)
				}
				p.expectPeek(lexer.LPAREN, "'('")
				p.expectPeek(lexer.STRING, "a locale tag")
				opts["SORTSEQ_LOCALE"] = p.cur.Literal
				p.expectPeek(lexer.RPAREN, "')'")
				continue
			}
			if p.peek.Type == lexer.ASSIGN {
				p.advance()
				p.advanceOrIncomplete()
				opts[key] = p.parseQualifiedOptionValue()
			} else {
				opts[key] = "YES"
			}
		default:
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected PROC option: "+p.cur.Literal, nil)
		}
	}
	return opts
}

func (p *Parser) parseQualifiedOptionValue() string {
	switch p.cur.Type {
	case lexer.STRING, lexer.NUMBER:
		return p.cur.Literal
	case lexer.IDENT:
		return p.parseQualifiedNameTail()
	default:
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected an option value, got "+p.cur.Literal, nil)
		return ""
	}
}

func (p *Parser) parseVarClauseList() []string {
	vars := p.parseIdentList()
	p.expectPeek(lexer.SEMICOLON, "';'")
	return vars
}

func (p *Parser) parseWhereClauseExpr() ast.Expression {
	p.advanceOrIncomplete()
	expr := p.parseExpression(LOWEST)
	p.expectPeek(lexer.SEMICOLON, "';'")
	return expr
}

// parseIDClauseName assumes p.cur is the pseudo-keyword IDENT "ID".
func (p *Parser) parseIDClauseName() string {
	p.advanceOrIncomplete()
	name := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return name
}

// parseTablesClause assumes p.cur is the pseudo-keyword IDENT "TABLES".
func (p *Parser) parseTablesClause() []ast.FreqTable {
	var tables []ast.FreqTable
	for p.peek.Type == lexer.IDENT {
		p.advance()
		v1 := p.cur.Literal
		v2 := ""
		if p.peek.Type == lexer.ASTERISK {
			p.advance()
			p.advanceOrIncomplete()
			v2 = p.cur.Literal
		}
		tables = append(tables, ast.FreqTable{Var1: v1, Var2: v2})
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return tables
}

func (p *Parser) consumeProcTerminator() {
	if p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.fail(errors.CodeSyntaxError, p.peek.Pos, "expected RUN or QUIT, got "+p.peek.Literal, nil)
	}
	p.advance()
	p.expectPeek(lexer.SEMICOLON, "';'")
}

func (p *Parser) parsePrintProc(tok lexer.Token) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.PrintClauses{Data: opts["DATA"], Noobs: opts["NOOBS"] == "YES", Label: opts["LABEL"] == "YES"}

	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		switch p.cur.Type {
		case lexer.KEYWORD_VAR:
			clauses.Var = p.parseVarClauseList()
		case lexer.KEYWORD_WHERE:
			clauses.Where = p.parseWhereClauseExpr()
		default:
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected PROC PRINT clause: "+p.cur.Literal, nil)
		}
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "PRINT", Clauses: clauses}
}

func (p *Parser) parseSortProc(tok lexer.Token) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.SortClauses{Data: opts["DATA"], Out: opts["OUT"], Locale: opts["SORTSEQ_LOCALE"]}

	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		if p.cur.Type != lexer.KEYWORD_BY {
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected BY in PROC SORT, got "+p.cur.Literal, nil)
		}
		clauses.By = p.parseByStatement().(*ast.ByStatement)
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "SORT", Clauses: clauses}
}

var meansStats = []string{"N", "MEAN", "STD", "MIN", "MAX", "SUM"}

func (p *Parser) parseMeansProc(tok lexer.Token, name string) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.MeansClauses{Data: opts["DATA"]}
	for _, stat := range meansStats {
		if _, ok := opts[stat]; ok {
			clauses.Stats = append(clauses.Stats, stat)
		}
	}

	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		switch p.cur.Type {
		case lexer.KEYWORD_VAR:
			clauses.Var = p.parseVarClauseList()
		case lexer.KEYWORD_BY:
			clauses.By = p.parseByStatement().(*ast.ByStatement)
		default:
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected PROC "+name+" clause: "+p.cur.Literal, nil)
		}
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: name, Clauses: clauses}
}

func (p *Parser) parseFreqProc(tok lexer.Token) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.FreqClauses{Data: opts["DATA"], NoPercent: opts["NOPERCENT"] == "YES", NoCum: opts["NOCUM"] == "YES"}

	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		if p.cur.Type == lexer.IDENT && strings.ToUpper(p.cur.Literal) == "TABLES" {
			clauses.Tables = p.parseTablesClause()
			continue
		}
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected PROC FREQ clause: "+p.cur.Literal, nil)
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "FREQ", Clauses: clauses}
}

func (p *Parser) parseTransposeProc(tok lexer.Token) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.TransposeClauses{Data: opts["DATA"], Out: opts["OUT"], Prefix: opts["PREFIX"], Name: opts["NAME"]}

	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
		switch {
		case p.cur.Type == lexer.KEYWORD_VAR:
			clauses.Var = p.parseVarClauseList()
		case p.cur.Type == lexer.KEYWORD_BY:
			clauses.By = p.parseByStatement().(*ast.ByStatement)
		case p.cur.Type == lexer.IDENT && strings.ToUpper(p.cur.Literal) == "ID":
			clauses.ID = p.parseIDClauseName()
		default:
			p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected PROC TRANSPOSE clause: "+p.cur.Literal, nil)
		}
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "TRANSPOSE", Clauses: clauses}
}

func (p *Parser) parseContentsProc(tok lexer.Token) ast.Statement {
	opts := p.parseProcOptionsLine()
	p.expectPeek(lexer.SEMICOLON, "';'")
	clauses := &ast.ContentsClauses{Data: opts["DATA"]}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "CONTENTS", Clauses: clauses}
}

// parseGenericProc accepts any PROC name syntactically, skipping its clause
// body blindly, so that an unrecognized PROC fails at Dispatch time with
// UnsupportedProc (spec.md §4.6) rather than at parse time.
func (p *Parser) parseGenericProc(tok lexer.Token, name string) ast.Statement {
	for p.peek.Type != lexer.SEMICOLON {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
	}
	p.advance() // consume ';'
	for p.peek.Type != lexer.KEYWORD_RUN && p.peek.Type != lexer.KEYWORD_QUIT {
		if p.peek.Type == lexer.EOF {
			p.failIncomplete()
		}
		p.advance()
	}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: name}
}

// parseSQLProc is a self-contained grammar for the supported PROC SQL
// subset: `PROC SQL; SELECT <cols|*> FROM <qualified-name> [WHERE expr]; QUIT|RUN;`
// (supplemented, SPEC_FULL.md §C; no joins, single source).
func (p *Parser) parseSQLProc(tok lexer.Token) ast.Statement {
	p.expectPeek(lexer.SEMICOLON, "';'")
	p.advanceOrIncomplete()
	if !(p.cur.Type == lexer.IDENT && strings.ToUpper(p.cur.Literal) == "SELECT") {
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected SELECT, got "+p.cur.Literal, nil)
	}

	var columns []string
	if p.peek.Type == lexer.ASTERISK {
		p.advance()
		columns = []string{"*"}
	} else {
		for {
			p.advanceOrIncomplete()
			if p.cur.Type != lexer.IDENT {
				p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected a column name, got "+p.cur.Literal, nil)
			}
			columns = append(columns, p.cur.Literal)
			if p.peek.Type == lexer.COMMA {
				p.advance()
				continue
			}
			break
		}
	}

	p.advanceOrIncomplete()
	if !(p.cur.Type == lexer.IDENT && strings.ToUpper(p.cur.Literal) == "FROM") {
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "expected FROM, got "+p.cur.Literal, nil)
	}
	p.advanceOrIncomplete()
	from := p.parseQualifiedNameTail()

	var where ast.Expression
	if p.peek.Type == lexer.KEYWORD_WHERE {
		p.advance()
		p.advanceOrIncomplete()
		where = p.parseExpression(LOWEST)
	}
	p.expectPeek(lexer.SEMICOLON, "';'")

	clauses := &ast.SQLSelectClauses{Columns: columns, From: from, Where: where}
	p.consumeProcTerminator()
	return &ast.ProcStatement{Token: tok, Name: "SQL", Clauses: clauses}
}
