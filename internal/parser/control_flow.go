package parser

import (
	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/lexer"
)

// parseIfStatement handles IF expr THEN stmt [ELSE stmt]. An `ELSE IF`
// chain is represented by nesting another IfStatement as the Else branch.
func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	cond := p.parseExpression(LOWEST)
	p.expectPeek(lexer.KEYWORD_THEN, "THEN")
	p.advanceOrIncomplete()
	then := p.parseBodyStatement()

	var elseBranch ast.Statement
	if p.peek.Type == lexer.KEYWORD_ELSE {
		p.advance()
		p.advanceOrIncomplete()
		if p.cur.Type == lexer.KEYWORD_IF {
			elseBranch = p.parseIfStatement()
		} else {
			elseBranch = p.parseBodyStatement()
		}
	}
	return &ast.IfStatement{Token: tok, Condition: cond, Then: then, Else: elseBranch}
}

// parseDoStatement covers all four forms: DO WHILE, DO UNTIL, DO indexed
// (`DO i = start TO stop [BY step];`), and the bare `DO; ... END;` block
// (spec.md §4.3.5).
func (p *Parser) parseDoStatement() ast.Statement {
	tok := p.cur

	switch {
	case p.peek.Type == lexer.KEYWORD_WHILE:
		p.advance()
		p.expectPeek(lexer.LPAREN, "'('")
		p.advanceOrIncomplete()
		cond := p.parseExpression(LOWEST)
		p.expectPeek(lexer.RPAREN, "')'")
		p.expectPeek(lexer.SEMICOLON, "';'")
		body := p.parseStatementsUntilKeyword(lexer.KEYWORD_END)
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.DoStatement{Token: tok, Kind: ast.DoWhile, Condition: cond, Body: body}

	case p.peek.Type == lexer.KEYWORD_UNTIL:
		p.advance()
		p.expectPeek(lexer.LPAREN, "'('")
		p.advanceOrIncomplete()
		cond := p.parseExpression(LOWEST)
		p.expectPeek(lexer.RPAREN, "')'")
		p.expectPeek(lexer.SEMICOLON, "';'")
		body := p.parseStatementsUntilKeyword(lexer.KEYWORD_END)
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.DoStatement{Token: tok, Kind: ast.DoUntil, Condition: cond, Body: body}

	case p.peek.Type == lexer.IDENT:
		p.advance()
		index := p.cur.Literal
		p.expectPeek(lexer.ASSIGN, "'='")
		p.advanceOrIncomplete()
		start := p.parseExpression(LOWEST)
		p.expectPeek(lexer.KEYWORD_TO, "TO")
		p.advanceOrIncomplete()
		stop := p.parseExpression(LOWEST)
		var step ast.Expression
		if p.peek.Type == lexer.KEYWORD_BY {
			p.advance()
			p.advanceOrIncomplete()
			step = p.parseExpression(LOWEST)
		}
		p.expectPeek(lexer.SEMICOLON, "';'")
		body := p.parseStatementsUntilKeyword(lexer.KEYWORD_END)
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.DoStatement{Token: tok, Kind: ast.DoIndexed, Index: index, Start: start, Stop: stop, Step: step, Body: body}

	default:
		p.expectPeek(lexer.SEMICOLON, "';'")
		body := p.parseStatementsUntilKeyword(lexer.KEYWORD_END)
		p.expectPeek(lexer.SEMICOLON, "';'")
		return &ast.DoStatement{Token: tok, Kind: ast.DoBlock, Body: body}
	}
}
