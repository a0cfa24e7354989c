package parser

import (
	"strings"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/lexer"
)

func (p *Parser) parseOptionsStatement() ast.Statement {
	tok := p.cur
	opts := map[string]string{}
	for p.peek.Type == lexer.IDENT {
		p.advance()
		key := p.cur.Literal
		if p.peek.Type == lexer.ASSIGN {
			p.advance()
			p.advanceOrIncomplete()
			opts[strings.ToUpper(key)] = p.parseOptionValue()
		} else {
			opts[strings.ToUpper(key)] = "YES"
		}
	}
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.OptionsStatement{Token: tok, Options: opts}
}

func (p *Parser) parseLibnameStatement() ast.Statement {
	tok := p.cur
	p.advanceOrIncomplete()
	libref := p.cur.Literal
	p.expectPeek(lexer.STRING, "a quoted path")
	path := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.LibnameStatement{Token: tok, Libref: libref, Path: path}
}

func (p *Parser) parseTitleStatement() ast.Statement {
	tok := p.cur
	p.expectPeek(lexer.STRING, "a quoted title")
	text := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.TitleStatement{Token: tok, Text: text}
}

func (p *Parser) parseFootnoteStatement() ast.Statement {
	tok := p.cur
	p.expectPeek(lexer.STRING, "a quoted footnote")
	text := p.cur.Literal
	p.expectPeek(lexer.SEMICOLON, "';'")
	return &ast.FootnoteStatement{Token: tok, Text: text}
}
