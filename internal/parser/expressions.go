package parser

import (
	"strconv"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/lexer"
)

// registerExpressionFns wires the Pratt-parsing prefix/infix tables. Called
// once from New.
func (p *Parser) registerExpressionFns() {
	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.NUMBER:      p.parseNumberLiteral,
		lexer.STRING:      p.parseStringLiteral,
		lexer.IDENT:       p.parseIdentifierExpr,
		lexer.MINUS:       p.parseUnaryExpression,
		lexer.PLUS:        p.parseUnaryExpression,
		lexer.KEYWORD_NOT: p.parseUnaryExpression,
		lexer.LPAREN:      p.parseGroupedExpression,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:        p.parseBinaryExpression,
		lexer.MINUS:       p.parseBinaryExpression,
		lexer.ASTERISK:    p.parseBinaryExpression,
		lexer.SLASH:       p.parseBinaryExpression,
		lexer.CONCAT:      p.parseBinaryExpression,
		lexer.ASSIGN:      p.parseBinaryExpression,
		lexer.EQ_OP:       p.parseBinaryExpression,
		lexer.NE_OP:       p.parseBinaryExpression,
		lexer.LT_OP:       p.parseBinaryExpression,
		lexer.GT_OP:       p.parseBinaryExpression,
		lexer.LE_OP:       p.parseBinaryExpression,
		lexer.GE_OP:       p.parseBinaryExpression,
		lexer.KEYWORD_AND: p.parseBinaryExpression,
		lexer.KEYWORD_OR:  p.parseBinaryExpression,
		lexer.KEYWORD_EQ:  p.parseBinaryExpression,
		lexer.KEYWORD_NE:  p.parseBinaryExpression,
		lexer.KEYWORD_LT:  p.parseBinaryExpression,
		lexer.KEYWORD_GT:  p.parseBinaryExpression,
		lexer.KEYWORD_LE:  p.parseBinaryExpression,
		lexer.KEYWORD_GE:  p.parseBinaryExpression,
		lexer.STARSTAR:    p.parseExponent,
	}
}

// parseExpression climbs operator precedence starting from a prefix parse
// of the current token (spec.md §4.2's precedence table: OR, AND,
// comparison, additive/concat, multiplicative, exponent, unary, primary).
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.fail(errors.CodeSyntaxError, p.cur.Pos, "unexpected token in expression: "+p.cur.Literal,
			errors.Fields{"token": p.cur.Literal})
	}
	left := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peek.Type]
		if infix == nil {
			return left
		}
		p.advanceOrIncomplete()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.fail(errors.CodeSyntaxError, tok.Pos, "invalid number literal: "+tok.Literal, errors.Fields{"literal": tok.Literal})
	}
	return &ast.NumberLiteral{Token: tok, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.cur, Value: p.cur.Literal}
}

// parseIdentifierExpr disambiguates IDENT followed by '(' (FunctionCall),
// '{' (ArrayElementRef), or nothing (VariableRef).
func (p *Parser) parseIdentifierExpr() ast.Expression {
	tok := p.cur
	name := tok.Literal

	if p.peek.Type == lexer.LPAREN {
		p.advance() // onto '('
		args := p.parseCallArguments()
		return &ast.FunctionCall{Token: tok, Name: name, Arguments: args}
	}

	if p.peek.Type == lexer.LBRACE {
		p.advance() // onto '{'
		brace := p.cur
		p.advanceOrIncomplete() // onto index expression
		index := p.parseExpression(LOWEST)
		p.expectPeek(lexer.RBRACE, "'}'")
		return &ast.ArrayElementRef{Token: brace, Array: name, Index: index}
	}

	return &ast.VariableRef{Token: tok, Name: name}
}

// parseCallArguments assumes p.cur is '('.
func (p *Parser) parseCallArguments() []ast.Expression {
	var args []ast.Expression
	if p.peek.Type == lexer.RPAREN {
		p.advance()
		return args
	}
	p.advanceOrIncomplete()
	args = append(args, p.parseExpression(LOWEST))
	for p.peek.Type == lexer.COMMA {
		p.advance()
		p.advanceOrIncomplete()
		args = append(args, p.parseExpression(LOWEST))
	}
	p.expectPeek(lexer.RPAREN, "')'")
	return args
}

// parseUnaryExpression handles -x, +x, NOT x. Per spec.md §4.2's literal
// precedence ordering unary binds tighter than exponentiation, so `-x**2`
// parses as `(-x)**2`.
func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur
	op := operatorString(tok.Type, tok.Literal)
	p.advanceOrIncomplete()
	right := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Token: tok, Operator: op, Right: right}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.cur
	p.advanceOrIncomplete()
	inner := p.parseExpression(LOWEST)
	p.expectPeek(lexer.RPAREN, "')'")
	return &ast.GroupedExpression{Token: tok, Inner: inner}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	op := operatorString(tok.Type, tok.Literal)
	precedence := p.curPrecedence()
	p.advanceOrIncomplete()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: op, Right: right}
}

// parseExponent recurses at precedence-1 so that '**' is right-associative:
// 2**3**2 parses as 2**(3**2).
func (p *Parser) parseExponent(left ast.Expression) ast.Expression {
	tok := p.cur
	p.advanceOrIncomplete()
	right := p.parseExpression(EXPONENT - 1)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: "**", Right: right}
}

// operatorString maps a token to the operator spelling internal/evaluator's
// switch statements expect.
func operatorString(tt lexer.TokenType, literal string) string {
	switch tt {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.ASTERISK:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.STARSTAR:
		return "**"
	case lexer.CONCAT:
		return "||"
	case lexer.ASSIGN:
		return "="
	case lexer.EQ_OP:
		return "=="
	case lexer.NE_OP:
		return "NE"
	case lexer.LT_OP:
		return "<"
	case lexer.GT_OP:
		return ">"
	case lexer.LE_OP:
		return "<="
	case lexer.GE_OP:
		return ">="
	case lexer.KEYWORD_AND:
		return "AND"
	case lexer.KEYWORD_OR:
		return "OR"
	case lexer.KEYWORD_NOT:
		return "NOT"
	case lexer.KEYWORD_EQ:
		return "="
	case lexer.KEYWORD_NE:
		return "NE"
	case lexer.KEYWORD_LT:
		return "<"
	case lexer.KEYWORD_GT:
		return ">"
	case lexer.KEYWORD_LE:
		return "<="
	case lexer.KEYWORD_GE:
		return ">="
	default:
		return literal
	}
}
