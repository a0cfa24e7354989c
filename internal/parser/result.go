package parser

import (
	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/errors"
)

// ResultKind is the tri-state outcome of one parseStatement attempt
// (spec.md §4.2): Complete carries a finished node, Incomplete means the
// token stream ran out before the statement's terminator, and Error means
// the tokens seen so far are syntactically invalid.
type ResultKind int

const (
	Complete ResultKind = iota
	Incomplete
	Error
)

func (k ResultKind) String() string {
	switch k {
	case Complete:
		return "Complete"
	case Incomplete:
		return "Incomplete"
	case Error:
		return "Error"
	default:
		return "unknown"
	}
}

// ParseResult is the value ParseStatement returns. Node is valid only when
// Kind is Complete; Err is valid only when Kind is Error.
type ParseResult struct {
	Kind ResultKind
	Node ast.Statement
	Err  *errors.EngineError
}

func complete(node ast.Statement) ParseResult { return ParseResult{Kind: Complete, Node: node} }
func incomplete() ParseResult                 { return ParseResult{Kind: Incomplete} }
func failure(err *errors.EngineError) ParseResult {
	return ParseResult{Kind: Error, Err: err}
}
