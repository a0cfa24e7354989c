// Package proc implements the PROC dispatcher (spec.md §4.6): a
// name-keyed registry of handlers, grounded on the teacher's builtin
// function registry pattern (internal/evaluator.Registry,
// internal/interp/builtins/registry.go), generalized from callable
// functions to whole procedure steps.
package proc

import (
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/listing"
)

// Context is everything a Handler needs: the Data Environment it reads
// and writes datasets against, the listing Sink it writes report output
// to, the statement being run, and a warning sink for recoverable
// failures (spec.md §4.3.6's "log and continue" model, reused here).
type Context struct {
	Env  *env.Environment
	Sink listing.Sink
	Stmt *ast.ProcStatement
	Warn func(msg string, fields errors.Fields)
}

func (c *Context) warn(msg string, fields errors.Fields) {
	if c.Warn != nil {
		c.Warn(msg, fields)
	}
}

// NewContext builds a Context that logs recoverable PROC failures (§4.3.6's
// "log and continue" model) through log at Warn level, named "proc".
func NewContext(e *env.Environment, sink listing.Sink, stmt *ast.ProcStatement, log hclog.Logger) *Context {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log = log.Named("proc")
	return &Context{
		Env:  e,
		Sink: sink,
		Stmt: stmt,
		Warn: func(msg string, fields errors.Fields) {
			log.Warn(msg, fields.Args()...)
		},
	}
}

// Handler executes one PROC step.
type Handler func(ctx *Context) error

// Dispatcher looks up a Handler by PROC name (case-insensitive).
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher builds a Dispatcher with every built-in PROC registered
// (spec.md §4.6: PRINT, SORT, TRANSPOSE; SPEC_FULL.md §C: MEANS, FREQ,
// CONTENTS, SQL's SELECT-only subset).
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler)}
	d.Register("PRINT", runPrint)
	d.Register("SORT", runSort)
	d.Register("TRANSPOSE", runTranspose)
	d.Register("MEANS", runMeans)
	d.Register("SUMMARY", runMeans)
	d.Register("FREQ", runFreq)
	d.Register("CONTENTS", runContents)
	d.Register("SQL", runSQL)
	return d
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[strings.ToUpper(name)] = h
}

// Dispatch runs stmt's PROC, failing with CodeUnsupportedProc (spec.md
// §7) for any name with no registered handler.
func (d *Dispatcher) Dispatch(ctx *Context) error {
	h, ok := d.handlers[strings.ToUpper(ctx.Stmt.Name)]
	if !ok {
		return errors.New(errors.Semantic, errors.CodeUnsupportedProc, errors.Error, ctx.Stmt.Pos(),
			"unsupported PROC "+ctx.Stmt.Name, errors.Fields{"proc": ctx.Stmt.Name})
	}
	return h(ctx)
}
