// Package interpreter is the top-level driver: it walks an *ast.Program
// produced by internal/parser and routes each top-level statement to the
// subsystem that owns it (internal/datastep for DATA steps, internal/proc
// for PROC steps, internal/env for global OPTIONS/LIBNAME/TITLE/FOOTNOTE
// statements), per spec.md §5's "single interpreter instance owns one Data
// Environment" model. Grounded on the teacher's cmd/dwscript run command,
// which performs the same lex -> parse -> (semantic) -> evaluate pipeline
// one level up from the AST walk itself.
package interpreter

import (
	"github.com/hashicorp/go-hclog"

	"github.com/cwbudde/sasgo/internal/ast"
	"github.com/cwbudde/sasgo/internal/datastep"
	"github.com/cwbudde/sasgo/internal/env"
	"github.com/cwbudde/sasgo/internal/errors"
	"github.com/cwbudde/sasgo/internal/listing"
	"github.com/cwbudde/sasgo/internal/proc"
)

// Interpreter owns the Data Environment, the listing sink PROC output is
// written to, and the PROC dispatcher; it is the thing both the CLI's
// `run`/`repl` commands and tests drive a parsed Program through.
type Interpreter struct {
	Env        *env.Environment
	Sink       listing.Sink
	Log        hclog.Logger
	Dispatcher *proc.Dispatcher
}

// New builds an Interpreter. log is the root logger (§6 logging contract);
// subsystems are handed a Named child of it.
func New(e *env.Environment, sink listing.Sink, log hclog.Logger) *Interpreter {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Interpreter{
		Env:        e,
		Sink:       sink,
		Log:        log,
		Dispatcher: proc.NewDispatcher(),
	}
}

// Run executes every top-level statement in prog in order. A statement
// that fails with an *errors.EngineError is logged and recorded, and
// execution continues with the next top-level statement (spec.md §7's
// propagation policy: a failing DATA step or PROC does not abort the run,
// it aborts only that step).
func (in *Interpreter) Run(prog *ast.Program) []*errors.EngineError {
	var errs []*errors.EngineError
	for _, stmt := range prog.Statements {
		if err := in.runStatement(stmt); err != nil {
			ee, ok := err.(*errors.EngineError)
			if !ok {
				ee = errors.New(errors.Runtime, errors.CodeIOFailure, errors.Error, stmt.Pos(), err.Error(), nil)
			}
			ee.Log(in.Log)
			errs = append(errs, ee)
		}
	}
	return errs
}

// RunStatement executes a single top-level statement, for callers (the
// REPL) that parse one ParseResult at a time rather than a whole Program.
func (in *Interpreter) RunStatement(stmt ast.Statement) error {
	return in.runStatement(stmt)
}

func (in *Interpreter) runStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.DataStatement:
		return in.runDataStep(s)
	case *ast.ProcStatement:
		return in.runProc(s)
	case *ast.OptionsStatement:
		for name, value := range s.Options {
			in.Env.SetOption(name, value)
		}
		return nil
	case *ast.LibnameStatement:
		in.Env.Libname(s.Libref, s.Path)
		return nil
	case *ast.TitleStatement:
		in.Env.SetTitle(s.Text)
		return nil
	case *ast.FootnoteStatement:
		in.Env.SetFootnote(s.Text)
		return nil
	case *ast.NullStatement:
		return nil
	default:
		return errors.New(errors.Semantic, errors.CodeSyntaxError, errors.Error, stmt.Pos(),
			"unsupported top-level statement", errors.Fields{"statement": stmt.TokenLiteral()})
	}
}

func (in *Interpreter) runDataStep(s *ast.DataStatement) error {
	log := in.Log.Named("datastep")
	ex := datastep.New(in.Env, log)
	log.Info("DATA step starting", "names", s.Names)
	if err := ex.Run(s); err != nil {
		return err
	}
	log.Info("DATA step complete", "names", s.Names)
	return nil
}

func (in *Interpreter) runProc(s *ast.ProcStatement) error {
	log := in.Log.Named("proc")
	ctx := proc.NewContext(in.Env, in.Sink, s, in.Log)
	log.Info("PROC starting", "name", s.Name)
	listing.Title(in.Sink, in.Env.Title())
	if err := in.Dispatcher.Dispatch(ctx); err != nil {
		return err
	}
	log.Info("PROC complete", "name", s.Name)
	return nil
}
