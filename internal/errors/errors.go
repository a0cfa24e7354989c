// Package errors implements the engine's error taxonomy: syntactic,
// semantic, runtime, IO, and control-flow-misuse failures, each carrying a
// severity, source position, and structured fields, plus source-line-and-
// caret formatting for CLI/REPL display.
package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/cwbudde/sasgo/internal/lexer"
)

// Kind classifies an EngineError per spec.md §7.
type Kind int

const (
	Syntactic Kind = iota
	Semantic
	Runtime
	IO
	ControlFlow
)

func (k Kind) String() string {
	switch k {
	case Syntactic:
		return "syntactic"
	case Semantic:
		return "semantic"
	case Runtime:
		return "runtime"
	case IO:
		return "io"
	case ControlFlow:
		return "control-flow"
	default:
		return "unknown"
	}
}

// Severity distinguishes failures that abort the current step from those
// that are recorded (warning) and execution continues (spec.md §4.3.6).
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "WARNING"
	}
	return "ERROR"
}

// Code names a specific failure, e.g. UnknownDataset, ArrayBounds,
// UnsupportedProc, NotInLoop, UnknownCharacter.
type Code string

const (
	CodeUnknownCharacter Code = "UnknownCharacter"
	CodeSyntaxError      Code = "SyntaxError"
	CodeUnknownDataset   Code = "UnknownDataset"
	CodeUnknownVariable  Code = "UnknownVariable"
	CodeUnknownArray     Code = "UndefinedArray"
	CodeArrayBounds      Code = "ArrayBounds"
	CodeUnsupportedProc  Code = "UnsupportedProc"
	CodeNotInLoop        Code = "NotInLoop"
	CodeTypeMismatch     Code = "TypeMismatch"
	CodeDivisionByZero   Code = "DivisionByZero"
	CodeUndefinedFunc    Code = "UndefinedFunction"
	CodeLengthConflict   Code = "LengthConflict"
	CodeIOFailure        Code = "IOFailure"
)

// Fields carries the structured context named in spec.md §6's logging
// contract: statement text, dataset names, row counts, and anything else
// worth attaching to a single error.
type Fields map[string]any

// Args flattens Fields into hclog's alternating key/value variadic form.
func (f Fields) Args() []any {
	args := make([]any, 0, len(f)*2)
	for k, v := range f {
		args = append(args, k, v)
	}
	return args
}

// EngineError is the error type returned by every subsystem: lexer, parser,
// DATA step executor, expression evaluator, and PROC dispatcher.
type EngineError struct {
	Kind     Kind
	Code     Code
	Severity Severity
	Message  string
	Pos      lexer.Position
	Fields   Fields

	Source string // full program text, for caret rendering; optional
	File   string // script path, or "" for stdin/REPL input
}

// New builds an EngineError. Source/File are left empty; set them via
// WithSource when a caret-rendered Format is needed.
func New(kind Kind, code Code, severity Severity, pos lexer.Position, message string, fields Fields) *EngineError {
	return &EngineError{Kind: kind, Code: code, Severity: severity, Pos: pos, Message: message, Fields: fields}
}

// WithSource attaches the source text and file name used by Format's
// caret-pointing source-line rendering.
func (e *EngineError) WithSource(source, file string) *EngineError {
	e.Source = source
	e.File = file
	return e
}

func (e *EngineError) Error() string {
	return e.Format(false)
}

// Format renders the error with a source-line-and-caret, matching the
// teacher's CompilerError.Format; color adds ANSI codes for TTY output.
func (e *EngineError) Format(color bool) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s [%s/%s]", e.Severity, e.Kind, e.Code)
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", header, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", header, e.Pos.Line, e.Pos.Column))
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (e *EngineError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Log emits e through logger at a level matching its Severity (§6: warnings
// are recorded and execution continues, errors abort the current step),
// tagging the record with its Kind and Code alongside its Fields.
func (e *EngineError) Log(logger hclog.Logger) {
	args := append([]any{"kind", e.Kind.String(), "code", string(e.Code)}, e.Fields.Args()...)
	if e.Severity == Warning {
		logger.Warn(e.Message, args...)
		return
	}
	logger.Error(e.Message, args...)
}

// FormatAll renders a batch of errors, numbering them when there is more
// than one (spec.md §7: the top-level driver logs each and continues).
func FormatAll(errs []*EngineError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(errs))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
