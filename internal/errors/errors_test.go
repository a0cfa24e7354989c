package errors

import (
	"strings"
	"testing"

	"github.com/cwbudde/sasgo/internal/lexer"
)

func TestEngineError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *EngineError
		contains []string
	}{
		{
			name: "runtime error with source context",
			err: New(Runtime, CodeDivisionByZero, Error, lexer.Position{Line: 2, Column: 9},
				"division by zero", Fields{"statement": "x = y / z;"}).
				WithSource("data a;\n  x = y / z;\nrun;\n", "work.sas"),
			contains: []string{"ERROR", "runtime", "DivisionByZero", "work.sas:2:9", "y / z", "^"},
		},
		{
			name: "warning severity renders as WARNING",
			err: New(Runtime, CodeArrayBounds, Warning, lexer.Position{Line: 1, Column: 1},
				"subscript out of range", nil),
			contains: []string{"WARNING", "ArrayBounds"},
		},
		{
			name: "syntactic error without source text",
			err:  New(Syntactic, CodeSyntaxError, Error, lexer.Position{Line: 5, Column: 1}, "unexpected token", nil),
			contains: []string{"syntactic", "SyntaxError"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Format(false)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Format() = %q, want substring %q", out, want)
				}
			}
		})
	}
}

func TestFormatAll(t *testing.T) {
	one := New(Semantic, CodeUnknownVariable, Error, lexer.Position{Line: 1, Column: 1}, "undefined variable x", nil)
	if got := FormatAll(nil, false); got != "" {
		t.Errorf("FormatAll(nil) = %q, want empty", got)
	}
	if got := FormatAll([]*EngineError{one}, false); got != one.Format(false) {
		t.Errorf("FormatAll single error should match err.Format()")
	}

	two := New(Runtime, CodeTypeMismatch, Error, lexer.Position{Line: 2, Column: 1}, "type mismatch", nil)
	out := FormatAll([]*EngineError{one, two}, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Errorf("FormatAll with 2 errors should report a count, got %q", out)
	}
	if !strings.Contains(out, "[1 of 2]") || !strings.Contains(out, "[2 of 2]") {
		t.Errorf("FormatAll should number each error, got %q", out)
	}
}
