package evaluator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cwbudde/sasgo/internal/pdv"
)

// BuiltinFunc implements one entry in the function catalog (spec.md §4.4).
type BuiltinFunc struct {
	Name  string
	Arity int // -1 means variadic
	Call  func(args []pdv.Cell) (pdv.Cell, error)
}

// Registry is a case-insensitive function-name lookup table, grounded on
// the teacher's builtins.Registry pattern (name -> handler, no per-call
// dynamic dispatch through an object hierarchy).
type Registry struct {
	mu   sync.RWMutex
	fns  map[string]BuiltinFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]BuiltinFunc)}
}

// Register adds fn under name (case-insensitive).
func (r *Registry) Register(fn BuiltinFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fns[strings.ToUpper(fn.Name)] = fn
}

// Lookup finds a function by name, case-insensitive.
func (r *Registry) Lookup(name string) (BuiltinFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[strings.ToUpper(name)]
	return fn, ok
}

func arityError(name string, want, got int) error {
	if want < 0 {
		return fmt.Errorf("%s() requires arguments, got %d", name, got)
	}
	return fmt.Errorf("%s() expects %d argument(s), got %d", name, want, got)
}

func checkArity(fn BuiltinFunc, args []pdv.Cell) error {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return arityError(fn.Name, fn.Arity, len(args))
	}
	return nil
}
