package pdv

import (
	"fmt"

	"github.com/cwbudde/sasgo/pkg/ident"
)

// PDV is the per-DATA-step mutable row (spec.md §3). Variables are looked
// up case-insensitively via pkg/ident, the same pattern the teacher's
// runtime.Environment uses for DWScript's symbol table, adapted here for
// SAS's uppercase canonicalization instead of lowercase.
type PDV struct {
	meta   *ident.Map[*VarMeta] // declared order preserved by ident.Map
	values *ident.Map[Cell]

	// automatic variables, tracked outside the ordinary variable map since
	// they are never columns of the output dataset.
	n        int64
	errorBit bool
	first    *ident.Map[bool] // FIRST.var markers, set during MERGE/BY
	last     *ident.Map[bool] // LAST.var markers
}

// New creates an empty PDV.
func New() *PDV {
	return &PDV{
		meta:   ident.NewMap[*VarMeta](),
		values: ident.NewMap[Cell](),
		first:  ident.NewMap[bool](),
		last:   ident.NewMap[bool](),
	}
}

// Declare adds a variable to the PDV if not already present, returning its
// VarMeta (spec.md §3 invariant: every assigned variable must pre-exist in
// the PDV before the body executes). Declaring an existing variable with
// the same name is a no-op that returns the existing VarMeta.
func (p *PDV) Declare(name string, typ VarType) *VarMeta {
	if m, ok := p.meta.Get(name); ok {
		return m
	}
	m := &VarMeta{Name: ident.Normalize(name), Type: typ}
	p.meta.Set(name, m)
	p.values.Set(name, MissingCell)
	return m
}

// Meta returns the VarMeta for name, or false if undeclared.
func (p *PDV) Meta(name string) (*VarMeta, bool) {
	return p.meta.Get(name)
}

// Has reports whether name is declared in the PDV.
func (p *PDV) Has(name string) bool {
	return p.meta.Has(name)
}

// Get returns the current value of name, or MissingCell with false if
// undeclared.
func (p *PDV) Get(name string) (Cell, bool) {
	if !p.meta.Has(name) {
		return MissingCell, false
	}
	v, _ := p.values.Get(name)
	return v, true
}

// Set stores val under name, truncating character values per the
// variable's declared LENGTH (spec.md §4.3.3). Returns an error if name
// was never declared — callers are expected to Declare before first Set.
func (p *PDV) Set(name string, val Cell) error {
	m, ok := p.meta.Get(name)
	if !ok {
		return fmt.Errorf("pdv: variable %s not declared", ident.Normalize(name))
	}
	if val.IsChar() {
		if truncated, wasTruncated := m.Truncate(val.Str()); wasTruncated {
			val = StrCell(truncated)
		}
	}
	p.values.Set(name, val)
	return nil
}

// Names returns declared variable names in declaration order.
func (p *PDV) Names() []string {
	return p.meta.Keys()
}

// ResetRow applies the per-row reset (spec.md §4.3 step 1): non-retained
// variables become missing, retained variables are untouched, _N_
// increments, _ERROR_ clears.
func (p *PDV) ResetRow() {
	for _, name := range p.meta.Keys() {
		m, _ := p.meta.Get(name)
		if !m.Retain {
			p.values.Set(name, MissingCell)
		}
	}
	p.n++
	p.errorBit = false
}

// N returns the current _N_ iteration counter (1-based after the first
// ResetRow call).
func (p *PDV) N() int64 { return p.n }

// Error returns the current _ERROR_ flag.
func (p *PDV) Error() bool { return p.errorBit }

// SetError sets the _ERROR_ flag (spec.md §4.3.6: expression-evaluation
// failures set it).
func (p *PDV) SetError() { p.errorBit = true }

// SetFirst/SetLast/First/Last implement the FIRST.var / LAST.var BY-group
// markers maintained by MERGE processing (spec.md §4.3.1).
func (p *PDV) SetFirst(byVar string, v bool) { p.first.Set(byVar, v) }
func (p *PDV) SetLast(byVar string, v bool)  { p.last.Set(byVar, v) }
func (p *PDV) First(byVar string) bool       { v, _ := p.first.Get(byVar); return v }
func (p *PDV) Last(byVar string) bool        { v, _ := p.last.Get(byVar); return v }

// Snapshot copies the current value of every declared variable, in
// declaration order, for writing a row to the output Dataset.
func (p *PDV) Snapshot() []Cell {
	names := p.meta.Keys()
	out := make([]Cell, len(names))
	for i, name := range names {
		out[i], _ = p.values.Get(name)
	}
	return out
}
