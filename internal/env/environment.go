package env

import (
	"strconv"
	"strings"
)

// Loader loads a dataset from a library path (spec.md §6 persistence
// contract). Defined here, rather than in a package this one would have
// to import, so that a concrete format (internal/persist) can depend on
// env.Dataset without creating an import cycle.
type Loader interface {
	Load(libPath, datasetName string) (*Dataset, error)
}

// Saver writes a dataset to a library path.
type Saver interface {
	Save(d *Dataset, libPath string) error
}

// Environment is the process-wide Data Environment (spec.md §3): libraries,
// datasets keyed by qualified name, options, current title/footnote. It
// plays the role the teacher's runtime.Environment plays for lexical
// variable scoping, generalized here to a single flat, non-nested scope
// since SAS has no nested-scope concept at this level (spec.md §5:
// "single interpreter instance owns one Data Environment").
type Environment struct {
	libraries map[string]*Library
	datasets  map[string]*Dataset
	options   map[string]string
	title     string
	footnote  string

	loader Loader
	saver  Saver
}

// New creates an Environment with the built-in WORK library bound to dir
// (an empty dir means WORK datasets are never persisted to disk). loader
// and saver implement the external persistence contract (spec.md §6);
// passing nil disables on-demand loading/saving (tests commonly do).
func New(workDir string, loader Loader, saver Saver) *Environment {
	return &Environment{
		libraries: map[string]*Library{"work": {Ref: "work", Path: workDir}},
		datasets:  make(map[string]*Dataset),
		options:   map[string]string{"linesize": "120", "pagesize": "60"},
		loader:    loader,
		saver:     saver,
	}
}

// Libname assigns a libref to a filesystem path.
func (e *Environment) Libname(ref, path string) {
	e.libraries[strings.ToLower(ref)] = &Library{Ref: strings.ToLower(ref), Path: path}
}

// Library looks up a libref.
func (e *Environment) Library(ref string) (*Library, bool) {
	l, ok := e.libraries[strings.ToLower(ref)]
	return l, ok
}

// SetOption stores a name/value option (spec.md §4.5/§6). Unknown option
// names are stored but have no effect, per §6.
func (e *Environment) SetOption(name, value string) {
	e.options[strings.ToLower(name)] = value
}

// Option retrieves an option value.
func (e *Environment) Option(name string) (string, bool) {
	v, ok := e.options[strings.ToLower(name)]
	return v, ok
}

// LineSize returns the LINESIZE option as an integer, defaulting to 120.
func (e *Environment) LineSize() int {
	return e.intOption("linesize", 120)
}

// PageSize returns the PAGESIZE option as an integer, defaulting to 60.
func (e *Environment) PageSize() int {
	return e.intOption("pagesize", 60)
}

func (e *Environment) intOption(name string, fallback int) int {
	v, ok := e.options[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// SetTitle / Title manage the current report title (spec.md §3).
func (e *Environment) SetTitle(t string) { e.title = t }
func (e *Environment) Title() string     { return e.title }

// SetFootnote / Footnote manage the current report footnote.
func (e *Environment) SetFootnote(f string) { e.footnote = f }
func (e *Environment) Footnote() string     { return e.footnote }

// Dataset looks up a dataset by qualified name ("work.have" or "have",
// which defaults to the work library).
func (e *Environment) Dataset(qualified string) (*Dataset, bool) {
	lib, name := ParseQualifiedName(qualified)
	d, ok := e.datasets[lib+"."+name]
	if ok {
		return d, true
	}
	if lib == "work" {
		return nil, false
	}
	// Not yet loaded into memory: try the persistence contract (spec.md §6).
	if e.loader == nil {
		return nil, false
	}
	if l, exists := e.libraries[lib]; exists {
		if ds, err := e.loader.Load(l.Path, name); err == nil {
			e.datasets[lib+"."+name] = ds
			return ds, true
		}
	}
	return nil, false
}

// PutDataset stores (or replaces) a dataset, monotonic-until-explicit-
// replacement per spec.md §5.
func (e *Environment) PutDataset(d *Dataset) {
	e.datasets[d.Library+"."+d.Name] = d
}

// NewDataset creates and registers an empty dataset for qualified name.
func (e *Environment) NewDataset(qualified string) *Dataset {
	lib, name := ParseQualifiedName(qualified)
	d := &Dataset{Library: lib, Name: name}
	e.datasets[lib+"."+name] = d
	return d
}

// Persist writes a dataset to its library's backing path, when that
// library has a non-empty path and a Saver is configured (spec.md §6
// persistence contract); WORK is persisted only if it was given a path.
func (e *Environment) Persist(d *Dataset) error {
	lib, ok := e.libraries[d.Library]
	if !ok || lib.Path == "" || e.saver == nil {
		return nil
	}
	return e.saver.Save(d, lib.Path)
}
