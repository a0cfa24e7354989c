package env

// Library is a (libref -> filesystem path) binding with process lifetime,
// assigned by LIBNAME statements (spec.md §3).
type Library struct {
	Ref  string // libref, lowercased
	Path string
}
