// Package ident provides case-insensitive identifier comparison helpers.
//
// SAS identifiers (variable names, dataset names, librefs, procedure
// names) are case-insensitive but the interpreter still needs to recover
// the user's original spelling for log messages and listing headers. The
// helpers here normalize to uppercase for lookup while leaving the caller
// free to keep the original-case string alongside it.
package ident

import "strings"

// Normalize returns the canonical form of an identifier used as a map key.
// SAS canonicalizes to uppercase (unlike DWScript's lowercase), since that
// is what PROC CONTENTS and error messages display.
func Normalize(s string) string {
	return strings.ToUpper(s)
}

// Equal reports whether two identifiers are equal, ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Compare performs a case-insensitive ordering comparison, returning a
// negative, zero, or positive value like strings.Compare.
func Compare(a, b string) int {
	return strings.Compare(Normalize(a), Normalize(b))
}

// Contains reports whether name appears in list, ignoring case.
func Contains(list []string, name string) bool {
	return Index(list, name) >= 0
}

// Index returns the first index of name in list, ignoring case, or -1.
func Index(list []string, name string) int {
	for i, v := range list {
		if Equal(v, name) {
			return i
		}
	}
	return -1
}

// IsKeyword reports whether name matches any of the given keywords,
// ignoring case.
func IsKeyword(name string, keywords ...string) bool {
	return Contains(keywords, name)
}
