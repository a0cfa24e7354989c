package ident

// Map is a case-insensitive, insertion-ordered map keyed by identifier.
// Keys are normalized with Normalize for storage and lookup, but the
// original-case spelling of each key is preserved for display purposes.
// This mirrors how the PDV and Data Environment need to look up a
// variable or dataset by its canonical name while still reporting the
// user's original casing in logs and listings.
type Map[V any] struct {
	values   map[string]V
	original map[string]string
	order    []string
}

// NewMap creates an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{
		values:   make(map[string]V),
		original: make(map[string]string),
	}
}

// Get retrieves the value stored under name, ignoring case.
func (m *Map[V]) Get(name string) (V, bool) {
	v, ok := m.values[Normalize(name)]
	return v, ok
}

// Has reports whether name is present, ignoring case.
func (m *Map[V]) Has(name string) bool {
	_, ok := m.values[Normalize(name)]
	return ok
}

// Set stores val under name. The first spelling used for a given
// normalized key is the one retained for OriginalCase.
func (m *Map[V]) Set(name string, val V) {
	key := Normalize(name)
	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
		m.original[key] = name
	}
	m.values[key] = val
}

// Delete removes name from the map, ignoring case. Reports whether
// anything was removed.
func (m *Map[V]) Delete(name string) bool {
	key := Normalize(name)
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	delete(m.original, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// OriginalCase returns the first-seen spelling of name, or name itself
// if it was never stored.
func (m *Map[V]) OriginalCase(name string) string {
	if orig, ok := m.original[Normalize(name)]; ok {
		return orig
	}
	return name
}

// Keys returns the normalized keys in insertion order.
func (m *Map[V]) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	return len(m.order)
}

// Range calls f for each entry in insertion order, using the original-case
// spelling of each key. Iteration stops early if f returns false.
func (m *Map[V]) Range(f func(name string, val V) bool) {
	for _, key := range m.order {
		if !f(m.original[key], m.values[key]) {
			return
		}
	}
}
