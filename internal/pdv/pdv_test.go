package pdv

import "testing"

func TestDeclareAndSet(t *testing.T) {
	p := New()
	p.Declare("x", TypeNumeric)
	if !p.Has("X") {
		t.Fatalf("Has(X) = false, want true (case-insensitive lookup)")
	}
	if err := p.Set("x", NumCell(42)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, ok := p.Get("X")
	if !ok || got.Num() != 42 {
		t.Fatalf("Get(X) = %v, %v; want 42, true", got, ok)
	}
}

func TestSetUndeclaredFails(t *testing.T) {
	p := New()
	if err := p.Set("y", NumCell(1)); err == nil {
		t.Fatalf("Set on undeclared variable should error")
	}
}

func TestLengthTruncation(t *testing.T) {
	p := New()
	m := p.Declare("name", TypeChar)
	m.Length = 3
	if err := p.Set("name", StrCell("abcdef")); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, _ := p.Get("name")
	if got.Str() != "abc" {
		t.Fatalf("Str() = %q, want truncated %q", got.Str(), "abc")
	}
}

func TestResetRowPreservesRetained(t *testing.T) {
	p := New()
	p.Declare("total", TypeNumeric).Retain = true
	p.Declare("tmp", TypeNumeric)
	p.Set("total", NumCell(10))
	p.Set("tmp", NumCell(5))

	p.ResetRow()

	total, _ := p.Get("total")
	if total.Num() != 10 {
		t.Errorf("retained variable reset to %v, want 10", total.Num())
	}
	tmp, _ := p.Get("tmp")
	if !tmp.IsMissing() {
		t.Errorf("non-retained variable not reset to missing, got %v", tmp)
	}
	if p.N() != 1 {
		t.Errorf("N() = %d, want 1 after first ResetRow", p.N())
	}
}

func TestCellEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Cell
		want bool
	}{
		{"equal numbers", NumCell(1.5), NumCell(1.5), true},
		{"different numbers", NumCell(1), NumCell(2), false},
		{"equal strings", StrCell("abc"), StrCell("abc"), true},
		{"different strings", StrCell("abc"), StrCell("abd"), false},
		{"number vs string", NumCell(1), StrCell("1"), false},
		{"missing vs missing", MissingCell, MissingCell, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
