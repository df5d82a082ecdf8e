package store

import "testing"

func TestNewID_IsID(t *testing.T) {
	t.Parallel()

	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("expected distinct ids; got %q twice", a)
	}
	if !IsID(a) || !IsID(" "+b+" ") {
		t.Fatalf("expected generated ids to be recognised: %q %q", a, b)
	}
	for _, s := range []string{"", "c1", "item-abc", "6d0b2a0e-5b8c-4f5e-8d3e"} {
		if IsID(s) {
			t.Fatalf("IsID(%q) should be false", s)
		}
	}
}
