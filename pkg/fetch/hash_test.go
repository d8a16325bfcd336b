package fetch

import "testing"

func TestContentHashIsStableAndDistinguishing(t *testing.T) {
	a := ContentHash("hello world")
	b := ContentHash("hello world")
	c := ContentHash("hello WORLD")

	if a != b {
		t.Fatalf("expected stable hash, got %q and %q", a, b)
	}
	if a == c {
		t.Fatalf("expected distinct content to hash differently")
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %d (%q)", len(a), a)
	}
}
