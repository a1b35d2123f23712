package memory

import (
	"context"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Save(ctx, "cart", []string{"a", "b"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out []string
	if err := s.Load(ctx, "cart", &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 2 || out[0] != "a" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestMissingAndCorruptKeysLeaveFallback(t *testing.T) {
	s := New()
	ctx := context.Background()

	value := 42
	if err := s.Load(ctx, "missing", &value); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if value != 42 {
		t.Fatalf("missing key must leave fallback, got %d", value)
	}

	s.Put("broken", []byte("{oops"))
	if err := s.Load(ctx, "broken", &value); err != nil {
		t.Fatalf("load of corrupt key must not error, got %v", err)
	}
	if value != 42 {
		t.Fatalf("corrupt key must leave fallback, got %d", value)
	}
}
