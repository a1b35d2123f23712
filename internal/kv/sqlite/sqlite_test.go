package sqlite

import (
	"context"
	"testing"

	"qlbh/backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []domain.Product{{ID: "SP1", Name: "Tea", Price: 1000, Stock: 5}}
	if err := s.Save(ctx, "products", in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out []domain.Product
	if err := s.Load(ctx, "products", &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "SP1" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "discountRate", 10.0); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(ctx, "discountRate", 15.0); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	var rate float64
	if err := s.Load(ctx, "discountRate", &rate); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rate != 15.0 {
		t.Fatalf("expected overwritten value 15, got %v", rate)
	}
}

func TestLoadMissingKeyLeavesFallback(t *testing.T) {
	s := newTestStore(t)

	rate := 7.5
	if err := s.Load(context.Background(), "vatRate", &rate); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rate != 7.5 {
		t.Fatalf("missing key must leave fallback, got %v", rate)
	}
}
