package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("QLBH_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set QLBH_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, databaseURL)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	key := fmt.Sprintf("it-roundtrip-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE key = $1`, key)
	})

	if err := s.Save(ctx, key, map[string]int{"qty": 3}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, key, map[string]int{"qty": 5}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	var out map[string]int
	if err := s.Load(ctx, key, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out["qty"] != 5 {
		t.Fatalf("expected overwritten value 5, got %d", out["qty"])
	}

	missing := 42
	if err := s.Load(ctx, key+"-missing", &missing); err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if missing != 42 {
		t.Fatalf("missing key must leave fallback, got %d", missing)
	}
}
