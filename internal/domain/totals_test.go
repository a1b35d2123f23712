package domain

import "testing"

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(100000, 10, 8)

	if totals.Subtotal != 100000 {
		t.Fatalf("expected subtotal 100000, got %d", totals.Subtotal)
	}
	if totals.Discount != 10000 {
		t.Fatalf("expected discount 10000, got %d", totals.Discount)
	}
	if totals.Vat != 7200 {
		t.Fatalf("expected vat 7200, got %d", totals.Vat)
	}
	if totals.Total != 97200 {
		t.Fatalf("expected total 97200, got %d", totals.Total)
	}
}

func TestComputeTotalsRoundsEachFieldIndependently(t *testing.T) {
	// 333 * 7.5% = 24.975 rounds to 25; vat on 308 at 7.5% = 23.1 rounds to 23.
	totals := ComputeTotals(333, 7.5, 7.5)

	if totals.Discount != 25 {
		t.Fatalf("expected discount 25, got %d", totals.Discount)
	}
	if totals.Vat != 23 {
		t.Fatalf("expected vat 23, got %d", totals.Vat)
	}
	if totals.Total != 333-25+23 {
		t.Fatalf("expected total %d, got %d", 333-25+23, totals.Total)
	}
}

func TestComputeTotalsZeroRates(t *testing.T) {
	totals := ComputeTotals(5000, 0, 0)
	if totals.Discount != 0 || totals.Vat != 0 || totals.Total != 5000 {
		t.Fatalf("expected untouched total, got %+v", totals)
	}
}

func TestClampRate(t *testing.T) {
	if got := ClampRate(-5); got != 0 {
		t.Fatalf("expected -5 to clamp to 0, got %v", got)
	}
	if got := ClampRate(150); got != 100 {
		t.Fatalf("expected 150 to clamp to 100, got %v", got)
	}
	if got := ClampRate(12.5); got != 12.5 {
		t.Fatalf("expected 12.5 to pass through, got %v", got)
	}
}

func TestLinesSubtotal(t *testing.T) {
	lines := []CartLine{
		{ID: "SP1", Price: 12000, Qty: 3},
		{ID: "SP2", Price: 500, Qty: 2},
	}
	if got := LinesSubtotal(lines); got != 37000 {
		t.Fatalf("expected subtotal 37000, got %d", got)
	}
	if got := LinesSubtotal(nil); got != 0 {
		t.Fatalf("expected empty subtotal 0, got %d", got)
	}
}
