package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"qlbh/backend/internal/domain"
	kvmemory "qlbh/backend/internal/kv/memory"
	"qlbh/backend/internal/store"
	"qlbh/backend/internal/store/state"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := state.Open(context.Background(), kvmemory.New())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	return New(repo)
}

func mustProduct(t *testing.T, svc *Service, name string, price int64, stock int) domain.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{Name: name, Price: price, Stock: stock})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func mustCustomer(t *testing.T, svc *Service, name string, phone string) domain.Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: name, Phone: phone})
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func TestCreateProductAssignsPrefixedID(t *testing.T) {
	svc := newTestService(t)

	p := mustProduct(t, svc, "  Green tea  ", 12000, 40)
	if !strings.HasPrefix(p.ID, "SP") {
		t.Fatalf("expected SP id, got %s", p.ID)
	}
	if p.Name != "Green tea" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []domain.ProductCreateRequest{
		{Name: "   ", Price: 1, Stock: 1},
		{Name: "x", Price: -1, Stock: 1},
		{Name: "x", Price: 1, Stock: -1},
	}
	for _, req := range cases {
		if _, err := svc.CreateProduct(ctx, req); !errors.Is(err, store.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestUpdateUnknownIDsAreNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateProduct(ctx, "SP404", domain.ProductUpdateRequest{Name: "x", Price: 1, Stock: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for product update, got %v", err)
	}
	if _, err := svc.UpdateCustomer(ctx, "KH404", domain.CustomerUpdateRequest{Name: "x", Phone: "1"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for customer update, got %v", err)
	}
	if err := svc.DeleteCustomer(ctx, "KH404"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for customer delete, got %v", err)
	}
	if err := svc.DeleteInvoice(ctx, "HD404"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for invoice delete, got %v", err)
	}
}

func TestCustomerValidation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: "An", Phone: "  "}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for blank phone, got %v", err)
	}
}

func TestCartTotalsClampRates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustProduct(t, svc, "Tea", 100000, 10)
	if _, err := svc.AddCartLine(ctx, domain.CartAddRequest{ProductID: p.ID, Qty: 1}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	totals, err := svc.CartTotals(ctx, 150, -10)
	if err != nil {
		t.Fatalf("totals failed: %v", err)
	}
	if totals.Discount != 100000 || totals.Vat != 0 || totals.Total != 0 {
		t.Fatalf("expected clamped rates 100/0, got %+v", totals)
	}
}

func TestCheckoutFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustProduct(t, svc, "Tea", 100000, 10)
	c := mustCustomer(t, svc, "An", "0901234567")

	if _, err := svc.AddCartLine(ctx, domain.CartAddRequest{ProductID: p.ID, Qty: 1}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}

	inv, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerID: c.ID, DiscountRate: 10, VatRate: 8})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if !strings.HasPrefix(inv.ID, "HD") {
		t.Fatalf("expected HD invoice id, got %s", inv.ID)
	}
	if inv.Customer.ID != c.ID || inv.Customer.Name != "An" {
		t.Fatalf("expected customer snapshot, got %+v", inv.Customer)
	}
	if inv.Subtotal != 100000 || inv.Discount != 10000 || inv.Vat != 7200 || inv.Total != 97200 {
		t.Fatalf("unexpected totals: %+v", inv)
	}

	lines, _ := svc.CartLines(ctx)
	if len(lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d lines", len(lines))
	}
}

func TestCheckoutRequiresCustomerAndCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerID: "KH404"}); !errors.Is(err, store.ErrEmptyCart) {
		t.Fatalf("expected empty cart error first, got %v", err)
	}

	p := mustProduct(t, svc, "Tea", 1000, 10)
	if _, err := svc.AddCartLine(ctx, domain.CartAddRequest{ProductID: p.ID, Qty: 1}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerID: "KH404"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}
}

func TestSetRatesClampsAndPersists(t *testing.T) {
	svc := newTestService(t)

	rates, err := svc.SetRates(context.Background(), domain.Rates{DiscountRate: 120, VatRate: -3})
	if err != nil {
		t.Fatalf("set rates failed: %v", err)
	}
	if rates.DiscountRate != 100 || rates.VatRate != 0 {
		t.Fatalf("expected clamped rates, got %+v", rates)
	}

	loaded, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("rates failed: %v", err)
	}
	if loaded != rates {
		t.Fatalf("expected stored rates %+v, got %+v", rates, loaded)
	}
}

func seedInvoices(t *testing.T, svc *Service, now time.Time) {
	t.Helper()
	err := svc.repo.ReplaceAll(context.Background(), domain.Backup{
		Products:  []domain.Product{},
		Customers: []domain.Customer{},
		Invoices: []domain.Invoice{
			{ID: "HD1", CreatedAt: now.Add(-2 * time.Hour), Items: []domain.InvoiceItem{}, Total: 100},
			{ID: "HD2", CreatedAt: now.AddDate(0, 0, -3), Items: []domain.InvoiceItem{}, Total: 40},
			{ID: "HD3", CreatedAt: now.AddDate(0, -2, 0), Items: []domain.InvoiceItem{}, Total: 9},
		},
	})
	if err != nil {
		t.Fatalf("seed invoices: %v", err)
	}
}

func TestRevenueBucketsByCalendar(t *testing.T) {
	svc := newTestService(t)
	// Mid-month noon keeps the relative offsets inside the expected buckets.
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.Local)
	seedInvoices(t, svc, now)

	summary, err := svc.Revenue(context.Background(), now)
	if err != nil {
		t.Fatalf("revenue failed: %v", err)
	}
	if summary.Today != 100 {
		t.Fatalf("expected today 100, got %d", summary.Today)
	}
	if summary.Month != 140 {
		t.Fatalf("expected month 140, got %d", summary.Month)
	}
}

func TestExportInvoicesCSV(t *testing.T) {
	svc := newTestService(t)
	createdAt := time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)
	err := svc.repo.ReplaceAll(context.Background(), domain.Backup{
		Products:  []domain.Product{},
		Customers: []domain.Customer{},
		Invoices: []domain.Invoice{
			{
				ID:        "HD1",
				CreatedAt: createdAt,
				Customer:  domain.CustomerRef{ID: "KH1", Name: "An"},
				Items:     []domain.InvoiceItem{},
				Subtotal:  100000,
				Discount:  10000,
				Vat:       7200,
				Total:     97200,
			},
		},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	data, err := svc.ExportInvoicesCSV(context.Background())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "id,createdAt,customerName,subtotal,discount,vat,total" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "HD1,2026-03-15T09:30:00Z,An,100000,10000,7200,97200" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestImportBackupRejectsMalformedDocuments(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []string{
		`not json`,
		`[]`,
		`{"products": [], "customers": []}`,
		`{"products": [{"id": "SP1"}], "customers": [], "invoices": []}`,
		`{"products": [{"id": "SP1", "name": "Tea", "price": -5, "stock": 1}], "customers": [], "invoices": []}`,
		`{"products": [], "customers": [], "invoices": [{"id": "HD1"}]}`,
	}
	for _, raw := range cases {
		if err := svc.ImportBackup(ctx, []byte(raw)); !errors.Is(err, store.ErrImport) {
			t.Fatalf("expected import error for %s, got %v", raw, err)
		}
	}

	// A rejected import must leave existing data alone.
	mustProduct(t, svc, "Tea", 1000, 5)
	if err := svc.ImportBackup(ctx, []byte(`not json`)); !errors.Is(err, store.ErrImport) {
		t.Fatalf("expected import error, got %v", err)
	}
	products, _ := svc.SearchProducts(ctx, "")
	if len(products) != 1 {
		t.Fatalf("rejected import must not touch data, got %d products", len(products))
	}
}

func TestBackupRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p := mustProduct(t, svc, "Tea", 100000, 10)
	c := mustCustomer(t, svc, "An", "0901234567")
	if _, err := svc.AddCartLine(ctx, domain.CartAddRequest{ProductID: p.ID, Qty: 2}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := svc.Checkout(ctx, domain.CheckoutRequest{CustomerID: c.ID}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	backup, err := svc.ExportBackup(ctx)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	other := newTestService(t)
	raw, err := json.Marshal(backup)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := other.ImportBackup(ctx, raw); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	restored, err := other.ExportBackup(ctx)
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if len(restored.Products) != 1 || restored.Products[0].Stock != 8 {
		t.Fatalf("expected debited product restored, got %+v", restored.Products)
	}
	if len(restored.Invoices) != 1 || restored.Invoices[0].Total != 200000 {
		t.Fatalf("expected invoice restored, got %+v", restored.Invoices)
	}
}
