package service

import (
	"context"
	"strings"
	"time"

	"qlbh/backend/internal/domain"
	"qlbh/backend/internal/store"
	"qlbh/backend/internal/xid"
)

// Service carries the business rules of the catalog, the cart and the sales
// ledger on top of a Repository. Input normalization and validation happen
// here; stock invariants are enforced by the repository itself so each
// mutation stays one uninterrupted unit.
type Service struct {
	repo store.Repository
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	return s.repo.SearchProducts(ctx, query)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price < 0 || req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	product := domain.Product{
		ID:    xid.New(xid.ProductPrefix),
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price < 0 || req.Stock < 0 {
		return domain.Product{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateProduct(ctx, domain.Product{
		ID:    strings.TrimSpace(id),
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, strings.TrimSpace(id))
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return domain.Customer{}, store.ErrValidation
	}

	customer := domain.Customer{
		ID:    xid.New(xid.CustomerPrefix),
		Name:  req.Name,
		Phone: req.Phone,
	}
	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return domain.Customer{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateCustomer(ctx, domain.Customer{
		ID:    strings.TrimSpace(id),
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.repo.DeleteCustomer(ctx, strings.TrimSpace(id))
}

func (s *Service) CartLines(ctx context.Context) ([]domain.CartLine, error) {
	return s.repo.CartLines(ctx)
}

func (s *Service) AddCartLine(ctx context.Context, req domain.CartAddRequest) ([]domain.CartLine, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return nil, store.ErrNotFound
	}
	return s.repo.AddCartLine(ctx, productID, req.Qty)
}

func (s *Service) SetCartLineQty(ctx context.Context, index int, qty int) ([]domain.CartLine, error) {
	return s.repo.SetCartLineQty(ctx, index, qty)
}

func (s *Service) RemoveCartLine(ctx context.Context, index int) ([]domain.CartLine, error) {
	return s.repo.RemoveCartLine(ctx, index)
}

func (s *Service) ClearCart(ctx context.Context) error {
	return s.repo.ClearCart(ctx)
}

func (s *Service) CartTotals(ctx context.Context, discountRate float64, vatRate float64) (domain.Totals, error) {
	lines, err := s.repo.CartLines(ctx)
	if err != nil {
		return domain.Totals{}, err
	}
	dr := domain.ClampRate(discountRate)
	vr := domain.ClampRate(vatRate)
	return domain.ComputeTotals(domain.LinesSubtotal(lines), dr, vr), nil
}

func (s *Service) Rates(ctx context.Context) (domain.Rates, error) {
	return s.repo.Rates(ctx)
}

func (s *Service) SetRates(ctx context.Context, rates domain.Rates) (domain.Rates, error) {
	clamped := domain.Rates{
		DiscountRate: domain.ClampRate(rates.DiscountRate),
		VatRate:      domain.ClampRate(rates.VatRate),
	}
	if err := s.repo.SetRates(ctx, clamped); err != nil {
		return domain.Rates{}, err
	}
	return clamped, nil
}

// Checkout finalizes the current cart into a new invoice for the given
// customer, debiting stock atomically. The repository aborts with
// ErrStockConflict when any line outgrew its product's stock since it was
// added, leaving every collection untouched.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Invoice, error) {
	lines, err := s.repo.CartLines(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(lines) == 0 {
		return domain.Invoice{}, store.ErrEmptyCart
	}

	customer, err := s.repo.GetCustomer(ctx, strings.TrimSpace(req.CustomerID))
	if err != nil {
		return domain.Invoice{}, err
	}

	inv := domain.Invoice{
		ID:           xid.New(xid.InvoicePrefix),
		CreatedAt:    time.Now(),
		Customer:     domain.CustomerRef{ID: customer.ID, Name: customer.Name},
		DiscountRate: domain.ClampRate(req.DiscountRate),
		VatRate:      domain.ClampRate(req.VatRate),
	}

	created, err := s.repo.CheckoutCart(ctx, inv)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *created, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	return s.repo.DeleteInvoice(ctx, strings.TrimSpace(id))
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// Revenue sums invoice totals for the calendar day and calendar month of
// now, in now's location. These are calendar buckets, not rolling windows.
func (s *Service) Revenue(ctx context.Context, now time.Time) (domain.RevenueSummary, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return domain.RevenueSummary{}, err
	}

	var summary domain.RevenueSummary
	for _, inv := range invoices {
		created := inv.CreatedAt.In(now.Location())
		if created.Year() != now.Year() || created.Month() != now.Month() {
			continue
		}
		summary.Month += inv.Total
		if created.Day() == now.Day() {
			summary.Today += inv.Total
		}
	}
	return summary, nil
}
