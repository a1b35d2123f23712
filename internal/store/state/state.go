// Package state holds the single owned state container behind the
// store.Repository interface: plain in-memory collections whose every
// mutation is flushed to a kv backend, so a restart resumes exactly where the
// previous session left off, in-progress cart included.
package state

import (
	"context"
	"log"
	"strings"
	"sync"

	"qlbh/backend/internal/domain"
	"qlbh/backend/internal/kv"
	"qlbh/backend/internal/store"
)

const (
	keyProducts     = "products"
	keyCustomers    = "customers"
	keyInvoices     = "invoices"
	keyCart         = "cart"
	keyDiscountRate = "discountRate"
	keyVatRate      = "vatRate"
)

type Store struct {
	mu           sync.RWMutex
	kv           kv.Store
	products     []domain.Product
	customers    []domain.Customer
	invoices     []domain.Invoice
	cart         []domain.CartLine
	discountRate float64
	vatRate      float64
}

// Open loads every collection from the kv backend. Missing or corrupt keys
// fall back to empty collections and zero rates.
func Open(ctx context.Context, kvs kv.Store) (*Store, error) {
	s := &Store{kv: kvs}
	if err := kvs.Load(ctx, keyProducts, &s.products); err != nil {
		return nil, err
	}
	if err := kvs.Load(ctx, keyCustomers, &s.customers); err != nil {
		return nil, err
	}
	if err := kvs.Load(ctx, keyInvoices, &s.invoices); err != nil {
		return nil, err
	}
	if err := kvs.Load(ctx, keyCart, &s.cart); err != nil {
		return nil, err
	}
	if err := kvs.Load(ctx, keyDiscountRate, &s.discountRate); err != nil {
		return nil, err
	}
	if err := kvs.Load(ctx, keyVatRate, &s.vatRate); err != nil {
		return nil, err
	}
	return s, nil
}

// persist flushes one collection. Writes are best-effort: a failed flush is
// logged and the in-memory mutation stands.
func (s *Store) persist(ctx context.Context, key string, value any) {
	if err := s.kv.Save(ctx, key, value); err != nil {
		log.Printf("[state] WARN: persist %s: %v", key, err)
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.products), nil
}

func (s *Store) SearchProducts(_ context.Context, query string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cloneSlice(s.products), nil
	}

	matched := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.ID), q) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexOfProduct(s.products, id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	p := s.products[idx]
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrValidation
	}
	if indexOfProduct(s.products, product.ID) >= 0 {
		return nil, store.ErrValidation
	}

	s.products = append(s.products, product)
	s.persist(ctx, keyProducts, s.products)
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Price < 0 || product.Stock < 0 {
		return nil, store.ErrValidation
	}
	idx := indexOfProduct(s.products, product.ID)
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	s.products[idx] = product
	s.persist(ctx, keyProducts, s.products)
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfProduct(s.products, id)
	if idx < 0 {
		return store.ErrNotFound
	}

	s.products = append(s.products[:idx], s.products[idx+1:]...)
	s.persist(ctx, keyProducts, s.products)
	return nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.customers), nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := indexOfCustomer(s.customers, id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	c := s.customers[idx]
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" || customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}
	if indexOfCustomer(s.customers, customer.ID) >= 0 {
		return nil, store.ErrValidation
	}

	s.customers = append(s.customers, customer)
	s.persist(ctx, keyCustomers, s.customers)
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}
	idx := indexOfCustomer(s.customers, customer.ID)
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	s.customers[idx] = customer
	s.persist(ctx, keyCustomers, s.customers)
	updated := customer
	return &updated, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfCustomer(s.customers, id)
	if idx < 0 {
		return store.ErrNotFound
	}

	s.customers = append(s.customers[:idx], s.customers[idx+1:]...)
	s.persist(ctx, keyCustomers, s.customers)
	return nil
}

func (s *Store) CartLines(_ context.Context) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.cart), nil
}

func (s *Store) AddCartLine(ctx context.Context, productID string, qty int) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 1 {
		qty = 1
	}
	pIdx := indexOfProduct(s.products, productID)
	if pIdx < 0 {
		return nil, store.ErrNotFound
	}
	product := s.products[pIdx]

	lineIdx := -1
	for i, line := range s.cart {
		if line.ID == productID {
			lineIdx = i
			break
		}
	}

	wanted := qty
	if lineIdx >= 0 {
		wanted += s.cart[lineIdx].Qty
	}
	if wanted > product.Stock {
		return nil, store.ErrStockExceeded
	}

	if lineIdx >= 0 {
		s.cart[lineIdx].Qty = wanted
	} else {
		// Snapshot name and price now; later catalog edits must not touch
		// this line.
		s.cart = append(s.cart, domain.CartLine{
			ID:    product.ID,
			Name:  product.Name,
			Price: product.Price,
			Qty:   qty,
		})
	}

	s.persist(ctx, keyCart, s.cart)
	return cloneSlice(s.cart), nil
}

func (s *Store) SetCartLineQty(ctx context.Context, index int, qty int) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.cart) {
		return nil, store.ErrNotFound
	}
	if qty < 1 {
		qty = 1
	}

	// Check against live stock, not the snapshot. A line whose product was
	// deleted has no stock left to guard, so any quantity stands.
	if pIdx := indexOfProduct(s.products, s.cart[index].ID); pIdx >= 0 {
		if qty > s.products[pIdx].Stock {
			return nil, store.ErrStockExceeded
		}
	}

	s.cart[index].Qty = qty
	s.persist(ctx, keyCart, s.cart)
	return cloneSlice(s.cart), nil
}

func (s *Store) RemoveCartLine(ctx context.Context, index int) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.cart) {
		return nil, store.ErrNotFound
	}

	s.cart = append(s.cart[:index], s.cart[index+1:]...)
	s.persist(ctx, keyCart, s.cart)
	return cloneSlice(s.cart), nil
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	s.persist(ctx, keyCart, []domain.CartLine{})
	return nil
}

func (s *Store) Rates(_ context.Context) (domain.Rates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Rates{DiscountRate: s.discountRate, VatRate: s.vatRate}, nil
}

func (s *Store) SetRates(ctx context.Context, rates domain.Rates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discountRate = domain.ClampRate(rates.DiscountRate)
	s.vatRate = domain.ClampRate(rates.VatRate)
	s.persist(ctx, keyDiscountRate, s.discountRate)
	s.persist(ctx, keyVatRate, s.vatRate)
	return nil
}

func (s *Store) CheckoutCart(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil, store.ErrEmptyCart
	}

	// Revalidate every line against live stock before touching anything, so
	// either all debits happen or none do. A line whose product was deleted
	// since add-time is still invoiced but has nothing left to debit.
	for _, line := range s.cart {
		pIdx := indexOfProduct(s.products, line.ID)
		if pIdx < 0 {
			continue
		}
		if line.Qty > s.products[pIdx].Stock {
			return nil, store.ErrStockConflict
		}
	}

	for _, line := range s.cart {
		if pIdx := indexOfProduct(s.products, line.ID); pIdx >= 0 {
			s.products[pIdx].Stock -= line.Qty
		}
	}
	s.persist(ctx, keyProducts, s.products)

	items := make([]domain.InvoiceItem, 0, len(s.cart))
	for _, line := range s.cart {
		items = append(items, domain.InvoiceItem{
			ID:    line.ID,
			Name:  line.Name,
			Price: line.Price,
			Qty:   line.Qty,
		})
	}
	totals := domain.ComputeTotals(domain.LinesSubtotal(s.cart), inv.DiscountRate, inv.VatRate)

	inv.Items = items
	inv.Subtotal = totals.Subtotal
	inv.Discount = totals.Discount
	inv.Vat = totals.Vat
	inv.Total = totals.Total

	s.invoices = append(s.invoices, inv)
	s.persist(ctx, keyInvoices, s.invoices)

	s.cart = nil
	s.persist(ctx, keyCart, []domain.CartLine{})

	created := cloneInvoice(inv)
	return &created, nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, inv := range s.invoices {
		if inv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}

	// Exact inverse of the checkout debit. Products deleted since the sale
	// have nothing to restore, so their credit is skipped.
	for _, item := range s.invoices[idx].Items {
		if pIdx := indexOfProduct(s.products, item.ID); pIdx >= 0 {
			s.products[pIdx].Stock += item.Qty
		}
	}
	s.persist(ctx, keyProducts, s.products)

	s.invoices = append(s.invoices[:idx], s.invoices[idx+1:]...)
	s.persist(ctx, keyInvoices, s.invoices)
	return nil
}

func (s *Store) ListInvoices(_ context.Context) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		invoices = append(invoices, cloneInvoice(inv))
	}
	return invoices, nil
}

func (s *Store) Snapshot(_ context.Context) (*domain.Backup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	backup := domain.Backup{
		Products:  cloneSlice(s.products),
		Customers: cloneSlice(s.customers),
		Invoices:  make([]domain.Invoice, 0, len(s.invoices)),
	}
	for _, inv := range s.invoices {
		backup.Invoices = append(backup.Invoices, cloneInvoice(inv))
	}
	return &backup, nil
}

func (s *Store) ReplaceAll(ctx context.Context, backup domain.Backup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = cloneSlice(backup.Products)
	s.customers = cloneSlice(backup.Customers)
	s.invoices = make([]domain.Invoice, 0, len(backup.Invoices))
	for _, inv := range backup.Invoices {
		s.invoices = append(s.invoices, cloneInvoice(inv))
	}

	s.persist(ctx, keyProducts, s.products)
	s.persist(ctx, keyCustomers, s.customers)
	s.persist(ctx, keyInvoices, s.invoices)
	return nil
}

func indexOfProduct(products []domain.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfCustomer(customers []domain.Customer, id string) int {
	for i, c := range customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneSlice[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	out := inv
	out.Items = make([]domain.InvoiceItem, len(inv.Items))
	copy(out.Items, inv.Items)
	return out
}
