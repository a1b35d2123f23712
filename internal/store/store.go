package store

import (
	"context"
	"errors"

	"qlbh/backend/internal/domain"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrStockExceeded = errors.New("stock exceeded")
	ErrStockConflict = errors.New("stock changed since the line was added")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrImport        = errors.New("invalid backup file")
)

// Repository owns the product, customer, cart and invoice collections.
// Implementations must treat each method as one uninterrupted unit: a caller
// never observes a partially applied mutation, and a returned error means the
// prior state is untouched.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CartLines(ctx context.Context) ([]domain.CartLine, error)
	AddCartLine(ctx context.Context, productID string, qty int) ([]domain.CartLine, error)
	SetCartLineQty(ctx context.Context, index int, qty int) ([]domain.CartLine, error)
	RemoveCartLine(ctx context.Context, index int) ([]domain.CartLine, error)
	ClearCart(ctx context.Context) error

	Rates(ctx context.Context) (domain.Rates, error)
	SetRates(ctx context.Context, rates domain.Rates) error

	// CheckoutCart turns the current cart into the given invoice skeleton:
	// it revalidates every line against live stock, debits all stocks as one
	// unit, fills in items and totals, appends the invoice and empties the
	// cart. The skeleton carries id, timestamp, customer snapshot and rates.
	CheckoutCart(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)

	Snapshot(ctx context.Context) (*domain.Backup, error)
	ReplaceAll(ctx context.Context, backup domain.Backup) error
}
