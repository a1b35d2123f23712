package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"qlbh/backend/internal/domain"
	"qlbh/backend/internal/store"
)

// The import shapes use pointers so a missing field is distinguishable
// from a zero value. A backup that fails any check is rejected wholesale;
// nothing is replaced on error.

type backupFile struct {
	Products  *[]productRecord  `json:"products"`
	Customers *[]customerRecord `json:"customers"`
	Invoices  *[]invoiceRecord  `json:"invoices"`
}

type productRecord struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Price *int64  `json:"price"`
	Stock *int    `json:"stock"`
}

type customerRecord struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type invoiceRecord struct {
	ID           *string             `json:"id"`
	CreatedAt    *time.Time          `json:"createdAt"`
	Customer     *domain.CustomerRef `json:"customer"`
	Items        *[]itemRecord       `json:"items"`
	Subtotal     *int64              `json:"subtotal"`
	DiscountRate *float64            `json:"discountRate"`
	VatRate      *float64            `json:"vatRate"`
	Discount     *int64              `json:"discount"`
	Vat          *int64              `json:"vat"`
	Total        *int64              `json:"total"`
}

type itemRecord struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Price *int64  `json:"price"`
	Qty   *int    `json:"qty"`
}

// ImportBackup validates an uploaded backup document and replaces the
// catalog and the ledger with its contents.
func (s *Service) ImportBackup(ctx context.Context, raw []byte) error {
	var file backupFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%w: not a json object", store.ErrImport)
	}
	if file.Products == nil || file.Customers == nil || file.Invoices == nil {
		return fmt.Errorf("%w: products, customers and invoices must all be arrays", store.ErrImport)
	}

	backup := domain.Backup{
		Products:  make([]domain.Product, 0, len(*file.Products)),
		Customers: make([]domain.Customer, 0, len(*file.Customers)),
		Invoices:  make([]domain.Invoice, 0, len(*file.Invoices)),
	}

	for i, rec := range *file.Products {
		p, err := rec.toDomain()
		if err != nil {
			return fmt.Errorf("%w: products[%d]: %v", store.ErrImport, i, err)
		}
		backup.Products = append(backup.Products, p)
	}
	for i, rec := range *file.Customers {
		c, err := rec.toDomain()
		if err != nil {
			return fmt.Errorf("%w: customers[%d]: %v", store.ErrImport, i, err)
		}
		backup.Customers = append(backup.Customers, c)
	}
	for i, rec := range *file.Invoices {
		inv, err := rec.toDomain()
		if err != nil {
			return fmt.Errorf("%w: invoices[%d]: %v", store.ErrImport, i, err)
		}
		backup.Invoices = append(backup.Invoices, inv)
	}

	return s.repo.ReplaceAll(ctx, backup)
}

func (r productRecord) toDomain() (domain.Product, error) {
	if r.ID == nil || *r.ID == "" || r.Name == nil || *r.Name == "" {
		return domain.Product{}, fmt.Errorf("missing id or name")
	}
	if r.Price == nil || *r.Price < 0 {
		return domain.Product{}, fmt.Errorf("price must be a non-negative number")
	}
	if r.Stock == nil || *r.Stock < 0 {
		return domain.Product{}, fmt.Errorf("stock must be a non-negative number")
	}
	return domain.Product{ID: *r.ID, Name: *r.Name, Price: *r.Price, Stock: *r.Stock}, nil
}

func (r customerRecord) toDomain() (domain.Customer, error) {
	if r.ID == nil || *r.ID == "" || r.Name == nil || *r.Name == "" {
		return domain.Customer{}, fmt.Errorf("missing id or name")
	}
	if r.Phone == nil {
		return domain.Customer{}, fmt.Errorf("missing phone")
	}
	return domain.Customer{ID: *r.ID, Name: *r.Name, Phone: *r.Phone}, nil
}

func (r invoiceRecord) toDomain() (domain.Invoice, error) {
	if r.ID == nil || *r.ID == "" {
		return domain.Invoice{}, fmt.Errorf("missing id")
	}
	if r.CreatedAt == nil {
		return domain.Invoice{}, fmt.Errorf("missing createdAt")
	}
	if r.Customer == nil || r.Customer.ID == "" {
		return domain.Invoice{}, fmt.Errorf("missing customer")
	}
	if r.Items == nil {
		return domain.Invoice{}, fmt.Errorf("items must be an array")
	}
	if r.Subtotal == nil || r.Discount == nil || r.Vat == nil || r.Total == nil {
		return domain.Invoice{}, fmt.Errorf("missing totals")
	}
	if r.DiscountRate == nil || r.VatRate == nil {
		return domain.Invoice{}, fmt.Errorf("missing rates")
	}

	items := make([]domain.InvoiceItem, 0, len(*r.Items))
	for i, it := range *r.Items {
		if it.ID == nil || *it.ID == "" || it.Name == nil || *it.Name == "" {
			return domain.Invoice{}, fmt.Errorf("items[%d]: missing id or name", i)
		}
		if it.Price == nil || *it.Price < 0 {
			return domain.Invoice{}, fmt.Errorf("items[%d]: price must be a non-negative number", i)
		}
		if it.Qty == nil || *it.Qty < 1 {
			return domain.Invoice{}, fmt.Errorf("items[%d]: qty must be at least 1", i)
		}
		items = append(items, domain.InvoiceItem{ID: *it.ID, Name: *it.Name, Price: *it.Price, Qty: *it.Qty})
	}

	return domain.Invoice{
		ID:           *r.ID,
		CreatedAt:    *r.CreatedAt,
		Customer:     *r.Customer,
		Items:        items,
		Subtotal:     *r.Subtotal,
		DiscountRate: *r.DiscountRate,
		VatRate:      *r.VatRate,
		Discount:     *r.Discount,
		Vat:          *r.Vat,
		Total:        *r.Total,
	}, nil
}
