package domain

import "time"

// Product is a catalog record. Price is a whole currency amount (no minor
// unit) and Stock is the live on-hand quantity mutated by checkout and
// invoice deletion.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CartLine is one pending sale line. ID refers to the product; Name and Price
// are snapshots taken when the line was added and do not follow later catalog
// edits.
type CartLine struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

// CustomerRef is the customer snapshot embedded in an invoice.
type CustomerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InvoiceItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Qty   int    `json:"qty"`
}

// Invoice is an immutable checkout snapshot. It holds value copies of the
// customer and the cart lines, never live references, so historical invoices
// stay accurate when the catalog changes afterwards.
type Invoice struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"createdAt"`
	Customer     CustomerRef   `json:"customer"`
	Items        []InvoiceItem `json:"items"`
	Subtotal     int64         `json:"subtotal"`
	DiscountRate float64       `json:"discountRate"`
	VatRate      float64       `json:"vatRate"`
	Discount     int64         `json:"discount"`
	Vat          int64         `json:"vat"`
	Total        int64         `json:"total"`
}

type ProductCreateRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// ProductUpdateRequest overwrites all mutable fields of the product.
type ProductUpdateRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CustomerUpdateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CartAddRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type CartQtyRequest struct {
	Qty int `json:"qty"`
}

type CheckoutRequest struct {
	CustomerID   string  `json:"customerId"`
	DiscountRate float64 `json:"discountRate"`
	VatRate      float64 `json:"vatRate"`
}

type Rates struct {
	DiscountRate float64 `json:"discountRate"`
	VatRate      float64 `json:"vatRate"`
}

type RevenueSummary struct {
	Today int64 `json:"today"`
	Month int64 `json:"month"`
}

// Backup is the full JSON export/import payload.
type Backup struct {
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
	Invoices  []Invoice  `json:"invoices"`
}
