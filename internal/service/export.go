package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"qlbh/backend/internal/domain"
)

var csvHeader = []string{"id", "createdAt", "customerName", "subtotal", "discount", "vat", "total"}

// ExportInvoicesCSV renders the full ledger as CSV, one row per invoice,
// timestamps in RFC 3339.
func (s *Service) ExportInvoicesCSV(ctx context.Context) ([]byte, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		row := []string{
			inv.ID,
			inv.CreatedAt.Format(time.RFC3339),
			inv.Customer.Name,
			strconv.FormatInt(inv.Subtotal, 10),
			strconv.FormatInt(inv.Discount, 10),
			strconv.FormatInt(inv.Vat, 10),
			strconv.FormatInt(inv.Total, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportBackup captures products, customers and invoices in one document.
// The cart and the rate settings are session state and stay out of it.
func (s *Service) ExportBackup(ctx context.Context) (domain.Backup, error) {
	backup, err := s.repo.Snapshot(ctx)
	if err != nil {
		return domain.Backup{}, err
	}
	return *backup, nil
}
