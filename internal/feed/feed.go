// Package feed serves a read-only, paginated view over a transaction
// history. The dataset is fixed at startup; every request filters and
// pages the same slice, so results are cacheable by query.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Transaction is one feed row. Time is a display string, minute precision,
// already rendered server-side.
type Transaction struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	Code   string `json:"code"`
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Query is the full filter and paging surface of the feed endpoint.
// Zero values mean "no filter" and default paging.
type Query struct {
	Q        string
	Status   string
	Type     string
	Page     int
	PageSize int
}

type Page struct {
	Items      []Transaction `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Filter applies the q, status and type predicates, ANDed together.
// q matches case-insensitively against code and note.
func Filter(transactions []Transaction, q Query) []Transaction {
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	status := strings.TrimSpace(q.Status)
	kind := strings.TrimSpace(q.Type)

	out := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if needle != "" &&
			!strings.Contains(strings.ToLower(tx.Code), needle) &&
			!strings.Contains(strings.ToLower(tx.Note), needle) {
			continue
		}
		if status != "" && tx.Status != status {
			continue
		}
		if kind != "" && tx.Type != kind {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Paginate slices one page out of the filtered set. Page numbers below 1
// become 1 and the page size is clamped to [1, 100]. A page past the end
// yields an empty item list, never an error.
func Paginate(transactions []Transaction, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total := len(transactions)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Items:      transactions[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Service binds the fixed dataset to a page cache.
type Service struct {
	transactions []Transaction
	cache        Cache
	ttl          time.Duration
}

func NewService(transactions []Transaction, cache Cache, ttl time.Duration) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{transactions: transactions, cache: cache, ttl: ttl}
}

// Search returns one page of the feed for the given query, consulting the
// cache first. Cache failures are non-fatal; the page is always computed.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	key := cacheKey(q)
	if page, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return *page, nil
	}

	page := Paginate(Filter(s.transactions, q), q.Page, q.PageSize)
	_ = s.cache.Set(ctx, key, &page, s.ttl)
	return page, nil
}

func cacheKey(q Query) string {
	return fmt.Sprintf("feed:q=%s|status=%s|type=%s|page=%d|size=%d",
		strings.ToLower(strings.TrimSpace(q.Q)), q.Status, q.Type, q.Page, q.PageSize)
}
