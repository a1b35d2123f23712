// Package kv defines the durable key-value capability the state container
// flushes to. Values are JSON documents keyed by logical collection name
// (products, customers, invoices, cart, discountRate, vatRate).
package kv

import "context"

// Store persists one JSON value per key.
//
// Load fills dest from the stored value. A missing key or a value that no
// longer unmarshals leaves dest untouched and returns nil, so callers get
// their fallback (the value dest already holds) instead of an error. Only
// backend failures are returned.
type Store interface {
	Load(ctx context.Context, key string, dest any) error
	Save(ctx context.Context, key string, value any) error
}
