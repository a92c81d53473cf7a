package repository

import (
	"context"
	"errors"

	"shoe-store/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrSizeNotFound    = errors.New("size not found")
	// ErrUnavailable wraps transient store faults (timeouts, lost
	// connections). Callers may retry; the store never retries itself.
	ErrUnavailable = errors.New("store unavailable")
)

// ProductFilter is the findMany configuration. Zero-valued options impose
// no constraint. Price bounds are inclusive, in cents.
type ProductFilter struct {
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Search        string
}

// CatalogStore holds products with per-size stock counters. Stock mutation
// funnels exclusively through ReserveStock/ReleaseStock/RestockSize, each
// atomic at the granularity of a single (product, size) counter.
type CatalogStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// FindMany returns matching products in stable name order; an empty
	// result is not an error.
	FindMany(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	// ReserveStock atomically checks stock[size] >= quantity and decrements.
	// Returns false without mutating on unknown size or insufficient stock.
	ReserveStock(ctx context.Context, productID, size string, quantity int64) (bool, error)
	// ReleaseStock atomically increments stock[size]. It does not
	// deduplicate; idempotency is the caller's responsibility.
	ReleaseStock(ctx context.Context, productID, size string, quantity int64) error
	// RestockSize adjusts a size counter by delta, adding the size if the
	// product does not carry it yet. Restock surface for admin tooling.
	RestockSize(ctx context.Context, productID, size string, delta int64) error
}

// OrderStore persists orders. Orders are never deleted; cancellation is a
// status, not a removal.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Order, error)
	// UpdateStatus moves the order to the target status only if its current
	// status is one of from, in a single conditional write. Returns whether
	// the transition fired.
	UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus) (bool, error)
	// SetReleasedItems persists cancellation release progress.
	SetReleasedItems(ctx context.Context, id string, count int) error
}
