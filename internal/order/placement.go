package order

import (
	"context"
	"errors"
	"log"
	"sort"

	"shoe-store/internal/models"
	"shoe-store/internal/repository"
)

// Engine converts a cart into a persisted order while keeping stock
// consistent. The operation is all-or-nothing with respect to stock: any
// failure after partial reservation releases exactly what was reserved.
type Engine struct {
	catalog  repository.CatalogStore
	orders   repository.OrderStore
	payments PaymentGateway
}

func NewEngine(catalog repository.CatalogStore, orders repository.OrderStore, payments PaymentGateway) *Engine {
	return &Engine{
		catalog:  catalog,
		orders:   orders,
		payments: payments,
	}
}

// Place validates the cart against live stock, reserves every line, snapshots
// prices and persists a pending order.
func (e *Engine) Place(ctx context.Context, ownerID string, lines []models.CartLine, addr models.ShippingAddress) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Reserve in a fixed order so two placements contending on an
	// overlapping set of products cannot livelock each other.
	sorted := append([]models.CartLine(nil), lines...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ProductID != sorted[j].ProductID {
			return sorted[i].ProductID < sorted[j].ProductID
		}
		return sorted[i].Size < sorted[j].Size
	})

	reserved := make([]models.OrderItem, 0, len(sorted))
	items := make([]models.OrderItem, 0, len(sorted))
	var totalCents int64

	for _, line := range sorted {
		product, err := e.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			e.rollback(ctx, reserved)
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, err
		}

		ok, err := e.catalog.ReserveStock(ctx, line.ProductID, line.Size, line.Quantity)
		if err != nil {
			e.rollback(ctx, reserved)
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, &ProductNotFoundError{ProductID: line.ProductID}
			}
			return nil, err
		}
		if !ok {
			available := e.availableStock(ctx, line.ProductID, line.Size)
			e.rollback(ctx, reserved)
			return nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Size:      line.Size,
				Requested: line.Quantity,
				Available: available,
			}
		}

		// Price and name are frozen here, from the read immediately
		// preceding the successful reservation.
		item := models.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Size:           line.Size,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
		}
		reserved = append(reserved, item)
		items = append(items, item)
		totalCents += item.UnitPriceCents * item.Quantity
	}

	order := &models.Order{
		OwnerID:         ownerID,
		Items:           items,
		Status:          models.StatusPending,
		TotalCents:      totalCents,
		ShippingAddress: addr,
	}

	if e.payments != nil {
		ref, err := e.payments.Charge(ctx, ownerID, totalCents)
		if err != nil {
			e.rollback(ctx, reserved)
			return nil, err
		}
		order.PaymentRef = ref
	}

	if err := e.orders.Insert(ctx, order); err != nil {
		e.rollback(ctx, reserved)
		return nil, err
	}

	return order, nil
}

func (e *Engine) availableStock(ctx context.Context, productID, size string) int64 {
	product, err := e.catalog.FindByID(ctx, productID)
	if err != nil {
		return 0
	}
	stock, _ := product.StockFor(size)
	return stock
}

// rollback releases the reservations acquired so far, in reverse order.
func (e *Engine) rollback(ctx context.Context, reserved []models.OrderItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		item := reserved[i]
		if err := e.catalog.ReleaseStock(ctx, item.ProductID.Hex(), item.Size, item.Quantity); err != nil {
			log.Printf("rollback: failed to release %d of product %s size %s: %v",
				item.Quantity, item.ProductID.Hex(), item.Size, err)
		}
	}
}
