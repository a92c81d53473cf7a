package order

import (
	"errors"
	"fmt"

	"shoe-store/internal/models"
)

var ErrEmptyCart = errors.New("cart is empty")

// ProductNotFoundError means a cart line references a product that vanished
// between cart population and placement. The whole placement aborts.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError carries the shortfall so the client can offer to
// adjust the quantity.
type InsufficientStockError struct {
	ProductID string
	Size      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s: requested %d, available %d",
		e.ProductID, e.Size, e.Requested, e.Available)
}

// InvalidTransitionError reports a rejected status change. State is left
// untouched.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}
