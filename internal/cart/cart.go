package cart

import (
	"errors"

	"shoe-store/internal/models"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Cart aggregates (product, size, quantity) selections for one session.
// It is pure bookkeeping: stock is not consulted until placement.
type Cart struct {
	lines []models.CartLine
}

func New() *Cart {
	return &Cart{}
}

// AddLine merges with an existing line of the same (product, size) by
// summing quantities.
func (c *Cart) AddLine(productID, size string, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			c.lines[i].Quantity += quantity
			return nil
		}
	}
	c.lines = append(c.lines, models.CartLine{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
	return nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns the snapshot consumed by order placement. The returned
// slice is independent of the cart's internal state.
func (c *Cart) Lines() []models.CartLine {
	return append([]models.CartLine(nil), c.lines...)
}

// Clear discards all lines, typically after a successful placement.
func (c *Cart) Clear() {
	c.lines = nil
}
