package models

// CartLine is a transient (productId, size, quantity) selection owned by the
// requesting session. Lines reference products by id only; nothing is
// snapshotted until an order is placed.
type CartLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gte=1"`
}
