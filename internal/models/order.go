package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is a frozen snapshot of a product line captured at placement
// time. It never changes, even if the product is later edited or deleted.
type OrderItem struct {
	ProductID      primitive.ObjectID `json:"product_id" bson:"product_id"`
	ProductName    string             `json:"product_name" bson:"product_name"`
	Size           string             `json:"size" bson:"size"`
	Quantity       int64              `json:"quantity" bson:"quantity"`
	UnitPriceCents int64              `json:"unit_price_cents" bson:"unit_price_cents"`
}

type ShippingAddress struct {
	Street  string `json:"street" bson:"street" binding:"required"`
	City    string `json:"city" bson:"city" binding:"required"`
	State   string `json:"state" bson:"state" binding:"required"`
	ZipCode string `json:"zip_code" bson:"zip_code" binding:"required"`
	Phone   string `json:"phone" bson:"phone" binding:"required"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID         string             `json:"owner_id" bson:"owner_id"`
	Items           []OrderItem        `json:"items" bson:"items"`
	Status          OrderStatus        `json:"status" bson:"status"`
	TotalCents      int64              `json:"total_cents" bson:"total_cents"`
	ShippingAddress ShippingAddress    `json:"shipping_address" bson:"shipping_address"`
	PaymentRef      string             `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	// ReleasedItems counts how many items have had their stock returned
	// during cancellation. Lets an interrupted cancellation resume without
	// releasing anything twice.
	ReleasedItems int       `json:"-" bson:"released_items"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}
