package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SizeStock holds the stock counter for a single size label.
// Labels are unique within a product.
type SizeStock struct {
	Size  string `json:"size" bson:"size" binding:"required"`
	Stock int64  `json:"stock" bson:"stock"`
}

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" binding:"required"`
	Brand       string             `json:"brand" bson:"brand" binding:"required"`
	Category    string             `json:"category" bson:"category" binding:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	PriceCents  int64              `json:"price_cents" bson:"price_cents" binding:"required"`
	Images      []string           `json:"images,omitempty" bson:"images,omitempty"`
	Sizes       []SizeStock        `json:"sizes" bson:"sizes" binding:"required,dive"`
	Color       string             `json:"color,omitempty" bson:"color,omitempty"`
	Featured    bool               `json:"featured" bson:"featured"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// StockFor returns the stock counter for a size label, or false if the
// product does not carry that size.
func (p *Product) StockFor(size string) (int64, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock, true
		}
	}
	return 0, false
}
