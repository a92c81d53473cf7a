package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"shoe-store/internal/config"
	"shoe-store/internal/database"
	"shoe-store/internal/models"
	"shoe-store/internal/repository"
)

// SeedProducts is the starter catalog: four shoes across the four
// categories, each carried in sizes 8-10.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Classic Leather Sneakers",
			Description: "Timeless leather sneakers perfect for casual wear. Features premium leather upper and comfortable cushioning.",
			PriceCents:  7999,
			Brand:       "ClassicWear",
			Category:    "casual",
			Color:       "Brown",
			Featured:    true,
			Images: []string{
				"https://images.unsplash.com/photo-1549298916-b41d501d3772?auto=format&fit=crop&w=800&q=80",
				"https://images.unsplash.com/photo-1525966222134-fcfa99b8ae77?auto=format&fit=crop&w=800&q=80",
			},
			Sizes: []models.SizeStock{
				{Size: "8", Stock: 10},
				{Size: "9", Stock: 15},
				{Size: "10", Stock: 12},
			},
		},
		{
			Name:        "Professional Oxford Shoes",
			Description: "Elegant oxford shoes for formal occasions. Made with genuine leather and featuring a classic design.",
			PriceCents:  12999,
			Brand:       "FormalFit",
			Category:    "formal",
			Color:       "Black",
			Featured:    true,
			Images: []string{
				"https://images.unsplash.com/photo-1614252369475-531eba835eb1?auto=format&fit=crop&w=800&q=80",
				"https://images.unsplash.com/photo-1582897085656-c636d006a246?auto=format&fit=crop&w=800&q=80",
			},
			Sizes: []models.SizeStock{
				{Size: "8", Stock: 8},
				{Size: "9", Stock: 10},
				{Size: "10", Stock: 8},
			},
		},
		{
			Name:        "Performance Running Shoes",
			Description: "Lightweight and breathable running shoes with advanced cushioning technology.",
			PriceCents:  9999,
			Brand:       "SportMax",
			Category:    "sports",
			Color:       "Blue/White",
			Featured:    true,
			Images: []string{
				"https://images.unsplash.com/photo-1542291026-7eec264c27ff?auto=format&fit=crop&w=800&q=80",
				"https://images.unsplash.com/photo-1595950653106-6c9ebd614d3a?auto=format&fit=crop&w=800&q=80",
			},
			Sizes: []models.SizeStock{
				{Size: "8", Stock: 12},
				{Size: "9", Stock: 18},
				{Size: "10", Stock: 15},
			},
		},
		{
			Name:        "Waterproof Hiking Boots",
			Description: "Durable hiking boots with waterproof membrane and excellent traction.",
			PriceCents:  14999,
			Brand:       "TrailMaster",
			Category:    "boots",
			Color:       "Brown/Black",
			Featured:    false,
			Images: []string{
				"https://images.unsplash.com/photo-1544966503-7cc5ac882d5f?auto=format&fit=crop&w=800&q=80",
				"https://images.unsplash.com/photo-1608256246200-53e635b5b65f?auto=format&fit=crop&w=800&q=80",
			},
			Sizes: []models.SizeStock{
				{Size: "8", Stock: 6},
				{Size: "9", Stock: 8},
				{Size: "10", Stock: 7},
			},
		},
	}
}

func main() {
	cfg := config.LoadConfig()
	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	products := db.Collection("products")
	if _, err := products.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatal("failed to clear products:", err)
	}

	repo := repository.NewProductRepository(products)
	seed := SeedProducts()
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			log.Fatal("failed to seed product:", err)
		}
	}

	log.Printf("✅ Seeded %d products", len(seed))
}
