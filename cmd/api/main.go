package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"shoe-store/internal/cache"
	"shoe-store/internal/config"
	"shoe-store/internal/database"
	"shoe-store/internal/handlers"
	"shoe-store/internal/order"
	"shoe-store/internal/payment"
	"shoe-store/internal/repository"
	"shoe-store/internal/routes"
)

func main() {
	cfg := config.LoadConfig()
	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)

	catalog := repository.NewProductRepository(db.Collection("products"))
	orders := repository.NewOrderRepository(db.Collection("orders"))

	var cacheStore cache.Store
	if cfg.RedisAddr != "" {
		if redisCache := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL); redisCache != nil {
			cacheStore = redisCache
		}
	}
	if cacheStore == nil {
		cacheStore = cache.NewMemory(cfg.CacheTTL)
	}

	engine := order.NewEngine(catalog, orders, payment.NewStubGateway())
	machine := order.NewStateMachine(catalog, orders)

	router := gin.Default()
	routes.RegisterRoutes(router,
		handlers.NewProductHandler(catalog, cacheStore),
		handlers.NewOrderHandler(engine, machine, orders, cacheStore),
		cfg.JWTSecret,
	)

	log.Println("🚀 Server running on port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped:", err)
	}
}
