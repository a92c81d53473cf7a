package routes

import (
	"github.com/gin-gonic/gin"

	"shoe-store/internal/handlers"
	"shoe-store/internal/middleware"
)

func RegisterRoutes(router *gin.Engine, products *handlers.ProductHandler, orders *handlers.OrderHandler, jwtSecret string) {
	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/:id", products.GetProduct)
		v1.POST("/products", products.CreateProduct)
		v1.PATCH("/products/:id/restock", products.Restock)

		authed := v1.Group("/orders", middleware.RequireAuth(jwtSecret))
		{
			authed.POST("", orders.PlaceOrder)
			authed.GET("/my-orders", orders.MyOrders)
			authed.PATCH("/:id/status", orders.UpdateStatus)
		}
	}
}
