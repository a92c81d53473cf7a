package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shoe-store/internal/cache"
	"shoe-store/internal/cart"
	"shoe-store/internal/middleware"
	"shoe-store/internal/models"
	"shoe-store/internal/order"
	"shoe-store/internal/repository"
)

type OrderHandler struct {
	engine  *order.Engine
	machine *order.StateMachine
	orders  repository.OrderStore
	cache   cache.Store
}

func NewOrderHandler(engine *order.Engine, machine *order.StateMachine, orders repository.OrderStore, cacheStore cache.Store) *OrderHandler {
	return &OrderHandler{
		engine:  engine,
		machine: machine,
		orders:  orders,
		cache:   cacheStore,
	}
}

type placeOrderRequest struct {
	Items           []models.CartLine      `json:"items" binding:"dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
}

type stockErrorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// PlaceOrder converts the submitted cart into a pending order.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	basket := cart.New()
	for _, line := range req.Items {
		if err := basket.AddLine(line.ProductID, line.Size, line.Quantity); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	placed, err := h.engine.Place(c.Request.Context(), ownerID, basket.Lines(), req.ShippingAddress)
	if err != nil {
		h.writePlacementError(c, err)
		return
	}

	// Stock moved; cached listings are stale.
	h.cache.DeleteByPrefix("products:list:")
	for _, item := range placed.Items {
		h.cache.Delete(fmt.Sprintf("product:%s", item.ProductID.Hex()))
	}

	c.JSON(http.StatusCreated, placed)
}

func (h *OrderHandler) writePlacementError(c *gin.Context, err error) {
	var notFound *order.ProductNotFoundError
	var shortfall *order.InsufficientStockError

	switch {
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item no longer available", "product_id": notFound.ProductID})
	case errors.As(err, &shortfall):
		c.JSON(http.StatusConflict, stockErrorResponse{
			Error:     "insufficient stock",
			ProductID: shortfall.ProductID,
			Size:      shortfall.Size,
			Requested: shortfall.Requested,
			Available: shortfall.Available,
		})
	case errors.Is(err, repository.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
	}
}

// MyOrders lists the authenticated owner's orders.
func (h *OrderHandler) MyOrders(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	orders, err := h.orders.FindByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// UpdateStatus drives the order through its lifecycle. Cancellation releases
// the order's stock.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.orders.FindByID(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, repository.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		}
		return
	}
	// Someone else's order looks the same as a missing one.
	if existing.OwnerID != middleware.OwnerID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	updated, err := h.machine.Transition(c.Request.Context(), orderID, req.Status)
	if err != nil {
		var invalid *order.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			c.JSON(http.StatusConflict, gin.H{
				"error": "invalid transition",
				"from":  invalid.From,
				"to":    invalid.To,
			})
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, repository.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		}
		return
	}

	if updated.Status == models.StatusCancelled {
		h.cache.DeleteByPrefix("products:list:")
		for _, item := range updated.Items {
			h.cache.Delete(fmt.Sprintf("product:%s", item.ProductID.Hex()))
		}
	}

	c.JSON(http.StatusOK, updated)
}
