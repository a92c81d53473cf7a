package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shoe-store/internal/cache"
	"shoe-store/internal/models"
	"shoe-store/internal/repository"
)

type ProductHandler struct {
	catalog repository.CatalogStore
	cache   cache.Store
}

func NewProductHandler(catalog repository.CatalogStore, cacheStore cache.Store) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		cache:   cacheStore,
	}
}

// listCacheKey builds the listing cache key. Each filter value is escaped so
// a value containing the label separators cannot alias another filter combination.
func listCacheKey(category, minPrice, maxPrice, search string) string {
	return fmt.Sprintf("products:list:cat:%s_min:%s_max:%s_q:%s",
		url.QueryEscape(category), url.QueryEscape(minPrice),
		url.QueryEscape(maxPrice), url.QueryEscape(search))
}

// parsePriceCents converts a decimal dollar query param to cents.
func parsePriceCents(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	dollars, err := strconv.ParseFloat(raw, 64)
	if err != nil || dollars < 0 {
		return nil, fmt.Errorf("invalid price %q", raw)
	}
	cents := int64(math.Round(dollars * 100))
	return &cents, nil
}

// ListProducts lists the catalog with optional filters (with cache).
// Zero matches is an empty data array, never an error.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	minPrice, err := parsePriceCents(c.Query("minPrice"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minPrice"})
		return
	}
	maxPrice, err := parsePriceCents(c.Query("maxPrice"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
		return
	}

	filter := repository.ProductFilter{
		Category:      c.Query("category"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		Search:        c.Query("search"),
	}

	cacheKey := listCacheKey(filter.Category, c.Query("minPrice"), c.Query("maxPrice"), filter.Search)

	var cached []models.Product
	if found, _ := h.cache.Unmarshal(cacheKey, &cached); found {
		c.JSON(http.StatusOK, gin.H{"data": cached})
		return
	}

	products, err := h.catalog.FindMany(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list products"})
		return
	}

	h.cache.Marshal(cacheKey, products, 2*time.Minute)
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// GetProduct fetches a product by ID (with cache).
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	cacheKey := fmt.Sprintf("product:%s", productID)

	var cached models.Product
	if found, _ := h.cache.Unmarshal(cacheKey, &cached); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, err := h.catalog.FindByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to get product"})
		return
	}

	h.cache.Marshal(cacheKey, product, 5*time.Minute)
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog entry. Restock/admin surface.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seen := make(map[string]bool, len(product.Sizes))
	for _, s := range product.Sizes {
		if s.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must not be negative"})
			return
		}
		if seen[s.Size] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("duplicate size %q", s.Size)})
			return
		}
		seen[s.Size] = true
	}

	if err := h.catalog.Create(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to create product"})
		return
	}

	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusCreated, product)
}

type restockRequest struct {
	Size  string `json:"size" binding:"required"`
	Delta int64  `json:"delta" binding:"required,gte=1"`
}

// Restock raises a size's stock counter. Restock/admin surface.
func (h *ProductHandler) Restock(c *gin.Context) {
	productID := c.Param("id")

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.RestockSize(c.Request.Context(), productID, req.Size, req.Delta); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to restock"})
		return
	}

	h.cache.Delete(fmt.Sprintf("product:%s", productID))
	h.cache.DeleteByPrefix("products:list:")
	c.JSON(http.StatusOK, gin.H{"message": "restocked"})
}
