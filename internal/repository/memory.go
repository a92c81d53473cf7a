package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shoe-store/internal/models"
)

// MemoryCatalogStore is an in-process CatalogStore for tests and local
// development without Mongo. A single mutex plays the role of the storage
// engine's per-document atomicity: every check-then-mutate runs under it.
type MemoryCatalogStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{
		products: make(map[string]*models.Product),
	}
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	cp.Sizes = append([]models.SizeStock(nil), p.Sizes...)
	cp.Images = append([]string(nil), p.Images...)
	return &cp
}

func (s *MemoryCatalogStore) Create(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	s.products[product.ID.Hex()] = cloneProduct(product)
	return nil
}

func (s *MemoryCatalogStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (s *MemoryCatalogStore) FindMany(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(filter.Search)

	matches := make([]models.Product, 0)
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPriceCents != nil && p.PriceCents < *filter.MinPriceCents {
			continue
		}
		if filter.MaxPriceCents != nil && p.PriceCents > *filter.MaxPriceCents {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		matches = append(matches, *cloneProduct(p))
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

func (s *MemoryCatalogStore) ReserveStock(ctx context.Context, productID, size string, quantity int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return false, ErrProductNotFound
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size != size {
			continue
		}
		if p.Sizes[i].Stock < quantity {
			return false, nil
		}
		p.Sizes[i].Stock -= quantity
		p.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (s *MemoryCatalogStore) ReleaseStock(ctx context.Context, productID, size string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			p.Sizes[i].Stock += quantity
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrSizeNotFound
}

func (s *MemoryCatalogStore) RestockSize(ctx context.Context, productID, size string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			p.Sizes[i].Stock += delta
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	p.Sizes = append(p.Sizes, models.SizeStock{Size: size, Stock: delta})
	p.UpdatedAt = time.Now()
	return nil
}

// SetPrice changes a product's live price. Orders snapshot prices at
// placement, so this never touches historical orders.
func (s *MemoryCatalogStore) SetPrice(productID string, priceCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.PriceCents = priceCents
	p.UpdatedAt = time.Now()
	return nil
}

// Delete removes a product from the live catalog. Historical orders keep
// their snapshots.
func (s *MemoryCatalogStore) Delete(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, productID)
}

// MemoryOrderStore is the in-process OrderStore counterpart.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[string]*models.Order),
	}
}

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func (s *MemoryOrderStore) Insert(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	s.orders[order.ID.Hex()] = cloneOrder(order)
	return nil
}

func (s *MemoryOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryOrderStore) FindByOwner(ctx context.Context, ownerID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.OwnerID == ownerID {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (s *MemoryOrderStore) UpdateStatus(ctx context.Context, id string, from []models.OrderStatus, to models.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = to
			o.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryOrderStore) SetReleasedItems(ctx context.Context, id string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.ReleasedItems = count
	o.UpdatedAt = time.Now()
	return nil
}
