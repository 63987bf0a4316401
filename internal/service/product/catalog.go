package product

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/orders/api/productsv1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// Catalog — статический in-memory каталог. Служит сервером products.v1 для локального запуска
// и ProductValidator для тестов. Отсутствующие товары просто не попадают в ответ.
type Catalog struct {
	productsv1.UnimplementedProductServiceServer

	mu       sync.RWMutex
	products map[domain.ProductID]domain.ProductSnapshot
	err      error
	calls    int
}

// NewCatalog создаёт каталог из набора товаров.
func NewCatalog(products ...domain.ProductSnapshot) *Catalog {
	c := &Catalog{products: make(map[domain.ProductID]domain.ProductSnapshot, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// DefaultCatalog возвращает демонстрационный набор товаров.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		domain.ProductSnapshot{ID: 1, Name: "Keyboard", Price: decimal.RequireFromString("75.00")},
		domain.ProductSnapshot{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("150.50")},
		domain.ProductSnapshot{ID: 3, Name: "Monitor", Price: decimal.RequireFromString("1200.00")},
		domain.ProductSnapshot{ID: 4, Name: "Headset", Price: decimal.RequireFromString("99.99")},
		domain.ProductSnapshot{ID: 5, Name: "Webcam", Price: decimal.RequireFromString("49.90")},
	)
}

// Put добавляет или заменяет товар.
func (c *Catalog) Put(p domain.ProductSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

// Remove удаляет товар из каталога.
func (c *Catalog) Remove(id domain.ProductID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

// FailWith заставляет следующие вызовы возвращать err (nil снимает ошибку).
func (c *Catalog) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Calls возвращает количество вызовов Validate/ValidateProducts.
func (c *Catalog) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

// Validate возвращает найденные товары.
func (c *Catalog) Validate(ctx context.Context, ids []domain.ProductID) ([]domain.ProductSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.err != nil {
		return nil, c.err
	}

	result := make([]domain.ProductSnapshot, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ValidateProducts реализует products.v1.ProductService.
func (c *Catalog) ValidateProducts(ctx context.Context, req *productsv1.ValidateProductsRequest) (*productsv1.ValidateProductsResponse, error) {
	ids := make([]domain.ProductID, 0, len(req.GetIDs()))
	for _, id := range req.GetIDs() {
		ids = append(ids, domain.ProductID(id))
	}

	found, err := c.Validate(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &productsv1.ValidateProductsResponse{Products: make([]*productsv1.Product, 0, len(found))}
	for _, p := range found {
		resp.Products = append(resp.Products, &productsv1.Product{ID: int64(p.ID), Name: p.Name, Price: p.Price})
	}
	return resp, nil
}

var (
	_ domain.ProductValidator         = (*Catalog)(nil)
	_ productsv1.ProductServiceServer = (*Catalog)(nil)
)
