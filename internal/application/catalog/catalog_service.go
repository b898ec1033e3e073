package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CatalogService is the read-through cache of the backend catalog. It owns the
// StockView: a full refresh replaces it, a single product fetch updates one entry.
type CatalogService struct {
	source catalog.ProductCatalog
	view   *inventory.StockView

	mu        sync.RWMutex
	products  map[int64]catalog.Product
	refreshed time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(source catalog.ProductCatalog, view *inventory.StockView) *CatalogService {
	return &CatalogService{
		source:   source,
		view:     view,
		products: make(map[int64]catalog.Product),
	}
}

// StockView returns the stock cache filled by this service
func (s *CatalogService) StockView() *inventory.StockView {
	return s.view
}

// Refresh reloads the whole catalog and the StockView in one backend call
func (s *CatalogService) Refresh(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	cached := make(map[int64]catalog.Product, len(products))
	stock := make(map[int64]int, len(products))
	for _, p := range products {
		cached[p.ID] = p
		stock[p.ID] = p.Stock
	}

	s.mu.Lock()
	s.products = cached
	s.refreshed = time.Now()
	s.mu.Unlock()
	s.view.Replace(stock)

	logger.L(ctx).Debug("catalog refreshed", zap.Int("products", len(products)))

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Product returns a cached product, fetching it from the backend when missing or stale
func (s *CatalogService) Product(ctx context.Context, id int64) (*catalog.Product, error) {
	if id <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product ID must be positive")
	}

	s.mu.RLock()
	p, ok := s.products[id]
	s.mu.RUnlock()
	if ok {
		return &p, nil
	}

	fetched, err := s.source.GetProduct(ctx, id)
	if err != nil {
		if shared.CodeOf(err) == shared.CodeNotFound {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product %d no longer exists, refresh the catalog", id))
		}
		return nil, err
	}

	s.mu.Lock()
	s.products[id] = *fetched
	s.mu.Unlock()
	s.view.Set(id, fetched.Stock)

	out := *fetched
	return &out, nil
}

// Forget drops cached products so the next read goes to the backend
func (s *CatalogService) Forget(ids ...int64) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.products, id)
	}
	s.mu.Unlock()
	s.view.Invalidate(ids...)
}

// RefreshedAt returns when the catalog was last fully loaded
func (s *CatalogService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}
