package catalog

import "context"

// ProductCatalog reads the backend-owned catalog
type ProductCatalog interface {
	// ListProducts returns every product with its current stock
	ListProducts(ctx context.Context) ([]Product, error)
	// GetProduct returns one product, or a NOT_FOUND domain error
	GetProduct(ctx context.Context, id int64) (*Product, error)
}
