package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Product field aliases seen on the backend
var (
	productIDFields    = []string{"id", "idProducto", "productoId", "productId"}
	productNameFields  = []string{"nombre", "name", "descripcion"}
	productPriceFields = []string{"basePrice", "precio", "precioVenta", "price"}
	productUnitFields  = []string{"measurementUnit", "unidadMedida", "unidad", "unit"}
	productGainFields  = []string{"gainPercent", "porcentajeGanancia", "ganancia", "margen"}
	productStockFields = []string{"stock", "existencia", "cantidad", "disponible"}
	productActiveField = []string{"activo", "active", "estado"}
	productCatFields   = []string{"categoria", "category"}
	productSizeFields  = []string{"tallas", "sizes", "talla"}
	productColorFields = []string{"colores", "colors", "color"}
)

// ListProducts returns the catalog with current stock.
// Entries that cannot be normalised are skipped and logged, never fatal.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	v, err := c.doJSON(ctx, request{method: http.MethodGet, path: "/products", endpoint: "GET /products"})
	if err != nil {
		return nil, err
	}
	recs, err := unwrapList(v, "productos", "products")
	if err != nil {
		return nil, &shared.DomainError{Code: shared.CodeTransient, Message: "Backend catalog answer has an unexpected shape"}
	}

	products := make([]catalog.Product, 0, len(recs))
	for _, rec := range recs {
		p, err := decodeProduct(rec)
		if err != nil {
			c.logger.Warn("skipping catalog entry", zap.Error(err))
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// GetProduct returns one product; NOT_FOUND when the backend has no such id
func (c *Client) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	v, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/products/%d", id),
		endpoint: "GET /products/{id}",
	})
	if err != nil {
		return nil, err
	}
	rec, err := unwrapRecord(v, "producto", "product")
	if err != nil {
		return nil, &shared.DomainError{Code: shared.CodeTransient, Message: fmt.Sprintf("Backend answer for product %d has an unexpected shape", id)}
	}
	p, err := decodeProduct(rec)
	if err != nil {
		return nil, &shared.DomainError{Code: shared.CodeTransient, Message: err.Error()}
	}
	return p, nil
}

// decodeProduct maps a backend product record to the canonical Product
func decodeProduct(rec record) (*catalog.Product, error) {
	id, ok := rec.integer(productIDFields...)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("product without a valid id")
	}
	price, ok := rec.num(productPriceFields...)
	if !ok {
		return nil, fmt.Errorf("product %d has no base price", id)
	}
	unit, err := valueobject.ParseMeasurementUnit(rec.str(productUnitFields...))
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}

	p := &catalog.Product{
		ID:        id,
		Name:      rec.str(productNameFields...),
		BasePrice: price,
		Unit:      unit,
		Category:  rec.str(productCatFields...),
		Active:    rec.boolean(true, productActiveField...),
		Sizes:     rec.strList(productSizeFields...),
		Colors:    rec.strList(productColorFields...),
	}
	if stock, ok := rec.integer(productStockFields...); ok {
		p.Stock = int(stock)
	}
	if gain, ok := rec.float(productGainFields...); ok {
		p.GainPercent = &gain
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}
	return p, nil
}

var _ catalog.ProductCatalog = (*Client)(nil)
