package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/pricing"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

func variantPath(productID int64, size string) string {
	return fmt.Sprintf("/products/%d/variants/size/%s", productID, url.PathEscape(catalog.NormalizeSize(size)))
}

// GetSizeOverride reads the stored override; NOT_FOUND when the product has none for the size
func (c *Client) GetSizeOverride(ctx context.Context, productID int64, size string) (*pricing.SizePriceOverride, error) {
	v, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		path:     variantPath(productID, size),
		endpoint: "GET /products/{id}/variants/size/{size}",
	})
	if err != nil {
		return nil, err
	}
	rec, err := unwrapRecord(v, "variante", "variant")
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeTransient, "Backend size override answer has an unexpected shape")
	}
	price, ok := rec.num("price", "precio", "precioTalla", "valor")
	if !ok || !price.IsPositive() {
		// the backend answers 200 with an empty price when nothing was stored
		return nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("No size override stored for product %d size %s", productID, catalog.NormalizeSize(size)))
	}
	override := &pricing.SizePriceOverride{
		ProductID: productID,
		Size:      catalog.NormalizeSize(size),
		Price:     price,
		UpdatedAt: time.Now(),
	}
	if t, ok := rec.when("updatedAt", "fechaActualizacion"); ok {
		override.UpdatedAt = t
	}
	return override, nil
}

// SaveSizeOverride creates or overwrites the stored override
func (c *Client) SaveSizeOverride(ctx context.Context, override pricing.SizePriceOverride) error {
	_, err := c.do(ctx, request{
		method:   http.MethodPost,
		path:     variantPath(override.ProductID, override.Size),
		endpoint: "POST /products/{id}/variants/size/{size}",
		body: struct {
			Price decimal.Decimal `json:"price"`
		}{Price: override.Price},
		mutating: true,
	})
	return err
}

var _ pricing.OverrideSource = (*Client)(nil)
