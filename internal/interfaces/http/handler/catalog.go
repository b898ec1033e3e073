package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/petsupply/storefront/internal/application/catalog"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
)

// CatalogHandler serves the cached product catalog
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListProducts reloads the catalog from the backend and refills the stock view.
// The response meta carries the refresh time so clients can tell how fresh
// the stock figures are.
// @ID           listCatalogProducts
// @Summary      List catalog products
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.Refresh(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(
		catalogapp.ToProductResponses(products),
		int64(len(products)),
		h.catalogService.RefreshedAt(),
	))
}

// GetProduct returns one product, read through the cache
// @ID           getCatalogProduct
// @Summary      Get a catalog product
// @Tags         catalog
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	product, err := h.catalogService.Product(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, catalogapp.ToProductResponse(product))
}
