package handler

import (
	"github.com/gin-gonic/gin"
	pricingapp "github.com/petsupply/storefront/internal/application/pricing"
	"github.com/shopspring/decimal"
)

// PricingHandler serves price quotes and the pricing settings
type PricingHandler struct {
	BaseHandler
	quoteService    *pricingapp.QuoteService
	settingsService *pricingapp.SettingsService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(quoteService *pricingapp.QuoteService, settingsService *pricingapp.SettingsService) *PricingHandler {
	return &PricingHandler{
		quoteService:    quoteService,
		settingsService: settingsService,
	}
}

// QuoteRequest asks for the effective price of one prospective line
type QuoteRequest struct {
	ProductID int64           `json:"product_id" binding:"required,gt=0"`
	Size      string          `json:"size" binding:"max=20"`
	Quantity  int             `json:"quantity" binding:"gte=0"`
	Grams     decimal.Decimal `json:"grams"`
}

// ProductIDRequest binds the product_id path parameter
type ProductIDRequest struct {
	ProductID int64 `uri:"product_id" binding:"required,gt=0"`
}

// SizeOverrideURI binds the size override path parameters
type SizeOverrideURI struct {
	ProductID int64  `uri:"id" binding:"required,gt=0"`
	Size      string `uri:"size" binding:"required,max=20"`
}

// SaveGainRequest sets the cached margin of a product
type SaveGainRequest struct {
	Percent *float64 `json:"percent" binding:"required,gte=0"`
}

// SaveSurchargesRequest replaces the surcharge table
type SaveSurchargesRequest struct {
	Increments map[string]decimal.Decimal `json:"increments" binding:"required"`
}

// SaveSizeOverrideRequest sets the fixed price of one product size
type SaveSizeOverrideRequest struct {
	Price decimal.Decimal `json:"price"`
}

// Quote resolves the unit price and subtotal of a prospective line
// @ID           quotePrice
// @Summary      Quote a line price
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body QuoteRequest true "Quote"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pricing/quote [post]
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.quoteService.Quote(c.Request.Context(), pricingapp.QuoteRequest{
		ProductID: req.ProductID,
		Size:      req.Size,
		Quantity:  req.Quantity,
		Grams:     req.Grams,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// GetGain returns the display margin of a product
// @ID           getProductGain
// @Summary      Get the display gain of a product
// @Tags         pricing
// @Produce      json
// @Param        product_id path int true "Product ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pricing/gain/{product_id} [get]
func (h *PricingHandler) GetGain(c *gin.Context) {
	var uri ProductIDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	gain, err := h.quoteService.Gain(c.Request.Context(), uri.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gain)
}

// SaveGain stores a margin in the local fallback cache
// @ID           saveProductGain
// @Summary      Cache the gain of a product
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        product_id path int true "Product ID"
// @Param        request body SaveGainRequest true "Save gain"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /pricing/gain/{product_id} [put]
func (h *PricingHandler) SaveGain(c *gin.Context) {
	var uri ProductIDRequest
	if !h.BindURI(c, &uri) {
		return
	}
	var req SaveGainRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.settingsService.SaveGain(c.Request.Context(), uri.ProductID, *req.Percent); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pricingapp.GainResponse{
		ProductID: uri.ProductID,
		Percent:   *req.Percent,
		Source:    pricingapp.GainSourceCache,
	})
}

// GetSettings returns the local pricing configuration: surcharge table, cached
// gains and cached size overrides
// @ID           getPricingSettings
// @Summary      Get the local pricing settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /settings [get]
func (h *PricingHandler) GetSettings(c *gin.Context) {
	snapshot, err := h.settingsService.Snapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pricingapp.ToSettingsResponse(snapshot))
}

// GetSurcharges returns the size surcharge table
// @ID           getSurcharges
// @Summary      Get the size surcharge table
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /settings/surcharges [get]
func (h *PricingHandler) GetSurcharges(c *gin.Context) {
	table, err := h.settingsService.LoadSurcharges(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pricingapp.ToSurchargeTableResponse(table))
}

// SaveSurcharges replaces the size surcharge table
// @ID           saveSurcharges
// @Summary      Replace the size surcharge table
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body SaveSurchargesRequest true "Save surcharges"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /settings/surcharges [put]
func (h *PricingHandler) SaveSurcharges(c *gin.Context) {
	var req SaveSurchargesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	table, err := h.settingsService.SaveSurcharges(c.Request.Context(), req.Increments)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, pricingapp.ToSurchargeTableResponse(table))
}

// GetSizeOverride reads a size override, remote first. A missing override is
// reported with found=false rather than as an error.
// @ID           getSizeOverride
// @Summary      Get a size price override
// @Tags         variants
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Param        size path string true "Variant size"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /products/{id}/variants/size/{size} [get]
func (h *PricingHandler) GetSizeOverride(c *gin.Context) {
	var uri SizeOverrideURI
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.settingsService.GetOverride(c.Request.Context(), uri.ProductID, uri.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SaveSizeOverride writes a size override to the backend and the local cache
// @ID           saveSizeOverride
// @Summary      Save a size price override
// @Tags         variants
// @Accept       json
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Param        size path string true "Variant size"
// @Param        request body SaveSizeOverrideRequest true "Save size override"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /products/{id}/variants/size/{size} [put]
func (h *PricingHandler) SaveSizeOverride(c *gin.Context) {
	var uri SizeOverrideURI
	if !h.BindURI(c, &uri) {
		return
	}
	var req SaveSizeOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.settingsService.SaveOverride(c.Request.Context(), uri.ProductID, uri.Size, req.Price)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
