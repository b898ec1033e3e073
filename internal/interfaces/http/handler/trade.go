package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/petsupply/storefront/internal/application/trade"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// TradeHandler serves carts, totals and the sale, purchase and order records
type TradeHandler struct {
	BaseHandler
	cartService  *tradeapp.CartService
	orderService *tradeapp.OrderService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(cartService *tradeapp.CartService, orderService *tradeapp.OrderService) *TradeHandler {
	return &TradeHandler{
		cartService:  cartService,
		orderService: orderService,
	}
}

// CartLineRequest builds one line of a cart being edited
type CartLineRequest struct {
	Kind string `json:"kind" binding:"required,oneof=sale purchase order"`
	LineInput
}

// CreateOrderRequest creates a sale, purchase or order from requested lines
type CreateOrderRequest struct {
	CounterpartyID   int64       `json:"counterparty_id" binding:"required,gt=0"`
	CounterpartyName string      `json:"counterparty_name" binding:"max=200"`
	Lines            []LineInput `json:"lines" binding:"dive"`
}

// TotalsLineInput is a line already priced by the client; the gram factor is
// taken from the product's unit, never from the request
type TotalsLineInput struct {
	ProductID int64           `json:"product_id" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"gte=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	IsBulk    bool            `json:"is_bulk"`
	Grams     decimal.Decimal `json:"grams"`
}

// TotalsRequest computes document totals for a set of priced lines
type TotalsRequest struct {
	Kind  string            `json:"kind" binding:"required,oneof=sale purchase order"`
	Lines []TotalsLineInput `json:"lines" binding:"dive"`
}

// AddCartLine prices and validates one line: variant rules, the effective
// unit price and the cached stock advisory.
// @ID           addCartLine
// @Summary      Price and validate a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body CartLineRequest true "Cart line"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /cart/lines [post]
func (h *TradeHandler) AddCartLine(c *gin.Context) {
	var req CartLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	kind := orderKindOf(trade.DocumentKind(req.Kind))
	line, err := h.cartService.AddLine(c.Request.Context(), kind, req.toLineRequest())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, line)
}

// Totals computes subtotal, tax and total for client-priced lines
// @ID           computeTotals
// @Summary      Compute document totals
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body TotalsRequest true "Totals"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /totals [post]
func (h *TradeHandler) Totals(c *gin.Context) {
	var req TotalsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kind, err := trade.ParseDocumentKind(req.Kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	lines := make([]tradeapp.TotalsLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = tradeapp.TotalsLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Size:      l.Size,
			Color:     l.Color,
			IsBulk:    l.IsBulk,
			Grams:     l.Grams,
		}
	}

	totals, err := h.orderService.Totals(c.Request.Context(), kind, lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, totals)
}

func (h *TradeHandler) bindCreate(c *gin.Context) (tradeapp.CreateOrderRequest, bool) {
	var req CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return tradeapp.CreateOrderRequest{}, false
	}
	return tradeapp.CreateOrderRequest{
		CounterpartyID:   req.CounterpartyID,
		CounterpartyName: req.CounterpartyName,
		Lines:            toLineRequests(req.Lines),
	}, true
}

// CreateSale creates a completed sale, decrementing backend stock
// @ID           createSale
// @Summary      Create a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Create order"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /sales [post]
func (h *TradeHandler) CreateSale(c *gin.Context) {
	req, ok := h.bindCreate(c)
	if !ok {
		return
	}

	sale, err := h.orderService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// CreatePurchase creates an active purchase, incrementing backend stock
// @ID           createPurchase
// @Summary      Create a purchase
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Create order"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /purchases [post]
func (h *TradeHandler) CreatePurchase(c *gin.Context) {
	req, ok := h.bindCreate(c)
	if !ok {
		return
	}

	purchase, err := h.orderService.CreatePurchase(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, purchase)
}

// PlaceOrder creates a pending order. Stock is reserved only at confirmation.
// @ID           placeOrder
// @Summary      Place a pending order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Create order"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /orders [post]
func (h *TradeHandler) PlaceOrder(c *gin.Context) {
	req, ok := h.bindCreate(c)
	if !ok {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

func (h *TradeHandler) get(c *gin.Context, kind trade.OrderKind) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	record, err := h.orderService.Get(c.Request.Context(), kind, uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// GetSale returns a sale with totals recomputed from its lines
// @ID           getSale
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /sales/{id} [get]
func (h *TradeHandler) GetSale(c *gin.Context) {
	h.get(c, trade.KindVenta)
}

// GetPurchase returns a purchase with totals recomputed from its lines
// @ID           getPurchase
// @Summary      Get a purchase
// @Tags         purchases
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /purchases/{id} [get]
func (h *TradeHandler) GetPurchase(c *gin.Context) {
	h.get(c, trade.KindCompra)
}

// GetOrder returns a pending or confirmed order
// @ID           getOrder
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *TradeHandler) GetOrder(c *gin.Context) {
	h.get(c, trade.KindPedido)
}

// ConfirmOrder converts a pending order into a sale
// @ID           confirmOrder
// @Summary      Confirm an order into a sale
// @Tags         orders
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /orders/{id}/confirm [post]
func (h *TradeHandler) ConfirmOrder(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	sale, err := h.orderService.ConfirmOrder(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// VoidSale voids a sale. Voiding an already voided sale succeeds with
// outcome already_voided.
// @ID           voidSale
// @Summary      Void a sale
// @Tags         sales
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /sales/{id}/void [post]
func (h *TradeHandler) VoidSale(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.orderService.VoidSale(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// VoidPurchase voids a purchase
// @ID           voidPurchase
// @Summary      Void a purchase
// @Tags         purchases
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /purchases/{id}/void [post]
func (h *TradeHandler) VoidPurchase(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.orderService.VoidPurchase(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReactivateSale moves a voided sale back to completed without touching stock
// @ID           reactivateSale
// @Summary      Reactivate a voided sale
// @Tags         sales
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /sales/{id}/reactivate [post]
func (h *TradeHandler) ReactivateSale(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	result, err := h.orderService.ReactivateSale(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Invoice returns the printable view of a sale
// @ID           getSaleInvoice
// @Summary      Get the invoice view of a sale
// @Tags         sales
// @Produce      json
// @Param        id path int true "Backend record ID"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /sales/{id}/invoice [get]
func (h *TradeHandler) Invoice(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	invoice, err := h.orderService.Invoice(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
