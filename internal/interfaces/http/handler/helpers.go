package handler

import (
	tradeapp "github.com/petsupply/storefront/internal/application/trade"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// orderKindOf maps an API document kind to the record type it creates
func orderKindOf(kind trade.DocumentKind) trade.OrderKind {
	switch kind {
	case trade.DocumentPurchase:
		return trade.KindCompra
	case trade.DocumentOrder:
		return trade.KindPedido
	}
	return trade.KindVenta
}

// LineInput is one requested line of a cart or document
type LineInput struct {
	ProductID int64            `json:"product_id" binding:"required,gt=0"`
	Quantity  int              `json:"quantity" binding:"gte=0"`
	Size      string           `json:"size" binding:"max=20"`
	Color     string           `json:"color" binding:"max=50"`
	Grams     decimal.Decimal  `json:"grams"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
}

func (in LineInput) toLineRequest() tradeapp.LineRequest {
	return tradeapp.LineRequest{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Size:      in.Size,
		Color:     in.Color,
		Grams:     in.Grams,
		UnitCost:  in.UnitCost,
	}
}

func toLineRequests(inputs []LineInput) []tradeapp.LineRequest {
	out := make([]tradeapp.LineRequest, len(inputs))
	for i, in := range inputs {
		out[i] = in.toLineRequest()
	}
	return out
}
