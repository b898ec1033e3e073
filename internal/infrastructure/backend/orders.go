package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderLinePayload is one line of the create payload
type orderLinePayload struct {
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Size       string          `json:"size,omitempty"`
	Color      string          `json:"color,omitempty"`
	Grams      decimal.Decimal `json:"grams"`
	IsBulk     bool            `json:"isBulk"`
	GramFactor decimal.Decimal `json:"gramFactor"`
}

// orderPayload is the canonical create body for sales, purchases and orders
type orderPayload struct {
	ClientID   int64              `json:"clientId,omitempty"`
	SupplierID int64              `json:"supplierId,omitempty"`
	Date       string             `json:"date"`
	Status     string             `json:"status"`
	Lines      []orderLinePayload `json:"lines"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Tax        decimal.Decimal    `json:"tax"`
	Discount   decimal.Decimal    `json:"discount"`
	Total      decimal.Decimal    `json:"total"`
}

func collectionPath(kind trade.OrderKind) (string, error) {
	switch kind {
	case trade.KindVenta:
		return "/sales", nil
	case trade.KindCompra:
		return "/purchases", nil
	case trade.KindPedido:
		return "/orders", nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown record kind %q", kind))
}

func newOrderPayload(order *trade.Order) orderPayload {
	totals := order.Totals()
	p := orderPayload{
		Date:     order.Date.Format(time.RFC3339),
		Status:   order.Status.String(),
		Lines:    make([]orderLinePayload, 0, len(order.Lines)),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Discount: totals.Discount,
		Total:    totals.Total,
	}
	if order.Kind == trade.KindCompra {
		p.SupplierID = order.CounterpartyID
	} else {
		p.ClientID = order.CounterpartyID
	}
	for _, l := range order.Lines {
		p.Lines = append(p.Lines, orderLinePayload{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal(),
			Size:       l.Size,
			Color:      l.Color,
			Grams:      l.Grams,
			IsBulk:     l.IsBulk,
			GramFactor: l.GramFactor,
		})
	}
	return p
}

// Create submits the record in one request; the backend applies every line's stock change atomically
func (c *Client) Create(ctx context.Context, order *trade.Order) (*trade.Order, error) {
	path, err := collectionPath(order.Kind)
	if err != nil {
		return nil, err
	}
	v, err := c.doJSON(ctx, request{
		method:   http.MethodPost,
		path:     path,
		endpoint: "POST " + path,
		body:     newOrderPayload(order),
		mutating: true,
	})
	if err != nil {
		return nil, err
	}
	created, err := c.decodeOrderAnswer(v, order.Kind, path)
	if err != nil {
		return nil, err
	}
	// some endpoints answer with only {id}; keep what was sent
	if len(created.Lines) == 0 {
		created.Lines = order.Lines
	}
	if created.CounterpartyID == 0 {
		created.CounterpartyID = order.CounterpartyID
		created.CounterpartyName = order.CounterpartyName
	}
	return created, nil
}

// Get reads one record
func (c *Client) Get(ctx context.Context, kind trade.OrderKind, id int64) (*trade.Order, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}
	v, err := c.doJSON(ctx, request{
		method:   http.MethodGet,
		path:     fmt.Sprintf("%s/%d", path, id),
		endpoint: "GET " + path + "/{id}",
	})
	if err != nil {
		return nil, err
	}
	return c.decodeOrderAnswer(v, kind, path)
}

// Confirm converts a pending pedido into a venta and returns the venta
func (c *Client) Confirm(ctx context.Context, pedidoID int64) (*trade.Order, error) {
	v, err := c.doJSON(ctx, request{
		method:   http.MethodPost,
		path:     fmt.Sprintf("/orders/%d/confirm", pedidoID),
		endpoint: "POST /orders/{id}/confirm",
		mutating: true,
	})
	if err != nil {
		return nil, err
	}
	sale, err := c.decodeOrderAnswer(v, trade.KindVenta, "/orders/confirm")
	if err != nil {
		return nil, err
	}
	if sale.SourceOrderID == 0 {
		sale.SourceOrderID = pedidoID
	}
	return sale, nil
}

// Void voids a venta or compra; the backend answers 409 for a record that is already Anulada
func (c *Client) Void(ctx context.Context, kind trade.OrderKind, id int64) (*trade.Order, error) {
	if kind != trade.KindVenta && kind != trade.KindCompra {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("A %s cannot be voided", kind))
	}
	path, _ := collectionPath(kind)
	v, err := c.doJSON(ctx, request{
		method:   http.MethodPost,
		path:     fmt.Sprintf("%s/%d/void", path, id),
		endpoint: "POST " + path + "/{id}/void",
		mutating: true,
	})
	if err != nil {
		return nil, err
	}
	return c.decodeOrderAnswer(v, kind, path)
}

// SetStatus patches the status field only; the backend mutates no stock on this route
func (c *Client) SetStatus(ctx context.Context, kind trade.OrderKind, id int64, status trade.OrderStatus) (*trade.Order, error) {
	path, err := collectionPath(kind)
	if err != nil {
		return nil, err
	}
	v, err := c.doJSON(ctx, request{
		method:   http.MethodPatch,
		path:     fmt.Sprintf("%s/%d/estado", path, id),
		endpoint: "PATCH " + path + "/{id}/estado",
		body:     map[string]string{"estado": status.String()},
		mutating: true,
	})
	if err != nil {
		return nil, err
	}
	return c.decodeOrderAnswer(v, kind, path)
}

func (c *Client) decodeOrderAnswer(v any, kind trade.OrderKind, path string) (*trade.Order, error) {
	rec, err := unwrapRecord(v, "venta", "compra", "pedido", "sale", "purchase", "order")
	if err != nil {
		return nil, &shared.DomainError{Code: shared.CodeTransient, Message: fmt.Sprintf("Backend answer for %s has an unexpected shape", path)}
	}
	order, err := decodeOrder(rec, kind)
	if err != nil {
		c.logger.Warn("undecodable order answer", zap.String("path", path), zap.Error(err))
		return nil, &shared.DomainError{Code: shared.CodeTransient, Message: err.Error()}
	}
	return order, nil
}

// Order field aliases seen on the backend
var (
	orderIDFields     = []string{"id", "idVenta", "idCompra", "idPedido", "ventaId", "saleId"}
	orderDateFields   = []string{"date", "fecha", "fechaVenta", "fechaCompra", "createdAt"}
	orderClientFields = []string{"clientId", "clienteId", "idCliente", "cliente"}
	orderSupplFields  = []string{"supplierId", "proveedorId", "idProveedor", "proveedor"}
	orderCPNameFields = []string{"clienteNombre", "proveedorNombre", "nombreCliente", "nombreProveedor", "counterpartyName"}
	orderStatusFields = []string{"estado", "status"}
	orderLinesFields  = []string{"lines", "detalles", "detalle", "items", "productos"}
	orderSourceFields = []string{"pedidoId", "idPedido", "orderId", "sourceOrderId"}

	lineProductFields = []string{"productId", "productoId", "idProducto", "producto"}
	lineNameFields    = []string{"productName", "nombreProducto", "nombre"}
	lineQtyFields     = []string{"quantity", "cantidad"}
	linePriceFields   = []string{"unitPrice", "precioUnitario", "precio", "price"}
	lineSizeFields    = []string{"size", "talla"}
	lineColorFields   = []string{"color"}
	lineGramsFields   = []string{"grams", "gramos"}
	lineBulkFields    = []string{"isBulk", "granel", "esGranel"}
	lineFactorFields  = []string{"gramFactor", "factorGramos"}
)

func decodeOrder(rec record, kind trade.OrderKind) (*trade.Order, error) {
	o := &trade.Order{Kind: kind}

	id, ok := rec.integer(orderIDFields...)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("%s answer without a valid id", kind)
	}
	o.ID = id

	if t, ok := rec.when(orderDateFields...); ok {
		o.Date = t
	}
	cpFields := orderClientFields
	if kind == trade.KindCompra {
		cpFields = orderSupplFields
	}
	if cp, ok := rec.integer(cpFields...); ok {
		o.CounterpartyID = cp
	} else if nested, ok := asRecord(rec.raw(cpFields...)); ok {
		o.CounterpartyID, _ = nested.integer("id")
		o.CounterpartyName = nested.str("nombre", "name")
	}
	if name := rec.str(orderCPNameFields...); name != "" {
		o.CounterpartyName = name
	}

	o.Status = decodeStatus(rec.str(orderStatusFields...), kind)
	if src, ok := rec.integer(orderSourceFields...); ok && src != id {
		o.SourceOrderID = src
	}

	for i, lr := range rec.list(orderLinesFields...) {
		line, err := decodeLine(lr)
		if err != nil {
			return nil, fmt.Errorf("%s %d line %d: %w", kind, id, i, err)
		}
		o.Lines = append(o.Lines, *line)
	}
	return o, nil
}

// decodeStatus maps the backend's status spellings; an absent status means the kind's initial one
func decodeStatus(s string, kind trade.OrderKind) trade.OrderStatus {
	switch foldKey(s) {
	case "pendiente", "pending":
		return trade.StatusPendiente
	case "completada", "completado", "completed", "pagada", "paid":
		return trade.StatusCompletada
	case "anulada", "anulado", "voided", "cancelled", "canceled":
		return trade.StatusAnulada
	case "activa", "activo", "active":
		return trade.StatusActiva
	}
	return kind.InitialStatus()
}

// decodeLine reads one echoed line. The gram factor on the wire is a hint only; callers
// holding the catalog replace it with the product's declared unit.
func decodeLine(rec record) (*trade.LineItem, error) {
	productID, ok := rec.integer(lineProductFields...)
	if !ok {
		if nested, isRec := asRecord(rec.raw(lineProductFields...)); isRec {
			productID, ok = nested.integer("id")
		}
	}
	if !ok {
		return nil, fmt.Errorf("line without product id")
	}
	qty, _ := rec.integer(lineQtyFields...)
	price, _ := rec.num(linePriceFields...)
	grams, _ := rec.num(lineGramsFields...)
	factor, _ := rec.num(lineFactorFields...)
	return trade.NewLineItem(
		productID,
		rec.str(lineNameFields...),
		int(qty),
		price,
		rec.str(lineSizeFields...),
		rec.str(lineColorFields...),
		rec.boolean(false, lineBulkFields...),
		grams,
		factor,
	)
}

var _ trade.OrderGateway = (*Client)(nil)
