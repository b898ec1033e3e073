package trade

import (
	"fmt"
	"time"

	"github.com/petsupply/storefront/internal/domain/shared"
)

// OrderKind is the concrete record type of the order family
type OrderKind string

const (
	KindPedido OrderKind = "pedido"
	KindVenta  OrderKind = "venta"
	KindCompra OrderKind = "compra"
)

// IsValid checks if the kind is a known record type
func (k OrderKind) IsValid() bool {
	switch k {
	case KindPedido, KindVenta, KindCompra:
		return true
	}
	return false
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// DocumentKind returns the tax policy the record is totalled under
func (k OrderKind) DocumentKind() DocumentKind {
	switch k {
	case KindCompra:
		return DocumentPurchase
	case KindPedido:
		return DocumentOrder
	}
	return DocumentSale
}

// InitialStatus is the status a record of this kind is created in
func (k OrderKind) InitialStatus() OrderStatus {
	switch k {
	case KindPedido:
		return StatusPendiente
	case KindCompra:
		return StatusActiva
	}
	return StatusCompletada
}

// OrderStatus is the lifecycle state of a record
type OrderStatus string

const (
	StatusPendiente  OrderStatus = "Pendiente"
	StatusCompletada OrderStatus = "Completada"
	StatusAnulada    OrderStatus = "Anulada"
	StatusActiva     OrderStatus = "Activa"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPendiente, StatusCompletada, StatusAnulada, StatusActiva:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransition checks whether a record of kind may move from one status to another
//
//	pedido: Pendiente -> Completada
//	venta:  Completada -> Anulada, Anulada -> Completada (administrative reactivation)
//	compra: Activa -> Anulada
func CanTransition(kind OrderKind, from, to OrderStatus) bool {
	switch kind {
	case KindPedido:
		return from == StatusPendiente && to == StatusCompletada
	case KindVenta:
		return (from == StatusCompletada && to == StatusAnulada) ||
			(from == StatusAnulada && to == StatusCompletada)
	case KindCompra:
		return from == StatusActiva && to == StatusAnulada
	}
	return false
}

// ErrAlreadyVoided is returned when voiding a record that is already Anulada
var ErrAlreadyVoided = shared.NewDomainError(shared.CodeConflict, "Record is already voided")

// Order is a pedido, venta or compra. Lines keep insertion order.
// Totals are never stored; they are recomputed from the lines on every read.
type Order struct {
	shared.BaseAggregateRoot
	Kind             OrderKind
	Date             time.Time
	CounterpartyID   int64 // client for pedido/venta, supplier for compra
	CounterpartyName string
	Lines            []LineItem
	Status           OrderStatus
	SourceOrderID    int64 // pedido a venta was confirmed from, zero otherwise
	VoidedAt         *time.Time
	ConfirmedAt      *time.Time
}

// NewOrder creates an unsubmitted record in its kind's initial status
func NewOrder(kind OrderKind, counterpartyID int64, counterpartyName string) (*Order, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown record kind %q", kind))
	}
	if counterpartyID <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Counterparty ID must be positive")
	}
	return &Order{
		Kind:             kind,
		Date:             time.Now(),
		CounterpartyID:   counterpartyID,
		CounterpartyName: counterpartyName,
		Lines:            make([]LineItem, 0),
		Status:           kind.InitialStatus(),
	}, nil
}

// IsSubmitted reports whether the backend has assigned an id
func (o *Order) IsSubmitted() bool {
	return o.ID > 0
}

// AddLine appends a line, or merges it into an existing line with the same MergeKey.
// Only unsubmitted records can be edited.
func (o *Order) AddLine(line LineItem) error {
	if o.IsSubmitted() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot edit lines of submitted %s %d", o.Kind, o.ID))
	}
	key := line.MergeKey()
	for i := range o.Lines {
		if o.Lines[i].MergeKey() == key {
			o.Lines[i].merge(line)
			return nil
		}
	}
	o.Lines = append(o.Lines, line)
	return nil
}

// Totals recomputes subtotal, tax and total from the current lines
func (o *Order) Totals() Totals {
	return ComputeTotals(o.Lines, o.Kind.DocumentKind())
}

// ProductIDs returns the distinct products touched by the record, in line order
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Lines))
	ids := make([]int64, 0, len(o.Lines))
	for _, l := range o.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

// ValidateForSubmission checks a record can be sent to the backend
func (o *Order) ValidateForSubmission() error {
	if o.IsSubmitted() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("%s %d was already submitted", o.Kind, o.ID))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cannot submit a record without lines")
	}
	return nil
}

// Confirm moves a pedido from Pendiente to Completada. The resulting venta is
// created by the backend; saleID is its id.
func (o *Order) Confirm(saleID int64) error {
	if o.Kind != KindPedido || !CanTransition(o.Kind, o.Status, StatusCompletada) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot confirm %s %d in %s status", o.Kind, o.ID, o.Status))
	}
	now := time.Now()
	o.Status = StatusCompletada
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewOrderConfirmedEvent(o, saleID))
	return nil
}

// Void moves a venta or compra to Anulada. Voiding an Anulada record returns
// ErrAlreadyVoided and leaves it unchanged.
func (o *Order) Void() error {
	if o.Status == StatusAnulada {
		return ErrAlreadyVoided
	}
	if !CanTransition(o.Kind, o.Status, StatusAnulada) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot void %s %d in %s status", o.Kind, o.ID, o.Status))
	}
	now := time.Now()
	o.Status = StatusAnulada
	o.VoidedAt = &now
	o.AddDomainEvent(NewOrderVoidedEvent(o))
	return nil
}

// Reactivate moves an Anulada venta back to Completada without any stock mutation
func (o *Order) Reactivate() error {
	if o.Kind != KindVenta || !CanTransition(o.Kind, o.Status, StatusCompletada) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot reactivate %s %d in %s status", o.Kind, o.ID, o.Status))
	}
	o.Status = StatusCompletada
	o.VoidedAt = nil
	o.AddDomainEvent(NewOrderReactivatedEvent(o))
	return nil
}

// IsVoided reports whether the record is Anulada
func (o *Order) IsVoided() bool {
	return o.Status == StatusAnulada
}
