package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de la cabecera. cancelled y refunded son terminales.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderFulfilled  OrderStatus = "fulfilled"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// IsClosed indica que la orden ya no admite despachos ni cambios de líneas.
func (s OrderStatus) IsClosed() bool {
	return s == OrderCancelled || s == OrderRefunded
}

// PaymentStatus estado de pago (lo administra el POS; el núcleo solo lo transporta).
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// LineStatus estado de despacho de una línea. Solo avanza.
type LineStatus string

const (
	LinePending    LineStatus = "pending"
	LineProcessing LineStatus = "processing"
	LineFulfilled  LineStatus = "fulfilled"
)

// Order cabecera de pedido. Montos en unidades menores de moneda.
// Invariante: Total = Subtotal - DiscountTotal + Tax >= 0.
type Order struct {
	ID            string
	OrderNumber   string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Subtotal      int64
	DiscountTotal int64
	Tax           int64
	Total         int64
	CustomerRef   string
	LineSeq       int // último número de línea asignado
	Departments   []OrderDepartment
	Lines         []OrderLine
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderDepartment asociación de la orden con un departamento que la atiende.
type OrderDepartment struct {
	OrderID      string
	DepartmentID string
	Status       OrderStatus
}

// OrderLine línea de pedido. LineTotal = Quantity × UnitPrice (redondeado a la unidad menor).
type OrderLine struct {
	ID           string
	OrderID      string
	LineNumber   int
	ProductID    string
	ProductType  ProductType
	ProductName  string
	DepartmentID string
	SectionID    *string
	Quantity     decimal.Decimal
	UnitPrice    int64
	LineTotal    int64
	Status       LineStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Scope devuelve el punto de consumo de la línea (sección si existe, si no el departamento).
func (l *OrderLine) Scope() Scope {
	if l.SectionID == nil {
		return DepartmentScope(l.DepartmentID)
	}
	return SectionScope(l.DepartmentID, *l.SectionID)
}

// ComputeLineTotal calcula quantity × unitPrice redondeado a la unidad menor.
func ComputeLineTotal(quantity decimal.Decimal, unitPrice int64) int64 {
	return quantity.Mul(decimal.NewFromInt(unitPrice)).Round(0).IntPart()
}

// FulfillmentRecord registro append-only de cada transición de una línea.
type FulfillmentRecord struct {
	ID                string
	OrderID           string
	LineID            string
	Status            LineStatus
	FulfilledQuantity decimal.Decimal
	Notes             string
	FulfilledBy       string
	FulfilledAt       time.Time
}
