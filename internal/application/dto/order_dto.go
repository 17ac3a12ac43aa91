package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de entrada. Scope es "DEPT" o "DEPT:section" (punto de consumo).
type OrderLineRequest struct {
	ProductID   string          `json:"product_id"`
	ProductType string          `json:"product_type"`
	ProductName string          `json:"product_name"`
	Scope       string          `json:"scope"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   int64           `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerRef   string             `json:"customer_ref,omitempty"`
	DiscountTotal int64              `json:"discount_total,omitempty"`
	Lines         []OrderLineRequest `json:"lines"`
}

// UpdateLineQuantityRequest body para PATCH /api/orders/:id/lines/:lineId.
type UpdateLineQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// FulfillLineRequest body para PUT /api/orders/:id/lines/:lineId/fulfillment.
// Sin quantity, "fulfilled" entrega lo pendiente y "processing" solo marca en preparación.
type FulfillLineRequest struct {
	Status   string           `json:"status"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

// ApplyDiscountRequest body para POST /api/orders/:id/discount.
type ApplyDiscountRequest struct {
	DiscountTotal int64 `json:"discount_total"`
}

// OrderLineResponse línea de salida.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	LineNumber   int             `json:"line_number"`
	ProductID    string          `json:"product_id"`
	ProductType  string          `json:"product_type"`
	ProductName  string          `json:"product_name"`
	DepartmentID string          `json:"department_id"`
	SectionID    *string         `json:"section_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    int64           `json:"unit_price"`
	LineTotal    int64           `json:"line_total"`
	Status       string          `json:"status"`
}

// OrderDepartmentResponse asociación orden-departamento.
type OrderDepartmentResponse struct {
	DepartmentID string `json:"department_id"`
	Status       string `json:"status"`
}

// FulfillmentSummaryResponse avance de despacho de la orden.
type FulfillmentSummaryResponse struct {
	TotalLines     int    `json:"total_lines"`
	FulfilledLines int    `json:"fulfilled_lines"`
	Percent        int    `json:"percent"`
	Status         string `json:"status"`
}

// OrderResponse orden completa.
type OrderResponse struct {
	ID            string                     `json:"id"`
	OrderNumber   string                     `json:"order_number"`
	Status        string                     `json:"status"`
	PaymentStatus string                     `json:"payment_status"`
	Subtotal      int64                      `json:"subtotal"`
	DiscountTotal int64                      `json:"discount_total"`
	Tax           int64                      `json:"tax"`
	Total         int64                      `json:"total"`
	CustomerRef   string                     `json:"customer_ref,omitempty"`
	Lines         []OrderLineResponse        `json:"lines"`
	Departments   []OrderDepartmentResponse  `json:"departments"`
	Fulfillment   FulfillmentSummaryResponse `json:"fulfillment"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}
