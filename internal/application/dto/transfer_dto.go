package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest ítem de un traslado.
type TransferItemRequest struct {
	ProductType string          `json:"product_type"` // inventory | drink | extra
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers. From es siempre un departamento.
type CreateTransferRequest struct {
	From  string                `json:"from"`
	To    string                `json:"to"`
	Items []TransferItemRequest `json:"items"`
	Notes string                `json:"notes,omitempty"`
}

// TransferItemResponse ítem de salida.
type TransferItemResponse struct {
	Position    int             `json:"position"`
	ProductType string          `json:"product_type"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferResponse traslado completo.
type TransferResponse struct {
	ID               string                 `json:"id"`
	FromDepartmentID string                 `json:"from_department_id"`
	ToDepartmentID   string                 `json:"to_department_id"`
	ToSectionID      *string                `json:"to_section_id,omitempty"`
	Status           string                 `json:"status"`
	Notes            string                 `json:"notes,omitempty"`
	Items            []TransferItemResponse `json:"items"`
	RequestedBy      string                 `json:"requested_by"`
	ApprovedBy       string                 `json:"approved_by,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	ApprovedAt       *time.Time             `json:"approved_at,omitempty"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
}

// FailedExtraResponse extra que no se pudo mover después del commit principal.
type FailedExtraResponse struct {
	ExtraID  string          `json:"extra_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Error    string          `json:"error"`
}

// ApproveTransferResponse resultado de POST /api/transfers/:id/approve.
type ApproveTransferResponse struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	Transfer     TransferResponse      `json:"transfer"`
	FailedExtras []FailedExtraResponse `json:"failed_extras,omitempty"`
}
