package repository

import (
	"context"

	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de órdenes, líneas y registros de despacho.
type OrderRepository interface {
	// Create inserta cabecera, líneas y departamentos asociados.
	Create(ctx context.Context, o *entity.Order) error
	// GetByID devuelve la orden con líneas (por número) y departamentos. ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateHeader persiste estado, pago, totales y LineSeq.
	UpdateHeader(ctx context.Context, o *entity.Order) error
	InsertLine(ctx context.Context, l *entity.OrderLine) error
	UpdateLine(ctx context.Context, l *entity.OrderLine) error
	DeleteLine(ctx context.Context, orderID, lineID string) error
	AddDepartment(ctx context.Context, orderID, departmentID string, status entity.OrderStatus) error
	SetDepartmentsStatus(ctx context.Context, orderID string, status entity.OrderStatus) error
	AppendFulfillment(ctx context.Context, r *entity.FulfillmentRecord) error
	ListFulfillments(ctx context.Context, lineID string) ([]*entity.FulfillmentRecord, error)
	// SummarizeDepartment cuenta líneas abiertas/despachadas e ingreso despachado de un departamento
	// (excluye órdenes canceladas y reembolsadas).
	SummarizeDepartment(ctx context.Context, departmentID string) (*entity.DepartmentStats, error)
}
