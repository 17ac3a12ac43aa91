package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// ReservationRepository persiste las retenciones de stock por orden.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	// Update persiste consumo y estado solo si la reserva sigue reserved con consumed = prevConsumed.
	// Si otra transacción la modificó devuelve un error transitorio y no escribe.
	Update(ctx context.Context, r *entity.Reservation, prevConsumed decimal.Decimal) error
	// ListOpenByOrder devuelve las reservas en estado reserved, en orden de creación. Dentro de una
	// transacción las filas quedan bloqueadas hasta el commit.
	ListOpenByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error)
}
