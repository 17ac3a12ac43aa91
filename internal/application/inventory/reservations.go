package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// ReservationUseCase retenciones de stock entre la toma del pedido y el despacho.
// Las funciones *InTx permiten usarlas dentro de la transacción de la orden.
type ReservationUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner, log *logger.Logger) *ReservationUseCase {
	return &ReservationUseCase{txRunner: txRunner, log: log}
}

// ReserveInput retención para una orden (LineID opcional).
type ReserveInput struct {
	OrderID  string
	LineID   string
	ItemID   string
	Scope    entity.Scope
	Quantity decimal.Decimal
}

// Reserve retiene quantity contra el disponible del scope; nunca sobrevende.
func (uc *ReservationUseCase) Reserve(ctx context.Context, in ReserveInput) (*entity.Reservation, error) {
	var res *entity.Reservation
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		res, err = ReserveInTx(ctx, tx, in, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Consume marca como consumidas las reservas abiertas del ítem en la orden y libera su retención.
// quantity nil consume todo lo pendiente. Devuelve la cantidad consumida.
func (uc *ReservationUseCase) Consume(ctx context.Context, orderID, itemID string, quantity *decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(orderID) == "" || strings.TrimSpace(itemID) == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	consumed := decimal.Zero
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		consumed, err = ConsumeInTx(ctx, tx, ReservationFilter{OrderID: orderID, ItemID: itemID}, quantity, time.Now())
		return err
	})
	return consumed, err
}

// Release libera las reservas abiertas del ítem en la orden (itemID vacío = todas).
func (uc *ReservationUseCase) Release(ctx context.Context, orderID, itemID string) error {
	if strings.TrimSpace(orderID) == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		return ReleaseInTx(ctx, tx, ReservationFilter{OrderID: orderID, ItemID: itemID}, time.Now())
	})
}

// List devuelve todas las reservas de la orden.
func (uc *ReservationUseCase) List(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		out, err = tx.Reservations.ListByOrder(ctx, orderID)
		return err
	})
	return out, err
}

// ReservationFilter selecciona reservas abiertas de una orden; campos vacíos no filtran.
type ReservationFilter struct {
	OrderID string
	LineID  string
	ItemID  string
}

func (f ReservationFilter) match(r *entity.Reservation) bool {
	return (f.LineID == "" || r.LineID == f.LineID) && (f.ItemID == "" || r.ItemID == f.ItemID)
}

// ReserveInTx suma a reserved de forma condicional y crea la reserva.
func ReserveInTx(ctx context.Context, tx repository.Stores, in ReserveInput, now time.Time) (*entity.Reservation, error) {
	if strings.TrimSpace(in.OrderID) == "" || strings.TrimSpace(in.ItemID) == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if err := in.Scope.Validate(); err != nil {
		return nil, err
	}
	if err := tx.Stock.Reserve(ctx, in.Scope, in.ItemID, in.Quantity); err != nil {
		return nil, err
	}
	res := &entity.Reservation{
		ID:        uuid.New().String(),
		OrderID:   in.OrderID,
		LineID:    in.LineID,
		ItemID:    in.ItemID,
		Scope:     in.Scope,
		Quantity:  in.Quantity,
		Consumed:  decimal.Zero,
		Status:    entity.ReservationReserved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ConsumeInTx consume hasta quantity (nil = todo) de las reservas abiertas que coinciden,
// bajando reserved en el libro. Una reserva queda consumed cuando se consume completa.
// Cada reserva se actualiza de forma condicional antes de tocar el libro: si otra transacción
// la consumió o liberó en el medio, el error es transitorio y no se descuenta reserved dos veces.
func ConsumeInTx(ctx context.Context, tx repository.Stores, f ReservationFilter, quantity *decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	open, err := tx.Reservations.ListOpenByOrder(ctx, f.OrderID)
	if err != nil {
		return decimal.Zero, err
	}
	consumed := decimal.Zero
	for _, r := range open {
		if !f.match(r) {
			continue
		}
		take := r.Outstanding()
		if quantity != nil {
			take = decimal.Min(take, quantity.Sub(consumed))
		}
		if !take.IsPositive() {
			continue
		}
		prev := r.Consumed
		r.Consumed = r.Consumed.Add(take)
		if r.Consumed.GreaterThanOrEqual(r.Quantity) {
			r.Status = entity.ReservationConsumed
		}
		r.UpdatedAt = now
		if err := tx.Reservations.Update(ctx, r, prev); err != nil {
			return decimal.Zero, err
		}
		if err := tx.Stock.Unreserve(ctx, r.Scope, r.ItemID, take); err != nil {
			return decimal.Zero, err
		}
		consumed = consumed.Add(take)
	}
	return consumed, nil
}

// ReleaseInTx devuelve al disponible lo que sigue retenido y marca las reservas released.
func ReleaseInTx(ctx context.Context, tx repository.Stores, f ReservationFilter, now time.Time) error {
	open, err := tx.Reservations.ListOpenByOrder(ctx, f.OrderID)
	if err != nil {
		return err
	}
	for _, r := range open {
		if !f.match(r) {
			continue
		}
		out := r.Outstanding()
		r.Status = entity.ReservationReleased
		r.UpdatedAt = now
		if err := tx.Reservations.Update(ctx, r, r.Consumed); err != nil {
			return err
		}
		if out.IsPositive() {
			if err := tx.Stock.Unreserve(ctx, r.Scope, r.ItemID, out); err != nil {
				return err
			}
		}
	}
	return nil
}
