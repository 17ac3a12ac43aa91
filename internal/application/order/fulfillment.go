package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/fulfillment"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

// FulfillInput entrada de FulfillLine. Quantity nil entrega lo pendiente (fulfilled) o nada (processing).
type FulfillInput struct {
	OrderID  string
	LineID   string
	Status   entity.LineStatus
	Quantity *decimal.Decimal
	Notes    string
	UserID   string
}

// FulfillLine avanza el estado de despacho de una línea.
//
// En una sola transacción: bloquea la orden, valida la transición y el tope de cantidad, consume la
// reserva de la línea, descuenta el stock con su movimiento (out/sale), actualiza la línea, agrega el
// FulfillmentRecord y recalcula el estado de la orden. Un faltante aborta todo sin escrituras parciales.
// No se reintenta: un conflicto o timeout se devuelve al caller.
func (uc *UseCase) FulfillLine(ctx context.Context, in FulfillInput) (_ *View, err error) {
	ctx, span := tracer.Start(ctx, "order.FulfillLine")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("order.id", in.OrderID),
		attribute.String("order.line_id", in.LineID),
		attribute.String("fulfillment.status", string(in.Status)),
	)

	if in.OrderID == "" || in.LineID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	var (
		o    *entity.Order
		prev entity.OrderStatus
		line entity.OrderLine
		step fulfillment.Step
	)
	err = uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = tx.Orders.GetForUpdate(ctx, in.OrderID); err != nil {
			return err
		}
		if o.Status.IsClosed() {
			return domain.ErrOrderClosed
		}
		prev = o.Status
		idx := findLine(o, in.LineID)
		if idx < 0 {
			return errLineNotFound
		}
		line = o.Lines[idx]

		records, err := tx.Orders.ListFulfillments(ctx, line.ID)
		if err != nil {
			return err
		}
		if step, err = fulfillment.Plan(&line, in.Status, fulfillment.Delivered(records), in.Quantity); err != nil {
			return err
		}

		if step.Delivered.IsPositive() {
			if err := uc.dispatchStock(ctx, tx, o, &line, step.Delivered, in.UserID, now); err != nil {
				return err
			}
		}

		line.Status = step.Status
		line.UpdatedAt = now
		if err := tx.Orders.UpdateLine(ctx, &line); err != nil {
			return err
		}
		if err := tx.Orders.AppendFulfillment(ctx, &entity.FulfillmentRecord{
			ID:                uuid.New().String(),
			OrderID:           o.ID,
			LineID:            line.ID,
			Status:            step.Status,
			FulfilledQuantity: step.Delivered,
			Notes:             in.Notes,
			FulfilledBy:       in.UserID,
			FulfilledAt:       now,
		}); err != nil {
			return err
		}
		o.Lines[idx] = line

		summary := fulfillment.Rollup(o.Status, o.Lines)
		if summary.Status != o.Status {
			o.Status = summary.Status
			o.UpdatedAt = now
			return tx.Orders.UpdateHeader(ctx, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", o.ID).
		Str("line_id", line.ID).
		Str("status", string(step.Status)).
		Str("delivered", step.Delivered.String()).
		Str("order_status", string(o.Status)).
		Msg("despacho de línea registrado")

	uc.afterCommit(ctx, prev, o, []string{line.DepartmentID})
	return newView(o), nil
}

// dispatchStock consume la reserva de la línea y descuenta el stock del punto de consumo.
func (uc *UseCase) dispatchStock(
	ctx context.Context,
	tx repository.Stores,
	o *entity.Order,
	line *entity.OrderLine,
	quantity decimal.Decimal,
	userID string,
	now time.Time,
) error {
	if !line.ProductType.IsInventoryBacked() {
		uc.log.Debug().Str("order_id", o.ID).Str("line_id", line.ID).Str("product_type", string(line.ProductType)).
			Msg("línea sin inventario: se despacha sin descontar stock")
		return nil
	}
	filter := inventory.ReservationFilter{OrderID: o.ID, LineID: line.ID}
	if _, err := inventory.ConsumeInTx(ctx, tx, filter, &quantity, now); err != nil {
		return err
	}
	return tx.Stock.ApplyChanges(ctx, []entity.StockChange{{
		Scope:     line.Scope(),
		ItemID:    line.ProductID,
		ItemType:  line.ProductType,
		Direction: entity.MovementOut,
		Quantity:  quantity,
		Reason:    entity.ReasonSale,
		Reference: o.ID,
		CreatedBy: userID,
	}})
}
