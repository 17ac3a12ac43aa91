package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/fulfillment"
	"github.com/jhoicas/hospitality-ops/internal/domain/pricing"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var errLineNotFound = fmt.Errorf("línea de orden: %w", domain.ErrNotFound)

// LineInput datos de una línea nueva. ScopeCode es "DEPT" o "DEPT:section".
type LineInput struct {
	ProductID   string
	ProductType entity.ProductType
	ProductName string
	ScopeCode   string
	Quantity    decimal.Decimal
	UnitPrice   int64
}

// CreateInput entrada de Create.
type CreateInput struct {
	CustomerRef   string
	Lines         []LineInput
	DiscountTotal int64
	UserID        string
}

func (in LineInput) validate() error {
	if strings.TrimSpace(in.ProductID) == "" || !in.ProductType.Valid() || in.ProductType == entity.ProductTypeExtra {
		return domain.ErrInvalidInput
	}
	if !in.Quantity.IsPositive() || in.UnitPrice < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create registra la orden, reserva el stock de las líneas con inventario y asocia los departamentos.
// Si alguna reserva no alcanza, no se crea nada.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*View, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	id := uuid.New().String()
	o := &entity.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(id[:8])),
		Status:        entity.OrderPending,
		PaymentStatus: entity.PaymentUnpaid,
		CustomerRef:   strings.TrimSpace(in.CustomerRef),
		CreatedBy:     in.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, li := range in.Lines {
		line, err := uc.newLine(ctx, o, li, now)
		if err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, *line)
		addDepartment(o, line.DepartmentID)
	}
	if err := uc.reprice(o, in.DiscountTotal); err != nil {
		return nil, err
	}

	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		if err := tx.Orders.Create(ctx, o); err != nil {
			return err
		}
		for i := range o.Lines {
			if err := reserveLine(ctx, tx, &o.Lines[i], now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", o.ID).Str("order_number", o.OrderNumber).Int("lines", len(o.Lines)).
		Int64("total", o.Total).Msg("orden creada")
	if uc.stats != nil {
		uc.stats.Schedule(ctx, orderDepartments(o))
	}
	return newView(o), nil
}

// AddLine agrega una línea a una orden abierta (pending o processing).
func (uc *UseCase) AddLine(ctx context.Context, orderID string, in LineInput) (*View, error) {
	now := time.Now()
	var (
		o    *entity.Order
		prev entity.OrderStatus
		line *entity.OrderLine
	)
	probe := &entity.Order{ID: orderID}
	line, err := uc.newLine(ctx, probe, in, now)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = uc.editable(ctx, tx, orderID); err != nil {
			return err
		}
		prev = o.Status
		o.LineSeq++
		line.LineNumber = o.LineSeq
		if err := tx.Orders.InsertLine(ctx, line); err != nil {
			return err
		}
		if err := reserveLine(ctx, tx, line, now); err != nil {
			return err
		}
		o.Lines = append(o.Lines, *line)
		if err := tx.Orders.AddDepartment(ctx, o.ID, line.DepartmentID, o.Status); err != nil {
			return err
		}
		addDepartment(o, line.DepartmentID)
		return uc.saveHeader(ctx, tx, o, o.DiscountTotal, now)
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, prev, o, []string{line.DepartmentID})
	return newView(o), nil
}

// RemoveLine quita una línea pendiente y libera su reserva. La orden conserva al menos una línea.
func (uc *UseCase) RemoveLine(ctx context.Context, orderID, lineID string) (*View, error) {
	now := time.Now()
	var (
		o       *entity.Order
		prev    entity.OrderStatus
		deptIDs []string
	)
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = uc.editable(ctx, tx, orderID); err != nil {
			return err
		}
		prev = o.Status
		idx := findLine(o, lineID)
		if idx < 0 {
			return errLineNotFound
		}
		if o.Lines[idx].Status != entity.LinePending {
			return domain.ErrInvalidTransition
		}
		if len(o.Lines) == 1 {
			return domain.ErrInvalidInput
		}
		deptIDs = []string{o.Lines[idx].DepartmentID}
		if err := inventory.ReleaseInTx(ctx, tx, inventory.ReservationFilter{OrderID: o.ID, LineID: lineID}, now); err != nil {
			return err
		}
		if err := tx.Orders.DeleteLine(ctx, o.ID, lineID); err != nil {
			return err
		}
		o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
		return uc.saveHeader(ctx, tx, o, o.DiscountTotal, now)
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, prev, o, deptIDs)
	return newView(o), nil
}

// UpdateLineQuantity cambia la cantidad de una línea pendiente y rehace su reserva.
func (uc *UseCase) UpdateLineQuantity(ctx context.Context, orderID, lineID string, quantity decimal.Decimal) (*View, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	var o *entity.Order
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = uc.editable(ctx, tx, orderID); err != nil {
			return err
		}
		idx := findLine(o, lineID)
		if idx < 0 {
			return errLineNotFound
		}
		line := &o.Lines[idx]
		if line.Status != entity.LinePending {
			return domain.ErrInvalidTransition
		}
		if err := inventory.ReleaseInTx(ctx, tx, inventory.ReservationFilter{OrderID: o.ID, LineID: lineID}, now); err != nil {
			return err
		}
		line.Quantity = quantity
		line.LineTotal = entity.ComputeLineTotal(quantity, line.UnitPrice)
		line.UpdatedAt = now
		if err := reserveLine(ctx, tx, line, now); err != nil {
			return err
		}
		if err := tx.Orders.UpdateLine(ctx, line); err != nil {
			return err
		}
		return uc.saveHeader(ctx, tx, o, o.DiscountTotal, now)
	})
	if err != nil {
		return nil, err
	}
	return newView(o), nil
}

// ApplyDiscount fija el descuento total y recalcula. El total nunca queda negativo.
func (uc *UseCase) ApplyDiscount(ctx context.Context, orderID string, discountTotal int64) (*View, error) {
	if discountTotal < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	var o *entity.Order
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = tx.Orders.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if o.Status.IsClosed() {
			return domain.ErrOrderClosed
		}
		if o.Status == entity.OrderCompleted {
			return domain.ErrInvalidTransition
		}
		return uc.saveHeader(ctx, tx, o, discountTotal, now)
	})
	if err != nil {
		return nil, err
	}
	return newView(o), nil
}

// Cancel libera todas las reservas abiertas; solo órdenes pending o processing.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) (*View, error) {
	return uc.terminal(ctx, orderID, entity.OrderCancelled, func(ctx context.Context, tx repository.Stores, o *entity.Order, now time.Time) error {
		if o.Status != entity.OrderPending && o.Status != entity.OrderProcessing {
			return domain.ErrInvalidTransition
		}
		return inventory.ReleaseInTx(ctx, tx, inventory.ReservationFilter{OrderID: o.ID}, now)
	})
}

// Refund marca reembolsada una orden despachada o completada. No reingresa stock.
func (uc *UseCase) Refund(ctx context.Context, orderID string) (*View, error) {
	return uc.terminal(ctx, orderID, entity.OrderRefunded, func(_ context.Context, _ repository.Stores, o *entity.Order, _ time.Time) error {
		if o.Status != entity.OrderFulfilled && o.Status != entity.OrderCompleted {
			return domain.ErrInvalidTransition
		}
		o.PaymentStatus = entity.PaymentRefunded
		return nil
	})
}

// Complete cierra una orden despachada y la marca pagada.
func (uc *UseCase) Complete(ctx context.Context, orderID string) (*View, error) {
	return uc.terminal(ctx, orderID, entity.OrderCompleted, func(_ context.Context, _ repository.Stores, o *entity.Order, _ time.Time) error {
		if o.Status != entity.OrderFulfilled {
			return domain.ErrInvalidTransition
		}
		o.PaymentStatus = entity.PaymentPaid
		return nil
	})
}

type terminalCheck func(ctx context.Context, tx repository.Stores, o *entity.Order, now time.Time) error

func (uc *UseCase) terminal(ctx context.Context, orderID string, to entity.OrderStatus, check terminalCheck) (*View, error) {
	now := time.Now()
	var (
		o    *entity.Order
		prev entity.OrderStatus
	)
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		var err error
		if o, err = tx.Orders.GetForUpdate(ctx, orderID); err != nil {
			return err
		}
		if o.Status.IsClosed() {
			return domain.ErrOrderClosed
		}
		prev = o.Status
		if err := check(ctx, tx, o, now); err != nil {
			return err
		}
		o.Status = to
		o.UpdatedAt = now
		return tx.Orders.UpdateHeader(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", o.ID).Str("from", string(prev)).Str("to", string(to)).Msg("orden cerrada")
	uc.afterCommit(ctx, prev, o, orderDepartments(o))
	return newView(o), nil
}

// editable bloquea la orden y exige que admita cambios de líneas.
func (uc *UseCase) editable(ctx context.Context, tx repository.Stores, orderID string) (*entity.Order, error) {
	o, err := tx.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsClosed() {
		return nil, domain.ErrOrderClosed
	}
	if o.Status != entity.OrderPending && o.Status != entity.OrderProcessing {
		return nil, domain.ErrInvalidTransition
	}
	return o, nil
}

func (uc *UseCase) newLine(ctx context.Context, o *entity.Order, in LineInput, now time.Time) (*entity.OrderLine, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := uc.resolver.Resolve(ctx, in.ScopeCode)
	if err != nil {
		return nil, err
	}
	o.LineSeq++
	return &entity.OrderLine{
		ID:           uuid.New().String(),
		OrderID:      o.ID,
		LineNumber:   o.LineSeq,
		ProductID:    in.ProductID,
		ProductType:  in.ProductType,
		ProductName:  strings.TrimSpace(in.ProductName),
		DepartmentID: scope.DepartmentID,
		SectionID:    scope.SectionID,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		LineTotal:    entity.ComputeLineTotal(in.Quantity, in.UnitPrice),
		Status:       entity.LinePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// reprice recalcula totales con el Pricer y valida el invariante.
func (uc *UseCase) reprice(o *entity.Order, discountTotal int64) error {
	totals, err := uc.pricer.Price(o.Lines, discountTotal)
	if err != nil {
		return err
	}
	return pricing.Apply(o, totals)
}

// saveHeader recalcula totales y estado y persiste la cabecera.
func (uc *UseCase) saveHeader(ctx context.Context, tx repository.Stores, o *entity.Order, discountTotal int64, now time.Time) error {
	if err := uc.reprice(o, discountTotal); err != nil {
		return err
	}
	o.Status = fulfillment.Rollup(o.Status, o.Lines).Status
	o.UpdatedAt = now
	return tx.Orders.UpdateHeader(ctx, o)
}

func reserveLine(ctx context.Context, tx repository.Stores, line *entity.OrderLine, now time.Time) error {
	if !line.ProductType.IsInventoryBacked() {
		return nil
	}
	_, err := inventory.ReserveInTx(ctx, tx, inventory.ReserveInput{
		OrderID:  line.OrderID,
		LineID:   line.ID,
		ItemID:   line.ProductID,
		Scope:    line.Scope(),
		Quantity: line.Quantity,
	}, now)
	return err
}

func addDepartment(o *entity.Order, departmentID string) {
	for _, d := range o.Departments {
		if d.DepartmentID == departmentID {
			return
		}
	}
	o.Departments = append(o.Departments, entity.OrderDepartment{OrderID: o.ID, DepartmentID: departmentID, Status: o.Status})
}
