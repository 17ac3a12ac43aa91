// Package order contiene la toma de pedidos y la máquina de estados de despacho por línea.
package order

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/hospitality-ops/internal/application/events"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/fulfillment"
	"github.com/jhoicas/hospitality-ops/internal/domain/pricing"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/hospitality-ops/internal/application/order")

// ScopeResolver traduce códigos "DEPT" o "DEPT:section" a scopes (directory.UseCase).
type ScopeResolver interface {
	Resolve(ctx context.Context, code string) (entity.Scope, error)
}

// StatsRefresher agenda el recálculo de estadísticas de departamentos después del commit
// (stats.UseCase). No bloquea la respuesta.
type StatsRefresher interface {
	Schedule(ctx context.Context, departmentIDs []string)
}

// UseCase órdenes: creación, edición de líneas, descuentos, estados terminales y despacho.
type UseCase struct {
	txRunner  inventory.TxRunner
	orders    repository.OrderRepository
	resolver  ScopeResolver
	pricer    pricing.Pricer
	stats     StatsRefresher
	publisher events.Publisher
	log       *logger.Logger
}

// Deps dependencias del caso de uso. Stats y Publisher son opcionales.
type Deps struct {
	TxRunner  inventory.TxRunner
	Orders    repository.OrderRepository
	Resolver  ScopeResolver
	Pricer    pricing.Pricer
	Stats     StatsRefresher
	Publisher events.Publisher
	Log       *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Pricer == nil {
		d.Pricer = pricing.FlatTax{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &UseCase{
		txRunner:  d.TxRunner,
		orders:    d.Orders,
		resolver:  d.Resolver,
		pricer:    d.Pricer,
		stats:     d.Stats,
		publisher: d.Publisher,
		log:       d.Log,
	}
}

// View orden con su avance de despacho.
type View struct {
	Order   *entity.Order
	Summary fulfillment.Summary
}

func newView(o *entity.Order) *View {
	return &View{Order: o, Summary: fulfillment.Rollup(o.Status, o.Lines)}
}

// Get devuelve la orden con líneas y departamentos.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*View, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return newView(o), nil
}

// Fulfillments devuelve el historial de despacho de una línea.
func (uc *UseCase) Fulfillments(ctx context.Context, orderID, lineID string) ([]*entity.FulfillmentRecord, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if findLine(o, lineID) < 0 {
		return nil, errLineNotFound
	}
	return uc.orders.ListFulfillments(ctx, lineID)
}

// afterCommit pasos secundarios: sincroniza departamentos, publica y recalcula estadísticas.
// Ninguno falla la operación principal; los errores quedan en el log.
func (uc *UseCase) afterCommit(ctx context.Context, prev entity.OrderStatus, o *entity.Order, departments []string) {
	if o.Status != prev {
		if err := uc.orders.SetDepartmentsStatus(ctx, o.ID, o.Status); err != nil {
			uc.log.Error().Err(err).Str("order_id", o.ID).Str("status", string(o.Status)).
				Msg("no se pudo sincronizar el estado de los departamentos de la orden")
		} else {
			for i := range o.Departments {
				o.Departments[i].Status = o.Status
			}
		}
	}
	if o.Status == entity.OrderFulfilled && prev != entity.OrderFulfilled {
		deptIDs := make([]string, 0, len(o.Departments))
		for _, d := range o.Departments {
			deptIDs = append(deptIDs, d.DepartmentID)
		}
		evt := events.New(events.OrderFulfilled, o.ID, events.OrderFulfilledPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			Departments: deptIDs,
			Total:       o.Total,
		})
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("no se pudo publicar order.fulfilled")
		}
	}
	if uc.stats != nil && len(departments) > 0 {
		uc.stats.Schedule(ctx, departments)
	}
}

func findLine(o *entity.Order, lineID string) int {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

func orderDepartments(o *entity.Order) []string {
	out := make([]string, 0, len(o.Departments))
	for _, d := range o.Departments {
		out = append(out, d.DepartmentID)
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
