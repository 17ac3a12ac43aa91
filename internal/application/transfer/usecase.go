// Package transfer mueve stock entre departamentos y secciones: preflight sin transacción,
// commit acotado con reintentos y, después del commit, el traslado best-effort de extras.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/hospitality-ops/internal/application/events"
	"github.com/jhoicas/hospitality-ops/internal/application/inventory"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/hospitality-ops/internal/application/transfer")

// ScopeResolver traduce códigos "DEPT" o "DEPT:section" a scopes.
type ScopeResolver interface {
	Resolve(ctx context.Context, code string) (entity.Scope, error)
}

// AvailabilityChecker preflight de inventario y bebidas (inventory.LedgerUseCase).
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, itemType entity.ProductType, itemID string, scope entity.Scope, quantity decimal.Decimal) (*inventory.Availability, error)
}

// ExtrasMover preflight y traslado independiente de extras (extras.UseCase).
type ExtrasMover interface {
	Get(ctx context.Context, extraID string) (*entity.Extra, error)
	CheckAvailability(ctx context.Context, scope entity.Scope, extraID string, quantity decimal.Decimal) (*inventory.Availability, error)
	Transfer(ctx context.Context, from, to entity.Scope, extraID string, quantity decimal.Decimal) error
}

// RetryPolicy intentos y backoff del ciclo preflight+commit.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // base; el intento n espera n*Backoff + jitter en [0, Backoff)
}

// DefaultRetryPolicy 3 intentos, base 100ms.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Backoff: 100 * time.Millisecond}

// DefaultResumeAfter antigüedad mínima de una aprobación para que Resume la tome.
const DefaultResumeAfter = 5 * time.Minute

// UseCase protocolo de traslados.
type UseCase struct {
	txRunner  inventory.TxRunner
	transfers repository.TransferRepository
	resolver  ScopeResolver
	ledger    AvailabilityChecker
	extras    ExtrasMover
	publisher events.Publisher
	retry     RetryPolicy
	resumeAt  time.Duration
	log       *logger.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// Deps dependencias del caso de uso. Publisher, Retry y ResumeAfter son opcionales.
type Deps struct {
	TxRunner    inventory.TxRunner
	Transfers   repository.TransferRepository
	Resolver    ScopeResolver
	Ledger      AvailabilityChecker
	Extras      ExtrasMover
	Publisher   events.Publisher
	Retry       RetryPolicy
	ResumeAfter time.Duration
	Log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Retry.MaxAttempts <= 0 {
		d.Retry.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if d.Retry.Backoff <= 0 {
		d.Retry.Backoff = DefaultRetryPolicy.Backoff
	}
	if d.ResumeAfter <= 0 {
		d.ResumeAfter = DefaultResumeAfter
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &UseCase{
		txRunner:  d.TxRunner,
		transfers: d.Transfers,
		resolver:  d.Resolver,
		ledger:    d.Ledger,
		extras:    d.Extras,
		publisher: d.Publisher,
		retry:     d.Retry,
		resumeAt:  d.ResumeAfter,
		log:       d.Log,
		sleep:     sleepCtx,
	}
}

// ItemInput ítem a trasladar.
type ItemInput struct {
	ProductType entity.ProductType
	ProductID   string
	Quantity    decimal.Decimal
}

// CreateInput entrada de Create. FromCode debe ser de departamento; ToCode puede incluir sección.
type CreateInput struct {
	FromCode string
	ToCode   string
	Items    []ItemInput
	Notes    string
	UserID   string
}

// Create registra un traslado pending. No mueve stock.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Transfer, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	from, err := uc.resolver.Resolve(ctx, in.FromCode)
	if err != nil {
		return nil, err
	}
	if from.IsSection() {
		return nil, fmt.Errorf("el origen de un traslado debe ser un departamento: %w", domain.ErrInvalidInput)
	}
	to, err := uc.resolver.Resolve(ctx, in.ToCode)
	if err != nil {
		return nil, err
	}
	if from.Equal(to) {
		return nil, fmt.Errorf("origen y destino iguales: %w", domain.ErrInvalidInput)
	}

	t := &entity.Transfer{
		ID:          uuid.New().String(),
		From:        from,
		To:          to,
		Status:      entity.TransferPending,
		Notes:       strings.TrimSpace(in.Notes),
		RequestedBy: in.UserID,
		CreatedAt:   time.Now(),
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || !it.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		switch {
		case it.ProductType.IsInventoryBacked():
		case it.ProductType == entity.ProductTypeExtra:
			if _, err := uc.extras.Get(ctx, it.ProductID); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("tipo %q no se traslada: %w", it.ProductType, domain.ErrInvalidInput)
		}
		t.Items = append(t.Items, entity.TransferItem{
			Position:    i + 1,
			ProductType: it.ProductType,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
		})
	}
	if err := uc.transfers.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get devuelve el traslado.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	return uc.transfers.GetByID(ctx, id)
}

// FailedExtra extra que no se pudo trasladar después del commit principal.
type FailedExtra struct {
	ExtraID  string
	Quantity decimal.Decimal
	Err      error
}

// ApproveResult resultado de Approve. Success es false solo si el núcleo no se movió.
type ApproveResult struct {
	Transfer     *entity.Transfer
	Success      bool
	Message      string
	FailedExtras []FailedExtra
}

// Approve ejecuta el traslado.
//
//  1. pending: ciclo preflight+commit con reintentos; el commit pasa el estado a approved y aplica
//     todas las salidas/entradas del núcleo en una sola transacción.
//  2. extras: uno por uno, cada uno en su transacción; un fallo se registra y se omite.
//  3. approved → completed.
//
// Solo quien ganó pending → approved mueve los extras y completa. Un traslado approved está en
// curso (o su aprobador murió, ver Resume) y uno completed no admite cambios: ambos son conflicto.
func (uc *UseCase) Approve(ctx context.Context, id, userID string) (_ *ApproveResult, err error) {
	ctx, span := tracer.Start(ctx, "transfer.Approve")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("transfer.id", id))

	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch t.Status {
	case entity.TransferCompleted:
		return nil, fmt.Errorf("el traslado ya está completado: %w", domain.ErrConflict)
	case entity.TransferApproved:
		return nil, fmt.Errorf("el traslado ya está en curso: %w", domain.ErrConflict)
	}
	if err := uc.commitWithRetry(ctx, t, userID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("el traslado ya está en curso: %w", err)
		}
		return nil, err
	}
	return uc.finish(ctx, t, userID)
}

// Resume retoma un traslado que quedó approved porque su aprobador no terminó la fase de extras.
// Solo aplica si la aprobación tiene más de ResumeAfter; la toma es atómica, así que entre dos
// reanudaciones concurrentes una sola mueve los extras. Los extras que el aprobador original ya
// movió antes de caer se intentan de nuevo y pueden fallar por faltante; quedan en FailedExtras.
func (uc *UseCase) Resume(ctx context.Context, id, userID string) (_ *ApproveResult, err error) {
	ctx, span := tracer.Start(ctx, "transfer.Resume")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("transfer.id", id))

	now := time.Now()
	if err := uc.transfers.ClaimStale(ctx, id, now.Add(-uc.resumeAt), userID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("el traslado no está approved o su aprobación es reciente: %w", err)
		}
		return nil, err
	}
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("transfer_id", t.ID).Str("user_id", userID).Msg("reanudando traslado approved")
	return uc.finish(ctx, t, userID)
}

// finish fase posterior al commit: extras best-effort, approved → completed y evento.
func (uc *UseCase) finish(ctx context.Context, t *entity.Transfer, userID string) (*ApproveResult, error) {
	result := &ApproveResult{Transfer: t, FailedExtras: uc.moveExtras(ctx, t)}

	now := time.Now()
	if err := uc.transfers.UpdateStatus(ctx, t.ID, entity.TransferApproved, entity.TransferCompleted, userID, now); err != nil {
		uc.log.Error().Err(err).Str("transfer_id", t.ID).Msg("no se pudo completar el traslado tras mover los extras")
		return nil, err
	}
	t.Status = entity.TransferCompleted
	t.CompletedAt = &now

	result.Success = true
	result.Message = "traslado completado"
	if n := len(result.FailedExtras); n > 0 {
		result.Message = fmt.Sprintf("traslado completado; %d extra(s) no se trasladaron", n)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("transfer.failed_extras", len(result.FailedExtras)))

	evt := events.New(events.TransferCompleted, t.ID, events.TransferCompletedPayload{
		TransferID:   t.ID,
		From:         t.From.Key(),
		To:           t.To.Key(),
		Items:        len(t.Items),
		FailedExtras: len(result.FailedExtras),
	})
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("no se pudo publicar transfer.completed")
	}
	uc.log.Info().Str("transfer_id", t.ID).Str("from", t.From.Key()).Str("to", t.To.Key()).
		Int("failed_extras", len(result.FailedExtras)).Msg("traslado completado")
	return result, nil
}

// commitWithRetry repite preflight+commit mientras el error sea transitorio.
// Un faltante de stock o un conflicto de estado se devuelven de inmediato.
func (uc *UseCase) commitWithRetry(ctx context.Context, t *entity.Transfer, userID string) error {
	var lastErr error
	for attempt := 1; attempt <= uc.retry.MaxAttempts; attempt++ {
		if err := uc.preflight(ctx, t); err != nil {
			return err
		}
		lastErr = uc.commit(ctx, t, userID)
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}
		uc.log.Warn().Err(lastErr).Str("transfer_id", t.ID).Int("attempt", attempt).
			Msg("conflicto transitorio en traslado, se reintenta")
		if attempt == uc.retry.MaxAttempts {
			break
		}
		if err := uc.sleep(ctx, uc.backoff(attempt)); err != nil {
			return errors.Join(lastErr, err)
		}
	}
	return fmt.Errorf("traslado %s: %d intentos agotados: %w", t.ID, uc.retry.MaxAttempts, lastErr)
}

func (uc *UseCase) backoff(attempt int) time.Duration {
	base := uc.retry.Backoff
	return time.Duration(attempt)*base + rand.N(base)
}

// preflight lectura sin transacción; puede estar desactualizada, el commit es la autoridad.
func (uc *UseCase) preflight(ctx context.Context, t *entity.Transfer) error {
	for _, it := range t.Items {
		var (
			av  *inventory.Availability
			err error
		)
		if it.ProductType == entity.ProductTypeExtra {
			av, err = uc.extras.CheckAvailability(ctx, t.From, it.ProductID, it.Quantity)
		} else {
			av, err = uc.ledger.CheckAvailability(ctx, it.ProductType, it.ProductID, t.From, it.Quantity)
		}
		if err != nil {
			return err
		}
		if !av.HasStock {
			return &domain.StockError{
				DepartmentID: t.From.DepartmentID,
				SectionID:    t.From.Section(),
				ItemID:       it.ProductID,
				Requested:    it.Quantity,
			}
		}
	}
	return nil
}

// commit transacción principal: estado pending → approved y un lote de cambios de stock
// (salida en el origen, entrada en el destino, cada uno con su movimiento).
func (uc *UseCase) commit(ctx context.Context, t *entity.Transfer, userID string) error {
	core := t.CoreItems()
	changes := make([]entity.StockChange, 0, 2*len(core))
	for _, it := range core {
		changes = append(changes,
			entity.StockChange{
				Scope: t.From, ItemID: it.ProductID, ItemType: it.ProductType,
				Direction: entity.MovementOut, Quantity: it.Quantity,
				Reason: entity.ReasonTransferOut, Reference: t.ID, CreatedBy: userID,
			},
			entity.StockChange{
				Scope: t.To, ItemID: it.ProductID, ItemType: it.ProductType,
				Direction: entity.MovementIn, Quantity: it.Quantity,
				Reason: entity.ReasonTransferIn, Reference: t.ID, CreatedBy: userID,
			},
		)
	}
	now := time.Now()
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		if err := tx.Transfers.UpdateStatus(ctx, t.ID, entity.TransferPending, entity.TransferApproved, userID, now); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Stock.ApplyChanges(ctx, changes)
	})
	if err != nil {
		return err
	}
	t.Status = entity.TransferApproved
	t.ApprovedBy = userID
	t.ApprovedAt = &now
	return nil
}

// moveExtras traslada cada extra en su propia transacción. Los fallos no deshacen el núcleo.
func (uc *UseCase) moveExtras(ctx context.Context, t *entity.Transfer) []FailedExtra {
	var failed []FailedExtra
	for _, it := range t.ExtraItems() {
		err := uc.extras.Transfer(ctx, t.From, t.To, it.ProductID, it.Quantity)
		if err == nil {
			continue
		}
		failed = append(failed, FailedExtra{ExtraID: it.ProductID, Quantity: it.Quantity, Err: err})
		uc.log.Error().Err(err).
			Str("transfer_id", t.ID).
			Str("extra_id", it.ProductID).
			Str("quantity", it.Quantity.String()).
			Msg("no se pudo trasladar el extra; el traslado principal ya fue confirmado")
		evt := events.New(events.ExtrasTransferFailed, t.ID, events.ExtrasTransferFailedPayload{
			TransferID: t.ID,
			ExtraID:    it.ProductID,
			Quantity:   it.Quantity.String(),
			Error:      err.Error(),
		})
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("no se pudo publicar extras.transfer_failed")
		}
	}
	return failed
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
