// Package extras administra consumibles complementarios (toallas, amenidades, fichas).
//
// Dos modos que no comparten aritmética: con seguimiento (cantidad conservada como el libro de stock)
// y sin seguimiento (cantidad constante 1, disponibilidad siempre positiva).
package extras

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
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// UseCase asignaciones y traslados de extras. Cada traslado usa su propia transacción.
type UseCase struct {
	txRunner inventory.TxRunner
	repo     repository.ExtraRepository
	log      *logger.Logger
}

// NewUseCase construye el caso de uso. repo es el repositorio fuera de tx.
func NewUseCase(txRunner inventory.TxRunner, repo repository.ExtraRepository, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repo: repo, log: log}
}

// CreateExtra registra un extra en el catálogo.
func (uc *UseCase) CreateExtra(ctx context.Context, name string, trackQuantity bool) (*entity.Extra, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	e := &entity.Extra{
		ID:            uuid.New().String(),
		Name:          name,
		TrackQuantity: trackQuantity,
		CreatedAt:     time.Now(),
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get devuelve el extra.
func (uc *UseCase) Get(ctx context.Context, extraID string) (*entity.Extra, error) {
	return uc.repo.GetByID(ctx, extraID)
}

// Allocate suma quantity al scope (con seguimiento) o fija la asignación en 1 (sin seguimiento).
func (uc *UseCase) Allocate(ctx context.Context, scope entity.Scope, extraID string, quantity decimal.Decimal) (*entity.ExtraAllocation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	extra, err := uc.repo.GetByID(ctx, extraID)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		if !extra.TrackQuantity {
			return tx.Extras.SetAllocation(ctx, scope, extraID, entity.UntrackedQuantity)
		}
		if !quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
		return tx.Extras.AddAllocation(ctx, scope, extraID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return uc.repo.GetAllocation(ctx, scope, extraID)
}

// CheckAvailability preflight de extras: sin seguimiento siempre hay; con seguimiento se compara quantity.
func (uc *UseCase) CheckAvailability(ctx context.Context, scope entity.Scope, extraID string, quantity decimal.Decimal) (*inventory.Availability, error) {
	extra, err := uc.repo.GetByID(ctx, extraID)
	if err != nil {
		return nil, err
	}
	if !extra.TrackQuantity {
		return &inventory.Availability{HasStock: true, Available: entity.UntrackedQuantity}, nil
	}
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	alloc, err := uc.repo.GetAllocation(ctx, scope, extraID)
	if err != nil {
		return nil, err
	}
	if alloc.Quantity.LessThan(quantity) {
		return &inventory.Availability{
			HasStock:  false,
			Available: alloc.Quantity,
			Message: fmt.Sprintf("extra %s insuficiente en %s: disponible %s, solicitado %s",
				extra.Name, scope.Key(), alloc.Quantity.String(), quantity.String()),
		}, nil
	}
	return &inventory.Availability{HasStock: true, Available: alloc.Quantity}, nil
}

// Transfer mueve un extra entre scopes en una transacción propia.
func (uc *UseCase) Transfer(ctx context.Context, from, to entity.Scope, extraID string, quantity decimal.Decimal) error {
	if err := from.Validate(); err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if from.Equal(to) {
		return domain.ErrInvalidInput
	}
	extra, err := uc.repo.GetByID(ctx, extraID)
	if err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		if extra.TrackQuantity {
			return transferTracked(ctx, tx.Extras, from, to, extraID, quantity)
		}
		return transferUntracked(ctx, tx.Extras, to, extraID)
	})
}

func transferTracked(ctx context.Context, repo repository.ExtraRepository, from, to entity.Scope, extraID string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	if err := repo.SubtractAllocation(ctx, from, extraID, quantity); err != nil {
		return err
	}
	return repo.AddAllocation(ctx, to, extraID, quantity)
}

// transferUntracked no descuenta el origen: el destino queda con la cantidad constante.
func transferUntracked(ctx context.Context, repo repository.ExtraRepository, to entity.Scope, extraID string) error {
	return repo.SetAllocation(ctx, to, extraID, entity.UntrackedQuantity)
}

// ListAllocations asignaciones de un scope.
func (uc *UseCase) ListAllocations(ctx context.Context, scope entity.Scope) ([]*entity.ExtraAllocation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return uc.repo.ListAllocations(ctx, scope)
}
