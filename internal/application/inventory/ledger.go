package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
	"github.com/jhoicas/hospitality-ops/pkg/logger"
)

// Availability resultado de una consulta de disponibilidad.
type Availability struct {
	HasStock  bool
	Available decimal.Decimal
	Message   string
}

// LedgerUseCase libro de stock: consultas de disponibilidad y entradas/ajustes administrativos.
// Toda escritura pasa por StockRepository.ApplyChanges (cambio + movimiento en la misma tx).
type LedgerUseCase struct {
	txRunner  TxRunner
	stock     repository.StockRepository
	movements repository.MovementRepository
	log       *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. stock y movements son los repos fuera de tx (pool).
func NewLedgerUseCase(
	txRunner TxRunner,
	stock repository.StockRepository,
	movements repository.MovementRepository,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, stock: stock, movements: movements, log: log}
}

// CheckAvailability lectura sin bloqueo; compara contra available (quantity - reserved).
// Los productos que no llevan inventario siempre tienen disponibilidad.
func (uc *LedgerUseCase) CheckAvailability(
	ctx context.Context,
	itemType entity.ProductType,
	itemID string,
	scope entity.Scope,
	quantity decimal.Decimal,
) (*Availability, error) {
	if strings.TrimSpace(itemID) == "" || !quantity.IsPositive() || !itemType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !itemType.IsInventoryBacked() {
		return &Availability{HasStock: true, Message: "el producto no lleva inventario"}, nil
	}
	entry, err := uc.stock.Get(ctx, scope, itemID)
	if err != nil {
		return nil, err
	}
	available := entry.Available()
	if available.LessThan(quantity) {
		return &Availability{
			HasStock:  false,
			Available: available,
			Message: fmt.Sprintf("stock insuficiente para %s en %s: disponible %s, solicitado %s",
				itemID, scope.Key(), available.String(), quantity.String()),
		}, nil
	}
	return &Availability{HasStock: true, Available: available}, nil
}

// RestockInput entrada de mercancía a un scope.
type RestockInput struct {
	Scope     entity.Scope
	ItemID    string
	ItemType  entity.ProductType
	Quantity  decimal.Decimal
	Reference string
	UserID    string
}

// Restock suma stock (upsert) y registra el movimiento in/restock.
func (uc *LedgerUseCase) Restock(ctx context.Context, in RestockInput) error {
	if err := validateItem(in.Scope, in.ItemID, in.ItemType); err != nil {
		return err
	}
	if !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	change := entity.StockChange{
		Scope:     in.Scope,
		ItemID:    in.ItemID,
		ItemType:  in.ItemType,
		Direction: entity.MovementIn,
		Quantity:  in.Quantity,
		Reason:    entity.ReasonRestock,
		Reference: in.Reference,
		CreatedBy: in.UserID,
	}
	return uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		return tx.Stock.ApplyChanges(ctx, []entity.StockChange{change})
	})
}

// AdjustInput ajuste de inventario; Delta positivo suma, negativo resta (condicional).
type AdjustInput struct {
	Scope     entity.Scope
	ItemID    string
	ItemType  entity.ProductType
	Delta     decimal.Decimal
	Reference string
	UserID    string
}

// Adjust aplica un ajuste con motivo adjustment. Un ajuste negativo nunca deja el stock bajo lo reservado.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) error {
	if err := validateItem(in.Scope, in.ItemID, in.ItemType); err != nil {
		return err
	}
	if in.Delta.IsZero() {
		return domain.ErrInvalidInput
	}
	change := entity.StockChange{
		Scope:     in.Scope,
		ItemID:    in.ItemID,
		ItemType:  in.ItemType,
		Direction: entity.MovementIn,
		Quantity:  in.Delta.Abs(),
		Reason:    entity.ReasonAdjustment,
		Reference: in.Reference,
		CreatedBy: in.UserID,
	}
	if in.Delta.IsNegative() {
		change.Direction = entity.MovementOut
	}
	err := uc.txRunner.Run(ctx, func(tx repository.Stores) error {
		return tx.Stock.ApplyChanges(ctx, []entity.StockChange{change})
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("scope", in.Scope.Key()).
		Str("item_id", in.ItemID).
		Str("delta", in.Delta.String()).
		Str("user_id", in.UserID).
		Msg("ajuste de inventario aplicado")
	return nil
}

// ListStock devuelve las entradas de un scope.
func (uc *LedgerUseCase) ListStock(ctx context.Context, scope entity.Scope) ([]*entity.StockEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return uc.stock.ListByScope(ctx, scope)
}

// ListMovements devuelve el kardex por referencia (orden/traslado) o por ítem.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, reference, itemID string, limit, offset int) ([]*entity.MovementRecord, error) {
	switch {
	case reference != "":
		return uc.movements.ListByReference(ctx, reference)
	case itemID != "":
		return uc.movements.ListByItem(ctx, itemID, limit, offset)
	default:
		return nil, domain.ErrInvalidInput
	}
}

func validateItem(scope entity.Scope, itemID string, itemType entity.ProductType) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(itemID) == "" || !itemType.IsInventoryBacked() {
		return domain.ErrInvalidInput
	}
	return nil
}
