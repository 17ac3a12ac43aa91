package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var (
	_ repository.StockRepository    = (*stockRepo)(nil)
	_ repository.MovementRepository = (*movementRepo)(nil)
)

type stockRepo struct{ v view }

func (r *stockRepo) Get(_ context.Context, scope entity.Scope, itemID string) (*entity.StockEntry, error) {
	var out *entity.StockEntry
	r.v.read(func(st *state) {
		if e, ok := st.stock[scopedKey(scope, itemID)]; ok {
			c := *e
			out = &c
		}
	})
	if out == nil {
		out = &entity.StockEntry{Scope: scope, ItemID: itemID, Quantity: decimal.Zero, Reserved: decimal.Zero}
	}
	return out, nil
}

func (r *stockRepo) ListByScope(_ context.Context, scope entity.Scope) ([]*entity.StockEntry, error) {
	var out []*entity.StockEntry
	r.v.read(func(st *state) {
		for _, e := range st.stock {
			if e.Scope.Equal(scope) {
				c := *e
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// ApplyChanges aplica todos los cambios o ninguno (dentro de do la copia se descarta si hay error).
func (r *stockRepo) ApplyChanges(_ context.Context, changes []entity.StockChange) error {
	return r.v.do(func(st *state) error {
		now := r.v.now()
		for _, ch := range changes {
			if !ch.Quantity.IsPositive() {
				return domain.ErrInvalidInput
			}
			key := scopedKey(ch.Scope, ch.ItemID)
			e, ok := st.stock[key]
			switch ch.Direction {
			case entity.MovementOut:
				if !ok || e.Quantity.Sub(e.Reserved).LessThan(ch.Quantity) {
					return &domain.StockError{
						DepartmentID: ch.Scope.DepartmentID,
						SectionID:    ch.Scope.Section(),
						ItemID:       ch.ItemID,
						Requested:    ch.Quantity,
					}
				}
				e.Quantity = e.Quantity.Sub(ch.Quantity)
				e.UpdatedAt = now
			case entity.MovementIn:
				if !ok {
					e = &entity.StockEntry{
						Scope:    cloneScope(ch.Scope),
						ItemID:   ch.ItemID,
						ItemType: ch.ItemType,
						Quantity: decimal.Zero,
						Reserved: decimal.Zero,
					}
					st.stock[key] = e
				}
				e.Quantity = e.Quantity.Add(ch.Quantity)
				e.UpdatedAt = now
			default:
				return domain.ErrInvalidInput
			}
			st.movements = append(st.movements, &entity.MovementRecord{
				ID:        uuid.New().String(),
				Type:      ch.Direction,
				Quantity:  ch.Quantity,
				Reason:    ch.Reason,
				Reference: ch.Reference,
				ItemID:    ch.ItemID,
				ItemType:  ch.ItemType,
				Scope:     cloneScope(ch.Scope),
				CreatedBy: ch.CreatedBy,
				CreatedAt: now,
			})
		}
		return nil
	})
}

func (r *stockRepo) Reserve(_ context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		e, ok := st.stock[scopedKey(scope, itemID)]
		if !ok || e.Quantity.Sub(e.Reserved).LessThan(qty) {
			return &domain.StockError{DepartmentID: scope.DepartmentID, SectionID: scope.Section(), ItemID: itemID, Requested: qty}
		}
		e.Reserved = e.Reserved.Add(qty)
		e.UpdatedAt = r.v.now()
		return nil
	})
}

func (r *stockRepo) Unreserve(_ context.Context, scope entity.Scope, itemID string, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		e, ok := st.stock[scopedKey(scope, itemID)]
		if !ok {
			return nil
		}
		e.Reserved = decimal.Max(decimal.Zero, e.Reserved.Sub(qty))
		e.UpdatedAt = r.v.now()
		return nil
	})
}

type movementRepo struct{ v view }

func (r *movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.Reference == reference {
				c := *m
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *movementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.MovementRecord, error) {
	var all []*entity.MovementRecord
	r.v.read(func(st *state) {
		for _, m := range st.movements {
			if m.ItemID == itemID {
				c := *m
				all = append(all, &c)
			}
		}
	})
	return page(all, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
