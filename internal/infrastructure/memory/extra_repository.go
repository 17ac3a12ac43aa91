package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.ExtraRepository = (*extraRepo)(nil)

type extraRepo struct{ v view }

func (r *extraRepo) Create(_ context.Context, e *entity.Extra) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.extras[e.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, cur := range st.extras {
			if cur.Name == e.Name {
				return domain.ErrDuplicate
			}
		}
		c := *e
		st.extras[e.ID] = &c
		return nil
	})
}

func (r *extraRepo) GetByID(_ context.Context, id string) (*entity.Extra, error) {
	var out *entity.Extra
	r.v.read(func(st *state) {
		if e, ok := st.extras[id]; ok {
			c := *e
			out = &c
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *extraRepo) GetAllocation(_ context.Context, scope entity.Scope, extraID string) (*entity.ExtraAllocation, error) {
	var out *entity.ExtraAllocation
	r.v.read(func(st *state) {
		if a, ok := st.allocations[scopedKey(scope, extraID)]; ok {
			c := *a
			out = &c
		}
	})
	if out == nil {
		out = &entity.ExtraAllocation{Scope: scope, ExtraID: extraID, Quantity: decimal.Zero}
	}
	return out, nil
}

func (r *extraRepo) ListAllocations(_ context.Context, scope entity.Scope) ([]*entity.ExtraAllocation, error) {
	var out []*entity.ExtraAllocation
	r.v.read(func(st *state) {
		for _, a := range st.allocations {
			if a.Scope.Equal(scope) {
				c := *a
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExtraID < out[j].ExtraID })
	return out, nil
}

func (r *extraRepo) AddAllocation(_ context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		a := allocation(st, scope, extraID)
		a.Quantity = a.Quantity.Add(qty)
		a.UpdatedAt = r.v.now()
		return nil
	})
}

func (r *extraRepo) SubtractAllocation(_ context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		a, ok := st.allocations[scopedKey(scope, extraID)]
		if !ok || a.Quantity.LessThan(qty) {
			return &domain.StockError{DepartmentID: scope.DepartmentID, SectionID: scope.Section(), ItemID: extraID, Requested: qty}
		}
		a.Quantity = a.Quantity.Sub(qty)
		a.UpdatedAt = r.v.now()
		return nil
	})
}

func (r *extraRepo) SetAllocation(_ context.Context, scope entity.Scope, extraID string, qty decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		a := allocation(st, scope, extraID)
		a.Quantity = qty
		a.UpdatedAt = r.v.now()
		return nil
	})
}

func allocation(st *state, scope entity.Scope, extraID string) *entity.ExtraAllocation {
	key := scopedKey(scope, extraID)
	a, ok := st.allocations[key]
	if !ok {
		a = &entity.ExtraAllocation{Scope: cloneScope(scope), ExtraID: extraID, Quantity: decimal.Zero}
		st.allocations[key] = a
	}
	return a
}
