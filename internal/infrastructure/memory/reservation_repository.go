package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.ReservationRepository = (*reservationRepo)(nil)

type reservationRepo struct{ v view }

func (r *reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.reservations[res.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *res
		c.Scope = cloneScope(res.Scope)
		st.reservations[res.ID] = &c
		st.resOrder = append(st.resOrder, res.ID)
		return nil
	})
}

func (r *reservationRepo) Update(_ context.Context, res *entity.Reservation, prevConsumed decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		cur, ok := st.reservations[res.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Status != entity.ReservationReserved || !cur.Consumed.Equal(prevConsumed) {
			return domain.Transient(fmt.Errorf("reserva %s modificada por otra transacción", res.ID))
		}
		c := *res
		c.Scope = cloneScope(res.Scope)
		st.reservations[res.ID] = &c
		return nil
	})
}

func (r *reservationRepo) ListOpenByOrder(ctx context.Context, orderID string) ([]*entity.Reservation, error) {
	all, _ := r.ListByOrder(ctx, orderID)
	var out []*entity.Reservation
	for _, res := range all {
		if res.Status == entity.ReservationReserved {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *reservationRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	r.v.read(func(st *state) {
		for _, id := range st.resOrder {
			res := st.reservations[id]
			if res.OrderID == orderID {
				c := *res
				out = append(out, &c)
			}
		}
	})
	return out, nil
}
