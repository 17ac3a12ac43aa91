package memory

import (
	"context"
	"time"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var _ repository.TransferRepository = (*transferRepo)(nil)

type transferRepo struct{ v view }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrDuplicate
		}
		st.transfers[t.ID] = cloneTransfer(t)
		return nil
	})
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	r.v.read(func(st *state) {
		if t, ok := st.transfers[id]; ok {
			out = cloneTransfer(t)
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *transferRepo) UpdateStatus(_ context.Context, id string, from, to entity.TransferStatus, by string, at time.Time) error {
	return r.v.do(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return domain.ErrNotFound
		}
		if t.Status != from {
			return domain.ErrConflict
		}
		t.Status = to
		switch to {
		case entity.TransferApproved:
			t.ApprovedBy = by
			t.ApprovedAt = &at
		case entity.TransferCompleted:
			t.CompletedAt = &at
		}
		return nil
	})
}

func (r *transferRepo) ClaimStale(_ context.Context, id string, before time.Time, by string, at time.Time) error {
	return r.v.do(func(st *state) error {
		t, ok := st.transfers[id]
		if !ok {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferApproved || t.ApprovedAt == nil || !t.ApprovedAt.Before(before) {
			return domain.ErrConflict
		}
		t.ApprovedBy = by
		t.ApprovedAt = &at
		return nil
	})
}
