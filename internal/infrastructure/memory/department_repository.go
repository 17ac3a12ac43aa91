package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var (
	_ repository.DepartmentRepository = (*departmentRepo)(nil)
	_ repository.StatsRepository      = (*statsRepo)(nil)
)

type departmentRepo struct{ v view }

func (r *departmentRepo) Create(_ context.Context, d *entity.Department) error {
	return r.v.do(func(st *state) error {
		for _, cur := range st.departments {
			if cur.ID == d.ID || cur.Code == d.Code {
				return domain.ErrDuplicate
			}
		}
		c := *d
		st.departments[d.ID] = &c
		return nil
	})
}

func (r *departmentRepo) GetByID(_ context.Context, id string) (*entity.Department, error) {
	return r.find(func(d *entity.Department) bool { return d.ID == id })
}

func (r *departmentRepo) GetByCode(_ context.Context, code string) (*entity.Department, error) {
	return r.find(func(d *entity.Department) bool { return d.Code == code })
}

func (r *departmentRepo) find(match func(*entity.Department) bool) (*entity.Department, error) {
	var out *entity.Department
	r.v.read(func(st *state) {
		for _, d := range st.departments {
			if match(d) {
				c := *d
				out = &c
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *departmentRepo) List(_ context.Context) ([]*entity.Department, error) {
	return r.filter(func(*entity.Department) bool { return true }), nil
}

func (r *departmentRepo) ListChildren(_ context.Context, parentID string) ([]*entity.Department, error) {
	return r.filter(func(d *entity.Department) bool { return d.ParentID != nil && *d.ParentID == parentID }), nil
}

func (r *departmentRepo) filter(match func(*entity.Department) bool) []*entity.Department {
	var out []*entity.Department
	r.v.read(func(st *state) {
		for _, d := range st.departments {
			if match(d) {
				c := *d
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (r *departmentRepo) CreateSection(_ context.Context, s *entity.Section) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.departments[s.DepartmentID]; !ok {
			return domain.ErrNotFound
		}
		for _, cur := range st.sections {
			if cur.ID == s.ID || (cur.DepartmentID == s.DepartmentID && cur.Code == s.Code) {
				return domain.ErrDuplicate
			}
		}
		c := *s
		st.sections[s.ID] = &c
		return nil
	})
}

func (r *departmentRepo) GetSectionByCode(_ context.Context, departmentID, code string) (*entity.Section, error) {
	var out *entity.Section
	r.v.read(func(st *state) {
		for _, s := range st.sections {
			if s.DepartmentID == departmentID && s.Code == code {
				c := *s
				out = &c
				return
			}
		}
	})
	if out == nil {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *departmentRepo) ListSections(_ context.Context, departmentID string) ([]*entity.Section, error) {
	var out []*entity.Section
	r.v.read(func(st *state) {
		for _, s := range st.sections {
			if s.DepartmentID == departmentID {
				c := *s
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type statsRepo struct{ v view }

func (r *statsRepo) Upsert(_ context.Context, s *entity.DepartmentStats) error {
	return r.v.do(func(st *state) error {
		c := *s
		st.stats[s.DepartmentID] = &c
		return nil
	})
}

func (r *statsRepo) Get(_ context.Context, departmentID string) (*entity.DepartmentStats, error) {
	var out *entity.DepartmentStats
	r.v.read(func(st *state) {
		if s, ok := st.stats[departmentID]; ok {
			c := *s
			out = &c
		}
	})
	if out == nil {
		return &entity.DepartmentStats{DepartmentID: departmentID}, nil
	}
	return out, nil
}
