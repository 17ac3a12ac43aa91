package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/hospitality-ops/internal/domain"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
	"github.com/jhoicas/hospitality-ops/internal/domain/repository"
)

var (
	_ repository.DepartmentRepository = (*DepartmentRepo)(nil)
	_ repository.StatsRepository      = (*StatsRepo)(nil)
)

const departmentColumns = `id, code, name, parent_id, created_at, updated_at`

// DepartmentRepo implementación del directorio de departamentos y secciones.
type DepartmentRepo struct {
	q Querier
}

// NewDepartmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

// Create inserta un departamento. Código repetido → ErrDuplicate.
func (r *DepartmentRepo) Create(ctx context.Context, d *entity.Department) error {
	query := `INSERT INTO departments (` + departmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, d.ID, d.Code, d.Name, d.ParentID, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Join(domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert department: %w", err)
	}
	return nil
}

// GetByID obtiene un departamento por ID.
func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*entity.Department, error) {
	return r.getOne(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id)
}

// GetByCode obtiene un departamento por código.
func (r *DepartmentRepo) GetByCode(ctx context.Context, code string) (*entity.Department, error) {
	return r.getOne(ctx, `SELECT `+departmentColumns+` FROM departments WHERE code = $1`, code)
}

func (r *DepartmentRepo) getOne(ctx context.Context, query, arg string) (*entity.Department, error) {
	d, err := scanDepartment(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return d, nil
}

// List todos los departamentos por código.
func (r *DepartmentRepo) List(ctx context.Context) ([]*entity.Department, error) {
	return r.list(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY code`)
}

// ListChildren hijos directos de un departamento.
func (r *DepartmentRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.Department, error) {
	return r.list(ctx, `SELECT `+departmentColumns+` FROM departments WHERE parent_id = $1 ORDER BY code`, parentID)
}

func (r *DepartmentRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Department, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CreateSection inserta una sección. Código repetido dentro del departamento → ErrDuplicate.
func (r *DepartmentRepo) CreateSection(ctx context.Context, s *entity.Section) error {
	query := `INSERT INTO sections (id, department_id, code, name, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, s.ID, s.DepartmentID, s.Code, s.Name, s.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return errors.Join(domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// GetSectionByCode busca una sección por código dentro de un departamento.
func (r *DepartmentRepo) GetSectionByCode(ctx context.Context, departmentID, code string) (*entity.Section, error) {
	query := `SELECT id, department_id, code, name, created_at FROM sections WHERE department_id = $1 AND code = $2`
	var s entity.Section
	err := r.q.QueryRow(ctx, query, departmentID, code).Scan(&s.ID, &s.DepartmentID, &s.Code, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get section: %w", err)
	}
	return &s, nil
}

// ListSections secciones de un departamento.
func (r *DepartmentRepo) ListSections(ctx context.Context, departmentID string) ([]*entity.Section, error) {
	query := `SELECT id, department_id, code, name, created_at FROM sections WHERE department_id = $1 ORDER BY code`
	rows, err := r.q.Query(ctx, query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()
	var list []*entity.Section
	for rows.Next() {
		var s entity.Section
		if err := rows.Scan(&s.ID, &s.DepartmentID, &s.Code, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func scanDepartment(row pgx.Row) (*entity.Department, error) {
	var d entity.Department
	if err := row.Scan(&d.ID, &d.Code, &d.Name, &d.ParentID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// StatsRepo persiste department_stats.
type StatsRepo struct {
	q Querier
}

// NewStatsRepository construye el adaptador de estadísticas.
func NewStatsRepository(q Querier) *StatsRepo {
	return &StatsRepo{q: q}
}

// Upsert reemplaza la fila del departamento.
func (r *StatsRepo) Upsert(ctx context.Context, s *entity.DepartmentStats) error {
	query := `
		INSERT INTO department_stats (department_id, open_lines, fulfilled_lines, fulfilled_revenue, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (department_id) DO UPDATE SET
			open_lines = EXCLUDED.open_lines,
			fulfilled_lines = EXCLUDED.fulfilled_lines,
			fulfilled_revenue = EXCLUDED.fulfilled_revenue,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, s.DepartmentID, s.OpenLines, s.FulfilledLines, s.FulfilledRevenue, s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert department stats: %w", err)
	}
	return nil
}

// Get devuelve la fila del departamento o una en cero.
func (r *StatsRepo) Get(ctx context.Context, departmentID string) (*entity.DepartmentStats, error) {
	query := `SELECT open_lines, fulfilled_lines, fulfilled_revenue, updated_at FROM department_stats WHERE department_id = $1`
	s := &entity.DepartmentStats{DepartmentID: departmentID}
	err := r.q.QueryRow(ctx, query, departmentID).Scan(&s.OpenLines, &s.FulfilledLines, &s.FulfilledRevenue, &s.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get department stats: %w", err)
	}
	return s, nil
}
