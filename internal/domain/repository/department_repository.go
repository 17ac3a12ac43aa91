package repository

import (
	"context"

	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

// DepartmentRepository define el puerto del directorio de departamentos y secciones.
type DepartmentRepository interface {
	Create(ctx context.Context, d *entity.Department) error
	GetByID(ctx context.Context, id string) (*entity.Department, error)
	GetByCode(ctx context.Context, code string) (*entity.Department, error)
	List(ctx context.Context) ([]*entity.Department, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.Department, error)
	CreateSection(ctx context.Context, s *entity.Section) error
	GetSectionByCode(ctx context.Context, departmentID, code string) (*entity.Section, error)
	ListSections(ctx context.Context, departmentID string) ([]*entity.Section, error)
}

// StatsRepository guarda el resumen por departamento.
type StatsRepository interface {
	Upsert(ctx context.Context, s *entity.DepartmentStats) error
	Get(ctx context.Context, departmentID string) (*entity.DepartmentStats, error)
}
