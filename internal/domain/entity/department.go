package entity

import "time"

// Department departamento operativo (habitaciones, restaurante, bar, juegos, tienda).
// ParentID permite jerarquías (RESTAURANTE → BAR) para el rollup de estadísticas.
type Department struct {
	ID        string
	Code      string
	Name      string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section subdivisión de un departamento (barra, terraza, salón...). Es punto de consumo.
type Section struct {
	ID           string
	DepartmentID string
	Code         string
	Name         string
	CreatedAt    time.Time
}

// DepartmentStats resumen recalculado después de cada despacho.
type DepartmentStats struct {
	DepartmentID     string
	OpenLines        int
	FulfilledLines   int
	FulfilledRevenue int64
	UpdatedAt        time.Time
}
