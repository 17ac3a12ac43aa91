package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrOrderClosed         = errors.New("la orden está cancelada o reembolsada")
	ErrFulfillmentExceeded = errors.New("la cantidad despachada supera la cantidad de la línea")
	ErrNegativeTotal       = errors.New("el total de la orden no puede ser negativo")

	// ErrTransient marca fallos de concurrencia o timeout que pueden reintentarse
	// (serialización, deadlock, lock_timeout, deadline del contexto).
	ErrTransient = errors.New("conflicto transitorio de concurrencia")
)

// StockError describe un faltante concreto. errors.Is(err, ErrInsufficientStock) es true.
type StockError struct {
	DepartmentID string
	SectionID    string
	ItemID       string
	Requested    decimal.Decimal
}

func (e *StockError) Error() string {
	scope := e.DepartmentID
	if e.SectionID != "" {
		scope += ":" + e.SectionID
	}
	return fmt.Sprintf("stock insuficiente para %s en %s (solicitado %s)", e.ItemID, scope, e.Requested.String())
}

// Is permite comparar contra ErrInsufficientStock.
func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Transient envuelve err como reintentable conservando la causa original.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{cause: err}
}

type transientError struct {
	cause error
}

func (e *transientError) Error() string { return "transitorio: " + e.cause.Error() }
func (e *transientError) Unwrap() error { return e.cause }
func (e *transientError) Is(target error) bool {
	return target == ErrTransient
}

// IsRetryable decide si un error habilita un nuevo intento. Un faltante de stock nunca se reintenta.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrInsufficientStock) {
		return false
	}
	return errors.Is(err, ErrTransient)
}
