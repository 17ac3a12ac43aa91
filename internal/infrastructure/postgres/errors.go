package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/hospitality-ops/internal/domain"
)

// SQLSTATE que indican contención o timeout: se pueden reintentar.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available (lock_timeout)
	"57014": true, // query_canceled (statement_timeout)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isCheckViolation 23514: p. ej. quantity >= 0 en stock_entries.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// classify traduce errores de pgx a errores de dominio. Los transitorios se envuelven con domain.Transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTransient) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Transient(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if transientCodes[pgErr.Code] {
			return domain.Transient(err)
		}
		if pgErr.Code == "23505" {
			return errors.Join(domain.ErrDuplicate, err)
		}
	}
	return err
}

// IsTransient expone la clasificación para herramientas y tests.
func IsTransient(err error) bool {
	return errors.Is(classify(err), domain.ErrTransient)
}
