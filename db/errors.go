package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/talenthub/apperror"
)

// PostgreSQL SQLSTATE codes the store layers care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// When constraint is non-empty the violated constraint name must match too.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Translate maps a store error to the apperror taxonomy. what names the entity
// ("job", "application") and is used in the client-facing message.
// Errors that are already *apperror.AppError pass through untouched.
func Translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFoundError(what+" not found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewTimeoutError(what+" query timed out", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflictError(what+" already exists", err)
		case pgForeignKeyViolation:
			return apperror.NewValidationError("referenced record does not exist", err)
		case pgCheckViolation:
			return apperror.NewValidationError("value out of range", err)
		}
	}
	return apperror.NewDatabaseError(what+" query failed", err)
}
