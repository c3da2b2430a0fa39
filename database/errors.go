package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/rpupo63/tenant-site-backend/errs"
)

// mapError maps gorm and PostgreSQL errors to errs sentinels. Errors that
// don't match a known pattern are returned unchanged.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(entity).WithCause(err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := errs.NewAlreadyExists(entity).WithCause(err)
		e.Details = fmt.Sprintf("unique constraint %s", pgErr.ConstraintName)
		return e

	case pgerrcode.ForeignKeyViolation:
		return errs.NewDatabaseError("reference", entity,
			fmt.Errorf("%w: %s", errs.ErrForeignKeyConstraint, pgErr.Detail))

	case pgerrcode.CheckViolation:
		return errs.NewDatabaseError("validate", entity,
			fmt.Errorf("%w: %s", errs.ErrCheckConstraint, pgErr.ConstraintName))

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return errs.NewSerializationFailureError("write "+entity, err)

	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
		return errs.NewDatabaseError("reach", entity, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, pgErr.Message))

	default:
		if pgerrcode.IsConnectionException(pgErr.Code) {
			return errs.NewDatabaseError("reach", entity, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, pgErr.Message))
		}
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}
