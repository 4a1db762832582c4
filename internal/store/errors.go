// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store reports as sentinel errors.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgAdminShutdown        = "57P01"
	pgCrashShutdown        = "57P02"
	pgCannotConnectNow     = "57P03"
	pgQueryCanceled        = "57014"

	// SQLSTATE classes: connection exception, insufficient resources.
	pgClassConnection = "08"
	pgClassResources  = "53"
)

var (
	// ErrDuplicateSlug is returned when the categories_slug_key constraint
	// rejects a write.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrReferenced is returned when a foreign key blocks a write, e.g. a
	// delete of a category that still has children.
	ErrReferenced = errors.New("referenced by another row")

	// ErrConflict is returned when a concurrent transaction forced a
	// rollback. The whole operation may be retried.
	ErrConflict = errors.New("transaction conflict")
)

// classify wraps driver errors that carry domain meaning in one of the
// sentinel errors above. Other errors are returned unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}

// IsTransient reports whether err is a failure that may clear up on its own:
// a transaction conflict, a lost or refused connection, a timeout, or a
// server that is out of resources or restarting. Constraint violations,
// malformed queries and other permanent faults are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected,
			pgAdminShutdown, pgCrashShutdown, pgCannotConnectNow, pgQueryCanceled:
			return true
		}
		class := pgErr.Code[:min(2, len(pgErr.Code))]
		return class == pgClassConnection || class == pgClassResources
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
