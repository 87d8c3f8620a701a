package sqlstore

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

// ErrBusy is returned when SQLite could not take a lock within the busy
// timeout.
var ErrBusy = errors.New("database is locked")

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// MySQL server error numbers.
const (
	myDuplicateEntry = 1062
	myDeadlock       = 1213
	myNoReferenced   = 1452
)

// mapError translates driver errors into domain errors. Unique key
// violations and lost serialization races mean another writer holds the
// path; a dangling reference means the referenced row does not exist.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%s: %w", pgErr.Message, domain.ErrPathConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", pgErr.Message, domain.ErrNotFound)
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myDuplicateEntry, myDeadlock:
			return fmt.Errorf("%s: %w", myErr.Message, domain.ErrPathConflict)
		case myNoReferenced:
			return fmt.Errorf("%s: %w", myErr.Message, domain.ErrNotFound)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return mapSQLiteError(liteErr.Code(), err)
	}
	return err
}

// mapSQLiteError maps an extended SQLite result code. A busy database is a
// lock timeout, which can hit any transaction, so it is not a path conflict.
func mapSQLiteError(code int, err error) error {
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%v: %w", err, domain.ErrPathConflict)
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%v: %w", err, domain.ErrNotFound)
	case code&0xff == sqlite3.SQLITE_BUSY:
		return fmt.Errorf("%v: %w", err, ErrBusy)
	}
	return err
}
