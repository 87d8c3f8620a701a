package sqlstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/restgate/internal/core/domain"
)

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"/var/lib/restgate/metadata.db", DialectSQLite},
		{"metadata.db", DialectSQLite},
		{"file:metadata.db?cache=shared", DialectSQLite},
		{"sqlite://data/metadata.db", DialectSQLite},
		{"postgres://user:pw@localhost:5432/gw", DialectPostgres},
		{"PostgreSQL://localhost/gw", DialectPostgres},
		{"host=localhost dbname=gw sslmode=disable", DialectPostgres},
		{"mysql://root:pw@tcp(localhost:3306)/gw", DialectMySQL},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := DetectDialect(tt.dsn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectDialect("  ")
	assert.Error(t, err)
	_, err = DetectDialect("mongodb://localhost")
	assert.Error(t, err)
}

func TestDialect_Rebind(t *testing.T) {
	q := "UPDATE service SET comments = ? WHERE id = ?"
	assert.Equal(t, "UPDATE service SET comments = $1 WHERE id = $2", DialectPostgres.rebind(q))
	assert.Equal(t, q, DialectSQLite.rebind(q))
	assert.Equal(t, q, DialectMySQL.rebind(q))
}

func TestEnsureSQLiteParams(t *testing.T) {
	got := ensureSQLiteParams("file:gw.db")
	assert.Equal(t,
		"file:gw.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate",
		got)

	got = ensureSQLiteParams("file:gw.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)")
	assert.Equal(t,
		"file:gw.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate",
		got)
}

func TestSQLitePathFromDSN(t *testing.T) {
	assert.Equal(t, "/tmp/gw.db", sqlitePathFromDSN("file:///tmp/gw.db?_txlock=immediate"))
	assert.Equal(t, "data/gw.db", sqlitePathFromDSN("data/gw.db"))
	assert.Empty(t, sqlitePathFromDSN(":memory:"))
	assert.Empty(t, sqlitePathFromDSN("file::memory:?cache=shared"))
	assert.Equal(t, "file:data/gw.db", normalizeSQLiteDSN("sqlite://data/gw.db"))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, mapError(plain))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, domain.ErrPathConflict},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, domain.ErrPathConflict},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, domain.ErrPathConflict},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, domain.ErrPathConflict},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, domain.ErrNotFound},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), domain.ErrPathConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}

	other := &pgconn.PgError{Code: "42P01"}
	assert.False(t, errors.Is(mapError(other), domain.ErrNotFound))
	assert.False(t, errors.Is(mapError(other), domain.ErrPathConflict))
}

func TestMapSQLiteError(t *testing.T) {
	cause := errors.New("sqlite failure")
	tests := []struct {
		name string
		code int
		want error
	}{
		{"unique", sqlite3.SQLITE_CONSTRAINT_UNIQUE, domain.ErrPathConflict},
		{"primary key", sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, domain.ErrPathConflict},
		{"foreign key", sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, domain.ErrNotFound},
		{"busy", sqlite3.SQLITE_BUSY, ErrBusy},
		{"busy snapshot", sqlite3.SQLITE_BUSY_SNAPSHOT, ErrBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapSQLiteError(tt.code, cause)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "sqlite failure")
		})
	}

	busy := mapSQLiteError(sqlite3.SQLITE_BUSY, cause)
	assert.False(t, errors.Is(busy, domain.ErrPathConflict))

	assert.Same(t, cause, mapSQLiteError(sqlite3.SQLITE_READONLY, cause))
}
