package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/restgate/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
	"github.com/custodia-labs/restgate/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Store is a database/sql backed metadata store for SQLite, PostgreSQL and
// MySQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database named by dsn, applies pending migrations
// and seeds the built-in auth vendors.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dialect, err := DetectDialect(dsn)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch dialect {
	case DialectSQLite:
		db, err = openSQLite(dsn)
	case DialectPostgres:
		db, err = openPostgres(dsn)
	case DialectMySQL:
		db, err = openMySQL(dsn)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.seedVendors(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seeding auth vendors: %w", err)
	}
	logger.Debug("opened %s metadata store", dialect)
	return s, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	normalized := ensureSQLiteParams(normalizeSQLiteDSN(dsn))
	if err := ensureSQLiteDir(normalized); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", normalized)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	// One writer at a time; readers share the WAL.
	db.SetMaxOpenConns(4)
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: parse dsn: %w", err)
	}
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(strings.TrimSpace(dsn), "mysql://"))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	// UPDATE reports matched rows, not changed ones.
	cfg.ClientFoundRows = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open mysql: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Dialect returns the dialect the store talks.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations of the store's dialect.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	fsys, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return err
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		// MySQL runs DDL outside transactions, so statements go one by one.
		for _, stmt := range splitStatements(string(content)) {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing migration %s: %w", name, err)
			}
		}
		if _, err := s.db.ExecContext(ctx, s.dialect.rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("applied migration %s", name)
	}
	return nil
}

func splitStatements(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// seedVendors inserts the built-in auth vendors that are missing.
func (s *Store) seedVendors(ctx context.Context) error {
	return s.Update(ctx, func(t driven.Tx) error {
		x := t.(*tx)
		for _, v := range domain.BuiltInVendors() {
			var n int
			if err := x.queryRow(ctx, "SELECT COUNT(*) FROM auth_vendor WHERE id = ?", v.ID).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			err := x.insertRow(ctx, "auth_vendor", row{
				"id": v.ID, "name": v.Name, "validation_url": v.ValidationURL,
				"enabled": v.Enabled, "comments": v.Comments,
			})
			if err != nil {
				return fmt.Errorf("insert vendor %s: %w", v.Name, err)
			}
		}
		return nil
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx driven.Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// Update runs fn in a write transaction and commits when fn returns nil.
// PostgreSQL and MySQL run at SERIALIZABLE; SQLite takes the write lock on
// BEGIN.
func (s *Store) Update(ctx context.Context, fn func(tx driven.Tx) error) error {
	opts := &sql.TxOptions{}
	if s.dialect != DialectSQLite {
		opts.Isolation = sql.LevelSerializable
	}
	return s.run(ctx, opts, fn)
}

func (s *Store) run(ctx context.Context, opts *sql.TxOptions, fn func(tx driven.Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapError(err))
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			err = fmt.Errorf("transaction rolled back: %v", p)
		}
	}()

	if err := fn(&tx{tx: sqlTx, dialect: s.dialect}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Warn("rollback failed: %v", rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	return nil
}
