package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/restgate/internal/core/domain"
	"github.com/custodia-labs/restgate/internal/core/ports/driven"
)

// tx implements driven.Tx on top of one database transaction.
type tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *tx) Hosts() driven.HostStore               { return hostStore{t} }
func (t *tx) Services() driven.ServiceStore         { return serviceStore{t} }
func (t *tx) AuthApps() driven.AuthAppStore         { return authAppStore{t} }
func (t *tx) ContentSets() driven.ContentSetStore   { return contentSetStore{t} }
func (t *tx) ContentFiles() driven.ContentFileStore { return contentFileStore{t} }
func (t *tx) Vendors() driven.AuthVendorStore       { return vendorStore{t} }

// row maps column names to values.
type row map[string]any

func (r row) columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// bind converts identities into their binary column form. pgx checks
// arguments itself and never calls driver.Valuer on them first.
func bind(args []any) []any {
	for i, a := range args {
		switch v := a.(type) {
		case domain.ID:
			args[i] = v.Bytes()
		case nullID:
			if v.Valid {
				args[i] = v.ID.Bytes()
			} else {
				args[i] = nil
			}
		}
	}
	return args
}

func (t *tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.tx.ExecContext(ctx, t.dialect.rebind(query), bind(args)...)
	return res, mapError(err)
}

func (t *tx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, t.dialect.rebind(query), bind(args)...)
	return rows, mapError(err)
}

func (t *tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.rebind(query), bind(args)...)
}

// insertRow inserts one row into table.
func (t *tx) insertRow(ctx context.Context, table string, values row) error {
	cols := values.columns()
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = values[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	_, err := t.exec(ctx, query, args...)
	return err
}

// updateRow updates the row of table whose id is id. It returns
// domain.ErrNotFound when no row matched.
func (t *tx) updateRow(ctx context.Context, table string, id domain.ID, values row) error {
	cols := values.columns()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := t.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectRow(res, table, id)
}

// deleteRow deletes the row of table whose id is id.
func (t *tx) deleteRow(ctx context.Context, table string, id domain.ID) error {
	res, err := t.exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return err
	}
	return expectRow(res, table, id)
}

func expectRow(res sql.Result, table string, id domain.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", strings.ReplaceAll(table, "_", " "), id, domain.ErrNotFound)
	}
	return nil
}

// notFound converts sql.ErrNoRows into domain.ErrNotFound.
func notFound(err error, what string) error {
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return mapError(err)
}

// encodeOptions stores an options object as JSON text.
func encodeOptions(options map[string]any) (string, error) {
	if options == nil {
		return "{}", nil
	}
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("marshalling options: %w", err)
	}
	return string(data), nil
}

func decodeOptions(data []byte) (map[string]any, error) {
	options := map[string]any{}
	if len(data) == 0 {
		return options, nil
	}
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("unmarshalling options: %w", err)
	}
	return options, nil
}

// nullID is a nullable identity column.
type nullID struct {
	ID    domain.ID
	Valid bool
}

func newNullID(id *domain.ID) nullID {
	if id == nil {
		return nullID{}
	}
	return nullID{ID: *id, Valid: true}
}

// Scan implements sql.Scanner.
func (n *nullID) Scan(src any) error {
	if src == nil {
		*n = nullID{}
		return nil
	}
	n.Valid = true
	return n.ID.Scan(src)
}

// Value implements driver.Valuer.
func (n nullID) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.ID.Value()
}

func (n nullID) ptr() *domain.ID {
	if !n.Valid {
		return nil
	}
	id := n.ID
	return &id
}
