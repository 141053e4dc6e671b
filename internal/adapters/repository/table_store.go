package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

// SQLTableStore implements ports.TableStore on a postgres or sqlite database.
// Only registered tables and columns are addressable.
type SQLTableStore struct {
	db      *sqlx.DB
	driver  string
	columns map[string]map[string]bool
	logger  *logger.Logger
}

// NewSQLTableStore creates a table store over db. tables maps each table name
// to its column names.
func NewSQLTableStore(db *sqlx.DB, driver string, tables map[string][]string, logger *logger.Logger) *SQLTableStore {
	columns := make(map[string]map[string]bool, len(tables))
	for table, cols := range tables {
		set := make(map[string]bool, len(cols))
		for _, c := range cols {
			set[c] = true
		}
		columns[table] = set
	}

	return &SQLTableStore{
		db:      db,
		driver:  driver,
		columns: columns,
		logger:  logger.WithComponent("sql_table_store"),
	}
}

func (s *SQLTableStore) SelectAll(ctx context.Context, table string, order ports.Order) ([]ports.Row, error) {
	return s.selectRows(ctx, "select", table, "", nil, order)
}

func (s *SQLTableStore) SelectEq(ctx context.Context, table, column string, value any, order ports.Order) ([]ports.Row, error) {
	if err := s.checkColumn(table, column); err != nil {
		return nil, &entities.StoreError{Op: "select", Err: err}
	}
	return s.selectRows(ctx, "select", table, column, value, order)
}

func (s *SQLTableStore) Insert(ctx context.Context, table string, row ports.Row) (ports.Row, error) {
	start := time.Now()

	cols, err := s.sortedColumns(table, row)
	if err != nil {
		return nil, &entities.StoreError{Op: "insert", Err: err}
	}

	var query string
	args := make([]any, 0, len(cols))
	if len(cols) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING *`, quoteIdent(table))
	} else {
		quoted := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = quoteIdent(c)
			marks[i] = "?"
			args = append(args, encodeValue(row[c]))
		}
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING *`,
			quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	}

	out, err := s.queryOne(ctx, query, args...)
	s.logger.LogStoreCall("insert", table, sinceMillis(start), err)
	if err != nil {
		return nil, &entities.StoreError{Op: "insert", Err: err}
	}
	return out, nil
}

func (s *SQLTableStore) UpdateByID(ctx context.Context, table string, id int64, patch ports.Row) (ports.Row, error) {
	start := time.Now()

	cols, err := s.sortedColumns(table, patch)
	if err != nil {
		return nil, &entities.StoreError{Op: "update", Err: err}
	}

	if len(cols) == 0 {
		rows, err := s.selectRows(ctx, "update", table, "id", id, ports.OrderByID)
		if err != nil || len(rows) == 0 {
			return nil, err
		}
		return rows[0], nil
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, quoteIdent(c)+" = ?")
		args = append(args, encodeValue(patch[c]))
	}
	if _, touched := patch["updated_at"]; !touched && s.columns[table]["updated_at"] {
		sets = append(sets, quoteIdent("updated_at")+" = "+s.nowExpr())
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE "id" = ? RETURNING *`, quoteIdent(table), strings.Join(sets, ", "))

	out, err := s.queryOne(ctx, query, args...)
	s.logger.LogStoreCall("update", table, sinceMillis(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &entities.StoreError{Op: "update", Err: err}
	}
	return out, nil
}

func (s *SQLTableStore) DeleteByID(ctx context.Context, table string, id int64) error {
	start := time.Now()

	if _, ok := s.columns[table]; !ok {
		return &entities.StoreError{Op: "delete", Err: fmt.Errorf("unknown table %q", table)}
	}

	query := s.db.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE "id" = ?`, quoteIdent(table)))
	_, err := s.db.ExecContext(ctx, query, id)
	s.logger.LogStoreCall("delete", table, sinceMillis(start), err)
	if err != nil {
		return &entities.StoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *SQLTableStore) selectRows(ctx context.Context, op, table, column string, value any, order ports.Order) ([]ports.Row, error) {
	start := time.Now()

	if err := s.checkColumn(table, order.Column); err != nil {
		return nil, &entities.StoreError{Op: op, Err: err}
	}

	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table))
	var args []any
	if column != "" {
		query += fmt.Sprintf(` WHERE %s = ?`, quoteIdent(column))
		args = append(args, encodeValue(value))
	}
	direction := "DESC"
	if order.Ascending {
		direction = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, quoteIdent(order.Column), direction)

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		s.logger.LogStoreCall(op, table, sinceMillis(start), err)
		return nil, &entities.StoreError{Op: op, Err: err}
	}
	defer rows.Close()

	out := []ports.Row{}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			s.logger.LogStoreCall(op, table, sinceMillis(start), err)
			return nil, &entities.StoreError{Op: op, Err: err}
		}
		out = append(out, ports.Row(m))
	}
	err = rows.Err()
	s.logger.LogStoreCall(op, table, sinceMillis(start), err)
	if err != nil {
		return nil, &entities.StoreError{Op: op, Err: err}
	}
	return out, nil
}

func (s *SQLTableStore) queryOne(ctx context.Context, query string, args ...any) (ports.Row, error) {
	row := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...)
	m := map[string]any{}
	if err := row.MapScan(m); err != nil {
		return nil, err
	}
	return ports.Row(m), nil
}

func (s *SQLTableStore) checkColumn(table, column string) error {
	cols, ok := s.columns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	if !cols[column] {
		return fmt.Errorf("unknown column %q on %q", column, table)
	}
	return nil
}

func (s *SQLTableStore) sortedColumns(table string, row ports.Row) ([]string, error) {
	cols := make([]string, 0, len(row))
	for c := range row {
		if err := s.checkColumn(table, c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}

func (s *SQLTableStore) nowExpr() string {
	if s.driver == "sqlite" {
		return `strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`
	}
	return "now()"
}

// encodeValue turns list and time values into forms both drivers accept:
// JSON text for lists (jsonb / TEXT columns), RFC 3339 for times.
func encodeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []string:
		if x == nil {
			return nil
		}
		return marshalText(x)
	case []int64:
		if x == nil {
			return nil
		}
		return marshalText(x)
	case []any, map[string]any:
		return marshalText(x)
	}
	return v
}

func marshalText(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1000000
}
