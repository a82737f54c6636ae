package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"ev-admin-backend/internal/query"
)

// Writer performs generic parameterized INSERT/UPDATE against named tables.
// Every value is bound, never interpolated. An affected-row count of zero is a
// caller-visible no-op ("not found"), distinct from a returned error, which
// signals infrastructure failure.
//
// A Writer wraps whatever handle it is given, so orchestration code can scope
// one to an open transaction.
type Writer struct {
	db *gorm.DB
}

// NewWriter creates a Writer over the given handle (plain DB or transaction).
func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

// Insert adds one row. Columns and values must be parallel and non-empty.
func (w *Writer) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	if table == "" {
		return 0, fmt.Errorf("%w: empty table", query.ErrBadSpec)
	}
	if len(columns) == 0 || len(columns) != len(values) {
		return 0, fmt.Errorf("%w: insert into %s: %d columns, %d values",
			query.ErrBadSpec, table, len(columns), len(values))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders)

	res := w.db.WithContext(ctx).Exec(sql, values...)
	if res.Error != nil {
		return 0, fmt.Errorf("insert into %s failed: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

// Update sets the given fields on every row matching all key fields
// (composite keys supported). The WHERE clause always includes an equality on
// every supplied key.
func (w *Writer) Update(ctx context.Context, table string, set map[string]any, keyFields []string, keyValues []any) (int64, error) {
	if table == "" {
		return 0, fmt.Errorf("%w: empty table", query.ErrBadSpec)
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("%w: update %s: empty set list", query.ErrBadSpec, table)
	}
	if len(keyFields) == 0 || len(keyFields) != len(keyValues) {
		return 0, fmt.Errorf("%w: update %s: %d key fields, %d key values",
			query.ErrBadSpec, table, len(keyFields), len(keyValues))
	}

	// Deterministic column order keeps generated SQL stable for tests and logs.
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	args := make([]any, 0, len(set)+len(keyValues))
	assigns := make([]string, len(fields))
	for i, f := range fields {
		assigns[i] = f + " = ?"
		args = append(args, set[f])
	}

	conds := make([]string, len(keyFields))
	for i, k := range keyFields {
		conds[i] = k + " = ?"
		args = append(args, keyValues[i])
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		table, strings.Join(assigns, ", "), strings.Join(conds, " AND "))

	res := w.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, fmt.Errorf("update %s failed: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes rows matching all key fields. Zero affected rows is a no-op,
// not an error.
func (w *Writer) Delete(ctx context.Context, table string, keyFields []string, keyValues []any) (int64, error) {
	if table == "" {
		return 0, fmt.Errorf("%w: empty table", query.ErrBadSpec)
	}
	if len(keyFields) == 0 || len(keyFields) != len(keyValues) {
		return 0, fmt.Errorf("%w: delete from %s: %d key fields, %d key values",
			query.ErrBadSpec, table, len(keyFields), len(keyValues))
	}

	conds := make([]string, len(keyFields))
	for i, k := range keyFields {
		conds[i] = k + " = ?"
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(conds, " AND "))

	res := w.db.WithContext(ctx).Exec(sql, keyValues...)
	if res.Error != nil {
		return 0, fmt.Errorf("delete from %s failed: %w", table, res.Error)
	}
	return res.RowsAffected, nil
}
