package store

import (
	"context"
	"fmt"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// ExecuteNonQuery runs text and returns the number of affected rows.
func (s *Store) ExecuteNonQuery(ctx context.Context, text string, bindings []sqlgen.Binding) (int64, error) {
	a, err := args(text, bindings)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	res, err := s.db.ExecContext(ctx, text, a...)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute: rows affected: %w", err)
	}
	return n, nil
}

// ExecuteScalar runs text and returns the first column of the first row,
// or nil when the statement yields no rows.
func (s *Store) ExecuteScalar(ctx context.Context, text string, bindings []sqlgen.Binding) (any, error) {
	a, err := args(text, bindings)
	if err != nil {
		return nil, fmt.Errorf("execute scalar: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, text, a...)
	if err != nil {
		return nil, fmt.Errorf("execute scalar: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("execute scalar: %w", err)
	}
	if !rows.Next() || len(cols) == 0 {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("execute scalar: %w", err)
		}
		return nil, nil
	}

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("execute scalar: %w", err)
	}
	// Drain so RETURNING statements complete before the rows close.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute scalar: %w", err)
	}
	return dest[0], nil
}

// Query runs text and returns a cursor over its rows. The caller closes
// the cursor.
func (s *Store) Query(ctx context.Context, text string, bindings []sqlgen.Binding) (materialize.Cursor, error) {
	a, err := args(text, bindings)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, text, a...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	cur, err := materialize.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return cur, nil
}
