package materialize

import (
	"database/sql"
)

// Cursor is a forward-only view over a result set.
//
// Value(i) is valid after a successful Next and until the following call to
// Next. Err reports any failure that stopped iteration early.
type Cursor interface {
	FieldCount() int
	FieldName(i int) string
	Next() bool
	Value(i int) any
	Err() error
	Close() error
}

type rowsCursor struct {
	rows *sql.Rows
	cols []string
	vals []any
	ptrs []any
	err  error
}

// FromRows adapts *sql.Rows to a Cursor.
func FromRows(rows *sql.Rows) (Cursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	c := &rowsCursor{
		rows: rows,
		cols: cols,
		vals: make([]any, len(cols)),
		ptrs: make([]any, len(cols)),
	}
	for i := range c.vals {
		c.ptrs[i] = &c.vals[i]
	}
	return c, nil
}

func (c *rowsCursor) FieldCount() int        { return len(c.cols) }
func (c *rowsCursor) FieldName(i int) string { return c.cols[i] }
func (c *rowsCursor) Value(i int) any        { return c.vals[i] }

func (c *rowsCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	for i := range c.vals {
		c.vals[i] = nil
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = err
		return false
	}
	return true
}

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowsCursor) Close() error { return c.rows.Close() }
