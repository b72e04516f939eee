package testutil

// SliceCursor is an in-memory materialize.Cursor over fixed rows.
//
// FailAfter, when positive, makes Next stop with Failure once that many rows
// have been returned.
type SliceCursor struct {
	Columns []string
	Rows    [][]any

	FailAfter int
	Failure   error

	pos    int
	err    error
	Closed bool
}

// NewSliceCursor builds a cursor over rows with the given column names.
func NewSliceCursor(columns []string, rows ...[]any) *SliceCursor {
	return &SliceCursor{Columns: columns, Rows: rows}
}

func (c *SliceCursor) FieldCount() int        { return len(c.Columns) }
func (c *SliceCursor) FieldName(i int) string { return c.Columns[i] }
func (c *SliceCursor) Value(i int) any        { return c.Rows[c.pos-1][i] }
func (c *SliceCursor) Err() error             { return c.err }

func (c *SliceCursor) Next() bool {
	if c.Closed || c.err != nil {
		return false
	}
	if c.FailAfter > 0 && c.pos >= c.FailAfter {
		c.err = c.Failure
		return false
	}
	if c.pos >= len(c.Rows) {
		return false
	}
	c.pos++
	return true
}

func (c *SliceCursor) Close() error {
	c.Closed = true
	return nil
}
