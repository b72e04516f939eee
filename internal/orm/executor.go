package orm

import (
	"context"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// Executor runs statements against a database.
//
// Bindings are named; statement text refers to them as @Name. Timeouts,
// pooling and retries are the executor's business.
type Executor interface {
	// ExecuteNonQuery runs text and returns the number of affected rows.
	ExecuteNonQuery(ctx context.Context, text string, bindings []sqlgen.Binding) (int64, error)

	// ExecuteScalar runs text and returns the first column of the first row.
	ExecuteScalar(ctx context.Context, text string, bindings []sqlgen.Binding) (any, error)

	// ExecuteProcedure invokes the named stored procedure.
	ExecuteProcedure(ctx context.Context, name string, bindings []sqlgen.Binding) (int64, error)

	// Query runs text and returns a cursor over its rows. The caller closes
	// the cursor.
	Query(ctx context.Context, text string, bindings []sqlgen.Binding) (materialize.Cursor, error)
}
