package orm

import (
	"context"
	"log/slog"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
	"github.com/roach88/ormlite/internal/validate"
)

// DB runs validated writes and materializing reads through an Executor.
//
// A DB holds no per-call state and is safe for concurrent use as long as
// the Executor is.
type DB struct {
	exec Executor
	log  *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l
		}
	}
}

// New creates a DB over exec.
func New(exec Executor, opts ...Option) *DB {
	db := &DB{exec: exec, log: slog.Default()}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Executor returns the underlying executor.
func (db *DB) Executor() Executor { return db.exec }

// Insert validates entity and inserts it with a parameterized statement.
// It returns the affected-row count, or the generated identity when
// returnIdentity is set.
func (db *DB) Insert(ctx context.Context, entity any, returnIdentity bool) (int64, error) {
	return db.saveStruct(ctx, entity, Command{Op: OpInsert, ReturnIdentity: returnIdentity})
}

// InsertInline is Insert with values written into the SQL text.
//
// Only strings, times and UUIDs are quoted. Prefer Insert.
func (db *DB) InsertInline(ctx context.Context, entity any, returnIdentity bool) (int64, error) {
	return db.saveStruct(ctx, entity, Command{Op: OpInsertInline, ReturnIdentity: returnIdentity})
}

// Update validates entity and updates the row matching its primary key.
func (db *DB) Update(ctx context.Context, entity any) (int64, error) {
	return db.saveStruct(ctx, entity, Command{Op: OpUpdate})
}

// Delete validates entity and deletes the row matching its primary key.
func (db *DB) Delete(ctx context.Context, entity any) (int64, error) {
	return db.saveStruct(ctx, entity, Command{Op: OpDelete})
}

// SaveByProcedure validates entity and passes its persisted fields to the
// named stored procedure.
func (db *DB) SaveByProcedure(ctx context.Context, entity any, procedure string) (int64, error) {
	return db.saveStruct(ctx, entity, Command{Op: OpSaveProcedure, Procedure: procedure})
}

// UpdateByProcedure is SaveByProcedure for update-style procedures. The
// primary key is passed only when includePrimaryKey is set.
func (db *DB) UpdateByProcedure(ctx context.Context, entity any, procedure string, includePrimaryKey bool) (int64, error) {
	return db.saveStruct(ctx, entity, Command{
		Op:                OpUpdateProcedure,
		Procedure:         procedure,
		IncludePrimaryKey: includePrimaryKey,
	})
}

func (db *DB) saveStruct(ctx context.Context, entity any, cmd Command) (int64, error) {
	shape, values, err := schema.Bind(entity)
	if err != nil {
		return 0, err
	}
	return db.Save(ctx, shape, values, cmd)
}

// Save runs cmd for an instance of shape. It serves shapes that have no Go
// type, such as those declared in a catalog.
func (db *DB) Save(ctx context.Context, shape *schema.Shape, values schema.Values, cmd Command) (int64, error) {
	plan, err := Build(shape, values, cmd)
	if err != nil {
		if validate.IsValidationError(err) {
			db.log.Warn("validation failed",
				"shape", shape.Name,
				"op", string(cmd.Op),
				"error", err)
		}
		return 0, err
	}
	return db.Execute(ctx, plan)
}

// Execute runs an already built plan.
func (db *DB) Execute(ctx context.Context, plan Plan) (int64, error) {
	db.log.Debug("statement built",
		"shape", plan.Shape.Name,
		"op", string(plan.Op),
		"sql", plan.Statement.Text,
		"procedure", plan.Procedure.Name,
		"bindings", len(plan.Bindings()))

	var (
		n   int64
		err error
	)
	switch {
	case plan.Op.IsProcedure():
		n, err = db.exec.ExecuteProcedure(ctx, plan.Procedure.Name, plan.Procedure.Bindings)
	case plan.Statement.ReturnsIdentity:
		var raw any
		raw, err = db.exec.ExecuteScalar(ctx, plan.Statement.Text, plan.Statement.Bindings)
		if err == nil {
			return identity(plan.Shape, raw)
		}
	default:
		n, err = db.exec.ExecuteNonQuery(ctx, plan.Statement.Text, plan.Statement.Bindings)
	}
	if err != nil {
		db.log.Error("statement failed",
			"shape", plan.Shape.Name,
			"op", string(plan.Op),
			"error", err)
		return 0, err
	}
	return n, nil
}

// Query runs caller-written SQL and materializes the rows as records of
// shape.
func (db *DB) Query(ctx context.Context, shape *schema.Shape, text string, bindings ...sqlgen.Binding) ([]schema.Record, error) {
	cur, err := db.query(ctx, shape.Name, text, bindings)
	if err != nil {
		return nil, err
	}
	return materialize.Records(shape, cur)
}

func (db *DB) query(ctx context.Context, shape, text string, bindings []sqlgen.Binding) (materialize.Cursor, error) {
	db.log.Debug("query",
		"shape", shape,
		"sql", text,
		"bindings", len(bindings))
	cur, err := db.exec.Query(ctx, text, bindings)
	if err != nil {
		db.log.Error("query failed", "shape", shape, "error", err)
		return nil, err
	}
	return cur, nil
}

// Bind is shorthand for a query binding referenced as @name.
func Bind(name string, value any) sqlgen.Binding {
	return sqlgen.Binding{Name: name, Value: value}
}

// Find runs caller-written SQL and materializes each row into a new T.
func Find[T any](ctx context.Context, db *DB, text string, bindings ...sqlgen.Binding) ([]T, error) {
	shape, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	cur, err := db.query(ctx, shape.Name, text, bindings)
	if err != nil {
		return nil, err
	}
	return materialize.Into[T](cur)
}
