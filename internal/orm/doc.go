// Package orm is the entry point for persisting entities.
//
// Every write runs the same pipeline:
//
//	validate -> introspect -> build -> execute
//
// A failing validation rule stops the pipeline before any statement is
// built and surfaces as *validate.ValidationError. A shape that lacks a
// marker the operation needs surfaces as *schema.MetadataMissingError.
// Errors from the Executor are returned exactly as the executor reported
// them.
//
// The package performs no I/O of its own. All database access goes through
// an Executor supplied by the caller (see internal/store for the SQLite one).
//
// Reads take caller-written SQL and materialize the rows:
//
//	students, err := orm.Find[Student](ctx, db, "SELECT * FROM Student WHERE Age > @Age",
//		sqlgen.Binding{Name: "Age", Value: 18})
package orm
