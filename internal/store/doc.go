// Package store is the SQLite executor for ormlite.
//
// Store satisfies orm.Executor on top of github.com/mattn/go-sqlite3.
// Bindings are passed as sql.Named values, so statement text refers to
// them as @Name. Only the bindings a statement actually references are
// passed to the driver; a reference with no matching binding is an error.
//
// SQLite has no stored procedures. The store emulates them with a registry
// table (ormlite_procedures) holding named SQL bodies. A body may contain
// several statements separated by ';'. ExecuteProcedure runs them in one
// transaction and reports the total number of affected rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// The bootstrap schema is versioned with PRAGMA user_version.
package store
