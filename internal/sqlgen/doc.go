// Package sqlgen builds INSERT/UPDATE/DELETE statements from shape metadata
// and instance values.
//
// Output is structured: a Statement carries the SQL text and the ordered
// named bindings separately, so callers and tests can inspect bindings
// without parsing SQL.
//
// Rules shared by every builder:
//   - The table is the shape name and each column is the field name.
//   - Identity fields never appear in INSERT or UPDATE column lists.
//   - Non-persisted fields never appear in SQL text or bindings.
//   - A zero time.Time is "unset" and is left out of INSERT statements.
//   - Placeholders are @<field>; binding names carry no prefix.
//
// The target syntax is SQLite's. Identity-returning inserts end with a
// RETURNING clause naming the identity column.
//
// InsertInline interpolates values into the SQL text. It exists for
// compatibility only and must not be fed untrusted input.
package sqlgen
