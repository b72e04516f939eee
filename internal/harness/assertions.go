package harness

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
	"github.com/roach88/ormlite/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s", event.Step, event.Op, event.Shape)
			if event.ErrorKind != "" {
				fmt.Fprintf(&buf, " (%s error)", event.ErrorKind)
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

// AssertionContext provides database access for state assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result and
// returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOpCount:
			err = assertOpCount(result.Trace, assertion)
		case AssertRowCount, AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires database context", i, assertion.Type)
			} else if assertion.Type == AssertRowCount {
				err = assertRowCount(actx.Ctx, actx.Store, assertion)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertOpCount counts trace events for the op, failed steps included.
func assertOpCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == assertion.Op {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertOpCount,
			Expected: fmt.Sprintf("%d %s steps", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d %s steps", count, assertion.Op),
			Trace:    trace,
		}
	}
	return nil
}

func assertRowCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !schema.ValidIdentifier(assertion.Table) {
		return fmt.Errorf("invalid table name %q", assertion.Table)
	}
	whereSQL, bindings, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := "SELECT COUNT(*) FROM " + assertion.Table
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	raw, err := st.ExecuteScalar(ctx, query, bindings)
	if err != nil {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if !stateValuesEqual(assertion.Count, raw) {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows in %s where %s", assertion.Count, assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   fmt.Sprintf("%v rows", raw),
		}
	}
	return nil
}

// assertFinalState checks that exactly one row matches the where clause
// and that it carries the expected values. Only keys in Expect are checked.
//
// Table and column names are identifiers and cannot be bound, so they are
// checked with schema.ValidIdentifier before use.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	if !schema.ValidIdentifier(assertion.Table) {
		return fmt.Errorf("invalid table name %q", assertion.Table)
	}
	whereSQL, bindings, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := "SELECT * FROM " + assertion.Table
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	cur, err := st.Query(ctx, query, bindings)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer cur.Close()

	row, matched, err := singleRow(cur)
	if err != nil {
		return fmt.Errorf("read %s: %w", assertion.Table, err)
	}
	whereDesc := formatWhereClause(assertion.Where)
	switch {
	case matched == 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	case matched > 1:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	keys := sortedKeys(assertion.Expect)
	for _, key := range keys {
		expected := assertion.Expect[key]
		actual, exists := lookupColumn(row, key)
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns", key),
			}
		}
		if !stateValuesEqual(expected, actual) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expected, expected),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, display(actual), actual),
			}
		}
	}
	return nil
}

// singleRow reads the first row of cur as a column map. matched is 0, 1,
// or 2 for two or more rows.
func singleRow(cur materialize.Cursor) (row map[string]any, matched int, err error) {
	if !cur.Next() {
		return nil, 0, cur.Err()
	}
	row = make(map[string]any, cur.FieldCount())
	for i := 0; i < cur.FieldCount(); i++ {
		row[cur.FieldName(i)] = cur.Value(i)
	}
	if cur.Next() {
		return nil, 2, nil
	}
	return row, 1, cur.Err()
}

// lookupColumn matches key against column names without regard to case,
// as SQLite does.
func lookupColumn(row map[string]any, key string) (any, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	for col, v := range row {
		if strings.EqualFold(col, key) {
			return v, true
		}
	}
	return nil, false
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism and each value is bound as @key.
func buildWhereClause(where map[string]any) (string, []sqlgen.Binding, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	bindings := make([]sqlgen.Binding, 0, len(keys))
	for _, key := range keys {
		if !schema.ValidIdentifier(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause", key)
		}
		b := sqlgen.Binding{Name: key, Value: where[key]}
		clauses = append(clauses, key+" = "+b.Placeholder())
		bindings = append(bindings, b)
	}
	return strings.Join(clauses, " AND "), bindings, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// display dereferences pointers so messages show values, not addresses.
func display(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// stateValuesEqual compares a scenario value, as decoded from YAML, with a
// value read from the database or materialized into a record. SQLite hands
// back int64 for integers and booleans, so numeric and boolean comparisons
// are loose.
func stateValuesEqual(expected, actual any) bool {
	actual = display(actual)
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch act := actual.(type) {
	case time.Time:
		return timeEqual(expected, act)
	case uuid.UUID:
		s, ok := expected.(string)
		return ok && strings.EqualFold(s, act.String())
	case []byte:
		switch exp := expected.(type) {
		case string:
			return string(act) == exp
		case []byte:
			return bytes.Equal(act, exp)
		}
		return false
	}

	switch exp := expected.(type) {
	case string:
		act, ok := actual.(string)
		return ok && exp == act
	case bool:
		if act, ok := actual.(bool); ok {
			return exp == act
		}
		if n, ok := integer(actual); ok {
			return exp == (n != 0)
		}
		return false
	case float32, float64:
		e, _ := number(exp)
		a, ok := number(actual)
		return ok && e == a
	}

	if e, ok := integer(expected); ok {
		if a, ok := integer(actual); ok {
			return e == a
		}
		if a, ok := number(actual); ok {
			return float64(e) == a
		}
		return false
	}
	return reflect.DeepEqual(expected, actual)
}

func timeEqual(expected any, actual time.Time) bool {
	switch exp := expected.(type) {
	case time.Time:
		return exp.Equal(actual)
	case string:
		for _, layout := range []string{sqlgen.TimeLayout, time.RFC3339Nano, time.DateOnly} {
			if t, err := time.Parse(layout, exp); err == nil {
				return t.Equal(actual.UTC())
			}
		}
	}
	return false
}

func integer(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := integer(v); ok {
		return float64(n), true
	}
	return 0, false
}
