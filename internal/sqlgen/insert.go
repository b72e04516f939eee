package sqlgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ormlite/internal/schema"
)

// InsertParams builds a parameterized INSERT over all persisted fields.
// Fields whose value is absent are left out of both the column list and the
// bindings, as are unset (zero) temporal fields.
//
// With returnIdentity the statement ends in RETURNING <identity>; a shape
// without an identity field yields *schema.MetadataMissingError.
func InsertParams(shape *schema.Shape, values schema.Values, returnIdentity bool) (Statement, error) {
	var (
		cols     []string
		holders  []string
		bindings []Binding
	)
	for _, f := range shape.Fields {
		if !f.Persisted() {
			continue
		}
		v := values.Value(f.Name)
		if v == nil || unsetTime(v) {
			continue
		}
		b := Binding{Name: f.Name, Value: v}
		cols = append(cols, f.Name)
		holders = append(holders, b.Placeholder())
		bindings = append(bindings, b)
	}

	text, err := insertText(shape, cols, holders, returnIdentity)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Text: text, Bindings: bindings, ReturnsIdentity: returnIdentity}, nil
}

// InsertInline builds an INSERT with values written into the SQL text.
// Strings, times and UUIDs are single-quoted with embedded quotes doubled;
// other values are written as literals; absent values become NULL. Unset
// temporal fields are omitted.
func InsertInline(shape *schema.Shape, values schema.Values, returnIdentity bool) (Statement, error) {
	var cols, literals []string
	for _, f := range shape.Fields {
		if !f.Persisted() {
			continue
		}
		v := values.Value(f.Name)
		if unsetTime(v) {
			continue
		}
		cols = append(cols, f.Name)
		literals = append(literals, Literal(v))
	}

	text, err := insertText(shape, cols, literals, returnIdentity)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Text: text, ReturnsIdentity: returnIdentity}, nil
}

func insertText(shape *schema.Shape, cols, vals []string, returnIdentity bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(shape.Name)
	if len(cols) == 0 {
		sb.WriteString(" DEFAULT VALUES")
	} else {
		fmt.Fprintf(&sb, " (%s) VALUES (%s)", joinCols(cols), joinCols(vals))
	}

	if returnIdentity {
		identity, err := shape.IdentityColumn()
		if err != nil {
			return "", err
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(identity)
	}
	return sb.String(), nil
}

// unsetTime reports whether v is the zero instant, which stands for
// "no value" on temporal fields.
func unsetTime(v any) bool {
	t, ok := v.(time.Time)
	return ok && t.IsZero()
}
