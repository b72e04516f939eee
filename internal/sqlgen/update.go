package sqlgen

import (
	"strings"

	"github.com/roach88/ormlite/internal/schema"
)

// Update builds UPDATE <Shape> SET a=@a, ... WHERE <pk>=@<pk> over all
// persisted fields. Absent values are bound as NULL. The primary key stays in
// the SET list unless it is also the identity, and is bound once either way.
func Update(shape *schema.Shape, values schema.Values) (Statement, error) {
	pk, err := shape.PrimaryKeyColumn()
	if err != nil {
		return Statement{}, err
	}

	var (
		sets     []string
		bindings []Binding
		pkBound  bool
	)
	for _, f := range shape.Fields {
		if !f.Persisted() {
			continue
		}
		b := Binding{Name: f.Name, Value: values.Value(f.Name)}
		sets = append(sets, f.Name+"="+b.Placeholder())
		bindings = append(bindings, b)
		if f.Name == pk {
			pkBound = true
		}
	}
	if len(sets) == 0 {
		return Statement{}, &schema.InvalidShapeError{Shape: shape.Name, Reason: "no persisted fields to update"}
	}
	if !pkBound {
		bindings = append(bindings, Binding{Name: pk, Value: values.Value(pk)})
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(shape.Name)
	sb.WriteString(" SET ")
	sb.WriteString(joinCols(sets))
	sb.WriteString(" WHERE ")
	sb.WriteString(pk)
	sb.WriteString("=")
	sb.WriteString(ParamPrefix + pk)

	return Statement{Text: sb.String(), Bindings: bindings}, nil
}

// Delete builds DELETE FROM <Shape> WHERE <pk>=@<pk>, binding only the
// primary key.
func Delete(shape *schema.Shape, values schema.Values) (Statement, error) {
	pk, err := shape.PrimaryKeyColumn()
	if err != nil {
		return Statement{}, err
	}
	b := Binding{Name: pk, Value: values.Value(pk)}
	return Statement{
		Text:     "DELETE FROM " + shape.Name + " WHERE " + pk + "=" + b.Placeholder(),
		Bindings: []Binding{b},
	}, nil
}
