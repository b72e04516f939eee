package sqlgen

import (
	"github.com/roach88/ormlite/internal/schema"
)

// ProcedureOptions selects which fields become procedure parameters.
type ProcedureOptions struct {
	// Update marks an update-style call.
	Update bool
	// IncludePrimaryKey keeps the primary key in update-style calls.
	// Insert-style calls always carry it.
	IncludePrimaryKey bool
}

// ProcedureCall builds the parameter list for a stored-procedure call over
// all persisted fields. Absent values are bound as NULL.
func ProcedureCall(shape *schema.Shape, values schema.Values, name string, opts ProcedureOptions) (Procedure, error) {
	if !schema.ValidIdentifier(name) {
		return Procedure{}, &schema.InvalidShapeError{Shape: shape.Name, Reason: "procedure name " + name + " is not a valid identifier"}
	}

	dropPK := opts.Update && !opts.IncludePrimaryKey
	var pk string
	if dropPK {
		var err error
		if pk, err = shape.PrimaryKeyColumn(); err != nil {
			return Procedure{}, err
		}
	}

	call := Procedure{Name: name}
	for _, f := range shape.Fields {
		if !f.Persisted() || (dropPK && f.Name == pk) {
			continue
		}
		call.Bindings = append(call.Bindings, Binding{Name: f.Name, Value: values.Value(f.Name)})
	}
	return call, nil
}
