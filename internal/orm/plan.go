package orm

import (
	"fmt"
	"strings"

	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
	"github.com/roach88/ormlite/internal/validate"
)

// Op names a write operation.
type Op string

const (
	OpInsert          Op = "insert"
	OpInsertInline    Op = "insert-inline"
	OpUpdate          Op = "update"
	OpDelete          Op = "delete"
	OpSaveProcedure   Op = "save-procedure"
	OpUpdateProcedure Op = "update-procedure"
)

var ops = []Op{OpInsert, OpInsertInline, OpUpdate, OpDelete, OpSaveProcedure, OpUpdateProcedure}

// Ops returns every supported operation.
func Ops() []Op {
	return append([]Op(nil), ops...)
}

// ParseOp resolves an operation name.
func ParseOp(name string) (Op, error) {
	for _, op := range ops {
		if string(op) == name {
			return op, nil
		}
	}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return "", fmt.Errorf("unknown operation %q (want one of %s)", name, strings.Join(names, ", "))
}

// IsProcedure reports whether op runs as a stored-procedure call.
func (op Op) IsProcedure() bool {
	return op == OpSaveProcedure || op == OpUpdateProcedure
}

// Command describes one write.
type Command struct {
	Op Op

	// ReturnIdentity makes inserts yield the generated identity instead of
	// the affected-row count.
	ReturnIdentity bool

	// Procedure is the stored-procedure name for procedure ops.
	Procedure string

	// IncludePrimaryKey keeps the primary key in update-procedure calls.
	IncludePrimaryKey bool
}

// Plan is a validated, fully built write. Exactly one of Statement and
// Procedure is populated, depending on Op.
type Plan struct {
	Shape     *schema.Shape
	Op        Op
	Statement sqlgen.Statement
	Procedure sqlgen.Procedure
}

// Bindings returns the bindings of whichever half of the plan is populated.
func (p Plan) Bindings() []sqlgen.Binding {
	if p.Op.IsProcedure() {
		return p.Procedure.Bindings
	}
	return p.Statement.Bindings
}

// Build validates values against shape and builds the statement for cmd.
// Nothing is built when validation fails.
func Build(shape *schema.Shape, values schema.Values, cmd Command) (Plan, error) {
	if err := validate.Err(shape, values); err != nil {
		return Plan{}, err
	}

	plan := Plan{Shape: shape, Op: cmd.Op}
	var err error
	switch cmd.Op {
	case OpInsert:
		plan.Statement, err = sqlgen.InsertParams(shape, values, cmd.ReturnIdentity)
	case OpInsertInline:
		plan.Statement, err = sqlgen.InsertInline(shape, values, cmd.ReturnIdentity)
	case OpUpdate:
		plan.Statement, err = sqlgen.Update(shape, values)
	case OpDelete:
		plan.Statement, err = sqlgen.Delete(shape, values)
	case OpSaveProcedure:
		plan.Procedure, err = sqlgen.ProcedureCall(shape, values, cmd.Procedure, sqlgen.ProcedureOptions{})
	case OpUpdateProcedure:
		plan.Procedure, err = sqlgen.ProcedureCall(shape, values, cmd.Procedure, sqlgen.ProcedureOptions{
			Update:            true,
			IncludePrimaryKey: cmd.IncludePrimaryKey,
		})
	default:
		_, err = ParseOp(string(cmd.Op))
	}
	if err != nil {
		return Plan{}, err
	}
	return plan, nil
}
