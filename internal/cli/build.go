package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ormlite/internal/orm"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// WriteOptions holds the flags of commands that build a write.
type WriteOptions struct {
	*RootOptions
	ShapeOptions
	Op                string
	ReturnIdentity    bool
	Procedure         string
	IncludePrimaryKey bool
}

func (o *WriteOptions) addFlags(cmd *cobra.Command) {
	o.ShapeOptions.addFlags(cmd)
	ops := make([]string, 0, len(orm.Ops()))
	for _, op := range orm.Ops() {
		ops = append(ops, string(op))
	}
	cmd.Flags().StringVar(&o.Op, "op", string(orm.OpInsert), "operation ("+strings.Join(ops, "|")+")")
	cmd.Flags().BoolVar(&o.ReturnIdentity, "return-identity", false, "insert ops return the generated identity")
	cmd.Flags().StringVar(&o.Procedure, "procedure", "", "stored procedure for procedure ops")
	cmd.Flags().BoolVar(&o.IncludePrimaryKey, "include-pk", false, "pass the primary key to update-procedure")
}

// command resolves the flags into an orm.Command.
func (o *WriteOptions) command() (orm.Command, error) {
	op, err := orm.ParseOp(o.Op)
	if err != nil {
		return orm.Command{}, err
	}
	if op.IsProcedure() && o.Procedure == "" {
		return orm.Command{}, fmt.Errorf("--op %s needs --procedure", op)
	}
	return orm.Command{
		Op:                op,
		ReturnIdentity:    o.ReturnIdentity,
		Procedure:         o.Procedure,
		IncludePrimaryKey: o.IncludePrimaryKey,
	}, nil
}

// BuildResult describes a built statement.
type BuildResult struct {
	Shape     string         `json:"shape"`
	Op        string         `json:"op"`
	SQL       string         `json:"sql,omitempty"`
	Procedure string         `json:"procedure,omitempty"`
	Bindings  []BindingValue `json:"bindings,omitempty"`
}

// BindingValue is a binding rendered as a SQL literal.
type BindingValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Validate an instance and print the statement for a write",
		Long: `Validate an instance against its shape and print the statement a write
would execute, without touching a database.

Example:
  ormlite build --specs ./specs --shape Student --op insert --set StudentName=Ann
  ormlite build --specs ./specs --shape Student --op update --values ann.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := buildPlan(opts, cmd, true)
			return err
		},
	}
	opts.addFlags(cmd)

	return cmd
}

// buildPlan loads the shape, reads the instance and builds the plan. With
// show set the plan is written out.
func buildPlan(opts *WriteOptions, cmd *cobra.Command, show bool) (orm.Plan, error) {
	f := newFormatter(opts.RootOptions, cmd)

	ocmd, err := opts.command()
	if err != nil {
		return orm.Plan{}, f.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	shape, err := loadShape(f, opts.Specs, opts.Shape)
	if err != nil {
		return orm.Plan{}, err
	}
	values, err := readValues(f, shape, &opts.ShapeOptions, cmd.InOrStdin())
	if err != nil {
		return orm.Plan{}, err
	}

	plan, err := orm.Build(shape, values, ocmd)
	if err != nil {
		return orm.Plan{}, failOperation(f, err)
	}
	if !show {
		return plan, nil
	}

	result := describePlan(plan)
	if f.Format == "json" {
		return plan, f.Success(result)
	}
	w := f.Writer
	if result.SQL != "" {
		fmt.Fprintln(w, result.SQL)
	} else {
		fmt.Fprintf(w, "CALL %s\n", result.Procedure)
	}
	for _, b := range result.Bindings {
		fmt.Fprintf(w, "  %s%s = %s\n", sqlgen.ParamPrefix, b.Name, b.Value)
	}
	return plan, nil
}

func describePlan(plan orm.Plan) BuildResult {
	result := BuildResult{
		Shape:     plan.Shape.Name,
		Op:        string(plan.Op),
		SQL:       plan.Statement.Text,
		Procedure: plan.Procedure.Name,
	}
	for _, b := range plan.Bindings() {
		result.Bindings = append(result.Bindings, BindingValue{Name: b.Name, Value: sqlgen.Literal(b.Value)})
	}
	return result
}
