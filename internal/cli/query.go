package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ormlite/internal/orm"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database string
	Specs    []string
	Shape    string
	Binds    []string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run SQL and materialize the rows as a shape",
		Long: `Run caller-written SQL and convert each row into an instance of a shape.
Columns are matched to fields by name without regard to case; columns with
no matching field are ignored.

Example:
  ormlite query --db ./school.db --specs ./specs --shape Student \
    'SELECT * FROM Student WHERE Age > @MinAge' --bind MinAge=18`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringArrayVar(&opts.Specs, "specs", nil, "catalog directory (repeatable, required)")
	cmd.Flags().StringVar(&opts.Shape, "shape", "", "shape to materialize (required)")
	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "bind @name as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("specs")
	_ = cmd.MarkFlagRequired("shape")

	return cmd
}

func runQuery(opts *QueryOptions, text string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	bindings, err := parseBinds(opts.Binds)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}
	shape, err := loadShape(f, opts.Specs, opts.Shape)
	if err != nil {
		return err
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	db := orm.New(st, orm.WithLogger(newLogger(opts.RootOptions, f.GetErrWriter())))
	records, err := db.Query(cmd.Context(), shape, text, bindings...)
	if err != nil {
		return failOperation(f, err)
	}

	if f.Format == "json" {
		if records == nil {
			records = []schema.Record{}
		}
		return f.Success(records)
	}

	for _, rec := range records {
		fmt.Fprintln(f.Writer, formatRecord(shape, rec))
	}
	fmt.Fprintf(f.Writer, "(%d row(s))\n", len(records))
	return nil
}

// parseBinds turns name=value flags into bindings. Values are YAML scalars,
// so 18 binds an integer and '18' a string.
func parseBinds(binds []string) ([]sqlgen.Binding, error) {
	out := make([]sqlgen.Binding, 0, len(binds))
	for _, kv := range binds {
		name, text, ok := strings.Cut(kv, "=")
		if !ok || !schema.ValidIdentifier(name) {
			return nil, fmt.Errorf("--bind %q: want name=value", kv)
		}
		var v any
		if err := yaml.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("--bind %s: %w", name, err)
		}
		out = append(out, orm.Bind(name, v))
	}
	return out, nil
}

// formatRecord renders rec in field order as Name=literal pairs. Fields
// the query did not return are skipped.
func formatRecord(shape *schema.Shape, rec schema.Record) string {
	parts := make([]string, 0, len(rec))
	for _, f := range shape.Fields {
		if _, ok := rec[f.Name]; !ok {
			continue
		}
		parts = append(parts, f.Name+"="+sqlgen.Literal(rec.Value(f.Name)))
	}
	return strings.Join(parts, " ")
}
