package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ormlite/internal/orm"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	WriteOptions
	Database string
}

// ExecResult is the outcome of an executed write.
type ExecResult struct {
	BuildResult
	// Result is the affected-row count, or the identity for
	// --return-identity inserts.
	Result int64 `json:"result"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{WriteOptions: WriteOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Validate an instance and execute a write",
		Long: `Validate an instance, build its statement and execute it against a
SQLite database. Prints the affected-row count, or the generated identity
with --return-identity.

Example:
  ormlite exec --db ./school.db --specs ./specs --shape Student \
    --op insert --return-identity --set StudentName=Ann --set Age=20
  ormlite exec --db ./school.db --specs ./specs --shape Student \
    --op save-procedure --procedure SaveStudent --values ann.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, cmd *cobra.Command) error {
	plan, err := buildPlan(&opts.WriteOptions, cmd, false)
	if err != nil {
		return err
	}

	f := newFormatter(opts.RootOptions, cmd)
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	db := orm.New(st, orm.WithLogger(newLogger(opts.RootOptions, f.GetErrWriter())))
	n, err := db.Execute(cmd.Context(), plan)
	if err != nil {
		return failOperation(f, err)
	}

	result := ExecResult{BuildResult: describePlan(plan), Result: n}
	if f.Format == "json" {
		return f.Success(result)
	}
	if opts.ReturnIdentity {
		fmt.Fprintf(f.Writer, "identity: %d\n", n)
	} else {
		fmt.Fprintf(f.Writer, "rows affected: %d\n", n)
	}
	return nil
}
