package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ormlite/internal/store"
)

// ProcedureOptions holds flags for the procedure commands.
type ProcedureOptions struct {
	*RootOptions
	Database string
	Body     string
}

// NewProcedureCommand creates the procedure command and its subcommands.
func NewProcedureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProcedureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "procedure",
		Short: "Manage stored procedures",
		Long: `Manage the stored procedures that save-procedure and update-procedure
writes call.

A procedure body is one or more SQL statements separated by ';' that
reference instance fields as @Field. The body runs in one transaction and
each statement receives only the parameters it references.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	register := &cobra.Command{
		Use:   "register <name> [file]",
		Short: "Register or replace a procedure",
		Long: `Register a procedure body, replacing any existing body of the same name.
The body comes from --body, from file, or from stdin when file is "-".

Example:
  ormlite procedure register --db ./school.db SaveStudent save_student.sql
  ormlite procedure register --db ./school.db RetitleCourse \
    --body 'UPDATE Course SET Title = @Title WHERE Code = @Code'`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcedureRegister(opts, args, cmd)
		},
	}
	register.Flags().StringVar(&opts.Body, "body", "", "procedure body")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List registered procedures",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcedureList(opts, cmd)
		},
	}

	drop := &cobra.Command{
		Use:           "drop <name>",
		Short:         "Remove a procedure",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcedureDrop(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(register, list, drop)
	return cmd
}

func runProcedureRegister(opts *ProcedureOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	name := args[0]

	body := opts.Body
	switch {
	case len(args) == 2 && body != "":
		return f.Fail(ExitCommandError, ErrCodeUsage, "give the body as --body or as a file, not both", nil)
	case len(args) == 2:
		var (
			data []byte
			err  error
		)
		if args[1] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("read body: %v", err), nil)
		}
		body = string(data)
	case body == "":
		return f.Fail(ExitCommandError, ErrCodeUsage, "procedure body is required (--body or file)", nil)
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RegisterProcedure(cmd.Context(), name, body); err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if f.Format == "json" {
		return f.Success(map[string]string{"registered": name})
	}
	fmt.Fprintf(f.Writer, "✓ Registered procedure %s\n", name)
	return nil
}

func runProcedureList(opts *ProcedureOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	procs, err := st.Procedures(cmd.Context())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if f.Format == "json" {
		return f.Success(procs)
	}
	if len(procs) == 0 {
		fmt.Fprintln(f.Writer, "No procedures registered.")
		return nil
	}
	for _, p := range procs {
		fmt.Fprintf(f.Writer, "%s (updated %s)\n", p.Name, p.UpdatedAt)
		if f.Verbose {
			fmt.Fprintf(f.Writer, "  %s\n", p.Body)
		}
	}
	return nil
}

func runProcedureDrop(opts *ProcedureOptions, name string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DropProcedure(cmd.Context(), name); err != nil {
		if store.IsProcedureNotFound(err) {
			return f.Fail(ExitCommandError, ErrCodeUnknown, err.Error(), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if f.Format == "json" {
		return f.Success(map[string]string{"dropped": name})
	}
	fmt.Fprintf(f.Writer, "✓ Dropped procedure %s\n", name)
	return nil
}
