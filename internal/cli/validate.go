package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ormlite/internal/catalog"
	"github.com/roach88/ormlite/internal/validate"
)

// CatalogIssue is one catalog problem, positioned when CUE knows where.
type CatalogIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Shapes int            `json:"shapes"`
	Errors []CatalogIssue `json:"errors,omitempty"`

	// Instance is the rule-chain verdict for --shape, when given.
	Instance string `json:"instance,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ShapeOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <specs-dir>...",
		Short: "Validate catalogs, and optionally one instance",
		Long: `Compile CUE shape catalogs and report every problem found.

With --shape, the instance given by --values and --set is also run through
the shape's validation rules. The first failing rule's message is printed,
or SUCCESS.

Example:
  ormlite validate ./specs
  ormlite validate ./specs --shape Student --set StudentName=Ann --set Age=20`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Shape, "shape", "", "also validate an instance of this shape")
	cmd.Flags().StringVar(&opts.Values, "values", "", `YAML file holding the instance values ("-" for stdin)`)
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "set one value as key=value (repeatable)")

	return cmd
}

func runValidate(opts *ValidateOptions, dirs []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	cat, errs := catalog.LoadDirs(dirs, catalog.LoadModeCollectAll)
	if cat == nil && len(errs) > 0 {
		return failLoad(f, errs[0])
	}

	result := ValidationResult{Valid: len(errs) == 0, Shapes: len(cat.Shapes)}
	for _, err := range errs {
		result.Errors = append(result.Errors, issueFor(err))
	}
	f.VerboseLog("Compiled %d shape(s) from %d file(s)", len(cat.Shapes), cat.FileCount)

	if result.Valid && opts.Shape != "" {
		shape, ok := cat.Shape(opts.Shape)
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeUnknown, fmt.Sprintf("unknown shape %q", opts.Shape), nil)
		}
		values, err := readValues(f, shape, &opts.ShapeOptions, cmd.InOrStdin())
		if err != nil {
			return err
		}
		result.Instance = validate.Entity(shape, values)
		result.Valid = result.Instance == validate.Success
	}

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeValidation, Message: "validation failed"}
			if len(result.Errors) > 0 {
				resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
			}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		writeValidationText(f, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func writeValidationText(f *OutputFormatter, result ValidationResult) {
	w := f.Writer
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "✗ Catalog invalid")
		fmt.Fprintln(w)
		for _, issue := range result.Errors {
			if issue.Line > 0 {
				fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
			}
			fmt.Fprintf(w, "  %s: %s\n\n", issue.Code, issue.Message)
		}
		return
	}

	fmt.Fprintf(w, "✓ Catalog valid (%d shape(s))\n", result.Shapes)
	switch {
	case result.Instance == "":
	case result.Instance == validate.Success:
		fmt.Fprintln(w, validate.Success)
	default:
		fmt.Fprintf(w, "✗ %s\n", result.Instance)
	}
}

func issueFor(err error) CatalogIssue {
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		return CatalogIssue{Code: catalog.ErrCodeGeneric, Message: err.Error()}
	}
	issue := CatalogIssue{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		issue.File = le.Pos.Filename()
		issue.Line = le.Pos.Line()
	}
	return issue
}
