package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ormlite/internal/catalog"
	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/store"
	"github.com/roach88/ormlite/internal/validate"
)

// ShapeOptions holds the flags shared by commands that act on one shape
// instance.
type ShapeOptions struct {
	Specs  []string
	Shape  string
	Values string   // YAML file, or "-" for stdin
	Set    []string // key=value overrides, values parsed as YAML scalars
}

func (o *ShapeOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.Specs, "specs", nil, "catalog directory (repeatable, required)")
	cmd.Flags().StringVar(&o.Shape, "shape", "", "shape name (required)")
	cmd.Flags().StringVar(&o.Values, "values", "", `YAML file holding the instance values ("-" for stdin)`)
	cmd.Flags().StringArrayVar(&o.Set, "set", nil, "set one value as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("specs")
	_ = cmd.MarkFlagRequired("shape")
}

// newLogger returns a text logger on w. Verbose lowers the level to Debug,
// which logs every statement built.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadShape loads the catalogs and resolves the named shape.
func loadShape(f *OutputFormatter, dirs []string, name string) (*schema.Shape, error) {
	cat, errs := catalog.LoadDirs(dirs, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, failLoad(f, errs[0])
	}
	f.VerboseLog("Loaded %d shape(s) from %d file(s)", len(cat.Shapes), cat.FileCount)

	shape, ok := cat.Shape(name)
	if !ok {
		return nil, f.Fail(ExitCommandError, ErrCodeUnknown,
			fmt.Sprintf("unknown shape %q (catalog has %s)", name, strings.Join(cat.Names(), ", ")), nil)
	}
	return shape, nil
}

func failLoad(f *OutputFormatter, err error) error {
	var le *catalog.LoadError
	if errors.As(err, &le) {
		return f.Fail(ExitCommandError, le.Code, le.Message, nil)
	}
	return f.Fail(ExitCommandError, catalog.ErrCodeGeneric, err.Error(), nil)
}

// readValues merges the values file and --set overrides into one raw map,
// then coerces it to the shape's field types.
func readValues(f *OutputFormatter, shape *schema.Shape, opts *ShapeOptions, stdin io.Reader) (schema.Record, error) {
	raw := map[string]any{}
	if opts.Values != "" {
		var (
			data []byte
			err  error
		)
		if opts.Values == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(opts.Values)
		}
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("read values: %v", err), nil)
		}
		if err := decodeValues(data, raw); err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("parse values: %v", err), nil)
		}
	}

	for _, kv := range opts.Set {
		key, text, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("--set %q: want key=value", kv), nil)
		}
		var v any
		if err := yaml.Unmarshal([]byte(text), &v); err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("--set %s: %v", key, err), nil)
		}
		raw[key] = v
	}

	rec, err := materialize.Coerce(shape, raw)
	if err != nil {
		return nil, failOperation(f, err)
	}
	return rec, nil
}

// decodeValues decodes a YAML mapping into raw. An empty document is an
// empty mapping.
func decodeValues(data []byte, raw map[string]any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for k, v := range doc {
		raw[k] = v
	}
	return nil
}

// failOperation reports an error from the write or read pipeline. Rule and
// conversion failures are the caller's data and exit 1; the rest exit 2.
func failOperation(f *OutputFormatter, err error) error {
	var (
		ve *validate.ValidationError
		me *schema.MetadataMissingError
		ce *materialize.ConversionError
	)
	switch {
	case errors.As(err, &ve):
		return f.Fail(ExitFailure, ErrCodeValidation, ve.Message, map[string]string{"entity": ve.Entity})
	case errors.As(err, &ce):
		return f.Fail(ExitFailure, ErrCodeConversion, err.Error(), nil)
	case errors.As(err, &me):
		return f.Fail(ExitCommandError, ErrCodeMetadata, err.Error(), nil)
	case store.IsProcedureNotFound(err):
		return f.Fail(ExitCommandError, ErrCodeUnknown, err.Error(), nil)
	default:
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
}

// openStore opens the database at path, logging to the formatter's error
// writer.
func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("open database: %v", err), nil)
	}
	f.VerboseLog("Opened database %s", path)
	return st, nil
}
