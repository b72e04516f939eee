package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ormlite/internal/catalog"
	"github.com/roach88/ormlite/internal/schema"
)

// ShapeInfo describes one shape for output.
type ShapeInfo struct {
	Name   string      `json:"name"`
	Fields []FieldInfo `json:"fields"`
}

// FieldInfo describes one field for output.
type FieldInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
	Identity   bool     `json:"identity,omitempty"`
	Excluded   bool     `json:"excluded,omitempty"`
	Rules      []string `json:"rules,omitempty"`
}

// NewShapesCommand creates the shapes command.
func NewShapesCommand(rootOpts *RootOptions) *cobra.Command {
	var specs []string

	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "List the shapes a catalog declares",
		Long: `List every shape in one or more CUE catalogs with its fields,
key markers and validation rules.

Example:
  ormlite shapes --specs ./specs
  ormlite shapes --specs ./specs --specs ./more --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShapes(rootOpts, specs, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&specs, "specs", nil, "catalog directory (repeatable, required)")
	_ = cmd.MarkFlagRequired("specs")

	return cmd
}

func runShapes(opts *RootOptions, specs []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	cat, errs := catalog.LoadDirs(specs, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return failLoad(f, errs[0])
	}

	infos := make([]ShapeInfo, 0, len(cat.Shapes))
	for _, name := range cat.Names() {
		shape, _ := cat.Shape(name)
		infos = append(infos, describeShape(shape))
	}

	if f.Format == "json" {
		return f.Success(infos)
	}

	w := f.Writer
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, info.Name)
		for _, field := range info.Fields {
			var marks []string
			if field.PrimaryKey {
				marks = append(marks, "pk")
			}
			if field.Identity {
				marks = append(marks, "identity")
			}
			if field.Excluded {
				marks = append(marks, "excluded")
			}
			line := fmt.Sprintf("  %-20s %-10s", field.Name, field.Type)
			if len(marks) > 0 {
				line += " [" + strings.Join(marks, ",") + "]"
			}
			if len(field.Rules) > 0 {
				line += " " + strings.Join(field.Rules, "; ")
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}
	return nil
}

func describeShape(shape *schema.Shape) ShapeInfo {
	info := ShapeInfo{Name: shape.Name, Fields: make([]FieldInfo, 0, len(shape.Fields))}
	for _, f := range shape.Fields {
		fi := FieldInfo{
			Name:       f.Name,
			Type:       f.Type.String(),
			PrimaryKey: f.PrimaryKey,
			Identity:   f.Identity,
			Excluded:   f.Excluded,
		}
		for _, r := range f.Rules {
			fi.Rules = append(fi.Rules, describeRule(r))
		}
		info.Fields = append(info.Fields, fi)
	}
	return info
}

func describeRule(r schema.Rule) string {
	switch r.Kind {
	case schema.RuleRange, schema.RuleLengthRange:
		return fmt.Sprintf("%s(%d..%d)", r.Kind, r.Min, r.Max)
	case schema.RuleFixedLength:
		return fmt.Sprintf("%s(%d)", r.Kind, r.Length)
	case schema.RulePattern:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Pattern)
	default:
		return string(r.Kind)
	}
}
