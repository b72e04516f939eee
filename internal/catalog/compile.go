package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/ormlite/internal/schema"
)

// fieldTypes maps catalog type names to Go types.
var fieldTypes = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"int":    reflect.TypeOf(int64(0)),
	"float":  reflect.TypeOf(float64(0)),
	"bool":   reflect.TypeOf(false),
	"time":   schema.TimeType,
	"uuid":   schema.UUIDType,
	"bytes":  schema.BytesType,
}

// TypeNames returns the supported field type names, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(fieldTypes))
	for name := range fieldTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompileShape parses a CUE shape declaration into a schema.Shape.
//
// The CUE value should be the shape struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`shape: Student: { fields: [...] }`)
//	s, err := CompileShape(v.LookupPath(cue.ParsePath("shape.Student")))
func CompileShape(v cue.Value) (*schema.Shape, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	var name string
	if labels := v.Path().Selectors(); len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{Field: "fields", Message: "fields is required", Pos: v.Pos()}
	}
	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []schema.Field
	for iter.Next() {
		f, err := compileField(iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, &CompileError{Field: "fields", Message: "at least one field is required", Pos: fieldsVal.Pos()}
	}

	shape, err := schema.New(name, fields...)
	if err != nil {
		var ise *schema.InvalidShapeError
		if errors.As(err, &ise) {
			return nil, &CompileError{Field: "shape", Message: ise.Error(), Pos: v.Pos()}
		}
		return nil, err
	}
	return shape, nil
}

func compileField(v cue.Value) (schema.Field, error) {
	var f schema.Field

	name, err := requiredString(v, "name")
	if err != nil {
		return f, err
	}
	f.Name = name

	typeName, err := requiredString(v, "type")
	if err != nil {
		return f, err
	}
	t, ok := fieldTypes[typeName]
	if !ok {
		return f, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("field %s: unknown type %q (want one of %s)", name, typeName, strings.Join(TypeNames(), ", ")),
			Pos:     v.LookupPath(cue.ParsePath("type")).Pos(),
		}
	}

	nullable, err := optionalBool(v, "nullable")
	if err != nil {
		return f, err
	}
	if nullable && t != schema.BytesType {
		t = reflect.PointerTo(t)
	}
	f.Type = t

	if f.PrimaryKey, err = optionalBool(v, "primary_key"); err != nil {
		return f, err
	}
	if f.Identity, err = optionalBool(v, "identity"); err != nil {
		return f, err
	}
	if f.Excluded, err = optionalBool(v, "excluded"); err != nil {
		return f, err
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return f, nil
	}
	rules, err := rulesVal.List()
	if err != nil {
		return f, formatCUEError(err)
	}
	for rules.Next() {
		r, err := compileRule(rules.Value(), name)
		if err != nil {
			return f, err
		}
		f.Rules = append(f.Rules, r)
	}
	return f, nil
}

// compileRule reads one rule entry. Parameters are passed through
// schema.ParseRule so catalog and struct-tag rules share one set of checks.
func compileRule(v cue.Value, fieldName string) (schema.Rule, error) {
	kind, err := requiredString(v, "kind")
	if err != nil {
		return schema.Rule{}, err
	}
	display, err := optionalString(v, "display")
	if err != nil {
		return schema.Rule{}, err
	}
	if display == "" {
		display = fieldName
	}

	// ParseRule splits on commas, which a display name may contain, so it
	// sees a stand-in and the real name is set afterwards.
	args := []string{"_"}
	switch schema.RuleKind(kind) {
	case schema.RuleRange, schema.RuleLengthRange:
		lo, err := requiredInt(v, "min")
		if err != nil {
			return schema.Rule{}, err
		}
		hi, err := requiredInt(v, "max")
		if err != nil {
			return schema.Rule{}, err
		}
		args = append(args, fmt.Sprint(lo), fmt.Sprint(hi))
	case schema.RuleFixedLength:
		n, err := requiredInt(v, "length")
		if err != nil {
			return schema.Rule{}, err
		}
		args = append(args, fmt.Sprint(n))
	case schema.RulePattern:
		expr, err := requiredString(v, "pattern")
		if err != nil {
			return schema.Rule{}, err
		}
		args = append(args, expr)
	}

	r, err := schema.ParseRule(schema.RuleKind(kind), strings.Join(args, ","))
	if err != nil {
		return schema.Rule{}, &CompileError{
			Field:   "rules",
			Message: fmt.Sprintf("field %s: %v", fieldName, err),
			Pos:     v.Pos(),
		}
	}
	r.Display = display
	return r, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func requiredInt(v cue.Value, field string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}
