package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RuleKind identifies a validation rule.
type RuleKind string

const (
	RuleRequired    RuleKind = "required"
	RuleRange       RuleKind = "range"
	RuleFixedLength RuleKind = "length"
	RuleLengthRange RuleKind = "strlen"
	RuleEmail       RuleKind = "email"
	RulePattern     RuleKind = "pattern"
)

// Rule is a declarative validation rule attached to one field.
// Only the parameters relevant to Kind are meaningful.
type Rule struct {
	Kind    RuleKind
	Display string // name shown to the user in messages
	Min     int    // RuleRange, RuleLengthRange
	Max     int    // RuleRange, RuleLengthRange
	Length  int    // RuleFixedLength
	Pattern string // RulePattern
}

// Field describes one field of a shape.
type Field struct {
	Name       string
	Type       reflect.Type // declared type; pointer types mean "nullable"
	Index      []int        // struct field index; nil for declared shapes
	PrimaryKey bool
	Identity   bool
	Excluded   bool
	Rules      []Rule
}

// BaseType returns the field type with one level of pointer removed.
func (f Field) BaseType() reflect.Type {
	if f.Type != nil && f.Type.Kind() == reflect.Ptr {
		return f.Type.Elem()
	}
	return f.Type
}

// Temporal reports whether the field holds a time.Time.
func (f Field) Temporal() bool {
	return f.BaseType() == TimeType
}

// Persisted reports whether the field takes part in INSERT/UPDATE lists.
func (f Field) Persisted() bool {
	return !f.Identity && !f.Excluded
}

// Common field types.
var (
	TimeType  = reflect.TypeOf(time.Time{})
	UUIDType  = reflect.TypeOf(uuid.UUID{})
	BytesType = reflect.TypeOf([]byte(nil))
)

// Shape is the persistence view of an entity type.
type Shape struct {
	Name   string
	Fields []Field
}

// New builds a shape from explicitly declared fields and checks that every
// name is usable as a SQL identifier.
func New(name string, fields ...Field) (*Shape, error) {
	s := &Shape{Name: name, Fields: fields}
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// Columns returns the field names in declaration order.
func (s *Shape) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// IdentityColumn returns the first field carrying the identity marker.
func (s *Shape) IdentityColumn() (string, error) {
	for _, f := range s.Fields {
		if f.Identity {
			return f.Name, nil
		}
	}
	return "", &MetadataMissingError{Shape: s.Name, Marker: MarkerIdentity}
}

// PrimaryKeyColumn returns the first field carrying the primary-key marker.
func (s *Shape) PrimaryKeyColumn() (string, error) {
	for _, f := range s.Fields {
		if f.PrimaryKey {
			return f.Name, nil
		}
	}
	return "", &MetadataMissingError{Shape: s.Name, Marker: MarkerPrimaryKey}
}

// ExcludedColumns returns the set of non-persisted field names.
// The set is empty, never nil, when no field is excluded.
func (s *Shape) ExcludedColumns() map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range s.Fields {
		if f.Excluded {
			out[f.Name] = struct{}{}
		}
	}
	return out
}

// Field looks up a field by exact name.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const maxIdentifierLength = 128

// ValidIdentifier reports whether name can be emitted unquoted as a table or
// column name.
func ValidIdentifier(name string) bool {
	return len(name) <= maxIdentifierLength && identifierPattern.MatchString(name)
}

func (s *Shape) check() error {
	if !ValidIdentifier(s.Name) {
		return &InvalidShapeError{Shape: s.Name, Reason: "name is not a valid SQL identifier"}
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if !ValidIdentifier(f.Name) {
			return &InvalidShapeError{Shape: s.Name, Field: f.Name, Reason: "name is not a valid SQL identifier"}
		}
		if seen[f.Name] {
			return &InvalidShapeError{Shape: s.Name, Field: f.Name, Reason: "duplicate field"}
		}
		seen[f.Name] = true
		if f.Type == nil {
			return &InvalidShapeError{Shape: s.Name, Field: f.Name, Reason: "missing type"}
		}
		for _, r := range f.Rules {
			if r.Kind == RulePattern {
				if _, err := regexp.Compile(r.Pattern); err != nil {
					return &InvalidShapeError{Shape: s.Name, Field: f.Name, Reason: fmt.Sprintf("bad pattern: %v", err)}
				}
			}
		}
	}
	return nil
}

var cache sync.Map // reflect.Type -> *Shape

// Describe returns the shape of a struct value or pointer to struct.
func Describe(v any) (*Shape, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: cannot describe nil")
	}
	return DescribeType(reflect.TypeOf(v))
}

// Of returns the shape of T, which must be a struct type.
func Of[T any]() (*Shape, error) {
	return DescribeType(reflect.TypeOf((*T)(nil)).Elem())
}

// DescribeType returns the shape of a struct type (or pointer to one).
// The result is shared and must not be modified.
func DescribeType(t reflect.Type) (*Shape, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}
	if cached, ok := cache.Load(t); ok {
		return cached.(*Shape), nil
	}

	s := &Shape{Name: t.Name(), Fields: make([]Field, 0, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f := Field{Name: sf.Name, Type: sf.Type, Index: sf.Index}
		if err := applyMarkers(&f, sf.Tag.Get("orm")); err != nil {
			return nil, &InvalidShapeError{Shape: s.Name, Field: sf.Name, Reason: err.Error()}
		}
		if sf.Anonymous && !f.Excluded && f.BaseType().Kind() == reflect.Struct && f.BaseType() != TimeType {
			return nil, &InvalidShapeError{Shape: s.Name, Field: sf.Name, Reason: `embedded structs are not supported (mark it orm:"-")`}
		}
		rules, err := ParseRules(sf.Tag.Get("validate"))
		if err != nil {
			return nil, &InvalidShapeError{Shape: s.Name, Field: sf.Name, Reason: err.Error()}
		}
		f.Rules = rules
		s.Fields = append(s.Fields, f)
	}
	if err := s.check(); err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(t, s)
	return actual.(*Shape), nil
}
