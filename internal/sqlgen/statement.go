package sqlgen

import "strings"

// ParamPrefix marks a named placeholder in statement text.
const ParamPrefix = "@"

// Binding is one named parameter of a statement.
type Binding struct {
	Name  string
	Value any
}

// Placeholder returns the text used for the binding inside SQL.
func (b Binding) Placeholder() string {
	return ParamPrefix + b.Name
}

// Statement is SQL text plus its bindings, in placeholder order.
type Statement struct {
	Text     string
	Bindings []Binding

	// ReturnsIdentity is set when the statement yields the generated
	// identity as a single scalar value.
	ReturnsIdentity bool
}

// Names returns the binding names in order.
func (s Statement) Names() []string {
	names := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		names[i] = b.Name
	}
	return names
}

// Lookup returns the value bound to name.
func (s Statement) Lookup(name string) (any, bool) {
	for _, b := range s.Bindings {
		if b.Name == name {
			return b.Value, true
		}
	}
	return nil, false
}

// Procedure is a stored-procedure invocation: a name plus bindings.
type Procedure struct {
	Name     string
	Bindings []Binding
}

func joinCols(cols []string) string {
	return strings.Join(cols, ", ")
}
