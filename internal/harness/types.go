package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Step      int       `json:"step"`
	Shape     string    `json:"shape"`
	Op        string    `json:"op"`
	SQL       string    `json:"sql,omitempty"`
	Procedure string    `json:"procedure,omitempty"`
	Bindings  []Binding `json:"bindings,omitempty"`
	Result    *int64    `json:"result,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
}

// Binding is a statement binding rendered for the trace.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
