package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/ormlite/internal/catalog"
	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/orm"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
	"github.com/roach88/ormlite/internal/store"
)

// Harness runs the steps of one scenario against one store.
type Harness struct {
	store  *store.Store
	db     *orm.DB
	shapes *catalog.Catalog
	logger *slog.Logger
}

// Run executes a scenario in a fresh in-memory database and returns the
// result.
//
// Step failures and assertion failures are reported in the result. An error
// is returned only when the scenario cannot run at all: a catalog fails to
// load, or a setup step fails.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	shapes, errs := catalog.LoadDirs(scenario.Specs, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load catalog: %w", errs[0])
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store:  st,
		db:     orm.New(st, orm.WithLogger(logger)),
		shapes: shapes,
		logger: logger,
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeSetup(ctx context.Context, setup []SetupStep) error {
	for i, step := range setup {
		if step.Procedure != "" {
			if err := h.store.RegisterProcedure(ctx, step.Procedure, step.Body); err != nil {
				return fmt.Errorf("setup[%d]: %w", i, err)
			}
			continue
		}
		if _, err := h.store.ExecuteNonQuery(ctx, step.SQL, nil); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

// executeStep runs one step, appends its trace event and records any
// expectation failure.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	event := TraceEvent{Step: i + 1, Shape: step.Shape, Op: step.Op}
	if step.Query != "" {
		event.Op = OpQuery
	}

	var (
		n    int64
		rows []schema.Record
		err  error
	)
	shape, ok := h.shapes.Shape(step.Shape)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrUnknownShape, step.Shape)
	} else if step.Query != "" {
		rows, err = h.query(ctx, shape, step, &event)
	} else {
		n, err = h.write(ctx, shape, step, &event)
	}

	if err != nil {
		event.Error = err.Error()
		event.ErrorKind = errorKind(err)
		h.logger.Debug("step failed", "step", event.Step, "error", err)
	} else if step.Query != "" {
		event.Rows = len(rows)
	} else {
		event.Result = &n
	}
	result.Trace = append(result.Trace, event)

	for _, msg := range checkExpect(event, step.Expect, rows) {
		result.AddError(fmt.Sprintf("step %d (%s %s): %s", event.Step, event.Shape, event.Op, msg))
	}
}

func (h *Harness) write(ctx context.Context, shape *schema.Shape, step Step, event *TraceEvent) (int64, error) {
	op, err := orm.ParseOp(step.Op)
	if err != nil {
		return 0, err
	}
	values, err := materialize.Coerce(shape, step.Values)
	if err != nil {
		return 0, err
	}
	plan, err := orm.Build(shape, values, orm.Command{
		Op:                op,
		ReturnIdentity:    step.ReturnIdentity,
		Procedure:         step.Procedure,
		IncludePrimaryKey: step.IncludePrimaryKey,
	})
	if err != nil {
		return 0, err
	}

	event.SQL = plan.Statement.Text
	event.Procedure = plan.Procedure.Name
	event.Bindings = traceBindings(plan.Bindings())
	return h.db.Execute(ctx, plan)
}

// query binds step values by name, in name order.
func (h *Harness) query(ctx context.Context, shape *schema.Shape, step Step, event *TraceEvent) ([]schema.Record, error) {
	names := make([]string, 0, len(step.Values))
	for name := range step.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	bindings := make([]sqlgen.Binding, 0, len(names))
	for _, name := range names {
		bindings = append(bindings, orm.Bind(name, step.Values[name]))
	}

	event.SQL = step.Query
	event.Bindings = traceBindings(bindings)
	return h.db.Query(ctx, shape, step.Query, bindings...)
}

func traceBindings(bindings []sqlgen.Binding) []Binding {
	if len(bindings) == 0 {
		return nil
	}
	out := make([]Binding, len(bindings))
	for i, b := range bindings {
		out[i] = Binding{Name: b.Name, Value: sqlgen.Literal(b.Value)}
	}
	return out
}

// checkExpect compares a step's outcome against its expectation. A step
// without an expectation must succeed.
func checkExpect(event TraceEvent, expect *Expect, rows []schema.Record) []string {
	if expect == nil {
		if event.Error != "" {
			return []string{fmt.Sprintf("unexpected %s error: %s", event.ErrorKind, event.Error)}
		}
		return nil
	}

	if expect.Error != "" {
		switch {
		case event.Error == "":
			return []string{fmt.Sprintf("expected %s error, step succeeded", expect.Error)}
		case event.ErrorKind != expect.Error:
			return []string{fmt.Sprintf("expected %s error, got %s: %s", expect.Error, event.ErrorKind, event.Error)}
		case expect.Message != "" && !strings.Contains(event.Error, expect.Message):
			return []string{fmt.Sprintf("expected error containing %q, got %q", expect.Message, event.Error)}
		}
		return nil
	}
	if event.Error != "" {
		return []string{fmt.Sprintf("unexpected %s error: %s", event.ErrorKind, event.Error)}
	}

	var errs []string
	if expect.Result != nil && (event.Result == nil || *event.Result != *expect.Result) {
		got := "none"
		if event.Result != nil {
			got = fmt.Sprint(*event.Result)
		}
		errs = append(errs, fmt.Sprintf("expected result %d, got %s", *expect.Result, got))
	}
	if expect.Rows != nil {
		errs = append(errs, matchRows(expect.Rows, rows)...)
	}
	return errs
}

// matchRows pairs expected and actual rows by position; each expected row
// is a subset of its actual row.
func matchRows(expected []map[string]any, actual []schema.Record) []string {
	if len(expected) != len(actual) {
		return []string{fmt.Sprintf("expected %d rows, got %d", len(expected), len(actual))}
	}
	var errs []string
	for i, want := range expected {
		keys := make([]string, 0, len(want))
		for k := range want {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			got, ok := actual[i][k]
			if !ok {
				errs = append(errs, fmt.Sprintf("row %d: field %s not in result", i+1, k))
				continue
			}
			if !stateValuesEqual(want[k], got) {
				errs = append(errs, fmt.Sprintf("row %d: field %s = %v, want %v", i+1, k, display(got), want[k]))
			}
		}
	}
	return errs
}
