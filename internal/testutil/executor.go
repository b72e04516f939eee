package testutil

import (
	"context"
	"sync"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/sqlgen"
)

// CallKind names which executor entry point was invoked.
type CallKind string

const (
	CallNonQuery  CallKind = "non-query"
	CallScalar    CallKind = "scalar"
	CallProcedure CallKind = "procedure"
	CallQuery     CallKind = "query"
)

// Call is one recorded executor invocation. Text holds the procedure name
// for CallProcedure.
type Call struct {
	Kind     CallKind
	Text     string
	Bindings []sqlgen.Binding
}

// RecordingExecutor records every call and answers from canned values.
//
// ExecuteScalar returns the next value of Identities. Query returns Cursor.
// A non-nil Err is returned from every call after it has been recorded.
type RecordingExecutor struct {
	mu    sync.Mutex
	calls []Call

	RowsAffected int64
	Identities   *IdentitySequence
	Cursor       materialize.Cursor
	Err          error
}

// NewRecordingExecutor returns an executor that reports one affected row.
func NewRecordingExecutor() *RecordingExecutor {
	return &RecordingExecutor{RowsAffected: 1, Identities: NewIdentitySequence()}
}

func (e *RecordingExecutor) record(kind CallKind, text string, bindings []sqlgen.Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Kind: kind, Text: text, Bindings: append([]sqlgen.Binding(nil), bindings...)})
}

// Calls returns a copy of the recorded calls.
func (e *RecordingExecutor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Last returns the most recent call, or a zero Call.
func (e *RecordingExecutor) Last() Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return Call{}
	}
	return e.calls[len(e.calls)-1]
}

func (e *RecordingExecutor) ExecuteNonQuery(_ context.Context, text string, bindings []sqlgen.Binding) (int64, error) {
	e.record(CallNonQuery, text, bindings)
	if e.Err != nil {
		return 0, e.Err
	}
	return e.RowsAffected, nil
}

func (e *RecordingExecutor) ExecuteScalar(_ context.Context, text string, bindings []sqlgen.Binding) (any, error) {
	e.record(CallScalar, text, bindings)
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Identities.Next(), nil
}

func (e *RecordingExecutor) ExecuteProcedure(_ context.Context, name string, bindings []sqlgen.Binding) (int64, error) {
	e.record(CallProcedure, name, bindings)
	if e.Err != nil {
		return 0, e.Err
	}
	return e.RowsAffected, nil
}

func (e *RecordingExecutor) Query(_ context.Context, text string, bindings []sqlgen.Binding) (materialize.Cursor, error) {
	e.record(CallQuery, text, bindings)
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Cursor == nil {
		return NewSliceCursor(nil), nil
	}
	return e.Cursor, nil
}
