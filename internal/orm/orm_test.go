package orm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/materialize"
	"github.com/roach88/ormlite/internal/schema"
	"github.com/roach88/ormlite/internal/sqlgen"
	"github.com/roach88/ormlite/internal/testutil"
	"github.com/roach88/ormlite/internal/validate"
)

type Student struct {
	StudentId   int64     `orm:"pk,identity"`
	StudentName string    `validate:"required(Student name);strlen(Student name,2,20)"`
	Age         int       `validate:"range(Age,1,120)"`
	Email       string    `validate:"email(Email)"`
	Enrolled    time.Time
	ClassName   string `orm:"-"`
}

func validStudent() Student {
	return Student{StudentId: 5, StudentName: "Ann", Age: 20, Email: "ann@example.com"}
}

func newDB(t *testing.T) (*DB, *testutil.RecordingExecutor, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	exec := testutil.NewRecordingExecutor()
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(exec, WithLogger(logger)), exec, &buf
}

func TestInsert_Parameterized(t *testing.T) {
	db, exec, logs := newDB(t)

	n, err := db.Insert(context.Background(), validStudent(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	call := exec.Last()
	assert.Equal(t, testutil.CallNonQuery, call.Kind)
	assert.Equal(t, "INSERT INTO Student (StudentName, Age, Email) VALUES (@StudentName, @Age, @Email)", call.Text)
	assert.Len(t, call.Bindings, 3)
	assert.Contains(t, logs.String(), "statement built")
}

func TestInsert_ReturnIdentity(t *testing.T) {
	db, exec, _ := newDB(t)
	ctx := context.Background()

	first, err := db.Insert(ctx, validStudent(), true)
	require.NoError(t, err)
	second, err := db.Insert(ctx, validStudent(), true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, testutil.CallScalar, exec.Last().Kind)
	assert.Contains(t, exec.Last().Text, "RETURNING StudentId")
}

func TestInsertInline(t *testing.T) {
	db, exec, _ := newDB(t)

	s := validStudent()
	s.Enrolled = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	_, err := db.InsertInline(context.Background(), &s, false)
	require.NoError(t, err)

	call := exec.Last()
	assert.Equal(t,
		"INSERT INTO Student (StudentName, Age, Email, Enrolled) VALUES ('Ann', 20, 'ann@example.com', '2024-09-01 08:00:00')",
		call.Text)
	assert.Empty(t, call.Bindings)
}

func TestValidationFailure_NothingExecuted(t *testing.T) {
	db, exec, logs := newDB(t)

	s := validStudent()
	s.StudentName = "  "
	_, err := db.Insert(context.Background(), s, false)

	require.Error(t, err)
	assert.True(t, validate.IsValidationError(err))
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Student", ve.Entity)
	assert.Equal(t, "Student name must not be empty", ve.Message)

	assert.Empty(t, exec.Calls(), "no statement reaches the executor")
	assert.Contains(t, logs.String(), "validation failed")
}

func TestValidation_FirstFailureWins(t *testing.T) {
	db, _, _ := newDB(t)

	s := validStudent()
	s.Age = 500
	s.Email = "nope"
	_, err := db.Update(context.Background(), s)

	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Age must be between 1 and 120", ve.Message)
}

func TestUpdateAndDelete(t *testing.T) {
	db, exec, _ := newDB(t)
	ctx := context.Background()

	_, err := db.Update(ctx, validStudent())
	require.NoError(t, err)
	call := exec.Last()
	assert.Equal(t,
		"UPDATE Student SET StudentName=@StudentName, Age=@Age, Email=@Email, Enrolled=@Enrolled WHERE StudentId=@StudentId",
		call.Text)
	id, ok := sqlgen.Statement{Bindings: call.Bindings}.Lookup("StudentId")
	require.True(t, ok)
	assert.Equal(t, int64(5), id)

	_, err = db.Delete(ctx, validStudent())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Student WHERE StudentId=@StudentId", exec.Last().Text)
}

func TestProcedures(t *testing.T) {
	db, exec, _ := newDB(t)
	ctx := context.Background()

	_, err := db.SaveByProcedure(ctx, validStudent(), "SaveStudent")
	require.NoError(t, err)
	call := exec.Last()
	assert.Equal(t, testutil.Call{Kind: testutil.CallProcedure, Text: "SaveStudent", Bindings: call.Bindings}, call)
	assert.Len(t, call.Bindings, 4)

	type Course struct {
		Code  string `orm:"pk"`
		Title string
	}
	_, err = db.UpdateByProcedure(ctx, Course{Code: "GO", Title: "Go"}, "UpdateCourse", false)
	require.NoError(t, err)
	assert.Equal(t, []sqlgen.Binding{{Name: "Title", Value: "Go"}}, exec.Last().Bindings)

	_, err = db.UpdateByProcedure(ctx, Course{Code: "GO", Title: "Go"}, "UpdateCourse", true)
	require.NoError(t, err)
	assert.Len(t, exec.Last().Bindings, 2)
}

func TestMetadataMissing(t *testing.T) {
	db, exec, _ := newDB(t)
	type Note struct{ Body string }

	_, err := db.Insert(context.Background(), Note{Body: "x"}, true)
	assert.True(t, schema.IsMetadataMissing(err))
	_, err = db.Delete(context.Background(), Note{Body: "x"})
	assert.True(t, schema.IsMetadataMissing(err))
	assert.Empty(t, exec.Calls())
}

func TestExecutorErrorReturnedUnmodified(t *testing.T) {
	db, exec, logs := newDB(t)
	boom := errors.New("UNIQUE constraint failed: Student.Email")
	exec.Err = boom

	_, err := db.Insert(context.Background(), validStudent(), false)
	assert.Same(t, boom, err)
	_, err = db.Insert(context.Background(), validStudent(), true)
	assert.Same(t, boom, err)
	_, err = db.SaveByProcedure(context.Background(), validStudent(), "SaveStudent")
	assert.Same(t, boom, err)
	assert.Contains(t, logs.String(), "statement failed")
}

func TestSave_Record(t *testing.T) {
	db, exec, _ := newDB(t)
	shape, err := schema.New("Tag",
		schema.Field{Name: "Code", Type: stringType, PrimaryKey: true,
			Rules: []schema.Rule{{Kind: schema.RuleFixedLength, Display: "Code", Length: 2}}},
		schema.Field{Name: "Label", Type: stringType},
	)
	require.NoError(t, err)

	_, err = db.Save(context.Background(), shape, schema.Record{"Code": "GO", "Label": "golang"}, Command{Op: OpInsert})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Tag (Code, Label) VALUES (@Code, @Label)", exec.Last().Text)

	_, err = db.Save(context.Background(), shape, schema.Record{"Code": "GOO"}, Command{Op: OpInsert})
	assert.True(t, validate.IsValidationError(err))
}

func TestFind_RoundTrip(t *testing.T) {
	db, exec, _ := newDB(t)
	exec.Cursor = testutil.NewSliceCursor(
		[]string{"studentid", "STUDENTNAME", "Age"},
		[]any{int64(1), "Ann", int64(20)},
		[]any{int64(2), "Bob", int64(31)},
	)

	students, err := Find[Student](context.Background(), db,
		"SELECT StudentId, StudentName, Age FROM Student WHERE Age > @Age",
		sqlgen.Binding{Name: "Age", Value: 18})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, Student{StudentId: 2, StudentName: "Bob", Age: 31}, students[1])

	call := exec.Last()
	assert.Equal(t, testutil.CallQuery, call.Kind)
	assert.Equal(t, []sqlgen.Binding{{Name: "Age", Value: 18}}, call.Bindings)
	assert.True(t, exec.Cursor.(*testutil.SliceCursor).Closed)
}

func TestQuery_Records(t *testing.T) {
	db, exec, _ := newDB(t)
	exec.Cursor = testutil.NewSliceCursor([]string{"code"}, []any{"GO"})
	shape, err := schema.New("Tag", schema.Field{Name: "Code", Type: stringType})
	require.NoError(t, err)

	recs, err := db.Query(context.Background(), shape, "SELECT Code FROM Tag")
	require.NoError(t, err)
	assert.Equal(t, []schema.Record{{"Code": "GO"}}, recs)
}

func TestIdentityConversion(t *testing.T) {
	shape, err := schema.Of[Student]()
	require.NoError(t, err)

	for _, raw := range []any{int64(7), 7, int32(7), uint64(7), float64(7), []byte("7"), " 7 "} {
		id, err := identity(shape, raw)
		require.NoError(t, err, "%#v", raw)
		assert.Equal(t, int64(7), id)
	}

	_, err = identity(shape, "seven")
	assert.True(t, materialize.IsConversionError(err))
	_, err = identity(shape, nil)
	assert.True(t, materialize.IsConversionError(err))
}

func TestParseOp(t *testing.T) {
	for _, op := range Ops() {
		got, err := ParseOp(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseOp("upsert")
	assert.ErrorContains(t, err, "unknown operation")

	_, err = Build(&schema.Shape{Name: "X"}, schema.Record{}, Command{Op: "upsert"})
	assert.ErrorContains(t, err, "unknown operation")
}
