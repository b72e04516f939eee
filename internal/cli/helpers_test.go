package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ormlite/internal/store"
)

const schoolCatalog = `package school

shape: Student: {
	fields: [
		{name: "StudentId", type: "int", identity: true, primary_key: true},
		{name: "StudentName", type: "string", rules: [{kind: "required", display: "Student name"}]},
		{name: "Age", type: "int", rules: [{kind: "range", min: 1, max: 120}]},
		{name: "Email", type: "string", nullable: true},
	]
}

shape: Course: {
	fields: [
		{name: "Code", type: "string", primary_key: true, rules: [{kind: "length", display: "Course code", length: 4}]},
		{name: "Title", type: "string"},
	]
}
`

// writeSchool writes the school catalog and returns its directory.
func writeSchool(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "specs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "school.cue"), []byte(schoolCatalog), 0644))
	return dir
}

// createSchoolDB creates a database holding the school tables.
func createSchoolDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "school.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, ddl := range []string{
		"CREATE TABLE Student (StudentId INTEGER PRIMARY KEY, StudentName TEXT NOT NULL, Age INTEGER, Email TEXT)",
		"CREATE TABLE Course (Code TEXT PRIMARY KEY, Title TEXT)",
	} {
		_, err := st.ExecuteNonQuery(ctx, ddl, nil)
		require.NoError(t, err)
	}
	return path
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
