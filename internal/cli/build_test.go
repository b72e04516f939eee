package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Statements(t *testing.T) {
	specs := writeSchool(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "insert",
			args: []string{"--shape", "Student", "--set", "StudentName=Ann", "--set", "Age=20"},
			want: "INSERT INTO Student (StudentName, Age) VALUES (@StudentName, @Age)\n" +
				"  @StudentName = 'Ann'\n" +
				"  @Age = 20\n",
		},
		{
			name: "insert returning identity",
			args: []string{"--shape", "Student", "--set", "StudentName=Ann", "--set", "Age=20", "--return-identity"},
			want: "INSERT INTO Student (StudentName, Age) VALUES (@StudentName, @Age) RETURNING StudentId\n",
		},
		{
			name: "inline insert",
			args: []string{"--shape", "Student", "--op", "insert-inline", "--set", "StudentName=O'Brien", "--set", "Age=20"},
			want: "INSERT INTO Student (StudentName, Age, Email) VALUES ('O''Brien', 20, NULL)\n",
		},
		{
			name: "update",
			args: []string{"--shape", "Course", "--op", "update", "--set", "Code=CS01", "--set", "Title=Intro"},
			want: "UPDATE Course SET Code=@Code, Title=@Title WHERE Code=@Code\n" +
				"  @Code = 'CS01'\n" +
				"  @Title = 'Intro'\n",
		},
		{
			name: "delete",
			args: []string{"--shape", "Course", "--op", "delete", "--set", "Code=CS01"},
			want: "DELETE FROM Course WHERE Code=@Code\n  @Code = 'CS01'\n",
		},
		{
			name: "update procedure",
			args: []string{"--shape", "Course", "--op", "update-procedure", "--procedure", "RetitleCourse", "--set", "Code=CS01", "--set", "Title=Intro"},
			want: "CALL RetitleCourse\n  @Title = 'Intro'\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"build", "--specs", specs}, tt.args...)
			out, _, err := runCLI(t, "", args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestBuild_ValuesFileAndStdin(t *testing.T) {
	specs := writeSchool(t)
	file := filepath.Join(t.TempDir(), "ann.yaml")
	require.NoError(t, os.WriteFile(file, []byte("StudentName: Ann\nAge: 20\n"), 0644))

	out, _, err := runCLI(t, "", "build", "--specs", specs, "--shape", "Student", "--values", file, "--set", "Age=30")
	require.NoError(t, err)
	assert.Contains(t, out, "  @Age = 30\n", "--set overrides the values file")

	out, _, err = runCLI(t, "StudentName: Bo\nAge: 40\n", "build", "--specs", specs, "--shape", "Student", "--values", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "  @StudentName = 'Bo'\n")
}

func TestBuild_JSON(t *testing.T) {
	out, _, err := runCLI(t, "", "--format", "json", "build", "--specs", writeSchool(t),
		"--shape", "Course", "--set", "Code=CS01", "--set", "Title=Intro")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   BuildResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Course", resp.Data.Shape)
	assert.Equal(t, "insert", resp.Data.Op)
	assert.Equal(t, "INSERT INTO Course (Code, Title) VALUES (@Code, @Title)", resp.Data.SQL)
	assert.Equal(t, []BindingValue{{Name: "Code", Value: "'CS01'"}, {Name: "Title", Value: "'Intro'"}}, resp.Data.Bindings)
}

func TestBuild_Failures(t *testing.T) {
	specs := writeSchool(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		want     string
	}{
		{"rule failure", []string{"--shape", "Course", "--set", "Code=CS1"}, ExitFailure, "Error [E102]: Course code length must be exactly 4"},
		{"conversion failure", []string{"--shape", "Student", "--set", "StudentName=Ann", "--set", "Age=old"}, ExitFailure, "Error [E104]"},
		{"unknown op", []string{"--shape", "Course", "--op", "upsert", "--set", "Code=CS01"}, ExitCommandError, "Error [E100]"},
		{"procedure without name", []string{"--shape", "Course", "--op", "save-procedure", "--set", "Code=CS01"}, ExitCommandError, "--op save-procedure needs --procedure"},
		{"unknown shape", []string{"--shape", "Professor"}, ExitCommandError, `unknown shape "Professor" (catalog has Course, Student)`},
		{"malformed set", []string{"--shape", "Course", "--set", "Code"}, ExitCommandError, `--set "Code": want key=value`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"build", "--specs", specs}, tt.args...)
			out, _, err := runCLI(t, "", args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}
