package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseScenario = `name: course_insert
description: "Insert one course and count it"
specs:
  - ../specs
setup:
  - sql: CREATE TABLE Course (Code TEXT PRIMARY KEY, Title TEXT)
steps:
  - shape: Course
    op: insert
    values: { Code: CS01, Title: Databases }
    expect: { result: 1 }
assertions:
  - type: row_count
    table: Course
    count: %d
`

// writeScenarios writes the school catalog and a scenarios directory
// holding course.yaml, whose row_count assertion expects count rows.
func writeScenarios(t *testing.T, count int) string {
	t.Helper()
	specs := writeSchool(t)
	dir := filepath.Join(filepath.Dir(specs), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := []byte(fmt.Sprintf(courseScenario, count))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "course.yaml"), content, 0644))
	return dir
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := writeScenarios(t, 1)

	out, _, err := runCLI(t, "", "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ course_insert")

	golden := filepath.Join(dir, "golden", "course_insert.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "course_insert"`)

	out, _, err = runCLI(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, _, err = runCLI(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ course_insert")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_AssertionFailure(t *testing.T) {
	dir := writeScenarios(t, 2)

	out, _, err := runCLI(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ course_insert")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTest_JSON(t *testing.T) {
	dir := writeScenarios(t, 1)

	out, _, err := runCLI(t, "", "--format", "json", "test", dir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTest_Filter(t *testing.T) {
	dir := writeScenarios(t, 1)

	out, _, err := runCLI(t, "", "test", dir, "--filter", "student*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, _, err = runCLI(t, "", "test", dir, "--filter", "course*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ course_insert")
}

func TestTest_BadScenario(t *testing.T) {
	dir := writeScenarios(t, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	out, _, err := runCLI(t, "", "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := runCLI(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
