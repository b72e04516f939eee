package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStudents inserts Ann (20) and Bo (31) and returns the database path.
func seedStudents(t *testing.T, specs string) string {
	t.Helper()
	db := createSchoolDB(t)
	for _, s := range [][]string{{"Ann", "20"}, {"Bo", "31"}} {
		_, _, err := runCLI(t, "", "exec", "--specs", specs, "--db", db, "--shape", "Student",
			"--set", "StudentName="+s[0], "--set", "Age="+s[1])
		require.NoError(t, err)
	}
	return db
}

func TestQuery_Text(t *testing.T) {
	specs := writeSchool(t)
	db := seedStudents(t, specs)

	out, _, err := runCLI(t, "", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"SELECT * FROM Student ORDER BY StudentId")
	require.NoError(t, err)
	assert.Contains(t, out, "StudentId=1 StudentName='Ann' Age=20")
	assert.Contains(t, out, "StudentId=2 StudentName='Bo' Age=31")
	assert.Contains(t, out, "(2 row(s))\n")
}

func TestQuery_Bind(t *testing.T) {
	specs := writeSchool(t)
	db := seedStudents(t, specs)

	out, _, err := runCLI(t, "", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"--bind", "MinAge=30", "SELECT StudentId, StudentName FROM Student WHERE Age >= @MinAge")
	require.NoError(t, err)
	assert.Equal(t, "StudentId=2 StudentName='Bo'\n(1 row(s))\n", out)
}

func TestQuery_JSON(t *testing.T) {
	specs := writeSchool(t)
	db := seedStudents(t, specs)

	out, _, err := runCLI(t, "", "--format", "json", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"SELECT StudentName, Age FROM Student WHERE StudentName = @Name", "--bind", "Name=Ann")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ann", resp.Data[0]["StudentName"])
	assert.Equal(t, float64(20), resp.Data[0]["Age"])

	out, _, err = runCLI(t, "", "--format", "json", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"SELECT * FROM Student WHERE Age > 100")
	require.NoError(t, err)
	assert.Contains(t, out, `"data": []`)
}

func TestQuery_Failures(t *testing.T) {
	specs := writeSchool(t)
	db := createSchoolDB(t)

	_, _, err := runCLI(t, "", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"--bind", "bad name=1", "SELECT 1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := runCLI(t, "", "query", "--specs", specs, "--db", db, "--shape", "Student",
		"SELECT * FROM Professor")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E105]")
}
