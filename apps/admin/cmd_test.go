package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/services/spreadsheet"
	"github.com/trezcool/registre/storage"
	"github.com/trezcool/registre/testutil"
)

func setup(t *testing.T) (*commandLine, *storage.Stores, *bytes.Buffer) {
	stores, err := storage.OpenFiles(t.TempDir(), testutil.StoreOptions())
	require.NoError(t, err)

	nowFunc = func() time.Time { return testutil.Now }
	t.Cleanup(func() { nowFunc = time.Now })

	out := new(bytes.Buffer)
	cli := newCommandLine(stores, &core.Config{}, core.NopLogger{})
	cli.out = out
	return cli, stores, out
}

// mockPasswords makes the prompts answer pwds, in order.
func mockPasswords(pwds ...string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwds    []string
	wantErr error
	isValid bool // expect a *core.ValidationError
	anyErr  bool
	wantOut []string
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			mockPasswords(tt.pwds...)

			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.isValid:
				assert.True(t, core.IsValidationError(err), "cli.run() error = %v, want validation error", err)
			case tt.anyErr:
				assert.Error(t, err)
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, out := setup(t)

	runTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:", "addteacher"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "missing flags", args: []string{"login"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"teachers", "-lol"}, wantErr: errHelp},
		{name: "no password", args: []string{"login", "-username", "owner", "-role", "owner"}, wantErr: errHelp},
		{name: "bad password", args: []string{"login", "-username", "owner", "-role", "owner"}, pwds: []string{"lol"}, wantErr: auth.ErrInvalidCredentials},
		{name: "unknown role", args: []string{"login", "-username", "owner", "-role", "janitor"}, pwds: []string{"123"}, wantErr: auth.ErrUnknownRole},
		{name: "owner", args: []string{"login", "-username", "owner", "-role", "owner"}, pwds: []string{"123"}, wantOut: []string{"logged in as owner owner"}},
		{name: "teacher", args: []string{"login", "-username", "math_teacher"}, pwds: []string{"123"}, wantOut: []string{"teacher of Math"}},
	})
}

func Test_commandLine_teachers(t *testing.T) {
	cli, stores, out := setup(t)
	owner := []string{"-username", "owner"}

	runTests(t, cli, out, []cliTest{
		{name: "list", args: append([]string{"teachers"}, owner...), pwds: []string{"123"}, wantOut: []string{"science_teacher", "math_teacher"}},
		{name: "list as teacher", args: []string{"teachers", "-username", "math_teacher"}, pwds: []string{"123"}, wantErr: auth.ErrInvalidCredentials},
		{name: "add: missing subject", args: append([]string{"addteacher", "-teacher", "art_teacher"}, owner...), pwds: []string{"123"}, wantErr: errHelp},
		{name: "add: taken", args: append([]string{"addteacher", "-teacher", "math_teacher", "-subject", "Art"}, owner...), pwds: []string{"123", "pwd"}, isValid: true},
		{name: "add", args: append([]string{"addteacher", "-teacher", "art_teacher", "-subject", "Art"}, owner...), pwds: []string{"123", "pwd"}, wantOut: []string{"art_teacher", "Art"}},
		{name: "edit: not found", args: append([]string{"editteacher", "-teacher", "ghost"}, owner...), pwds: []string{"123"}, wantErr: teacher.ErrNotFound},
		{name: "edit", args: append([]string{"editteacher", "-teacher", "art_teacher", "-subject", "Drawing", "-password"}, owner...), pwds: []string{"123", "new"}, wantOut: []string{"Drawing"}},
		{name: "new password", args: []string{"login", "-username", "art_teacher"}, pwds: []string{"new"}, wantOut: []string{"teacher of Drawing"}},
		{name: "delete with cascade", args: append([]string{"deleteteacher", "-teacher", "science_teacher", "-cascade"}, owner...), pwds: []string{"123"}, wantOut: []string{"2 student(s) of Science deleted"}},
		{name: "delete: not found", args: append([]string{"deleteteacher", "-teacher", "science_teacher"}, owner...), pwds: []string{"123"}, wantErr: teacher.ErrNotFound},
	})

	ctx := context.Background()
	_, err := stores.Teachers.GetTeacher(ctx, "science_teacher")
	assert.Equal(t, teacher.ErrNotFound, err)
	_, err = stores.Students.GetStudent(ctx, "S001")
	assert.Equal(t, student.ErrNotFound, err)
	_, err = stores.Students.GetStudent(ctx, "S003")
	assert.NoError(t, err)
}

func Test_commandLine_setOwner(t *testing.T) {
	cli, _, out := setup(t)

	runTests(t, cli, out, []cliTest{
		{name: "missing new username", args: []string{"setowner", "-username", "owner"}, pwds: []string{"123"}, wantErr: errHelp},
		{name: "set", args: []string{"setowner", "-username", "owner", "-new", "root"}, pwds: []string{"123", "xyz"}, wantOut: []string{"owner is now root"}},
		{name: "old credentials", args: []string{"login", "-role", "owner", "-username", "owner"}, pwds: []string{"123"}, wantErr: auth.ErrInvalidCredentials},
		{name: "new credentials", args: []string{"login", "-role", "owner", "-username", "root"}, pwds: []string{"xyz"}, wantOut: []string{"logged in as owner root"}},
	})
}

func Test_commandLine_students(t *testing.T) {
	cli, stores, out := setup(t)
	math := []string{"-username", "math_teacher"}

	runTests(t, cli, out, []cliTest{
		{name: "list", args: append([]string{"students"}, math...), pwds: []string{"123"}, wantOut: []string{"S003", "Chausiku Ilunga"}},
		{name: "add: taken id", args: append([]string{"addstudent", "-id", "S001", "-name", "X"}, math...), pwds: []string{"123"}, isValid: true},
		{name: "add", args: append([]string{"addstudent", "-id", "S004", "-name", "Dalia Kabila"}, math...), pwds: []string{"123"}, wantOut: []string{"S004", "Dalia Kabila"}},
		{name: "add with generated id", args: append([]string{"addstudent", "-name", "Eliya Tshala"}, math...), pwds: []string{"123"}, wantOut: []string{"Eliya Tshala"}},
		{name: "edit another class", args: append([]string{"editstudent", "-id", "S001", "-name", "X"}, math...), pwds: []string{"123"}, wantErr: student.ErrNotFound},
		{name: "edit", args: append([]string{"editstudent", "-id", "S004", "-name", "Dalia K."}, math...), pwds: []string{"123"}, wantOut: []string{"Dalia K."}},
		{name: "delete another class", args: append([]string{"deletestudent", "-id", "S002"}, math...), pwds: []string{"123"}, wantErr: student.ErrNotFound},
		{name: "delete", args: append([]string{"deletestudent", "-id", "S004"}, math...), pwds: []string{"123"}},
	})

	class, err := student.NewService(stores.Students).QueryBySubject(context.Background(), "Math")
	require.NoError(t, err)
	assert.Len(t, class, 2)
}

func Test_commandLine_importStudents(t *testing.T) {
	cli, _, out := setup(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range [][]interface{}{{"ID", "Name"}, {"S010", "Dalia Kabila"}, {"S003", "Duplicate"}, {"S011", "Eliya Tshala"}} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "students.xlsx")
	require.NoError(t, f.SaveAs(path))

	runTests(t, cli, out, []cliTest{
		{name: "missing file", args: []string{"importstudents", "-username", "math_teacher", "-file", filepath.Join(t.TempDir(), "nope.xlsx")}, pwds: []string{"123"}, anyErr: true},
		{name: "import", args: []string{"importstudents", "-username", "math_teacher", "-file", path}, pwds: []string{"123"}, wantOut: []string{"2 of 3 student(s) imported", "S010", "S011", "Chausiku Ilunga"}},
	})
}

func Test_commandLine_attendance(t *testing.T) {
	cli, stores, out := setup(t)
	science := []string{"-username", "science_teacher"}

	runTests(t, cli, out, []cliTest{
		{name: "percentages", args: append([]string{"percentages"}, science...), pwds: []string{"123"}, wantOut: []string{"S001", "66.67%", "0.00%"}},
		{name: "mark today", args: append([]string{"mark", "-absent", "S002"}, science...), pwds: []string{"123"}, wantOut: []string{"marked for 2024-03-10: 2 record(s)"}},
		{name: "mark twice", args: append([]string{"mark"}, science...), pwds: []string{"123"}, wantErr: attendance.ErrAlreadyMarked},
		{name: "mark bad date", args: append([]string{"mark", "-date", "tomorrow"}, science...), pwds: []string{"123"}, anyErr: true},
		{name: "mark math class", args: []string{"mark", "-username", "math_teacher", "-date", "2024-03-11"}, pwds: []string{"123"}, wantOut: []string{"1 record(s)"}},
		{name: "percentages after marking", args: append([]string{"percentages"}, science...), pwds: []string{"123"}, wantOut: []string{"75.00%"}},
		{name: "report", args: append([]string{"report", "-from", "2024-03-01", "-to", "2024-03-10"}, science...), pwds: []string{"123"}, wantOut: []string{"present: 3, absent: 2, total: 5"}},
		{name: "empty report", args: append([]string{"report", "-from", "2024-01-01", "-to", "2024-01-31"}, science...), pwds: []string{"123"}, wantErr: spreadsheet.ErrEmptyReport},
	})

	records, err := stores.Attendance.QueryRecordsByDateRange(context.Background(), "Science", testutil.Now, testutil.Now)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Present)
	assert.False(t, records[1].Present)
}

func Test_commandLine_reportExport(t *testing.T) {
	cli, _, out := setup(t)
	path := filepath.Join(t.TempDir(), "science.xlsx")

	runTests(t, cli, out, []cliTest{
		{name: "export", args: []string{"report", "-username", "science_teacher", "-from", "2024-03-01", "-to", "2024-03-10", "-out", path}, pwds: []string{"123"}, wantOut: []string{"report exported to " + path, "total: 3"}},
	})
	assert.FileExists(t, path)
}
