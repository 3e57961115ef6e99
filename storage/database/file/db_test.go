package filedb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/storage/seed"
	"github.com/trezcool/registre/testutil"
)

func TestOpenTable_seedsOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewStudentRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, StudentsFile))

	testutil.CreateStudent(t, repo, "S004", "Dalia Kabila", "Math")
	require.NoError(t, repo.DeleteStudent(ctx, "S001"))

	// a second construction loads what was saved instead of reseeding
	repo, err = NewStudentRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	students, err := repo.QueryAllStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []student.Student{
		{ID: "S002", Name: "Bora Kasongo", Subject: "Science"},
		{ID: "S003", Name: "Chausiku Ilunga", Subject: "Math"},
		{ID: "S004", Name: "Dalia Kabila", Subject: "Math"},
	}, students)
}

func TestOpenTable_emptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TeachersFile), []byte("\n"), 0644))

	repo, err := NewTeacherRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	teachers, err := repo.QueryAllTeachers(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, seed.Teachers(), teachers)
}

func TestOpenTable_attendanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewAttendanceRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)

	repo, err := NewAttendanceRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	records, err := repo.QueryRecordsByDateRange(ctx, "Science", testutil.Date(2024, 3, 7), testutil.Date(2024, 3, 9))
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		want := seed.Attendance(testutil.Now)[i]
		assert.True(t, want.Date.Equal(r.Date))
		assert.Equal(t, want.Present, r.Present)
	}
}

func TestOpenTable_corrupt(t *testing.T) {
	corrupt := func(t *testing.T) string {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, StudentsFile), []byte("rows: [this is: not: yaml"), 0644))
		return dir
	}

	t.Run("fail", func(t *testing.T) {
		dir := corrupt(t)
		_, err := NewStudentRepository(dir, testutil.StoreOptions(core.RecoveryFail))
		require.Error(t, err)
		assert.True(t, core.IsStorageUnavailable(err))

		// the medium is left untouched
		data, err := os.ReadFile(filepath.Join(dir, StudentsFile))
		require.NoError(t, err)
		assert.Equal(t, "rows: [this is: not: yaml", string(data))
	})

	t.Run("reseed", func(t *testing.T) {
		dir := corrupt(t)
		repo, err := NewStudentRepository(dir, testutil.StoreOptions(core.RecoveryReseed))
		require.NoError(t, err)
		students, err := repo.QueryAllStudents(context.Background())
		require.NoError(t, err)
		assert.ElementsMatch(t, seed.Students(), students)
		assert.FileExists(t, filepath.Join(dir, StudentsFile+".corrupt"))
	})

	t.Run("unsupported version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, StudentsFile), []byte("version: 7\nrows: []\n"), 0644))
		_, err := NewStudentRepository(dir, testutil.StoreOptions())
		assert.True(t, core.IsStorageUnavailable(err))
	})
}

func TestTable_busy(t *testing.T) {
	opts := testutil.StoreOptions()
	opts.LockTimeout = 20 * time.Millisecond
	tbl, err := openTable(t.TempDir(), StudentsFile, "students", opts, seed.Students)
	require.NoError(t, err)

	unlock, err := tbl.lock.Lock(context.Background())
	require.NoError(t, err)
	defer unlock()

	_, err = tbl.read(context.Background())
	assert.True(t, core.IsBusy(err))
	_, err = tbl.mutate(context.Background(), func(rows []student.Student) ([]student.Student, bool) { return rows, true })
	assert.True(t, core.IsBusy(err))
}

func TestTable_persistFailureKeepsRows(t *testing.T) {
	dir := t.TempDir()
	tbl, err := openTable(dir, StudentsFile, "students", testutil.StoreOptions(), seed.Students)
	require.NoError(t, err)

	tbl.path = filepath.Join(dir, "missing", StudentsFile)
	_, err = tbl.mutate(context.Background(), func(rows []student.Student) ([]student.Student, bool) {
		return append(rows, student.Student{ID: "S009"}), true
	})
	assert.True(t, core.IsStorageUnavailable(err))

	rows, err := tbl.read(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestOwnerRepository_corrupt(t *testing.T) {
	ctx := context.Background()
	write := func(t *testing.T) string {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, OwnerFile), []byte("username: [unclosed"), 0644))
		return dir
	}

	repo, err := NewOwnerRepository(write(t), testutil.StoreOptions())
	require.NoError(t, err)
	_, err = repo.GetOwnerCredentials(ctx)
	assert.True(t, core.IsStorageUnavailable(err))

	repo, err = NewOwnerRepository(write(t), testutil.StoreOptions(core.RecoveryReseed))
	require.NoError(t, err)
	_, err = repo.GetOwnerCredentials(ctx)
	assert.Equal(t, auth.ErrNoOverride, err)
}
