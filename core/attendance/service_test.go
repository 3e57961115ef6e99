package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registre/core/attendance"
	filedb "github.com/trezcool/registre/storage/database/file"
	"github.com/trezcool/registre/testutil"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		present, total int
		want           float64
	}{
		{0, 0, 0.0},
		{2, 3, 66.67},
		{1, 3, 33.33},
		{3, 3, 100.0},
		{0, 4, 0.0},
		{1, 8, 12.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attendance.Percentage(tt.present, tt.total), "%d/%d", tt.present, tt.total)
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("CAT", 2*60*60)
	assert.Equal(t, testutil.Date(2024, 3, 10), attendance.Day(time.Date(2024, 3, 10, 23, 59, 0, 0, loc)))

	d, err := attendance.ParseDate(" 2024-03-10 ")
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 3, 10), d)
	assert.Equal(t, "2024-03-10", attendance.FormatDate(d))

	_, err = attendance.ParseDate("10/03/2024")
	assert.Error(t, err)

	assert.True(t, attendance.InRange(d, d, d))
	assert.False(t, attendance.InRange(d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2)))
}

func TestService_MarkClass(t *testing.T) {
	ctx := context.Background()
	repo, err := filedb.NewAttendanceRepository(t.TempDir(), testutil.StoreOptions())
	require.NoError(t, err)
	svc := attendance.NewService(repo)

	day := testutil.Date(2024, 3, 10)
	_, err = svc.MarkClass(ctx, "Science", day, nil)
	assert.Equal(t, attendance.ErrNoStudents, err)

	n, err := svc.MarkClass(ctx, "Science", day.Add(8*time.Hour), []attendance.Mark{
		{StudentID: "S001", Present: true},
		{StudentID: "S002", Present: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = svc.MarkClass(ctx, "science", day, []attendance.Mark{{StudentID: "S001", Present: false}})
	assert.Equal(t, attendance.ErrAlreadyMarked, err)

	// seeded 2/3 plus one present
	pct, err := svc.Percentage(ctx, "S001", "Science")
	require.NoError(t, err)
	assert.Equal(t, 75.0, pct)

	added, err := svc.Add(ctx, attendance.Record{StudentID: "S002", Subject: "Science", Date: day, Present: true})
	require.NoError(t, err)
	assert.False(t, added)

	records, err := svc.QueryByDateRange(ctx, "Science", day, day)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S001", records[0].StudentID)
	assert.False(t, records[1].Present)

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
