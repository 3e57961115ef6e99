package filedb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/storage/seed"
)

type attendanceRepository struct {
	tbl *table[attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

// NewAttendanceRepository opens (or seeds) dir/attendance.yaml.
func NewAttendanceRepository(dir string, opts core.StoreOptions) (attendance.Repository, error) {
	seedFn := func() []attendance.Record { return seed.Attendance(opts.Clock()) }
	tbl, err := openTable(dir, AttendanceFile, "attendance", opts, seedFn)
	if err != nil {
		return nil, err
	}
	return &attendanceRepository{tbl: tbl}, nil
}

func (repo *attendanceRepository) AddRecord(ctx context.Context, r attendance.Record) (bool, error) {
	r = r.Normalize()
	return repo.tbl.mutate(ctx, func(records []attendance.Record) ([]attendance.Record, bool) {
		for _, rec := range records {
			if rec.SameKey(r) {
				return records, false
			}
		}
		return append(records, r), true
	})
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context) ([]attendance.Record, error) {
	return repo.tbl.read(ctx)
}

func (repo *attendanceRepository) QueryRecordsByDateRange(ctx context.Context, subject string, from, to time.Time) ([]attendance.Record, error) {
	records, err := repo.tbl.read(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]attendance.Record, 0)
	for _, r := range records {
		if core.SameSubject(r.Subject, subject) && attendance.InRange(r.Date, from, to) {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[i].Date.Before(filtered[j].Date)
		}
		return filtered[i].StudentID < filtered[j].StudentID
	})
	return filtered, nil
}

func (repo *attendanceRepository) AttendancePercentage(ctx context.Context, studentID, subject string) (float64, error) {
	records, err := repo.tbl.read(ctx)
	if err != nil {
		return 0, err
	}
	var present, total int
	for _, r := range records {
		if r.StudentID == studentID && core.SameSubject(r.Subject, subject) {
			total++
			if r.Present {
				present++
			}
		}
	}
	return attendance.Percentage(present, total), nil
}

func (repo *attendanceRepository) HasRecordsOn(ctx context.Context, subject string, day time.Time) (bool, error) {
	records, err := repo.tbl.read(ctx)
	if err != nil {
		return false, err
	}
	day = attendance.Day(day)
	for _, r := range records {
		if core.SameSubject(r.Subject, subject) && r.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}
