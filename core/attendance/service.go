package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrAlreadyMarked = errors.New("attendance has already been marked for this date")
	ErrNoStudents    = errors.New("no students found in class")
)

type (
	// Repository is the AttendanceStore contract, implemented by every storage backend.
	Repository interface {
		// AddRecord appends r unless a record with the same natural key exists, in which case
		// it is a silent no-op returning false and the first write is kept.
		AddRecord(ctx context.Context, r Record) (bool, error)
		QueryAllRecords(ctx context.Context) ([]Record, error)
		// QueryRecordsByDateRange returns the subject's records dated within [from, to], ascending by date.
		QueryRecordsByDateRange(ctx context.Context, subject string, from, to time.Time) ([]Record, error)
		// AttendancePercentage returns the share of present records in [0, 100], 0 when there are none.
		AttendancePercentage(ctx context.Context, studentID, subject string) (float64, error)
		// HasRecordsOn reports whether any record exists for subject on day.
		HasRecordsOn(ctx context.Context, subject string, day time.Time) (bool, error)
	}

	Service struct {
		repo Repository
	}

	// Mark is the attendance of one student in a MarkClass call.
	Mark struct {
		StudentID string
		Present   bool
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Add(ctx context.Context, r Record) (bool, error) {
	return svc.repo.AddRecord(ctx, r.Normalize())
}

func (svc *Service) QueryAll(ctx context.Context) ([]Record, error) {
	return svc.repo.QueryAllRecords(ctx)
}

func (svc *Service) QueryByDateRange(ctx context.Context, subject string, from, to time.Time) ([]Record, error) {
	return svc.repo.QueryRecordsByDateRange(ctx, subject, Day(from), Day(to))
}

func (svc *Service) Percentage(ctx context.Context, studentID, subject string) (float64, error) {
	return svc.repo.AttendancePercentage(ctx, studentID, subject)
}

// MarkClass records one day of attendance for a class. It refuses to run twice for the same
// subject and day, and returns the number of records written.
func (svc *Service) MarkClass(ctx context.Context, subject string, day time.Time, marks []Mark) (int, error) {
	if len(marks) == 0 {
		return 0, ErrNoStudents
	}
	day = Day(day)
	marked, err := svc.repo.HasRecordsOn(ctx, subject, day)
	if err != nil {
		return 0, err
	}
	if marked {
		return 0, ErrAlreadyMarked
	}

	var written int
	for _, m := range marks {
		added, err := svc.repo.AddRecord(ctx, Record{StudentID: m.StudentID, Subject: subject, Date: day, Present: m.Present})
		if err != nil {
			return written, errors.Wrapf(err, "marking student %s", m.StudentID)
		}
		if added {
			written++
		}
	}
	return written, nil
}
