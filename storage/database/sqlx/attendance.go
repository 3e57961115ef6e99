package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/storage/seed"
)

// date holds YYYY-MM-DD text so that lexical order is chronological on every engine.
// There is deliberately no unique constraint: the natural key is enforced by AddRecord.
const attendanceSchema = `
CREATE TABLE IF NOT EXISTS attendance (
	student_id TEXT NOT NULL,
	subject    TEXT NOT NULL,
	date       TEXT NOT NULL,
	is_present BOOLEAN NOT NULL
)`

const recordColumns = `student_id, subject, date, is_present`

// recordRow holds all columns from an attendance query for scanning
type recordRow struct {
	StudentID string `db:"student_id"`
	Subject   string `db:"subject"`
	Date      string `db:"date"`
	Present   bool   `db:"is_present"`
}

func (row recordRow) toDomain() (attendance.Record, error) {
	day, err := attendance.ParseDate(row.Date)
	if err != nil {
		return attendance.Record{}, errors.Wrapf(err, "parsing date of %s", row.StudentID)
	}
	return attendance.Record{StudentID: row.StudentID, Subject: row.Subject, Date: day, Present: row.Present}, nil
}

func rowsToDomain(rows []recordRow) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		r, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

type attendanceRepository struct {
	base
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

// NewAttendanceRepository creates the attendance table if needed and seeds it when empty.
func NewAttendanceRepository(ctx context.Context, db core.DB, opts core.StoreOptions) (attendance.Repository, error) {
	repo := &attendanceRepository{base: newBase(db, attendanceTable, opts)}
	err := repo.bootstrap(ctx, attendanceSchema, func(ctx context.Context, exec core.DBExecutor) error {
		for _, r := range seed.Attendance(opts.Clock()) {
			if err := repo.insert(ctx, exec, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *attendanceRepository) insert(ctx context.Context, exec core.DBExecutor, r attendance.Record) error {
	_, err := exec.ExecContext(ctx,
		repo.q(`INSERT INTO attendance (`+recordColumns+`) VALUES (?, ?, ?, ?)`),
		r.StudentID, r.Subject, attendance.FormatDate(r.Date), r.Present)
	return errors.Wrap(err, "inserting attendance record")
}

// selectRecords runs an attendance query and keeps the rows whose subject matches,
// compared with core.SameSubject so that both backends share one folding rule.
func (repo *attendanceRepository) selectRecords(ctx context.Context, subject, query string, args ...interface{}) ([]attendance.Record, error) {
	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, repo.q(query), args...); err != nil {
		return nil, repo.storageErr("load", errors.Wrap(err, "querying attendance"))
	}
	matching := rows[:0]
	for _, row := range rows {
		if core.SameSubject(row.Subject, subject) {
			matching = append(matching, row)
		}
	}
	records, err := rowsToDomain(matching)
	if err != nil {
		return nil, repo.storageErr("load", err)
	}
	return records, nil
}

func (repo *attendanceRepository) AddRecord(ctx context.Context, r attendance.Record) (bool, error) {
	r = r.Normalize()

	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	same, err := repo.selectRecords(ctx, r.Subject,
		`SELECT `+recordColumns+` FROM attendance WHERE student_id = ? AND date = ?`,
		r.StudentID, attendance.FormatDate(r.Date))
	if err != nil || len(same) > 0 {
		return false, err
	}
	if err = repo.insert(ctx, repo.db, r); err != nil {
		return false, repo.storageErr("persist", err)
	}
	return true, nil
}

func (repo *attendanceRepository) QueryAllRecords(ctx context.Context) ([]attendance.Record, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rows []recordRow
	if err = repo.db.SelectContext(ctx, &rows, `SELECT `+recordColumns+` FROM attendance`); err != nil {
		return nil, repo.storageErr("load", errors.Wrap(err, "querying attendance"))
	}
	records, err := rowsToDomain(rows)
	if err != nil {
		return nil, repo.storageErr("load", err)
	}
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByDateRange(ctx context.Context, subject string, from, to time.Time) ([]attendance.Record, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ordering := []core.DBOrdering{{Field: "date", Ascending: true}, {Field: "student_id", Ascending: true}}
	query := `SELECT ` + recordColumns + ` FROM attendance
		WHERE date >= ? AND date <= ?
		ORDER BY ` + ordering[0].String() + `, ` + ordering[1].String()

	return repo.selectRecords(ctx, subject, query,
		attendance.FormatDate(attendance.Day(from)), attendance.FormatDate(attendance.Day(to)))
}

func (repo *attendanceRepository) AttendancePercentage(ctx context.Context, studentID, subject string) (float64, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	records, err := repo.selectRecords(ctx, subject,
		`SELECT `+recordColumns+` FROM attendance WHERE student_id = ?`, studentID)
	if err != nil {
		return 0, err
	}
	var present int
	for _, r := range records {
		if r.Present {
			present++
		}
	}
	return attendance.Percentage(present, len(records)), nil
}

func (repo *attendanceRepository) HasRecordsOn(ctx context.Context, subject string, day time.Time) (bool, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	records, err := repo.selectRecords(ctx, subject,
		`SELECT `+recordColumns+` FROM attendance WHERE date = ?`,
		attendance.FormatDate(attendance.Day(day)))
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}
