// Package analytics derives rosters, attendance percentages and date-range reports
// from the student and attendance stores. It holds no state of its own.
package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
)

type (
	Facade struct {
		students   student.Repository
		attendance attendance.Repository
	}

	// StudentAttendance is one row of a class attendance table.
	StudentAttendance struct {
		Student    student.Student
		Percentage float64
	}

	// Report aggregates a subject's records over an inclusive date range.
	Report struct {
		Subject string
		From    time.Time
		To      time.Time
		Records []attendance.Record
		Present int
		Absent  int
	}
)

func (r Report) Total() int {
	return len(r.Records)
}

func (r Report) IsEmpty() bool {
	return len(r.Records) == 0
}

func NewFacade(students student.Repository, records attendance.Repository) *Facade {
	return &Facade{students: students, attendance: records}
}

// Roster returns the students whose subject matches the teacher's (case-insensitive).
func (f *Facade) Roster(ctx context.Context, t teacher.Teacher) ([]student.Student, error) {
	all, err := f.students.QueryAllStudents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	roster := make([]student.Student, 0, len(all))
	for _, s := range all {
		if core.SameSubject(s.Subject, t.Subject) {
			roster = append(roster, s)
		}
	}
	return roster, nil
}

// AttendanceTable returns the teacher's roster with each student's attendance percentage.
func (f *Facade) AttendanceTable(ctx context.Context, t teacher.Teacher) ([]StudentAttendance, error) {
	roster, err := f.Roster(ctx, t)
	if err != nil {
		return nil, err
	}
	table := make([]StudentAttendance, 0, len(roster))
	for _, s := range roster {
		pct, err := f.attendance.AttendancePercentage(ctx, s.ID, t.Subject)
		if err != nil {
			return nil, errors.Wrapf(err, "computing attendance of %s", s.ID)
		}
		table = append(table, StudentAttendance{Student: s, Percentage: pct})
	}
	return table, nil
}

// DateRangeReport counts present and absent records of subject within [from, to].
// The range order is not validated: from after to yields an empty report.
func (f *Facade) DateRangeReport(ctx context.Context, subject string, from, to time.Time) (Report, error) {
	from, to = attendance.Day(from), attendance.Day(to)
	records, err := f.attendance.QueryRecordsByDateRange(ctx, subject, from, to)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying records")
	}
	rep := Report{Subject: subject, From: from, To: to, Records: records}
	for _, r := range records {
		if r.Present {
			rep.Present++
		} else {
			rep.Absent++
		}
	}
	return rep, nil
}
