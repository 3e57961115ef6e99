// Package seed holds the default dataset written by a store whose backing medium is empty.
package seed

import (
	"time"

	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
)

func Teachers() []teacher.Teacher {
	return []teacher.Teacher{
		{Username: "science_teacher", Password: "123", Subject: "Science"},
		{Username: "math_teacher", Password: "123", Subject: "Math"},
	}
}

func Students() []student.Student {
	return []student.Student{
		{ID: "S001", Name: "Amani Mbuyi", Subject: "Science"},
		{ID: "S002", Name: "Bora Kasongo", Subject: "Science"},
		{ID: "S003", Name: "Chausiku Ilunga", Subject: "Math"},
	}
}

// Attendance returns three days of Science attendance for S001 ending the day before now:
// present, present, absent.
func Attendance(now time.Time) []attendance.Record {
	today := attendance.Day(now)
	return []attendance.Record{
		{StudentID: "S001", Subject: "Science", Date: today.AddDate(0, 0, -3), Present: true},
		{StudentID: "S001", Subject: "Science", Date: today.AddDate(0, 0, -2), Present: true},
		{StudentID: "S001", Subject: "Science", Date: today.AddDate(0, 0, -1), Present: false},
	}
}
