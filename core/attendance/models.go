package attendance

import (
	"math"
	"strings"
	"time"

	"github.com/trezcool/registre/core"
)

// DateLayout is the wire and storage format of attendance dates.
const DateLayout = "2006-01-02"

// Record is one student's attendance for one subject on one day.
// (StudentID, Subject, Date) is the natural key; records are append-only.
type Record struct {
	StudentID string    `json:"student_id" yaml:"student_id"`
	Subject   string    `json:"subject" yaml:"subject"`
	Date      time.Time `json:"date" yaml:"date"` // UTC midnight
	Present   bool      `json:"present" yaml:"present"`
}

// SameKey reports whether r and o share the natural key. Subjects compare case-insensitively.
func (r Record) SameKey(o Record) bool {
	return r.StudentID == o.StudentID && core.SameSubject(r.Subject, o.Subject) && r.Date.Equal(o.Date)
}

// Normalize returns r with its date truncated to a civil day.
func (r Record) Normalize() Record {
	r.Date = Day(r.Date)
	r.Subject = strings.TrimSpace(r.Subject)
	return r
}

// Day truncates t to midnight UTC of its calendar date, as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// InRange reports whether day lies in [from, to], bounds inclusive.
func InRange(day, from, to time.Time) bool {
	day = Day(day)
	return !day.Before(Day(from)) && !day.After(Day(to))
}

// Percentage is present/total*100 rounded to two decimals, and exactly 0 when total is 0.
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	p := float64(present) / float64(total) * 100.0
	return math.Round(p*100) / 100
}
