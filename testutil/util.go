// Package testutil holds the helpers shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/storage/database"
)

// Now is the fixed seed clock used by tests: seeded attendance is dated
// 2024-03-07, 2024-03-08 and 2024-03-09.
var Now = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StoreOptions returns options with a discarding logger and the fixed clock.
func StoreOptions(policy ...core.RecoveryPolicy) core.StoreOptions {
	opts := core.StoreOptions{
		Logger:      core.NopLogger{},
		Recovery:    core.RecoveryFail,
		LockTimeout: time.Second,
		Now:         func() time.Time { return Now },
	}
	if len(policy) > 0 {
		opts.Recovery = policy[0]
	}
	return opts
}

// PrepareDB opens a private in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(context.Background(), core.DatabaseConfig{Engine: core.EngineSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateTeacher(t *testing.T, repo teacher.Repository, uname, pwd, subject string) teacher.Teacher {
	t.Helper()
	tchr := teacher.Teacher{Username: uname, Password: pwd, Subject: subject}
	added, err := repo.AddTeacher(context.Background(), tchr)
	if err != nil || !added {
		t.Fatalf("CreateTeacher() failed: added=%v err=%v", added, err)
	}
	return tchr
}

func CreateStudent(t *testing.T, repo student.Repository, id, name, subject string) student.Student {
	t.Helper()
	s := student.Student{ID: id, Name: name, Subject: subject}
	added, err := repo.AddStudent(context.Background(), s)
	if err != nil || !added {
		t.Fatalf("CreateStudent() failed: added=%v err=%v", added, err)
	}
	return s
}
