package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/storage/seed"
)

const teachersSchema = `
CREATE TABLE IF NOT EXISTS teachers (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	subject  TEXT NOT NULL
)`

type teacherRepository struct {
	base
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

// NewTeacherRepository creates the teachers table if needed and seeds it when empty.
func NewTeacherRepository(ctx context.Context, db core.DB, opts core.StoreOptions) (teacher.Repository, error) {
	repo := &teacherRepository{base: newBase(db, teachersTable, opts)}
	err := repo.bootstrap(ctx, teachersSchema, func(ctx context.Context, exec core.DBExecutor) error {
		for _, t := range seed.Teachers() {
			if err := repo.insert(ctx, exec, t); err != nil {
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

func (repo *teacherRepository) insert(ctx context.Context, exec core.DBExecutor, t teacher.Teacher) error {
	_, err := exec.ExecContext(ctx,
		repo.q(`INSERT INTO teachers (username, password, subject) VALUES (?, ?, ?)`),
		t.Username, t.Password, t.Subject)
	return errors.Wrap(err, "inserting teacher")
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	teachers := make([]teacher.Teacher, 0)
	if err = repo.db.SelectContext(ctx, &teachers, `SELECT username, password, subject FROM teachers`); err != nil {
		return nil, repo.storageErr("load", errors.Wrap(err, "querying teachers"))
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, username string) (teacher.Teacher, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return teacher.Teacher{}, err
	}
	defer unlock()

	var t teacher.Teacher
	err = repo.db.GetContext(ctx, &t, repo.q(`SELECT username, password, subject FROM teachers WHERE username = ?`), username)
	if isNoRows(err) {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if err != nil {
		return teacher.Teacher{}, repo.storageErr("load", errors.Wrap(err, "finding teacher"))
	}
	return t, nil
}

func (repo *teacherRepository) AddTeacher(ctx context.Context, t teacher.Teacher) (bool, error) {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	n, err := repo.count(ctx, `SELECT COUNT(*) FROM teachers WHERE username = ?`, t.Username)
	if err != nil || n > 0 {
		return false, err
	}
	if err = repo.insert(ctx, repo.db, t); err != nil {
		return false, repo.storageErr("persist", err)
	}
	return true, nil
}

func (repo *teacherRepository) EditTeacher(ctx context.Context, oldUsername string, t teacher.Teacher) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = repo.db.ExecContext(ctx,
		repo.q(`UPDATE teachers SET password = ?, subject = ? WHERE username = ?`),
		t.Password, t.Subject, oldUsername)
	if err != nil {
		return repo.storageErr("persist", errors.Wrap(err, "updating teacher"))
	}
	return nil
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, username string) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err = repo.db.ExecContext(ctx, repo.q(`DELETE FROM teachers WHERE username = ?`), username); err != nil {
		return repo.storageErr("persist", errors.Wrap(err, "deleting teacher"))
	}
	return nil
}
