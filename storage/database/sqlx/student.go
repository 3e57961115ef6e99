package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/storage/seed"
)

const studentsSchema = `
CREATE TABLE IF NOT EXISTS students (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	subject TEXT NOT NULL
)`

type studentRepository struct {
	base
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

// NewStudentRepository creates the students table if needed and seeds it when empty.
func NewStudentRepository(ctx context.Context, db core.DB, opts core.StoreOptions) (student.Repository, error) {
	repo := &studentRepository{base: newBase(db, studentsTable, opts)}
	err := repo.bootstrap(ctx, studentsSchema, func(ctx context.Context, exec core.DBExecutor) error {
		for _, s := range seed.Students() {
			if err := repo.insert(ctx, exec, s); err != nil {
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

func (repo *studentRepository) insert(ctx context.Context, exec core.DBExecutor, s student.Student) error {
	_, err := exec.ExecContext(ctx,
		repo.q(`INSERT INTO students (id, name, subject) VALUES (?, ?, ?)`),
		s.ID, s.Name, s.Subject)
	return errors.Wrap(err, "inserting student")
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	students := make([]student.Student, 0)
	if err = repo.db.SelectContext(ctx, &students, `SELECT id, name, subject FROM students`); err != nil {
		return nil, repo.storageErr("load", errors.Wrap(err, "querying students"))
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return student.Student{}, err
	}
	defer unlock()

	var s student.Student
	err = repo.db.GetContext(ctx, &s, repo.q(`SELECT id, name, subject FROM students WHERE id = ?`), id)
	if isNoRows(err) {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, repo.storageErr("load", errors.Wrap(err, "finding student"))
	}
	return s, nil
}

func (repo *studentRepository) AddStudent(ctx context.Context, s student.Student) (bool, error) {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	n, err := repo.count(ctx, `SELECT COUNT(*) FROM students WHERE id = ?`, s.ID)
	if err != nil || n > 0 {
		return false, err
	}
	if err = repo.insert(ctx, repo.db, s); err != nil {
		return false, repo.storageErr("persist", err)
	}
	return true, nil
}

func (repo *studentRepository) EditStudent(ctx context.Context, oldID string, s student.Student) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = repo.db.ExecContext(ctx,
		repo.q(`UPDATE students SET name = ?, subject = ? WHERE id = ?`),
		s.Name, s.Subject, oldID)
	if err != nil {
		return repo.storageErr("persist", errors.Wrap(err, "updating student"))
	}
	return nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err = repo.db.ExecContext(ctx, repo.q(`DELETE FROM students WHERE id = ?`), id); err != nil {
		return repo.storageErr("persist", errors.Wrap(err, "deleting student"))
	}
	return nil
}
