package filedb

import (
	"context"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/storage/seed"
)

type studentRepository struct {
	tbl *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

// NewStudentRepository opens (or seeds) dir/students.yaml.
func NewStudentRepository(dir string, opts core.StoreOptions) (student.Repository, error) {
	tbl, err := openTable(dir, StudentsFile, "students", opts, seed.Students)
	if err != nil {
		return nil, err
	}
	return &studentRepository{tbl: tbl}, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	return repo.tbl.read(ctx)
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	students, err := repo.tbl.read(ctx)
	if err != nil {
		return student.Student{}, err
	}
	if i := indexStudent(students, id); i >= 0 {
		return students[i], nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) AddStudent(ctx context.Context, s student.Student) (bool, error) {
	return repo.tbl.mutate(ctx, func(students []student.Student) ([]student.Student, bool) {
		if indexStudent(students, s.ID) >= 0 {
			return students, false
		}
		return append(students, s), true
	})
}

func (repo *studentRepository) EditStudent(ctx context.Context, oldID string, s student.Student) error {
	_, err := repo.tbl.mutate(ctx, func(students []student.Student) ([]student.Student, bool) {
		i := indexStudent(students, oldID)
		if i < 0 {
			return students, false
		}
		s.ID = oldID
		students[i] = s
		return students, true
	})
	return err
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	_, err := repo.tbl.mutate(ctx, func(students []student.Student) ([]student.Student, bool) {
		i := indexStudent(students, id)
		if i < 0 {
			return students, false
		}
		return append(students[:i], students[i+1:]...), true
	})
	return err
}

func indexStudent(students []student.Student, id string) int {
	for i, s := range students {
		if s.ID == id {
			return i
		}
	}
	return -1
}
