package filedb

import (
	"context"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/storage/seed"
)

type teacherRepository struct {
	tbl *table[teacher.Teacher]
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

// NewTeacherRepository opens (or seeds) dir/teachers.yaml.
func NewTeacherRepository(dir string, opts core.StoreOptions) (teacher.Repository, error) {
	tbl, err := openTable(dir, TeachersFile, "teachers", opts, seed.Teachers)
	if err != nil {
		return nil, err
	}
	return &teacherRepository{tbl: tbl}, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	return repo.tbl.read(ctx)
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, username string) (teacher.Teacher, error) {
	teachers, err := repo.tbl.read(ctx)
	if err != nil {
		return teacher.Teacher{}, err
	}
	if i := indexTeacher(teachers, username); i >= 0 {
		return teachers[i], nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) AddTeacher(ctx context.Context, t teacher.Teacher) (bool, error) {
	return repo.tbl.mutate(ctx, func(teachers []teacher.Teacher) ([]teacher.Teacher, bool) {
		if indexTeacher(teachers, t.Username) >= 0 {
			return teachers, false
		}
		return append(teachers, t), true
	})
}

func (repo *teacherRepository) EditTeacher(ctx context.Context, oldUsername string, t teacher.Teacher) error {
	_, err := repo.tbl.mutate(ctx, func(teachers []teacher.Teacher) ([]teacher.Teacher, bool) {
		i := indexTeacher(teachers, oldUsername)
		if i < 0 {
			return teachers, false
		}
		t.Username = oldUsername
		teachers[i] = t
		return teachers, true
	})
	return err
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, username string) error {
	_, err := repo.tbl.mutate(ctx, func(teachers []teacher.Teacher) ([]teacher.Teacher, bool) {
		i := indexTeacher(teachers, username)
		if i < 0 {
			return teachers, false
		}
		return append(teachers[:i], teachers[i+1:]...), true
	})
	return err
}

func indexTeacher(teachers []teacher.Teacher, username string) int {
	for i, t := range teachers {
		if t.Username == username {
			return i
		}
	}
	return -1
}
