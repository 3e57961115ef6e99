package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
	ErrIDExists = errors.New("a student with this id already exists")
)

type (
	// Repository is the StudentStore contract, implemented by every storage backend.
	Repository interface {
		QueryAllStudents(ctx context.Context) ([]Student, error)
		// GetStudent does a case-sensitive exact match on id and returns ErrNotFound if absent.
		GetStudent(ctx context.Context, id string) (Student, error)
		// AddStudent persists s immediately. It is a no-op returning false if the id is taken.
		AddStudent(ctx context.Context, s Student) (bool, error)
		// EditStudent replaces the student stored under oldID, keeping that id. Absent is a no-op.
		EditStudent(ctx context.Context, oldID string, s Student) error
		// DeleteStudent removes the student if present. Absent is a no-op.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	s := Student{ID: ns.ID, Name: ns.Name, Subject: ns.Subject}
	added, err := svc.repo.AddStudent(ctx, s)
	if err != nil {
		return Student{}, err
	}
	if !added {
		return Student{}, core.NewValidationError(ErrIDExists, core.FieldError{Field: "id", Error: ErrIDExists.Error()})
	}
	return s, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

// QueryBySubject returns the class roster for subject (case-insensitive).
func (svc *Service) QueryBySubject(ctx context.Context, subject string) ([]Student, error) {
	all, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	class := make([]Student, 0, len(all))
	for _, s := range all {
		if s.InClass(subject) {
			class = append(class, s)
		}
	}
	return class, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, core.CleanString(id))
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudent(ctx, core.CleanString(id))
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(orig); err != nil {
		return Student{}, err
	}
	s := Student{ID: orig.ID, Name: us.Name, Subject: us.Subject}
	if err = svc.repo.EditStudent(ctx, orig.ID, s); err != nil {
		return Student{}, err
	}
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, core.CleanString(id))
}

// DeleteBySubject removes every student of the class, one store call each.
// There is no transaction: on failure the students deleted so far stay deleted.
func (svc *Service) DeleteBySubject(ctx context.Context, subject string) (int, error) {
	class, err := svc.QueryBySubject(ctx, subject)
	if err != nil {
		return 0, err
	}
	var deleted int
	for _, s := range class {
		if err := svc.repo.DeleteStudent(ctx, s.ID); err != nil {
			return deleted, errors.Wrapf(err, "deleting student %s", s.ID)
		}
		deleted++
	}
	return deleted, nil
}
