package teacher

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
)

var (
	// errors
	ErrNotFound       = errors.New("teacher not found")
	ErrUsernameExists = errors.New("a teacher with this username already exists")
)

type (
	// Repository is the TeacherStore contract, implemented by every storage backend.
	Repository interface {
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		// GetTeacher does a case-sensitive exact match on username and returns ErrNotFound if absent.
		GetTeacher(ctx context.Context, username string) (Teacher, error)
		// AddTeacher persists t immediately. It is a no-op returning false if the username is taken.
		AddTeacher(ctx context.Context, t Teacher) (bool, error)
		// EditTeacher replaces the teacher stored under oldUsername, keeping that username. Absent is a no-op.
		EditTeacher(ctx context.Context, oldUsername string, t Teacher) error
		// DeleteTeacher removes the teacher if present. Absent is a no-op.
		DeleteTeacher(ctx context.Context, username string) error
	}

	Service struct {
		repo Repository
		pwds core.Passwords
	}
)

func NewService(repo Repository, pwds core.Passwords) *Service {
	return &Service{repo: repo, pwds: pwds}
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}
	if _, err := svc.repo.GetTeacher(ctx, nt.Username); err == nil {
		return Teacher{}, usernameExists()
	} else if err != ErrNotFound {
		return Teacher{}, err
	}

	pwd, err := svc.pwds.Encode(nt.Password)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "encoding password")
	}
	t := Teacher{Username: nt.Username, Password: pwd, Subject: nt.Subject}
	added, err := svc.repo.AddTeacher(ctx, t)
	if err != nil {
		return Teacher{}, err
	}
	if !added {
		return Teacher{}, usernameExists()
	}
	return t, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, core.CleanString(uname))
}

func (svc *Service) Update(ctx context.Context, uname string, ut UpdateTeacher) (Teacher, error) {
	orig, err := svc.repo.GetTeacher(ctx, core.CleanString(uname))
	if err != nil {
		return Teacher{}, err
	}
	if err = ut.Validate(orig); err != nil {
		return Teacher{}, err
	}

	t := Teacher{Username: orig.Username, Password: orig.Password, Subject: ut.Subject}
	if ut.Password != "" {
		if t.Password, err = svc.pwds.Encode(ut.Password); err != nil {
			return Teacher{}, errors.Wrap(err, "encoding password")
		}
	}
	if err = svc.repo.EditTeacher(ctx, orig.Username, t); err != nil {
		return Teacher{}, err
	}
	return t, nil
}

func (svc *Service) Delete(ctx context.Context, uname string) error {
	return svc.repo.DeleteTeacher(ctx, core.CleanString(uname))
}

func usernameExists() error {
	return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
}
