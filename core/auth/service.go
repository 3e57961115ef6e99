package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/teacher"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownRole        = errors.New("unknown role")
	ErrNoOverride         = errors.New("no owner credentials saved")
)

type (
	// OwnerRepository persists the single owner-credential override.
	OwnerRepository interface {
		// GetOwnerCredentials returns ErrNoOverride when nothing was saved yet.
		GetOwnerCredentials(ctx context.Context) (Credentials, error)
		SaveOwnerCredentials(ctx context.Context, creds Credentials) error
	}

	// Gateway resolves logins. It keeps no session state: every call re-validates.
	Gateway struct {
		teachers teacher.Repository
		owner    OwnerRepository
		pwds     core.Passwords
		fallback Credentials
	}
)

func NewGateway(teachers teacher.Repository, owner OwnerRepository, conf core.AuthConfig) *Gateway {
	fallback := Credentials{Username: conf.OwnerUsername, Password: conf.OwnerPassword}
	if fallback.Username == "" {
		fallback = Credentials{Username: core.DefaultOwnerUsername, Password: core.DefaultOwnerPassword}
	}
	return &Gateway{
		teachers: teachers,
		owner:    owner,
		pwds:     core.Passwords{Hash: conf.HashPasswords},
		fallback: fallback,
	}
}

// TeacherLogin returns the teacher whose username and password both match.
func (gw *Gateway) TeacherLogin(ctx context.Context, uname, pwd string) (teacher.Teacher, error) {
	t, err := gw.teachers.GetTeacher(ctx, uname)
	if err != nil {
		if err == teacher.ErrNotFound {
			return teacher.Teacher{}, ErrInvalidCredentials
		}
		return teacher.Teacher{}, err
	}
	if !gw.pwds.Match(t.Password, pwd) {
		return teacher.Teacher{}, ErrInvalidCredentials
	}
	return t, nil
}

// OwnerLogin checks the saved override, or the built-in pair when none was saved.
func (gw *Gateway) OwnerLogin(ctx context.Context, uname, pwd string) (bool, error) {
	creds, err := gw.owner.GetOwnerCredentials(ctx)
	switch {
	case err == ErrNoOverride:
		creds = gw.fallback
	case err != nil:
		return false, err
	}
	return creds.Username == uname && gw.pwds.Match(creds.Password, pwd), nil
}

// UpdateOwnerCredentials overwrites the override unconditionally.
func (gw *Gateway) UpdateOwnerCredentials(ctx context.Context, uname, pwd string) error {
	uname = core.CleanString(uname)
	if uname == "" || pwd == "" {
		return core.NewValidationError(ErrInvalidCredentials,
			core.FieldError{Field: "username", Error: "username and password are required"})
	}
	encoded, err := gw.pwds.Encode(pwd)
	if err != nil {
		return errors.Wrap(err, "encoding password")
	}
	return gw.owner.SaveOwnerCredentials(ctx, Credentials{Username: uname, Password: encoded})
}

// Login dispatches on role.
func (gw *Gateway) Login(ctx context.Context, role, uname, pwd string) (Principal, error) {
	switch role {
	case RoleOwner:
		ok, err := gw.OwnerLogin(ctx, uname, pwd)
		if err != nil {
			return Principal{}, err
		}
		if !ok {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{Role: RoleOwner, Username: uname}, nil
	case RoleTeacher:
		t, err := gw.TeacherLogin(ctx, uname, pwd)
		if err != nil {
			return Principal{}, err
		}
		return Principal{Role: RoleTeacher, Username: t.Username, Teacher: &t}, nil
	default:
		return Principal{}, ErrUnknownRole
	}
}
