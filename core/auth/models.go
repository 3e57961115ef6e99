package auth

import (
	"github.com/trezcool/registre/core/teacher"
)

// Roles
const (
	RoleOwner   = "owner"
	RoleTeacher = "teacher"
)

// Credentials is the persisted owner override.
type Credentials struct {
	Username string `json:"username" yaml:"username" db:"username"`
	Password string `json:"-" yaml:"password" db:"password"`
}

// Principal is the outcome of a successful Login. Teacher is only set for RoleTeacher.
type Principal struct {
	Role     string
	Username string
	Teacher  *teacher.Teacher
}

func (p Principal) IsOwner() bool {
	return p.Role == RoleOwner
}
