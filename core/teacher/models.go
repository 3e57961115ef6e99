package teacher

import (
	"github.com/trezcool/registre/core"
)

// Teacher owns the class named by Subject. Username is the natural key.
type Teacher struct {
	Username string `json:"username" yaml:"username" db:"username"`
	Password string `json:"-" yaml:"password" db:"password"`
	Subject  string `json:"subject" yaml:"subject" db:"subject"`
}

// Teaches reports whether the teacher owns the given subject (case-insensitive).
func (t Teacher) Teaches(subject string) bool {
	return core.SameSubject(t.Subject, subject)
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Username string `json:"username" validate:"required,alphanum_"`
	Password string `json:"password" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
}

func (nt *NewTeacher) Validate() error {
	nt.Username = core.CleanString(nt.Username)
	nt.Subject = core.CleanString(nt.Subject)
	return core.ValidateStruct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
// Empty fields keep their current value; the username can never change.
type UpdateTeacher struct {
	Password string `json:"password"`
	Subject  string `json:"subject"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	if subj := core.CleanString(ut.Subject); subj != "" {
		ut.Subject = subj
	} else {
		ut.Subject = orig.Subject
	}
	return core.ValidateStruct(ut)
}
