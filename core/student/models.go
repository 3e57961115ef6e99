package student

import (
	"github.com/trezcool/registre/core"
)

// Student belongs to the class named by Subject. ID is the natural key.
type Student struct {
	ID      string `json:"id" yaml:"id" db:"id"`
	Name    string `json:"name" yaml:"name" db:"name"`
	Subject string `json:"subject" yaml:"subject" db:"subject"`
}

// InClass reports whether the student belongs to the given subject (case-insensitive).
func (s Student) InClass(subject string) bool {
	return core.SameSubject(s.Subject, subject)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	ID      string `json:"id" validate:"required,alphanum_"`
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	ns.Subject = core.CleanString(ns.Subject)
	return core.ValidateStruct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value; the id can never change.
type UpdateStudent struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if subj := core.CleanString(us.Subject); subj != "" {
		us.Subject = subj
	} else {
		us.Subject = orig.Subject
	}
	return core.ValidateStruct(us)
}
