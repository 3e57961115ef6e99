package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/services/spreadsheet"
)

// asTeacher parses args with the teacher flag and authenticates the teacher.
func (cli *commandLine) asTeacher(ctx context.Context, name string, args []string, define func(fs *flagSetter)) (teacher.Teacher, error) {
	fs := cli.flagSet(name)
	uname := fs.String("username", "", "The teacher's username. The password will be prompted next.")
	fsr := &flagSetter{FlagSet: fs}
	if define != nil {
		define(fsr)
	}
	if err := parse(fs, args, append(fsr.required, uname)...); err != nil {
		return teacher.Teacher{}, err
	}
	p, err := cli.authenticate(ctx, auth.RoleTeacher, *uname)
	if err != nil {
		return teacher.Teacher{}, err
	}
	return *p.Teacher, nil
}

// classStudent returns the student with id if it belongs to the teacher's class.
func (cli *commandLine) classStudent(ctx context.Context, t teacher.Teacher, id string) (student.Student, error) {
	s, err := cli.students.GetByID(ctx, id)
	if err != nil {
		return student.Student{}, err
	}
	if !s.InClass(t.Subject) {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (cli *commandLine) printClass(ctx context.Context, t teacher.Teacher) error {
	class, err := cli.analytics.Roster(ctx, t)
	if err != nil {
		return err
	}
	w, row := cli.table("ID", "NAME")
	for _, s := range class {
		row(s.ID, s.Name)
	}
	return w.Flush()
}

func (cli *commandLine) listStudents(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()
	t, err := cli.asTeacher(ctx, "students", args, nil)
	if err != nil {
		return err
	}
	return cli.printClass(ctx, t)
}

func (cli *commandLine) addStudent(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var id, name *string
	t, err := cli.asTeacher(ctx, "addstudent", args, func(fs *flagSetter) {
		name = fs.requiredString("name", "The student's name.")
		id = fs.String("id", "", "The student's id. Generated if empty.")
	})
	if err != nil {
		return err
	}
	if core.CleanString(*id) == "" {
		*id = spreadsheet.GenerateStudentID()
	}
	if _, err = cli.students.Create(ctx, student.NewStudent{ID: *id, Name: *name, Subject: t.Subject}); err != nil {
		return err
	}
	return cli.printClass(ctx, t)
}

func (cli *commandLine) editStudent(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var id, name *string
	t, err := cli.asTeacher(ctx, "editstudent", args, func(fs *flagSetter) {
		id = fs.requiredString("id", "The student's id.")
		name = fs.requiredString("name", "The student's new name.")
	})
	if err != nil {
		return err
	}
	s, err := cli.classStudent(ctx, t, *id)
	if err != nil {
		return err
	}
	if _, err = cli.students.Update(ctx, s.ID, student.UpdateStudent{Name: *name}); err != nil {
		return err
	}
	return cli.printClass(ctx, t)
}

func (cli *commandLine) deleteStudent(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var id *string
	t, err := cli.asTeacher(ctx, "deletestudent", args, func(fs *flagSetter) {
		id = fs.requiredString("id", "The student's id.")
	})
	if err != nil {
		return err
	}
	s, err := cli.classStudent(ctx, t, *id)
	if err != nil {
		return err
	}
	if err = cli.students.Delete(ctx, s.ID); err != nil {
		return err
	}
	return cli.printClass(ctx, t)
}

func (cli *commandLine) importStudents(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var path *string
	t, err := cli.asTeacher(ctx, "importstudents", args, func(fs *flagSetter) {
		path = fs.requiredString("file", "The xlsx workbook to import.")
	})
	if err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	students, err := spreadsheet.ImportStudents(f, t.Subject)
	if err != nil {
		return err
	}
	var imported int
	for _, ns := range students {
		if _, err := cli.students.Create(ctx, ns); err != nil {
			if core.IsValidationError(err) {
				cli.logger.Warn(fmt.Sprintf("skipping student %s", ns.ID), err)
				continue
			}
			return err
		}
		imported++
	}
	fmt.Fprintf(cli.out, "%d of %d student(s) imported\n", imported, len(students))
	return cli.printClass(ctx, t)
}
