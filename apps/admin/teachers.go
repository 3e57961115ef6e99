package main

import (
	"context"
	"fmt"

	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/teacher"
)

func (cli *commandLine) login(args []string) error {
	fs := cli.flagSet("login")
	role := fs.String("role", auth.RoleTeacher, "owner or teacher. The password will be prompted next.")
	uname := fs.String("username", "", "The username to log in with.")
	if err := parse(fs, args, role, uname); err != nil {
		return err
	}

	ctx, cancel := cli.newContext()
	defer cancel()
	p, err := cli.authenticate(ctx, *role, *uname)
	if err != nil {
		return err
	}
	if p.IsOwner() {
		fmt.Fprintf(cli.out, "logged in as owner %s\n", p.Username)
	} else {
		fmt.Fprintf(cli.out, "logged in as %s, teacher of %s\n", p.Username, p.Teacher.Subject)
	}
	return nil
}

// asOwner parses args with the owner flag and authenticates the owner.
func (cli *commandLine) asOwner(ctx context.Context, name string, args []string, define func(fs *flagSetter)) error {
	fs := cli.flagSet(name)
	owner := fs.String("username", "", "The owner's username. The password will be prompted next.")
	fsr := &flagSetter{FlagSet: fs}
	if define != nil {
		define(fsr)
	}
	if err := parse(fs, args, append(fsr.required, owner)...); err != nil {
		return err
	}
	_, err := cli.authenticate(ctx, auth.RoleOwner, *owner)
	return err
}

func (cli *commandLine) printTeachers(ctx context.Context) error {
	teachers, err := cli.teachers.QueryAll(ctx)
	if err != nil {
		return err
	}
	w, row := cli.table("USERNAME", "SUBJECT")
	for _, t := range teachers {
		row(t.Username, t.Subject)
	}
	return w.Flush()
}

func (cli *commandLine) listTeachers(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()
	if err := cli.asOwner(ctx, "teachers", args, nil); err != nil {
		return err
	}
	return cli.printTeachers(ctx)
}

func (cli *commandLine) addTeacher(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var uname, subject *string
	err := cli.asOwner(ctx, "addteacher", args, func(fs *flagSetter) {
		uname = fs.requiredString("teacher", "The new teacher's username.")
		subject = fs.requiredString("subject", "The subject taught.")
	})
	if err != nil {
		return err
	}
	pwd, err := cli.readPassword("Enter the new teacher's password:")
	if err != nil {
		return err
	}
	if _, err = cli.teachers.Create(ctx, teacher.NewTeacher{Username: *uname, Password: pwd, Subject: *subject}); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("teacher %s added", *uname))
	return cli.printTeachers(ctx)
}

func (cli *commandLine) editTeacher(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var (
		uname, subject *string
		changePwd      *bool
	)
	err := cli.asOwner(ctx, "editteacher", args, func(fs *flagSetter) {
		uname = fs.requiredString("teacher", "The teacher's username.")
		subject = fs.String("subject", "", "The new subject. Unchanged if empty.")
		changePwd = fs.Bool("password", false, "Prompt for a new password.")
	})
	if err != nil {
		return err
	}

	ut := teacher.UpdateTeacher{Subject: *subject}
	if *changePwd {
		if ut.Password, err = cli.readPassword("Enter the teacher's new password:"); err != nil {
			return err
		}
	}
	if _, err = cli.teachers.Update(ctx, *uname, ut); err != nil {
		return err
	}
	return cli.printTeachers(ctx)
}

func (cli *commandLine) deleteTeacher(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var (
		uname   *string
		cascade *bool
	)
	err := cli.asOwner(ctx, "deleteteacher", args, func(fs *flagSetter) {
		uname = fs.requiredString("teacher", "The teacher's username.")
		cascade = fs.Bool("cascade", false, "Also delete the students of the teacher's subject.")
	})
	if err != nil {
		return err
	}

	t, err := cli.teachers.GetByUsername(ctx, *uname)
	if err != nil {
		return err
	}
	if err = cli.teachers.Delete(ctx, t.Username); err != nil {
		return err
	}
	if *cascade {
		n, err := cli.students.DeleteBySubject(ctx, t.Subject)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%d student(s) of %s deleted\n", n, t.Subject)
	}
	cli.logger.Info(fmt.Sprintf("teacher %s deleted", t.Username))
	return cli.printTeachers(ctx)
}

func (cli *commandLine) setOwner(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var newUname *string
	err := cli.asOwner(ctx, "setowner", args, func(fs *flagSetter) {
		newUname = fs.requiredString("new", "The new owner username.")
	})
	if err != nil {
		return err
	}
	pwd, err := cli.readPassword("Enter the new owner password:")
	if err != nil {
		return err
	}
	if err = cli.auth.UpdateOwnerCredentials(ctx, *newUname, pwd); err != nil {
		return err
	}
	cli.logger.Info("owner credentials updated")
	fmt.Fprintf(cli.out, "owner is now %s\n", *newUname)
	return nil
}
