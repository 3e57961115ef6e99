package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/analytics"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/services/spreadsheet"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	nowFunc          = time.Now          // mockable

	errHelp = errors.New("help provided")
)

// commandTimeout bounds the store calls of one command.
const commandTimeout = 30 * time.Second

type commandLine struct {
	out        io.Writer
	logger     core.Logger
	auth       *auth.Gateway
	teachers   *teacher.Service
	students   *student.Service
	attendance *attendance.Service
	analytics  *analytics.Facade
	exporter   *spreadsheet.Exporter
}

type command struct {
	usage string
	run   func(cli *commandLine, args []string) error
}

var commands = map[string]command{
	"login":          {"login -role owner|teacher -username USERNAME - check credentials", (*commandLine).login},
	"teachers":       {"teachers -username OWNER - list teachers", (*commandLine).listTeachers},
	"addteacher":     {"addteacher -username OWNER -teacher USERNAME -subject SUBJECT - create a teacher", (*commandLine).addTeacher},
	"editteacher":    {"editteacher -username OWNER -teacher USERNAME [-subject SUBJECT] [-password] - edit a teacher", (*commandLine).editTeacher},
	"deleteteacher":  {"deleteteacher -username OWNER -teacher USERNAME [-cascade] - delete a teacher (and their class)", (*commandLine).deleteTeacher},
	"setowner":       {"setowner -username OWNER -new USERNAME - change the owner credentials", (*commandLine).setOwner},
	"students":       {"students -username TEACHER - list the teacher's class", (*commandLine).listStudents},
	"addstudent":     {"addstudent -username TEACHER -name NAME [-id ID] - add a student to the class", (*commandLine).addStudent},
	"editstudent":    {"editstudent -username TEACHER -id ID -name NAME - rename a student", (*commandLine).editStudent},
	"deletestudent":  {"deletestudent -username TEACHER -id ID - remove a student from the class", (*commandLine).deleteStudent},
	"importstudents": {"importstudents -username TEACHER -file FILE.xlsx - import students (column A: id, B: name)", (*commandLine).importStudents},
	"mark":           {"mark -username TEACHER [-date YYYY-MM-DD] [-absent ID,ID] - mark today's attendance", (*commandLine).mark},
	"percentages":    {"percentages -username TEACHER - attendance percentage per student", (*commandLine).percentages},
	"report":         {"report -username TEACHER -from YYYY-MM-DD -to YYYY-MM-DD [-out FILE.xlsx] - date range report", (*commandLine).report},
}

func (cli *commandLine) printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(cli.out, "Usage:")
	for _, name := range names {
		fmt.Fprintf(cli.out, "  %s\n", commands[name].usage)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	cmd, ok := commands[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	return cmd.run(cli, args[2:])
}

func (cli *commandLine) newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// flagSet returns a FlagSet that reports errors instead of exiting.
func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp // usage already printed by fs
	}
	for _, val := range required {
		if strings.TrimSpace(*val) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// authenticate prompts for the password of uname and logs in with role.
func (cli *commandLine) authenticate(ctx context.Context, role, uname string) (auth.Principal, error) {
	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return auth.Principal{}, err
	}
	p, err := cli.auth.Login(ctx, role, uname, pwd)
	if err != nil {
		cli.logger.Warn("admin login failed", map[string]interface{}{"role": role, "username": uname}, err)
		return auth.Principal{}, err
	}
	return p, nil
}

func (cli *commandLine) table(header ...string) (*tabwriter.Writer, func(cols ...interface{})) {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w, func(cols ...interface{}) {
		strs := make([]string, len(cols))
		for i, c := range cols {
			strs[i] = fmt.Sprint(c)
		}
		fmt.Fprintln(w, strings.Join(strs, "\t"))
	}
}

// flagSetter records which string flags must be set.
type flagSetter struct {
	*flag.FlagSet
	required []*string
}

func (fs *flagSetter) requiredString(name, usage string) *string {
	val := fs.String(name, "", usage)
	fs.required = append(fs.required, val)
	return val
}
