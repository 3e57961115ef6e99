package main

import (
	"fmt"
	"strings"

	"github.com/trezcool/registre/core/analytics"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/services/spreadsheet"
)

func (cli *commandLine) mark(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var date, absent *string
	t, err := cli.asTeacher(ctx, "mark", args, func(fs *flagSetter) {
		date = fs.String("date", "", "The day to mark (YYYY-MM-DD). Defaults to today.")
		absent = fs.String("absent", "", "Comma-separated ids of the absent students. Everyone else is present.")
	})
	if err != nil {
		return err
	}

	day := attendance.Day(nowFunc())
	if *date != "" {
		if day, err = attendance.ParseDate(*date); err != nil {
			return err
		}
	}
	absentees := make(map[string]bool)
	for _, id := range strings.Split(*absent, ",") {
		if id = strings.TrimSpace(id); id != "" {
			absentees[id] = true
		}
	}

	class, err := cli.analytics.Roster(ctx, t)
	if err != nil {
		return err
	}
	marks := make([]attendance.Mark, 0, len(class))
	for _, s := range class {
		marks = append(marks, attendance.Mark{StudentID: s.ID, Present: !absentees[s.ID]})
	}
	n, err := cli.attendance.MarkClass(ctx, t.Subject, day, marks)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "attendance of %s marked for %s: %d record(s)\n", t.Subject, attendance.FormatDate(day), n)
	return nil
}

func (cli *commandLine) percentages(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	t, err := cli.asTeacher(ctx, "percentages", args, nil)
	if err != nil {
		return err
	}
	table, err := cli.analytics.AttendanceTable(ctx, t)
	if err != nil {
		return err
	}
	w, row := cli.table("ID", "NAME", "ATTENDANCE")
	for _, sa := range table {
		row(sa.Student.ID, sa.Student.Name, fmt.Sprintf("%.2f%%", sa.Percentage))
	}
	return w.Flush()
}

func (cli *commandLine) report(args []string) error {
	ctx, cancel := cli.newContext()
	defer cancel()

	var fromStr, toStr, out *string
	t, err := cli.asTeacher(ctx, "report", args, func(fs *flagSetter) {
		fromStr = fs.requiredString("from", "First day of the range (YYYY-MM-DD).")
		toStr = fs.requiredString("to", "Last day of the range (YYYY-MM-DD).")
		out = fs.String("out", "", "Also export the report to this xlsx file.")
	})
	if err != nil {
		return err
	}
	from, err := attendance.ParseDate(*fromStr)
	if err != nil {
		return err
	}
	to, err := attendance.ParseDate(*toStr)
	if err != nil {
		return err
	}

	if *out != "" {
		res := <-cli.exporter.Start(ctx, t.Subject, from, to, *out)
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(cli.out, "report exported to %s\n", res.Path)
		return cli.printReport(res.Report)
	}

	rep, err := cli.analytics.DateRangeReport(ctx, t.Subject, from, to)
	if err != nil {
		return err
	}
	if rep.IsEmpty() {
		return spreadsheet.ErrEmptyReport
	}
	return cli.printReport(rep)
}

func (cli *commandLine) printReport(rep analytics.Report) error {
	fmt.Fprintf(cli.out, "%s attendance from %s to %s\n", rep.Subject, attendance.FormatDate(rep.From), attendance.FormatDate(rep.To))
	w, row := cli.table("DATE", "ID", "STATUS")
	for _, r := range rep.Records {
		status := spreadsheet.Absent
		if r.Present {
			status = spreadsheet.Present
		}
		row(attendance.FormatDate(r.Date), r.StudentID, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "present: %d, absent: %d, total: %d\n", rep.Present, rep.Absent, rep.Total())
	return nil
}
