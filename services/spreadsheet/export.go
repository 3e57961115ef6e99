// Package spreadsheet moves attendance data in and out of xlsx workbooks.
package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/analytics"
	"github.com/trezcool/registre/core/attendance"
)

// ReportSheet is the name of the sheet written by ExportReport.
const ReportSheet = "Report"

// status labels
const (
	Present = "Present"
	Absent  = "Absent"
)

// ExportReport writes rep to w as an xlsx workbook with a single Report sheet:
// a title block, one row per record and the present/absent/total summary.
func ExportReport(rep analytics.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ReportSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	rows := [][]interface{}{
		{"Attendance report", rep.Subject},
		{"From", attendance.FormatDate(rep.From), "To", attendance.FormatDate(rep.To)},
		{},
		{"Date", "Student ID", "Status"},
	}
	headerRow := len(rows)
	for _, r := range rep.Records {
		status := Absent
		if r.Present {
			status = Present
		}
		rows = append(rows, []interface{}{attendance.FormatDate(r.Date), r.StudentID, status})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Present", rep.Present},
		[]interface{}{"Absent", rep.Absent},
		[]interface{}{"Total", rep.Total()},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err = f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}
	if err = f.SetRowStyle(ReportSheet, headerRow, headerRow, bold); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err = f.SetColWidth(ReportSheet, "A", "C", 18); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

// Result is delivered once an export started by Exporter.Start is over.
type Result struct {
	Path   string
	Report analytics.Report
	Err    error
}

// Exporter runs report exports in the background so that callers stay responsive.
type Exporter struct {
	facade *analytics.Facade
	logger core.Logger
}

func NewExporter(facade *analytics.Facade, logger core.Logger) *Exporter {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Exporter{facade: facade, logger: logger}
}

// Start queries the report and writes it to path on its own goroutine. The returned channel
// receives exactly one Result and is then closed. An empty report is not written.
func (e *Exporter) Start(ctx context.Context, subject string, from, to time.Time, path string) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		res := e.export(ctx, subject, from, to, path)
		if res.Err != nil {
			e.logger.Error(fmt.Sprintf("exporting %s report", subject), res.Err)
		} else {
			e.logger.Info(fmt.Sprintf("%s report exported to %s", subject, path))
		}
		done <- res
	}()
	return done
}

func (e *Exporter) export(ctx context.Context, subject string, from, to time.Time, path string) Result {
	res := Result{Path: path}
	rep, err := e.facade.DateRangeReport(ctx, subject, from, to)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = rep
	if rep.IsEmpty() {
		res.Err = ErrEmptyReport
		return res
	}
	if err = ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Err = writeFile(path, rep)
	return res
}

// ErrEmptyReport is returned by exports over a range without records.
var ErrEmptyReport = errors.New("no attendance records found for the selected date range")

func writeFile(path string, rep analytics.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating export directory")
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err = ExportReport(rep, out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	return errors.Wrap(out.Close(), "closing export file")
}
