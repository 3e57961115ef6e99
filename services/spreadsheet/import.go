package spreadsheet

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/registre/core/student"
)

var ErrNoSheet = errors.New("workbook does not contain any sheets")

// ImportStudents reads the first sheet of an xlsx workbook: column A is the student id,
// column B the name, and the first row is a header. Rows without a name are skipped;
// rows with a name but no id get a generated one.
func ImportStudents(r io.Reader, subject string) ([]student.NewStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}

	students := make([]student.NewStudent, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		var id, name string
		if len(row) > 0 {
			id = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		if name == "" {
			continue
		}
		if id == "" {
			id = GenerateStudentID()
		}
		students = append(students, student.NewStudent{ID: id, Name: name, Subject: subject})
	}
	return students, nil
}

// GenerateStudentID returns a short random id such as "S1F0C6B2E".
func GenerateStudentID() string {
	return "S" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}
