// Package storage opens the configured backend and hands out its four stores.
package storage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/attendance"
	"github.com/trezcool/registre/core/auth"
	"github.com/trezcool/registre/core/student"
	"github.com/trezcool/registre/core/teacher"
	"github.com/trezcool/registre/storage/database"
	filedb "github.com/trezcool/registre/storage/database/file"
	sqlxrepos "github.com/trezcool/registre/storage/database/sqlx"
)

// Stores is the set of repositories of one backend. Close releases the backend.
type Stores struct {
	Teachers   teacher.Repository
	Students   student.Repository
	Attendance attendance.Repository
	Owner      auth.OwnerRepository
	Close      func() error
}

// Open loads (and seeds when needed) every store of the configured backend.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (*Stores, error) {
	opts := core.NewStoreOptions(conf, logger)

	switch conf.Storage.Backend {
	case core.BackendFile:
		return OpenFiles(conf.Storage.Dir, opts)
	case core.BackendSQL:
		if err := database.CreateIfNotExist(ctx, conf.Database); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		stores, err := OpenDB(ctx, db, opts)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		stores.Close = db.Close
		return stores, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}

// OpenFiles opens the YAML snapshot stores kept under dir.
func OpenFiles(dir string, opts core.StoreOptions) (*Stores, error) {
	var (
		stores = Stores{Close: func() error { return nil }}
		err    error
	)
	if stores.Teachers, err = filedb.NewTeacherRepository(dir, opts); err != nil {
		return nil, err
	}
	if stores.Students, err = filedb.NewStudentRepository(dir, opts); err != nil {
		return nil, err
	}
	if stores.Attendance, err = filedb.NewAttendanceRepository(dir, opts); err != nil {
		return nil, err
	}
	if stores.Owner, err = filedb.NewOwnerRepository(dir, opts); err != nil {
		return nil, err
	}
	return &stores, nil
}

// OpenDB opens the relational stores on db. The caller keeps ownership of db.
func OpenDB(ctx context.Context, db core.DB, opts core.StoreOptions) (*Stores, error) {
	var (
		stores = Stores{Close: func() error { return nil }}
		err    error
	)
	if stores.Teachers, err = sqlxrepos.NewTeacherRepository(ctx, db, opts); err != nil {
		return nil, err
	}
	if stores.Students, err = sqlxrepos.NewStudentRepository(ctx, db, opts); err != nil {
		return nil, err
	}
	if stores.Attendance, err = sqlxrepos.NewAttendanceRepository(ctx, db, opts); err != nil {
		return nil, err
	}
	if stores.Owner, err = sqlxrepos.NewOwnerRepository(ctx, db, opts); err != nil {
		return nil, err
	}
	return &stores, nil
}
