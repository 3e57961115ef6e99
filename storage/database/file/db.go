// Package filedb is the single-process storage backend: every entity collection lives in
// its own YAML snapshot file, rewritten in full on each mutation.
package filedb

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/registre/core"
)

const snapshotVersion = 1

// snapshot file names
const (
	TeachersFile   = "teachers.yaml"
	StudentsFile   = "students.yaml"
	AttendanceFile = "attendance.yaml"
	OwnerFile      = "owner.yaml"
)

var errUnsupportedVersion = errors.New("unsupported snapshot version")

type snapshot[T any] struct {
	Version int `yaml:"version"`
	Rows    []T `yaml:"rows"`
}

// table is one entity collection mirrored in its own file. rows is only
// replaced after the new snapshot has been written.
type table[T any] struct {
	name string
	path string
	lock *core.StoreLock
	opts core.StoreOptions
	rows []T
}

// openTable loads the collection stored under dir/file.
// An absent or empty file is seeded and persisted right away. An unreadable one either
// fails with a *core.StorageError or, under core.RecoveryReseed, is set aside and reseeded.
func openTable[T any](dir, file, name string, opts core.StoreOptions, seed func() []T) (*table[T], error) {
	tbl := &table[T]{
		name: name,
		path: filepath.Join(dir, file),
		lock: core.NewStoreLock(opts.LockTimeout),
		opts: opts,
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, core.NewStorageError(name, "open", err)
	}

	rows, err := readSnapshot[T](tbl.path)
	switch {
	case err == nil && len(rows) > 0:
		tbl.rows = rows
		tbl.log().Info(fmt.Sprintf("%s data loaded from %s", name, tbl.path))
		return tbl, nil
	case err == nil || os.IsNotExist(errors.Cause(err)):
		tbl.log().Info(fmt.Sprintf("%s data file not found or empty, seeding defaults", name))
	case tbl.opts.Recovery == core.RecoveryReseed:
		tbl.log().Warn(fmt.Sprintf("%s data unreadable, reseeding", name), err)
		if rerr := os.Rename(tbl.path, tbl.path+".corrupt"); rerr != nil {
			tbl.log().Warn(fmt.Sprintf("could not set %s aside", tbl.path), rerr)
		}
	default:
		return nil, core.NewStorageError(name, "load", err)
	}

	seeded := seed()
	if err := writeSnapshot(tbl.path, seeded); err != nil {
		return nil, core.NewStorageError(name, "persist", err)
	}
	tbl.rows = seeded
	return tbl, nil
}

func (tbl *table[T]) log() core.Logger {
	if tbl.opts.Logger == nil {
		return core.NopLogger{}
	}
	return tbl.opts.Logger
}

// read returns a point-in-time copy of the rows.
func (tbl *table[T]) read(ctx context.Context) ([]T, error) {
	unlock, err := tbl.lock.RLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows := make([]T, len(tbl.rows))
	copy(rows, tbl.rows)
	return rows, nil
}

// mutate applies fn to a copy of the rows under the write lock and persists the result.
// fn reports whether it changed anything; unchanged collections are not rewritten.
func (tbl *table[T]) mutate(ctx context.Context, fn func(rows []T) ([]T, bool)) (bool, error) {
	unlock, err := tbl.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	rows := make([]T, len(tbl.rows), len(tbl.rows)+1)
	copy(rows, tbl.rows)
	next, changed := fn(rows)
	if !changed {
		return false, nil
	}
	if err := writeSnapshot(tbl.path, next); err != nil {
		return false, core.NewStorageError(tbl.name, "persist", err)
	}
	tbl.rows = next
	tbl.log().Debug(fmt.Sprintf("%s data saved to %s", tbl.name, tbl.path))
	return true, nil
}

func readSnapshot[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var snap snapshot[T]
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Wrapf(errUnsupportedVersion, "version %d", snap.Version)
	}
	return snap.Rows, nil
}

// writeSnapshot replaces path with a full snapshot of rows: temp file then rename.
func writeSnapshot[T any](path string, rows []T) error {
	data, err := yaml.Marshal(snapshot[T]{Version: snapshotVersion, Rows: rows})
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op once renamed

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replacing snapshot")
}
