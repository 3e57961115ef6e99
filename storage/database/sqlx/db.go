// Package sqlxrepos is the relational storage backend. Each repository owns one table,
// creates it if missing and seeds it when empty.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
)

// table names
const (
	teachersTable   = "teachers"
	studentsTable   = "students"
	attendanceTable = "attendance"
	ownerTable      = "owner_credentials"
)

// base is embedded by every repository: the shared handle, the per-table lock and the options.
type base struct {
	db    core.DB
	table string
	lock  *core.StoreLock
	opts  core.StoreOptions
}

func newBase(db core.DB, table string, opts core.StoreOptions) base {
	return base{db: db, table: table, lock: core.NewStoreLock(opts.LockTimeout), opts: opts}
}

func (b base) log() core.Logger {
	if b.opts.Logger == nil {
		return core.NopLogger{}
	}
	return b.opts.Logger
}

// q rebinds ? placeholders for the underlying driver.
func (b base) q(query string) string {
	return b.db.Rebind(query)
}

func (b base) storageErr(op string, err error) error {
	return core.NewStorageError(b.table, op, err)
}

// bootstrap creates the table if missing and runs seed in a transaction when it holds no rows.
func (b base) bootstrap(ctx context.Context, schema string, seed func(ctx context.Context, exec core.DBExecutor) error) error {
	if _, err := b.db.ExecContext(ctx, schema); err != nil {
		return b.storageErr("open", errors.Wrap(err, "creating table"))
	}
	if seed == nil {
		return nil
	}

	var n int
	if err := b.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+b.table); err != nil {
		return b.storageErr("load", errors.Wrap(err, "counting rows"))
	}
	if n > 0 {
		b.log().Info(fmt.Sprintf("%s data loaded: %d rows", b.table, n))
		return nil
	}

	b.log().Info(fmt.Sprintf("%s table empty, seeding defaults", b.table))
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return b.storageErr("persist", errors.Wrap(err, "beginning seed transaction"))
	}
	defer func() { _ = tx.Rollback() }()

	if err = seed(ctx, tx); err != nil {
		return b.storageErr("persist", errors.Wrap(err, "seeding"))
	}
	if err = tx.Commit(); err != nil {
		return b.storageErr("persist", errors.Wrap(err, "committing seed"))
	}
	return nil
}

// count runs a COUNT(*) query under whatever lock the caller holds.
func (b base) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := b.db.GetContext(ctx, &n, b.q(query), args...); err != nil {
		return 0, b.storageErr("load", err)
	}
	return n, nil
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}
