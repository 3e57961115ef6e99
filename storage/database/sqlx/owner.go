package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/auth"
)

// a single row, id 1, holds the override
const ownerSchema = `
CREATE TABLE IF NOT EXISTS owner_credentials (
	id       INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	password TEXT NOT NULL
)`

type ownerRepository struct {
	base
}

var _ auth.OwnerRepository = (*ownerRepository)(nil) // interface compliance check

// NewOwnerRepository creates the owner_credentials table if needed. It is never seeded:
// an empty table means the built-in credentials apply.
func NewOwnerRepository(ctx context.Context, db core.DB, opts core.StoreOptions) (auth.OwnerRepository, error) {
	repo := &ownerRepository{base: newBase(db, ownerTable, opts)}
	if err := repo.bootstrap(ctx, ownerSchema, nil); err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *ownerRepository) GetOwnerCredentials(ctx context.Context) (auth.Credentials, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return auth.Credentials{}, err
	}
	defer unlock()

	var creds auth.Credentials
	err = repo.db.GetContext(ctx, &creds, `SELECT username, password FROM owner_credentials WHERE id = 1`)
	if isNoRows(err) {
		return auth.Credentials{}, auth.ErrNoOverride
	}
	if err != nil {
		return auth.Credentials{}, repo.storageErr("load", errors.Wrap(err, "reading owner credentials"))
	}
	return creds, nil
}

func (repo *ownerRepository) SaveOwnerCredentials(ctx context.Context, creds auth.Credentials) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	_, err = repo.db.ExecContext(ctx, repo.q(`
		INSERT INTO owner_credentials (id, username, password) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, password = excluded.password`),
		creds.Username, creds.Password)
	if err != nil {
		return repo.storageErr("persist", errors.Wrap(err, "saving owner credentials"))
	}
	return nil
}
