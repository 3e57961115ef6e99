package filedb

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/auth"
)

type ownerRepository struct {
	path string
	lock *core.StoreLock
	opts core.StoreOptions
}

var _ auth.OwnerRepository = (*ownerRepository)(nil) // interface compliance check

// NewOwnerRepository keeps the owner override in dir/owner.yaml. The file is only
// created by the first SaveOwnerCredentials.
func NewOwnerRepository(dir string, opts core.StoreOptions) (auth.OwnerRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, core.NewStorageError("owner", "open", err)
	}
	return &ownerRepository{
		path: filepath.Join(dir, OwnerFile),
		lock: core.NewStoreLock(opts.LockTimeout),
		opts: opts,
	}, nil
}

func (repo *ownerRepository) GetOwnerCredentials(ctx context.Context) (auth.Credentials, error) {
	unlock, err := repo.lock.RLock(ctx)
	if err != nil {
		return auth.Credentials{}, err
	}
	defer unlock()

	data, err := os.ReadFile(repo.path)
	if os.IsNotExist(err) {
		return auth.Credentials{}, auth.ErrNoOverride
	}
	if err != nil {
		return auth.Credentials{}, core.NewStorageError("owner", "load", err)
	}

	var creds auth.Credentials
	if err = yaml.Unmarshal(data, &creds); err != nil || creds.Username == "" {
		if err == nil {
			err = errors.New("owner credentials incomplete")
		}
		if repo.opts.Recovery == core.RecoveryReseed {
			if repo.opts.Logger != nil {
				repo.opts.Logger.Warn("owner credentials unreadable, using built-in defaults", err)
			}
			return auth.Credentials{}, auth.ErrNoOverride
		}
		return auth.Credentials{}, core.NewStorageError("owner", "load", errors.Wrap(err, "decoding owner credentials"))
	}
	return creds, nil
}

func (repo *ownerRepository) SaveOwnerCredentials(ctx context.Context, creds auth.Credentials) error {
	unlock, err := repo.lock.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "encoding owner credentials")
	}
	if err = writeFileAtomic(repo.path, data); err != nil {
		return core.NewStorageError("owner", "persist", err)
	}
	return nil
}
