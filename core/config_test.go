package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_STORAGE_BACKEND", "SQL")
	t.Setenv("TEST_STORAGE_LOCKTIMEOUT", "250ms")
	t.Setenv("TEST_AUTH_HASHPASSWORDS", "true")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, BackendSQL, conf.Storage.Backend)
	assert.Equal(t, RecoveryFail, conf.Storage.Recovery)
	assert.Equal(t, 250*time.Millisecond, conf.Storage.LockTimeout)
	assert.Equal(t, EngineSQLite, conf.Database.Engine)
	assert.True(t, conf.Auth.HashPasswords)
	assert.Equal(t, DefaultOwnerUsername, conf.Auth.OwnerUsername)
	assert.NoError(t, conf.Validate())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:  StorageConfig{Backend: BackendSQL, Recovery: RecoveryReseed},
			Database: DatabaseConfig{Engine: EnginePostgres},
		}
	}
	assert.NoError(t, valid().Validate())

	conf := valid()
	conf.Storage.Backend = "redis"
	assert.EqualError(t, conf.Validate(), `unknown storage backend "redis"`)

	conf = valid()
	conf.Storage.Recovery = "ignore"
	assert.EqualError(t, conf.Validate(), `unknown recovery policy "ignore"`)

	conf = valid()
	conf.Database.Engine = "mysql"
	assert.EqualError(t, conf.Validate(), `unknown database engine "mysql"`)

	conf.Storage.Backend = BackendFile
	assert.NoError(t, conf.Validate())
}
