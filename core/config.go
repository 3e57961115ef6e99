package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// storage backends
const (
	BackendFile = "file"
	BackendSQL  = "sql"
)

// database engines
const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// built-in owner credentials, used until an override is saved
const (
	DefaultOwnerUsername = "owner"
	DefaultOwnerPassword = "123"
)

type (
	StorageConfig struct {
		Backend     string
		Dir         string
		Recovery    RecoveryPolicy
		LockTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
		Path       string // sqlite only
	}

	AuthConfig struct {
		HashPasswords bool
		OwnerUsername string
		OwnerPassword string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string
		Storage      StorageConfig
		Database     DatabaseConfig
		Auth         AuthConfig
	}
)

// Address returns the "host:port" of a networked database engine.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values come from defaults, then config/.env.<env> if present, then the process environment.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Registre")
	conf.SetDefault("build", "dev")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("storage.backend", BackendFile)
	conf.SetDefault("storage.dir", "data")
	conf.SetDefault("storage.recovery", string(RecoveryFail))
	conf.SetDefault("storage.lockTimeout", 5*time.Second)
	conf.SetDefault("database.engine", EngineSQLite)
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "registre")
	conf.SetDefault("database.user", "")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", false)
	conf.SetDefault("database.path", filepath.Join("data", "registre.db"))
	conf.SetDefault("auth.hashPasswords", false)
	conf.SetDefault("auth.ownerUsername", DefaultOwnerUsername)
	conf.SetDefault("auth.ownerPassword", DefaultOwnerPassword)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		Storage: StorageConfig{
			Backend:     strings.ToLower(conf.GetString("storage.backend")),
			Dir:         conf.GetString("storage.dir"),
			Recovery:    RecoveryPolicy(strings.ToLower(conf.GetString("storage.recovery"))),
			LockTimeout: conf.GetDuration("storage.lockTimeout"),
		},
		Database: DatabaseConfig{
			Engine:     strings.ToLower(conf.GetString("database.engine")),
			Host:       conf.GetString("database.host"),
			Port:       conf.GetString("database.port"),
			Name:       conf.GetString("database.name"),
			User:       conf.GetString("database.user"),
			Password:   conf.GetString("database.password"),
			DisableTLS: conf.GetBool("database.disableTLS"),
			Path:       conf.GetString("database.path"),
		},
		Auth: AuthConfig{
			HashPasswords: conf.GetBool("auth.hashPasswords"),
			OwnerUsername: conf.GetString("auth.ownerUsername"),
			OwnerPassword: conf.GetString("auth.ownerPassword"),
		},
	}
}

// Validate reports configuration values that cannot be acted upon.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQL:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Storage.Recovery {
	case RecoveryFail, RecoveryReseed:
	default:
		return fmt.Errorf("unknown recovery policy %q", c.Storage.Recovery)
	}
	if c.Storage.Backend == BackendSQL {
		switch c.Database.Engine {
		case EnginePostgres, EngineSQLite:
		default:
			return fmt.Errorf("unknown database engine %q", c.Database.Engine)
		}
	}
	return nil
}
