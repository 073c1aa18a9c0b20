package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/foodpod-bot/foodpod/core/config"
	coredatabase "github.com/foodpod-bot/foodpod/core/database"
	"github.com/foodpod-bot/foodpod/core/logger"
	coreredis "github.com/foodpod-bot/foodpod/core/redisdb"
)

// Storage drivers understood by Run.
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options control the generic bootstrap pipeline.
type Options struct {
	Config   *coreconfig.Config
	Driver   string
	Database coredatabase.Config
	Redis    coreredis.Config

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(coredatabase.Config) error
	ConnectRedis func(coreredis.Config) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// Exactly one of DB and Redis is set unless the memory driver was selected.
type Result struct {
	Driver string
	DB     *sqlx.DB
	Redis  *redis.Client
}

// Close releases whichever backend connection was opened.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	return errors.Join(errs...)
}

// Run initializes the logger and connects the selected storage backend.
// Postgres additionally gets its migrations applied.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	logger.RegisterSecret(opts.Redis.Password)
	logger.RegisterSecret(opts.Database.Password)

	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	if driver == "" {
		driver = DriverRedis
	}

	switch driver {
	case DriverRedis:
		connect := opts.ConnectRedis
		if connect == nil {
			connect = coreredis.Connect
		}
		client, err := connect(opts.Redis)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
		return &Result{Driver: driver, Redis: client}, nil

	case DriverPostgres:
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		db, err := connect(opts.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(opts.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		return &Result{Driver: driver, DB: db}, nil

	case DriverMemory:
		return &Result{Driver: driver}, nil
	}
	return nil, fmt.Errorf("bootstrap: unknown storage driver %q", opts.Driver)
}
