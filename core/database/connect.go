package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/foodpod-bot/foodpod/core/logger"
)

const (
	component       = "db"
	defaultPoolSize = 4
	connectTimeout  = 5 * time.Second
	readyTimeout    = 30 * time.Second
	readyInterval   = 2 * time.Second
)

func (c Config) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", c.Host),
		slog.String("port", c.Port),
		slog.String("db", c.Name),
	}
}

// Connect opens the pool backing the postgres inventory store and checks it answers.
func Connect(cfg Config) (*sqlx.DB, error) {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultPoolSize
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := logger.RoundMS(time.Since(start))
	if err != nil {
		logger.Error(ctx, component, "db.connect", append(cfg.attrs(),
			slog.String("status", "fail"),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	logger.Info(ctx, component, "db.connect", append(cfg.attrs(),
		slog.String("status", "ok"),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)...)
	return db, nil
}

// waitForPostgres pings dsn until the server answers or ctx is done.
func waitForPostgres(ctx context.Context, dsn string) error {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	tick := time.NewTicker(readyInterval)
	defer tick.Stop()
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		logger.Debug(ctx, component, "db.wait",
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready: %w", err)
		case <-tick.C:
		}
	}
}
