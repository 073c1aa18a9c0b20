package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	coreconfig "github.com/foodpod-bot/foodpod/core/config"
	coredatabase "github.com/foodpod-bot/foodpod/core/database"
	coreredis "github.com/foodpod-bot/foodpod/core/redisdb"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunDefaultsToRedis(t *testing.T) {
	var got coreredis.Config
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Redis:      coreredis.Config{Host: "cache", Port: 6379},
		LoggerInit: noLogger,
		ConnectRedis: func(cfg coreredis.Config) (*redis.Client, error) {
			got = cfg
			return redis.NewClient(&redis.Options{Addr: cfg.Addr()}), nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()
	if res.Driver != DriverRedis || res.Redis == nil || res.DB != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if got.Host != "cache" {
		t.Fatalf("redis config not forwarded: %+v", got)
	}
}

func TestRunPostgresMigrationFailureIsFatal(t *testing.T) {
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Driver:     "Postgres",
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			// sqlx.Open does not dial, so no server is needed.
			return sqlx.Open("postgres", "host=127.0.0.1 dbname=foodpod sslmode=disable")
		},
		Migrate: func(coredatabase.Config) error { return errors.New("dirty") },
	})
	if err == nil {
		t.Fatal("expected migration error")
	}
}

func TestRunMemoryAndUnknownDrivers(t *testing.T) {
	res, err := Run(Options{Config: &coreconfig.Config{}, Driver: DriverMemory, LoggerInit: noLogger})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if res.DB != nil || res.Redis != nil {
		t.Fatalf("memory driver opened a backend: %+v", res)
	}
	if _, err := Run(Options{Config: &coreconfig.Config{}, Driver: "etcd", LoggerInit: noLogger}); err == nil {
		t.Fatal("expected unknown driver error")
	}
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected nil config error")
	}
}
