// Command foodpod runs the Food Pod Telegram bot.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/foodpod-bot/foodpod/app/bot"
	appconfig "github.com/foodpod-bot/foodpod/app/config"
	"github.com/foodpod-bot/foodpod/app/dialog"
	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/app/inventory/memstore"
	"github.com/foodpod-bot/foodpod/app/inventory/pgstore"
	"github.com/foodpod-bot/foodpod/app/inventory/redisstore"
	"github.com/foodpod-bot/foodpod/core/bootstrap"
	corecmd "github.com/foodpod-bot/foodpod/core/cmd"
	"github.com/foodpod-bot/foodpod/core/logger"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return appconfig.Load(path)
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*appconfig.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", carrier)
			}
			return build(cfg)
		},
	})
	if err != nil {
		log.Printf("foodpod: %v", err)
		os.Exit(1)
	}
}

// app closes the storage backend once the bot has stopped.
type app struct {
	*bot.Bot
	store inventory.Store
}

func (a *app) Close() error {
	return a.store.Close()
}

func build(cfg *appconfig.Config) (*app, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Driver:   cfg.Storage.Driver,
		Database: cfg.Database,
		Redis:    cfg.Redis,
	})
	if err != nil {
		return nil, err
	}

	store, err := openStore(res)
	if err != nil {
		_ = res.Close()
		return nil, err
	}

	inv := inventory.New(store, inventory.WithLocation(cfg.Notify.Location))
	b, err := bot.New(cfg, dialog.New(inv))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &app{Bot: b, store: store}, nil
}

func openStore(res *bootstrap.Result) (inventory.Store, error) {
	switch res.Driver {
	case bootstrap.DriverRedis:
		store := redisstore.New(res.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		moved, err := store.UpgradeLegacy(ctx)
		if err != nil {
			return nil, err
		}
		if moved > 0 {
			logger.Info(ctx, "redis", "redis.pods_upgraded", slog.Int("count", moved))
		}
		return store, nil
	case bootstrap.DriverPostgres:
		return pgstore.New(res.DB), nil
	case bootstrap.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", res.Driver)
}
