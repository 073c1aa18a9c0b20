// Package config layers the Food Pod settings on top of the core bot config.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/foodpod-bot/foodpod/app/secrets"
	"github.com/foodpod-bot/foodpod/core/bootstrap"
	coreconfig "github.com/foodpod-bot/foodpod/core/config"
	coredatabase "github.com/foodpod-bot/foodpod/core/database"
	"github.com/foodpod-bot/foodpod/core/logger"
	coreredis "github.com/foodpod-bot/foodpod/core/redisdb"
	"github.com/foodpod-bot/foodpod/core/scheduler"
)

// Storage drivers.
const (
	DriverRedis    = bootstrap.DriverRedis
	DriverPostgres = bootstrap.DriverPostgres
	DriverMemory   = bootstrap.DriverMemory
)

const defaultNotifyTime = "09:00"

// StorageConfig selects the inventory backend.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER" validate:"omitempty,oneof=redis postgres memory"`
}

// SecretsConfig lists the directories probed for TOKEN.secret and AUTH_USERS.secret.
type SecretsConfig struct {
	Dirs []string `yaml:"dirs" envconfig:"SECRETS_DIRS"`
}

// NotifyConfig schedules the daily expiry report. Cron wins over Time.
// Timezone also defines the calendar day used for expiry comparisons.
type NotifyConfig struct {
	Disabled bool   `yaml:"disabled" envconfig:"NOTIFY_DISABLED"`
	Time     string `yaml:"time" envconfig:"NOTIFY_TIME"`
	Cron     string `yaml:"cron" envconfig:"NOTIFY_CRON"`
	Timezone string `yaml:"timezone" envconfig:"NOTIFY_TIMEZONE"`

	// Spec and Location are derived by Normalize.
	Spec     string         `yaml:"-" ignored:"true"`
	Location *time.Location `yaml:"-" ignored:"true"`
}

// AuthConfig lists the chats allowed to use the bot.
type AuthConfig struct {
	Chats []int64 `yaml:"chats" envconfig:"AUTH_CHATS"`
}

// Config is the complete application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig       `yaml:"storage"`
	Redis    coreredis.Config    `yaml:"redis"`
	Database coredatabase.Config `yaml:"database"`
	Secrets  SecretsConfig       `yaml:"secrets"`
	Notify   NotifyConfig        `yaml:"notify"`
	Auth     AuthConfig          `yaml:"auth"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Authorized reports whether chatID is on the allow-list.
func (c *Config) Authorized(chatID int64) bool {
	return slices.Contains(c.Auth.Chats, chatID)
}

// Load reads path, overlays the environment and the secrets directory, then
// validates. A token that is still missing afterwards is an error.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := applySecrets(&cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applySecrets fills the token and chat list from the secrets directory
// without overriding values set in the file or the environment.
func applySecrets(cfg *Config) error {
	sec, err := secrets.Load(cfg.Secrets.Dirs)
	if errors.Is(err, secrets.ErrNoDir) {
		return nil
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		cfg.Telegram.Token = sec.Token
	}
	if len(cfg.Auth.Chats) == 0 {
		cfg.Auth.Chats = sec.AuthChats
	}
	return nil
}

// Normalize validates the whole config and derives scheduling settings.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverRedis
	}
	if err := coreconfig.Validator().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", coreconfig.DescribeValidation(err))
	}
	if cfg.Storage.Driver == DriverPostgres && strings.TrimSpace(cfg.Database.Name) == "" {
		return fmt.Errorf("database.name is required when storage.driver is 'postgres'")
	}
	return normalizeNotify(&cfg.Notify)
}

func normalizeNotify(n *NotifyConfig) error {
	tz := strings.TrimSpace(n.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid notify.timezone %q: %w", n.Timezone, err)
	}
	n.Timezone = tz
	n.Location = loc

	if spec := strings.TrimSpace(n.Cron); spec != "" {
		if err := scheduler.Validate(spec); err != nil {
			return fmt.Errorf("invalid notify.cron: %w", err)
		}
		n.Spec = spec
		return nil
	}
	if strings.TrimSpace(n.Time) == "" {
		n.Time = defaultNotifyTime
	}
	spec, err := scheduler.DailySpec(n.Time)
	if err != nil {
		return fmt.Errorf("invalid notify.time: %w", err)
	}
	n.Spec = spec
	return nil
}

// LogSummary reports the effective settings once the logger is up.
func (c *Config) LogSummary(ctx context.Context) {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("driver", c.Storage.Driver),
		slog.String("run_mode", c.Telegram.RunMode),
		slog.Int("authorized_chats", len(c.Auth.Chats)),
		slog.Bool("notify", !c.Notify.Disabled),
		slog.String("notify_spec", c.Notify.Spec),
		slog.String("tz", c.Notify.Timezone),
	}
	logger.Info(ctx, "app", "config.loaded", attrs...)
	if len(c.Auth.Chats) == 0 {
		logger.Warn(ctx, "app", "config.no_authorized_chats",
			slog.String("cause", "nobody can register a Food Pod until chats are listed"),
		)
	}
}
