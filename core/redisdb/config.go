package redisdb

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHost        = "localhost"
	defaultPort        = 6379
	defaultDialTimeout = 5 * time.Second
)

// Config holds Redis connection settings. Environment names follow the
// deployment convention REDIS_HOST/REDIS_PORT/REDIS_DB/REDIS_PASS.
type Config struct {
	Host        string        `yaml:"host" envconfig:"REDIS_HOST"`
	Port        int           `yaml:"port" envconfig:"REDIS_PORT" validate:"gte=0,lte=65535"`
	DB          int           `yaml:"db" envconfig:"REDIS_DB" validate:"gte=0"`
	Password    string        `yaml:"password" envconfig:"REDIS_PASS"`
	DialTimeout time.Duration `yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT"`
}

// Defaults fills unset fields with local defaults and reports which ones were applied.
func (c *Config) Defaults() []string {
	var applied []string
	if strings.TrimSpace(c.Host) == "" {
		c.Host = defaultHost
		applied = append(applied, "host")
	}
	if c.Port == 0 {
		c.Port = defaultPort
		applied = append(applied, "port")
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	return applied
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
