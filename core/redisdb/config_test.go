package redisdb

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaultsFillOnlyUnsetFields(t *testing.T) {
	cfg := Config{Port: 6380}
	applied := cfg.Defaults()
	if !reflect.DeepEqual(applied, []string{"host"}) {
		t.Fatalf("applied = %v", applied)
	}
	if cfg.Addr() != "localhost:6380" {
		t.Fatalf("Addr = %s", cfg.Addr())
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Fatalf("DialTimeout = %s", cfg.DialTimeout)
	}
}

func TestDefaultsNoop(t *testing.T) {
	cfg := Config{Host: "redis", Port: 6379, DialTimeout: time.Second}
	if applied := cfg.Defaults(); len(applied) != 0 {
		t.Fatalf("unexpected defaults %v", applied)
	}
}
