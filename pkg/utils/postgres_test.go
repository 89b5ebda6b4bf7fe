package utils

import (
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpen != defaultMaxOpen || c.MaxIdle != defaultMaxIdle {
		t.Fatalf("unexpected pool defaults: %+v", c)
	}
	if c.MaxLifetime != defaultMaxLifetime || c.PingTimeout != defaultPingTimeout {
		t.Fatalf("unexpected timeout defaults: %+v", c)
	}
}

func TestPostgresPoolExplicitValuesKept(t *testing.T) {
	c := PostgresPoolConfig{MaxOpen: 50, MaxLifetime: time.Hour}.withDefaults()
	if c.MaxOpen != 50 || c.MaxLifetime != time.Hour {
		t.Fatalf("explicit values should be kept: %+v", c)
	}
}

func TestPostgresPoolIdleClampedToOpen(t *testing.T) {
	c := PostgresPoolConfig{MaxOpen: 4, MaxIdle: 50}.withDefaults()
	if c.MaxIdle != 4 {
		t.Fatalf("idle cap must not exceed open cap, got %d", c.MaxIdle)
	}
}
