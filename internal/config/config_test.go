package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "msgdesk", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "msgdesk", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.WhatsApp.BaseURL != "https://graph.facebook.com" {
		t.Fatalf("expected graph API base default, got %q", c.WhatsApp.BaseURL)
	}
	if c.WhatsApp.SendMaxAttempts != 3 || c.WhatsApp.SendBaseDelay != time.Second {
		t.Fatalf("expected retry defaults, got %d/%v", c.WhatsApp.SendMaxAttempts, c.WhatsApp.SendBaseDelay)
	}
}

func TestLoad_PoolCaps(t *testing.T) {
	for k, v := range map[string]string{
		"APP_ENV": "local", "APP_PORT": "8080",
		"DB_HOST": "localhost", "DB_PORT": "5432", "DB_USER": "postgres",
		"DB_PASSWORD": "x", "DB_NAME": "msgdesk",
		"REDIS_HOST": "localhost", "REDIS_PORT": "6379",
		"JWT_SECRET":        "secret",
		"DB_MAX_OPEN_CONNS": "40", "DB_MAX_IDLE_CONNS": "8",
	} {
		t.Setenv(k, v)
	}

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DB.MaxOpenConns != 40 || c.DB.MaxIdleConns != 8 {
		t.Fatalf("pool caps not read from env: %+v", c.DB)
	}
}

func TestValidate_ProductionRequiresWebhookVerifyToken(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "db", Port: 5432, User: "postgres", Password: "x", Name: "msgdesk", SSLMode: "require"},
		Redis: RedisConfig{Host: "redis", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret", JWTIssuer: "msgdesk", JWTAudience: "msgdesk-api"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without webhook verify token")
	}
}
