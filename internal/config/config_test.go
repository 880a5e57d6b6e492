package config

import (
	"testing"
	"time"
)

var allKeys = []string{
	"PORT", "DB_DRIVER", "DB_DSN", "DB_SEED", "LOG_FILE", "LOG_LEVEL",
	"CATALOG_URL", "CATALOG_TIMEOUT", "CATALOG_LIST_CONCURRENCY",
	"REDIS_ADDR", "REDIS_TTL", "EVENTS_BACKEND", "AMQP_URL", "KAFKA_BROKERS", "EVENTS_TOPIC",
	"OTEL_ENDPOINT", "ADMIN_TOKEN_HASH", "RATE_LIMIT_PER_MIN",
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	c := Load()
	if c.Port != "8080" || c.DBDriver != "sqlite" || c.DBDSN != "stockroom.db" {
		t.Fatalf("server/db defaults: %+v", c)
	}
	if c.CatalogURL != "http://product-service:8081" || c.CatalogTimeout != 2*time.Second {
		t.Fatalf("catalog defaults: %+v", c)
	}
	if c.CatalogListConcurrency != 8 {
		t.Fatalf("list concurrency default: %d", c.CatalogListConcurrency)
	}
	if c.EventsBackend != "none" || c.RedisAddr != "" || c.RedisTTL != 5*time.Minute {
		t.Fatalf("optional backends default: %+v", c)
	}
	if len(c.KafkaBrokers) != 1 || c.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("kafka brokers default: %v", c.KafkaBrokers)
	}
	if c.RateLimitPerMin != 120 || c.DBSeed {
		t.Fatalf("misc defaults: %+v", c)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_SEED", "true")
	t.Setenv("CATALOG_URL", "http://catalog.local:9000/")
	t.Setenv("CATALOG_TIMEOUT", "750ms")
	t.Setenv("CATALOG_LIST_CONCURRENCY", "0")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	c := Load()
	if c.Port != "9090" || c.DBDriver != "postgres" || !c.DBSeed {
		t.Fatalf("overrides: %+v", c)
	}
	if c.CatalogURL != "http://catalog.local:9000" {
		t.Fatalf("trailing slash not trimmed: %s", c.CatalogURL)
	}
	if c.CatalogTimeout != 750*time.Millisecond {
		t.Fatalf("timeout: %v", c.CatalogTimeout)
	}
	if c.CatalogListConcurrency != 1 {
		t.Fatalf("concurrency must clamp to 1, got %d", c.CatalogListConcurrency)
	}
	if c.EventsBackend != "kafka" || len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("events: %+v", c)
	}
}

func TestLoadFallsBackOnGarbage(t *testing.T) {
	t.Setenv("CATALOG_TIMEOUT", "soon")
	t.Setenv("EVENTS_BACKEND", "carrier-pigeon")
	t.Setenv("DB_DRIVER", "oracle")
	c := Load()
	if c.CatalogTimeout != 2*time.Second || c.EventsBackend != "none" || c.DBDriver != "sqlite" {
		t.Fatalf("fallbacks: %+v", c)
	}
}

func TestRedacted(t *testing.T) {
	c := Config{AdminTokenHash: "$2a$10$abc", AMQPURL: "amqp://user:pw@rabbit:5672/", DBDriver: "postgres", DBDSN: "postgres://u:p@db/x"}
	r := c.Redacted()
	if r.AdminTokenHash != "***" || r.DBDSN != "***" {
		t.Fatalf("secrets leaked: %+v", r)
	}
	if r.AMQPURL != "amqp://***@rabbit:5672/" {
		t.Fatalf("amqp url: %s", r.AMQPURL)
	}
	if c.AdminTokenHash == "***" {
		t.Fatal("original mutated")
	}
}
