package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := New()

	if cfg.HTTP.Port != "8080" {
		t.Errorf("expected default HTTP port 8080, got %s", cfg.HTTP.Port)
	}
	if cfg.Redis.Addr == "" {
		t.Error("expected a default redis addr")
	}
	if cfg.DB.DSN == "" {
		t.Error("expected an assembled mysql DSN")
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected default embedding model: %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected default embedding dimensions: %d", cfg.Embedding.Dimensions)
	}
	if cfg.VectorIndex.Table != "experience_vectors" {
		t.Errorf("unexpected default vector table: %s", cfg.VectorIndex.Table)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EMBEDDING_TIMEOUT", "250ms")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/wm?parseTime=true")

	cfg := New()

	if cfg.HTTP.Port != "9090" {
		t.Errorf("expected HTTP_PORT override, got %s", cfg.HTTP.Port)
	}
	if cfg.Embedding.Timeout != 250*time.Millisecond {
		t.Errorf("expected 250ms embedding timeout, got %s", cfg.Embedding.Timeout)
	}
	if cfg.DB.DSN != "user:pass@tcp(db:3306)/wm?parseTime=true" {
		t.Errorf("expected MYSQL_DSN to win, got %s", cfg.DB.DSN)
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		if !isTruthy(v) {
			t.Errorf("expected %q to be truthy", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off"} {
		if isTruthy(v) {
			t.Errorf("expected %q to be falsy", v)
		}
	}
}
