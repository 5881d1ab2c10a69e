package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	if cfg.StorageDriver != "sqlite3" {
		t.Errorf("StorageDriver = %q, want sqlite3", cfg.StorageDriver)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %s, want 1h", cfg.TokenTTL)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want none", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "json")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("S3_USE_SSL", "TRUE")

	cfg := Load()
	if cfg.StorageDriver != "json" {
		t.Errorf("StorageDriver = %q, want json", cfg.StorageDriver)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %s, want 15m", cfg.TokenTTL)
	}
	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if !cfg.S3UseSSL {
		t.Error("S3UseSSL = false, want true")
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	if got := Load().TokenTTL; got != time.Hour {
		t.Errorf("TokenTTL = %s, want 1h", got)
	}
}
