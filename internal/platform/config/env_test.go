package config

import "testing"

type envFixture struct {
	Addr    string `env:"CONFIG_TEST_ADDR" envDefault:":8080"`
	DBPath  string `env:"CONFIG_TEST_DB_PATH" envDefault:"gavel.db"`
	Enabled bool   `env:"CONFIG_TEST_ENABLED" envDefault:"false"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envFixture
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.Addr)
	}
	if cfg.DBPath != "gavel.db" {
		t.Fatalf("db path = %q, want gavel.db", cfg.DBPath)
	}
	if cfg.Enabled {
		t.Fatal("enabled should default to false")
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_TEST_ADDR", "127.0.0.1:9000")
	t.Setenv("CONFIG_TEST_ENABLED", "true")

	var cfg envFixture
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q, want 127.0.0.1:9000", cfg.Addr)
	}
	if !cfg.Enabled {
		t.Fatal("enabled should be true")
	}
}
