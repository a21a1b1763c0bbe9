package gavel

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("gavel", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want default 8080", cfg.Port)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("GAVEL_PORT", "9191")
	fs := flag.NewFlagSet("gavel", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9191 {
		t.Fatalf("port = %d, want env 9191", cfg.Port)
	}
}

func TestParseConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv("GAVEL_PORT", "9191")
	fs := flag.NewFlagSet("gavel", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "7070"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("port = %d, want flag 7070", cfg.Port)
	}
}
