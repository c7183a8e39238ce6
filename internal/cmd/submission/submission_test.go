package submission

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("submission", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8084 {
		t.Fatalf("port = %d, want 8084", cfg.Port)
	}
	if cfg.DBPath != "submission.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.GatewayURL != "" {
		t.Fatalf("gateway url = %q, want empty", cfg.GatewayURL)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CLINICALSAGE_SUBMISSION_PORT", "9000")
	t.Setenv("CLINICALSAGE_SUBMISSION_GATEWAY_URL", "https://gateway.example")

	fs := flag.NewFlagSet("submission", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9001", "-db", "/tmp/engine.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("port = %d, want flag override 9001", cfg.Port)
	}
	if cfg.DBPath != "/tmp/engine.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.GatewayURL != "https://gateway.example" {
		t.Fatalf("gateway url = %q", cfg.GatewayURL)
	}
}
