package onboarding

import (
	"flag"
	"io"
	"testing"
	"time"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("onboarding", flag.ContinueOnError)
	t.Setenv("ONBOARDING_HEALTH_PORT", "9099")
	t.Setenv("ONBOARDING_GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("ONBOARDING_WEBHOOK_SECRET", "s3cret")

	cfg, err := ParseConfig(fs, []string{"-store", "bolt", "-collaborator-timeout", "2s", "-watch-roster"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HealthPort != 9099 {
		t.Fatalf("health port = %d, want 9099", cfg.HealthPort)
	}
	if cfg.GitHubRepository != "acme/widgets" {
		t.Fatalf("repository = %q, want %q", cfg.GitHubRepository, "acme/widgets")
	}
	if cfg.WebhookSecret != "s3cret" {
		t.Fatalf("webhook secret = %q, want %q", cfg.WebhookSecret, "s3cret")
	}
	if cfg.StoreBackend != "bolt" {
		t.Fatalf("store = %q, want bolt", cfg.StoreBackend)
	}
	if cfg.CollaboratorTimeout != 2*time.Second {
		t.Fatalf("collaborator timeout = %v, want 2s", cfg.CollaboratorTimeout)
	}
	if !cfg.WatchRoster {
		t.Fatal("expected watch roster")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("onboarding", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("http addr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.SQLitePath != "data/onboarding.db" {
		t.Fatalf("sqlite path = %q, want %q", cfg.SQLitePath, "data/onboarding.db")
	}
	if !cfg.AcceptSHA1 {
		t.Fatal("expected legacy signatures accepted by default")
	}
	if cfg.Locale != "en" || cfg.DispatchWorkers != 8 {
		t.Fatalf("locale, workers = %q, %d", cfg.Locale, cfg.DispatchWorkers)
	}
}

func TestParseConfig_RejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("onboarding", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected error")
	}
}
