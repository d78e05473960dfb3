// Package cmd holds the startup plumbing shared by onboarding binaries:
// prefixed environment parsing, flag overrides and tracing lifecycle.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/platform/config"
	"github.com/louisbranch/onboarding.space/internal/platform/otel"
)

// EnvPrefix is the environment variable prefix shared by every command.
const EnvPrefix = "ONBOARDING_"

// ServiceOnboarding names the onboarding service in traces.
const ServiceOnboarding = "onboarding"

const defaultTelemetryFlush = 5 * time.Second

// ParseConfig loads ONBOARDING_-prefixed environment values into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnvWithPrefix(cfg, EnvPrefix)
}

// ParseArgs applies command-line flags over values loaded from the
// environment.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Telemetry tunes how Run sets up tracing.
type Telemetry struct {
	// Config replaces the settings read from the environment.
	Config *otel.Config
	// FlushTimeout bounds the span flush on exit.
	FlushTimeout time.Duration
}

// RunWithTelemetry runs service with tracing configured from the environment.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return Run(ctx, service, Telemetry{}, run)
}

// Run configures tracing for service, executes run, then flushes spans.
func Run(ctx context.Context, service string, telemetry Telemetry, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := telemetry.config()
	if err != nil {
		return err
	}
	cfg.ServiceName = service

	shutdown, err := otel.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer telemetry.flush(service, shutdown)
	return run(ctx)
}

func (t Telemetry) config() (otel.Config, error) {
	if t.Config != nil {
		return *t.Config, nil
	}
	var cfg otel.Config
	if err := ParseConfig(&cfg); err != nil {
		return otel.Config{}, err
	}
	return cfg, nil
}

func (t Telemetry) flush(service string, shutdown func(context.Context) error) {
	timeout := t.FlushTimeout
	if timeout <= 0 {
		timeout = defaultTelemetryFlush
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("%s otel shutdown: %v", service, err)
	}
}
