// Package onboarding parses onboarding command flags and launches the
// onboarding runtime.
package onboarding

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/onboarding.space/internal/platform/cmd"
	onboardingapp "github.com/louisbranch/onboarding.space/internal/services/onboarding/app"
)

// Config holds onboarding command configuration. Variables are read with the
// ONBOARDING_ prefix, e.g. ONBOARDING_HTTP_ADDR.
type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":8080"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8081"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"data/onboarding.db"`
	BoltPath     string `env:"BOLT_PATH" envDefault:"data/onboarding.bolt"`

	SlackToken          string `env:"SLACK_TOKEN"`
	SlackAPIURL         string `env:"SLACK_API_URL"`
	SlackSigningSecret  string `env:"SLACK_SIGNING_SECRET"`
	SlackWelcomeChannel string `env:"SLACK_WELCOME_CHANNEL"`

	GitHubHost       string `env:"GITHUB_HOST" envDefault:"github.com"`
	GitHubToken      string `env:"GITHUB_TOKEN"`
	GitHubRepository string `env:"GITHUB_REPOSITORY"`

	WebhookSecret string `env:"WEBHOOK_SECRET"`
	AcceptSHA1    bool   `env:"ACCEPT_SHA1_SIGNATURES" envDefault:"true"`

	RosterPath  string `env:"MENTOR_ROSTER_PATH"`
	WatchRoster bool   `env:"MENTOR_ROSTER_WATCH"`

	MentorChannel       string        `env:"MENTOR_CHANNEL"`
	Locale              string        `env:"LOCALE" envDefault:"en"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"5s"`
	DispatchWorkers     int           `env:"DISPATCH_WORKERS" envDefault:"8"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The onboarding HTTP listen address")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The onboarding health gRPC server port")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Store backend: sqlite or bolt")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "The onboarding SQLite database path")
	fs.StringVar(&cfg.BoltPath, "bolt-path", cfg.BoltPath, "The onboarding BoltDB path")
	fs.StringVar(&cfg.SlackAPIURL, "slack-api-url", cfg.SlackAPIURL, "Override for the Slack Web API base URL")
	fs.StringVar(&cfg.SlackWelcomeChannel, "welcome-channel", cfg.SlackWelcomeChannel, "Slack channel whose joins start onboarding")
	fs.StringVar(&cfg.GitHubHost, "github-host", cfg.GitHubHost, "The GitHub host")
	fs.StringVar(&cfg.GitHubRepository, "github-repo", cfg.GitHubRepository, "The owner/name repository for task pull requests")
	fs.BoolVar(&cfg.AcceptSHA1, "accept-sha1", cfg.AcceptSHA1, "Accept legacy X-Hub-Signature SHA-1 signatures")
	fs.StringVar(&cfg.RosterPath, "roster", cfg.RosterPath, "Mentor roster YAML path")
	fs.BoolVar(&cfg.WatchRoster, "watch-roster", cfg.WatchRoster, "Reload the mentor roster when the file changes")
	fs.StringVar(&cfg.MentorChannel, "mentor-channel", cfg.MentorChannel, "Chat channel for mentor pull request notices")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for chat copy (en, pt-BR)")
	fs.DurationVar(&cfg.CollaboratorTimeout, "collaborator-timeout", cfg.CollaboratorTimeout, "Timeout for each chat or code-host call")
	fs.IntVar(&cfg.DispatchWorkers, "dispatch-workers", cfg.DispatchWorkers, "Concurrent events per batch")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the onboarding runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOnboarding, func(ctx context.Context) error {
		return onboardingapp.Run(ctx, onboardingapp.RuntimeConfig{
			HTTPAddr:            cfg.HTTPAddr,
			HealthPort:          cfg.HealthPort,
			StoreBackend:        cfg.StoreBackend,
			SQLitePath:          cfg.SQLitePath,
			BoltPath:            cfg.BoltPath,
			SlackToken:          cfg.SlackToken,
			SlackAPIURL:         cfg.SlackAPIURL,
			SlackSigningSecret:  cfg.SlackSigningSecret,
			SlackWelcomeChannel: cfg.SlackWelcomeChannel,
			GitHubHost:          cfg.GitHubHost,
			GitHubToken:         cfg.GitHubToken,
			GitHubRepository:    cfg.GitHubRepository,
			WebhookSecret:       cfg.WebhookSecret,
			AcceptSHA1:          cfg.AcceptSHA1,
			RosterPath:          cfg.RosterPath,
			WatchRoster:         cfg.WatchRoster,
			MentorChannel:       cfg.MentorChannel,
			Locale:              cfg.Locale,
			CollaboratorTimeout: cfg.CollaboratorTimeout,
			DispatchWorkers:     cfg.DispatchWorkers,
		})
	})
}
