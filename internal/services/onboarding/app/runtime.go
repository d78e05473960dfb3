package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/platform/hmacsig"
	"github.com/louisbranch/onboarding.space/internal/platform/timeouts"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/api/httpapi"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/integrations/github"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/integrations/slack"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/render"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/roster"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
	onboardingbbolt "github.com/louisbranch/onboarding.space/internal/services/onboarding/storage/bbolt"
	onboardingsqlite "github.com/louisbranch/onboarding.space/internal/services/onboarding/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultHealthPort = 8081
	defaultSQLitePath = "data/onboarding.db"
	defaultBoltPath   = "data/onboarding.bolt"
	healthServiceName = "onboarding.runtime"
)

// RuntimeConfig controls onboarding startup and its collaborators.
type RuntimeConfig struct {
	HTTPAddr   string
	HealthPort int

	StoreBackend string
	SQLitePath   string
	BoltPath     string

	SlackToken          string
	SlackAPIURL         string
	SlackSigningSecret  string
	SlackWelcomeChannel string

	GitHubHost       string
	GitHubToken      string
	GitHubRepository string

	WebhookSecret string
	AcceptSHA1    bool

	RosterPath  string
	WatchRoster bool

	MentorChannel       string
	Locale              string
	CollaboratorTimeout time.Duration
	DispatchWorkers     int
	ShutdownTimeout     time.Duration
}

func (cfg RuntimeConfig) normalized() RuntimeConfig {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.HealthPort <= 0 {
		cfg.HealthPort = defaultHealthPort
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = BackendSQLite
	}
	if strings.TrimSpace(cfg.SQLitePath) == "" {
		cfg.SQLitePath = defaultSQLitePath
	}
	if strings.TrimSpace(cfg.BoltPath) == "" {
		cfg.BoltPath = defaultBoltPath
	}
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = timeouts.Collaborator
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	return cfg
}

func (cfg RuntimeConfig) validate() error {
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return fmt.Errorf("webhook secret is required")
	}
	if strings.TrimSpace(cfg.SlackToken) == "" {
		return fmt.Errorf("slack token is required")
	}
	if strings.TrimSpace(cfg.GitHubToken) == "" {
		return fmt.Errorf("github token is required")
	}
	if strings.TrimSpace(cfg.GitHubRepository) == "" {
		return fmt.Errorf("github repository is required")
	}
	if cfg.WatchRoster && strings.TrimSpace(cfg.RosterPath) == "" {
		return fmt.Errorf("roster path is required to watch the roster")
	}
	switch cfg.StoreBackend {
	case BackendSQLite, BackendBolt:
		return nil
	default:
		return fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

// Run starts the onboarding HTTP boundary and health server until ctx ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close onboarding store: %v", closeErr)
		}
	}()

	if cfg.RosterPath != "" {
		result, err := roster.LoadAndSync(ctx, store, cfg.RosterPath)
		if err != nil {
			return fmt.Errorf("load mentor roster: %w", err)
		}
		log.Printf("loaded mentor roster: %d mentors, %d removed", result.Upserted, result.Removed)
	}

	chat, err := slack.New(slack.Config{Token: cfg.SlackToken, APIURL: cfg.SlackAPIURL})
	if err != nil {
		return fmt.Errorf("init slack: %w", err)
	}
	codeHost, err := github.New(github.Config{
		Host:       cfg.GitHubHost,
		Token:      cfg.GitHubToken,
		Repository: cfg.GitHubRepository,
		Timeout:    cfg.CollaboratorTimeout,
	})
	if err != nil {
		return fmt.Errorf("init github: %w", err)
	}

	handler, err := newHandler(store, chat, codeHost, cfg)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(healthServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("onboarding health server listening at %v", listener.Addr())
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve health: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		log.Printf("onboarding server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	if cfg.WatchRoster {
		watcher := &roster.Watcher{Path: cfg.RosterPath, Store: store, Logf: log.Printf}
		group.Go(func() error {
			return watcher.Run(groupCtx)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// newHandler assembles the service graph behind the HTTP boundary.
func newHandler(store storage.Store, chat domain.Chat, codeHost domain.CodeHost, cfg RuntimeConfig) (http.Handler, error) {
	service, err := domain.NewService(domain.Config{
		Store:               newDomainStoreAdapter(store),
		Mentors:             mentorDirectory{store: store},
		Chat:                chat,
		CodeHost:            codeHost,
		Copy:                render.New(cfg.Locale),
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		MentorChannel:       cfg.MentorChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("init onboarding service: %w", err)
	}
	dispatcher, err := NewDispatcher(service, newAttemptStoreRecorder(store), DispatcherConfig{Workers: cfg.DispatchWorkers})
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}
	verifier, err := hmacsig.NewVerifier([]byte(cfg.WebhookSecret), hmacsig.WithLegacySHA1(cfg.AcceptSHA1))
	if err != nil {
		return nil, fmt.Errorf("init signature verifier: %w", err)
	}
	handler, err := httpapi.NewHandler(httpapi.Config{
		Dispatcher:          dispatcher,
		Service:             service,
		Verifier:            verifier,
		SlackSigningSecret:  cfg.SlackSigningSecret,
		SlackWelcomeChannel: cfg.SlackWelcomeChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("init http handler: %w", err)
	}
	return handler, nil
}

func openStore(cfg RuntimeConfig) (storage.Store, error) {
	path := cfg.SQLitePath
	if cfg.StoreBackend == BackendBolt {
		path = cfg.BoltPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create onboarding storage dir: %w", err)
		}
	}

	switch cfg.StoreBackend {
	case BackendBolt:
		store, err := onboardingbbolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open onboarding bolt store: %w", err)
		}
		return store, nil
	default:
		store, err := onboardingsqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open onboarding sqlite store: %w", err)
		}
		return store, nil
	}
}
