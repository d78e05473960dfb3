package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/onboarding.space/internal/platform/hmacsig"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

type recordingChat struct {
	mu       sync.Mutex
	messages []string
}

func (c *recordingChat) ResolveDisplayName(context.Context, string) (string, error) {
	return "Mona", nil
}

func (c *recordingChat) SendDirectMessage(_ context.Context, recipient, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, recipient+": "+text)
	return "m", nil
}

func (c *recordingChat) SendInteractiveMessage(ctx context.Context, recipient string, message domain.InteractiveMessage) (string, error) {
	return c.SendDirectMessage(ctx, recipient, message.Text)
}

type staticCodeHost map[string]bool

func (h staticCodeHost) AccountExists(_ context.Context, login string) (bool, error) {
	return h[strings.ToLower(login)], nil
}

func (h staticCodeHost) ListPullRequestsByState(context.Context, string) ([]domain.PullRequest, error) {
	return nil, nil
}

func TestRuntimeConfigNormalized(t *testing.T) {
	cfg := RuntimeConfig{StoreBackend: " Bolt "}.normalized()
	if cfg.HTTPAddr != defaultHTTPAddr || cfg.HealthPort != defaultHealthPort {
		t.Fatalf("addr, port = %q, %d", cfg.HTTPAddr, cfg.HealthPort)
	}
	if cfg.StoreBackend != BackendBolt {
		t.Fatalf("backend = %q, want %q", cfg.StoreBackend, BackendBolt)
	}
	if cfg.SQLitePath != defaultSQLitePath || cfg.BoltPath != defaultBoltPath {
		t.Fatalf("paths = %q, %q", cfg.SQLitePath, cfg.BoltPath)
	}
	if cfg.CollaboratorTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		t.Fatal("expected default timeouts")
	}
}

func TestRuntimeConfigValidate(t *testing.T) {
	valid := RuntimeConfig{
		WebhookSecret:    "secret",
		SlackToken:       "xoxb",
		GitHubToken:      "ghp",
		GitHubRepository: "acme/widgets",
	}.normalized()
	if err := valid.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := map[string]func(*RuntimeConfig){
		"secret":  func(cfg *RuntimeConfig) { cfg.WebhookSecret = "" },
		"slack":   func(cfg *RuntimeConfig) { cfg.SlackToken = "" },
		"github":  func(cfg *RuntimeConfig) { cfg.GitHubToken = "" },
		"repo":    func(cfg *RuntimeConfig) { cfg.GitHubRepository = "" },
		"backend": func(cfg *RuntimeConfig) { cfg.StoreBackend = "postgres" },
		"watch":   func(cfg *RuntimeConfig) { cfg.WatchRoster = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOpenStoreBackends(t *testing.T) {
	for _, backend := range []string{BackendSQLite, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			store, err := openStore(RuntimeConfig{
				StoreBackend: backend,
				SQLitePath:   filepath.Join(dir, "nested", "onboarding.db"),
				BoltPath:     filepath.Join(dir, "nested", "onboarding.bolt"),
			})
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer store.Close()
			if _, err := store.ListMentors(context.Background()); err != nil {
				t.Fatalf("list mentors: %v", err)
			}
		})
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if err := Run(context.Background(), RuntimeConfig{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandlerOnboardsContributorEndToEnd(t *testing.T) {
	store := openSQLiteStore(t)
	chat := &recordingChat{}
	cfg := RuntimeConfig{WebhookSecret: "secret", Locale: "en"}.normalized()
	handler, err := newHandler(store, chat, staticCodeHost{"octocat": true}, cfg)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	post := func(body string) map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		req.Header.Set(hmacsig.HeaderSHA256, hmacsig.Sign([]byte("secret"), []byte(body)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("post %s: status = %d, body %s", body, rec.Code, rec.Body.String())
		}
		var response map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return response
	}

	post(`{"type":"new-user","chatUserId":"U1"}`)
	post(`{"type":"button-action","chatUserId":"U1","payload":{"action":"agree-license"}}`)
	response := post(`{"type":"confirm-link","chatUserId":"U1","payload":{"login":"octocat"}}`)
	if response["outcome"] != string(domain.OutcomeApplied) {
		t.Fatalf("confirm outcome = %v, want applied", response["outcome"])
	}

	record, err := store.GetContributor(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get contributor: %v", err)
	}
	if record.Milestone != string(domain.StateTaskAssigned) || record.LinkedAccountLogin != "octocat" {
		t.Fatalf("record = %+v", record)
	}

	attempts, err := store.ListAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(attempts))
	}
	if attempts[0].EventType != domain.EventTypeConfirmLink {
		t.Fatalf("newest attempt = %+v, want confirm-link", attempts[0])
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	if len(chat.messages) != 3 {
		t.Fatalf("messages = %v, want 3", chat.messages)
	}
}
