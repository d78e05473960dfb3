// Package httpapi exposes the onboarding service over HTTP: signed event
// intake, code-host webhooks, Slack callbacks and read-only reports.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/onboarding.space/internal/platform/errors"
	"github.com/louisbranch/onboarding.space/internal/platform/hmacsig"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

// Dispatcher runs inbound events.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.InboundEvent) (domain.InboundEvent, domain.Result, error)
	DispatchBatch(ctx context.Context, events []domain.InboundEvent) ([]domain.HandledEvent, error)
}

// Service is the subset of onboarding use-cases served directly.
type Service interface {
	GetContributor(ctx context.Context, chatUserID string) (domain.Contributor, error)
	HandlePullRequestEvent(ctx context.Context, event domain.PullRequestEvent) (domain.Result, error)
	CompletedTasks(ctx context.Context) ([]domain.AuthorTasks, error)
}

// Config wires the HTTP boundary.
type Config struct {
	Dispatcher Dispatcher
	Service    Service
	// Verifier authenticates /events and /webhooks/github bodies.
	Verifier *hmacsig.Verifier
	// SlackSigningSecret enables the /slack routes when set.
	SlackSigningSecret string
	// SlackWelcomeChannel limits new-user events to joins of one channel.
	SlackWelcomeChannel string
}

type handler struct {
	dispatcher     Dispatcher
	service        Service
	slackSecret    string
	welcomeChannel string
}

// NewHandler builds the onboarding routes.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("signature verifier is required")
	}

	h := &handler{
		dispatcher:     cfg.Dispatcher,
		service:        cfg.Service,
		slackSecret:    strings.TrimSpace(cfg.SlackSigningSecret),
		welcomeChannel: strings.TrimSpace(cfg.SlackWelcomeChannel),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/events", cfg.Verifier.Middleware(http.HandlerFunc(h.handleEvent)))
	mux.Handle("/events/batch", cfg.Verifier.Middleware(http.HandlerFunc(h.handleEventBatch)))
	mux.Handle("/webhooks/github", cfg.Verifier.Middleware(http.HandlerFunc(h.handleGitHubWebhook)))
	mux.HandleFunc("/contributors/", h.handleContributor)
	mux.HandleFunc("/reports/completed-tasks", h.handleCompletedTasks)
	if h.slackSecret != "" {
		mux.HandleFunc("/slack/interactions", h.handleSlackInteraction)
		mux.HandleFunc("/slack/events", h.handleSlackEvents)
	}
	return mux, nil
}

func (h *handler) handleContributor(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	chatUserID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/contributors/"), "/")
	if chatUserID == "" || strings.Contains(chatUserID, "/") {
		http.NotFound(w, r)
		return
	}
	contributor, err := h.service.GetContributor(r.Context(), chatUserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contributorFromDomain(contributor))
}

func (h *handler) handleCompletedTasks(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	tasks, err := h.service.CompletedTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	authors := make([]authorTasksResponse, 0, len(tasks))
	for _, task := range tasks {
		authors = append(authors, authorTasksResponse{Login: task.Login, Titles: task.Titles})
	}
	writeJSON(w, http.StatusOK, completedTasksResponse{Authors: authors})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "decode request body", err)
	}
	if decoder.More() {
		return apperrors.New(apperrors.CodeInvalidArgument, "request body has trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.CodeOf(err).HTTPStatus(), errorResponse{Error: errorFromErr(err)})
}

func errorFromErr(err error) *errorBody {
	code := apperrors.CodeOf(err)
	return &errorBody{
		Code:      string(code),
		Message:   errorMessage(err),
		Retryable: code.Retryable(),
		Metadata:  apperrors.MetadataOf(err),
	}
}

// errorMessage hides internal causes of uncoded failures.
func errorMessage(err error) string {
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return "internal error"
}
