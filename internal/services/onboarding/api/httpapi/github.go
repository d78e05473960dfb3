package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/onboarding.space/internal/platform/errors"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

const githubEventHeader = "X-GitHub-Event"

type githubUser struct {
	Login string `json:"login"`
}

type pullRequestWebhook struct {
	Action      string `json:"action"`
	PullRequest struct {
		HTMLURL string     `json:"html_url"`
		User    githubUser `json:"user"`
	} `json:"pull_request"`
	RequestedReviewer *githubUser `json:"requested_reviewer"`
	Assignee          *githubUser `json:"assignee"`
}

func (p pullRequestWebhook) toDomain() domain.PullRequestEvent {
	event := domain.PullRequestEvent{
		Action:      p.Action,
		AuthorLogin: p.PullRequest.User.Login,
		URL:         p.PullRequest.HTMLURL,
	}
	if p.RequestedReviewer != nil {
		event.ReviewerLogin = p.RequestedReviewer.Login
	}
	if p.Assignee != nil {
		event.AssigneeLogin = p.Assignee.Login
	}
	return event
}

type webhookResponse struct {
	Event   string     `json:"event"`
	Outcome string     `json:"outcome"`
	Reason  *errorBody `json:"reason,omitempty"`
}

func (h *handler) handleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	eventName := strings.TrimSpace(r.Header.Get(githubEventHeader))
	switch eventName {
	case "ping":
		writeJSON(w, http.StatusOK, webhookResponse{Event: eventName, Outcome: "pong"})
		return
	case "pull_request":
	default:
		writeJSON(w, http.StatusAccepted, webhookResponse{Event: eventName, Outcome: string(domain.OutcomeUnhandled)})
		return
	}

	// Webhook payloads carry many fields the service does not read.
	var payload pullRequestWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, "decode pull request webhook", err))
		return
	}

	result, err := h.service.HandlePullRequestEvent(r.Context(), payload.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	response := webhookResponse{Event: eventName, Outcome: string(result.Outcome)}
	if result.Reason != nil {
		response.Reason = errorFromErr(result.Reason)
	}
	writeJSON(w, http.StatusOK, response)
}
