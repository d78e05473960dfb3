package domain

import (
	"context"
	"strings"
)

// Inbound event types accepted at the boundary.
const (
	EventTypeConfirmLink  = "confirm-link"
	EventTypeButtonAction = "button-action"
	EventTypeNewUser      = "new-user"
)

// InboundEvent is one chat-originated unit of work.
type InboundEvent struct {
	ID         string
	Type       string
	ChatUserID string
	Payload    map[string]string
}

// HandledEvent pairs an inbound event with how it was handled.
type HandledEvent struct {
	Event  InboundEvent
	Result Result
	Err    error
}

// Handle routes an inbound event to its use-case.
func (s *Service) Handle(ctx context.Context, event InboundEvent) (Result, error) {
	switch strings.TrimSpace(event.Type) {
	case EventTypeConfirmLink:
		return s.ConfirmAccountLink(ctx, event.ChatUserID, event.Payload["login"])
	case EventTypeButtonAction:
		return s.HandleButtonAction(ctx, event.Payload["action"], event.ChatUserID)
	case EventTypeNewUser:
		return s.CreateForNewUser(ctx, event.ChatUserID)
	default:
		return Result{}, invalidArgument("event type %q is not supported", event.Type)
	}
}

// Pull request webhook actions the service reacts to.
const (
	PullRequestOpened          = "opened"
	PullRequestReviewRequested = "review_requested"
	PullRequestAssigned        = "assigned"
)

// PullRequestEvent is the code-host webhook view the service reads.
type PullRequestEvent struct {
	Action        string
	AuthorLogin   string
	URL           string
	ReviewerLogin string
	AssigneeLogin string
}

// HandlePullRequestEvent notifies the author's mentor when a pull request is
// opened and binds a mentor when a roster member is asked to review or is
// assigned. Other actions are ignored.
func (s *Service) HandlePullRequestEvent(ctx context.Context, event PullRequestEvent) (Result, error) {
	author := normalizeLogin(event.AuthorLogin)
	if author == "" {
		return Result{}, invalidArgument("pull request author is required")
	}

	switch event.Action {
	case PullRequestOpened:
		hasMentor, err := s.HasMentor(ctx, author)
		if err != nil {
			return Result{}, err
		}
		if !hasMentor {
			return Result{Outcome: OutcomeUnchanged, Reason: ErrMentorNotAssigned}, nil
		}
		if err := s.NotifyMentorOfPullRequest(ctx, author, event.URL); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeApplied}, nil
	case PullRequestReviewRequested:
		if normalizeLogin(event.ReviewerLogin) == "" {
			return Result{Outcome: OutcomeUnchanged}, nil
		}
		return s.AssignMentor(ctx, event.ReviewerLogin, author)
	case PullRequestAssigned:
		if normalizeLogin(event.AssigneeLogin) == "" {
			return Result{Outcome: OutcomeUnchanged}, nil
		}
		return s.AssignMentor(ctx, event.AssigneeLogin, author)
	default:
		return Result{Outcome: OutcomeUnhandled}, nil
	}
}
