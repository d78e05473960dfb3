package domain

import (
	"context"
	"time"
)

// ButtonAction is one interactive control attached to a chat message.
type ButtonAction struct {
	Name  string
	Label string
}

// InteractiveMessage is chat text with buttons.
type InteractiveMessage struct {
	Text    string
	Actions []ButtonAction
}

// Chat is the chat-platform collaborator.
type Chat interface {
	ResolveDisplayName(ctx context.Context, chatUserID string) (string, error)
	SendDirectMessage(ctx context.Context, recipient, text string) (string, error)
	SendInteractiveMessage(ctx context.Context, recipient string, message InteractiveMessage) (string, error)
}

// PullRequest is the code-host view the service reads.
type PullRequest struct {
	Number      int
	Title       string
	AuthorLogin string
	URL         string
	State       string
	Labels      []string
}

// CodeHost is the code-hosting-platform collaborator.
type CodeHost interface {
	AccountExists(ctx context.Context, login string) (bool, error)
	ListPullRequestsByState(ctx context.Context, state string) ([]PullRequest, error)
}

// Store is the domain persistence boundary for contributor records.
type Store interface {
	GetContributor(ctx context.Context, chatUserID string) (Contributor, error)
	GetContributorByLinkedAccount(ctx context.Context, login string) (Contributor, error)
	CreateContributor(ctx context.Context, contributor Contributor) error
	PutContributor(ctx context.Context, contributor Contributor) error
}

// MentorDirectory resolves roster entries.
type MentorDirectory interface {
	GetMentor(ctx context.Context, login string) (Mentor, error)
}

// Copy renders the user-facing chat text for each notification.
type Copy interface {
	Welcome(displayName string) string
	AgreeLicenseLabel() string
	AskAccountLogin(displayName string) string
	AccountMissing(login string) string
	AccountTaken(login string) string
	LinkNotApplicable() string
	TaskAssigned(login string, taskNumber int) string
	MarkCompleteLabel() string
	TaskCompleted(displayName string, taskNumber int) string
	ActionNotApplicable(action string) string
	UnhandledAction(action string) string
	MentorPullRequest(mentor Mentor, traineeLogin, pullRequestURL string) string
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}
