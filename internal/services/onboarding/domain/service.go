package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Button action names carried by inbound chat events.
const (
	ButtonAgreeLicense = "agree-license"
	ButtonMarkComplete = "mark-complete"
)

// DefaultCollaboratorTimeout bounds each chat or code-host call when the
// caller does not configure one.
const DefaultCollaboratorTimeout = 5 * time.Second

// Outcome classifies how an inbound event was handled.
type Outcome string

const (
	// OutcomeApplied means a transition was persisted.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged means the event was already satisfied.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNotApplicable means the event is illegal in the current milestone.
	OutcomeNotApplicable Outcome = "not_applicable"
	// OutcomeRejected means a guard failed.
	OutcomeRejected Outcome = "rejected"
	// OutcomeUnhandled means the action name is not recognized.
	OutcomeUnhandled Outcome = "unhandled"
)

// Result reports one handled event. Reason explains non-applied outcomes.
// NotifyErr records a chat delivery failure after the state was persisted;
// the transition stands.
type Result struct {
	Outcome     Outcome
	Contributor Contributor
	Reason      error
	NotifyErr   error
}

// Config wires the service's collaborators.
type Config struct {
	Store               Store
	Mentors             MentorDirectory
	Chat                Chat
	CodeHost            CodeHost
	Copy                Copy
	CollaboratorTimeout time.Duration
	// MentorChannel receives pull request notifications; when empty the
	// mentor is messaged directly.
	MentorChannel string
	Clock         func() time.Time
}

// Service orchestrates contributor onboarding: load, evaluate, persist,
// then notify.
type Service struct {
	store         Store
	mentors       MentorDirectory
	chat          Chat
	codeHost      CodeHost
	copy          Copy
	timeout       time.Duration
	mentorChannel string
	clock         func() time.Time
	locks         *keyedMutex
}

// NewService constructs onboarding use-cases.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if cfg.Chat == nil {
		return nil, fmt.Errorf("chat collaborator is required")
	}
	if cfg.CodeHost == nil {
		return nil, fmt.Errorf("code host collaborator is required")
	}
	if cfg.Copy == nil {
		return nil, fmt.Errorf("message copy is required")
	}
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = DefaultCollaboratorTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		store:         cfg.Store,
		mentors:       cfg.Mentors,
		chat:          cfg.Chat,
		codeHost:      cfg.CodeHost,
		copy:          cfg.Copy,
		timeout:       cfg.CollaboratorTimeout,
		mentorChannel: strings.TrimSpace(cfg.MentorChannel),
		clock:         cfg.Clock,
		locks:         newKeyedMutex(),
	}, nil
}

// CreateForNewUser creates the initial record for chatUserID and sends the
// license prompt. Existing contributors are left untouched and receive
// nothing.
func (s *Service) CreateForNewUser(ctx context.Context, chatUserID string) (Result, error) {
	chatUserID = strings.TrimSpace(chatUserID)
	if chatUserID == "" {
		return Result{}, invalidArgument("chat user id is required")
	}

	unlock := s.locks.Lock(chatUserID)
	existing, err := s.store.GetContributor(ctx, chatUserID)
	if err == nil {
		unlock()
		return Result{Outcome: OutcomeUnchanged, Contributor: existing}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		unlock()
		return Result{}, fmt.Errorf("load contributor: %w", err)
	}
	created := NewContributor(chatUserID, s.now())
	if err := s.store.CreateContributor(ctx, created); err != nil {
		unlock()
		return Result{}, storeWriteFailed("create contributor", err)
	}
	unlock()

	result := Result{Outcome: OutcomeApplied, Contributor: created}
	name := s.displayName(ctx, chatUserID)
	result.NotifyErr = s.sendInteractive(ctx, chatUserID, InteractiveMessage{
		Text:    s.copy.Welcome(name),
		Actions: []ButtonAction{{Name: ButtonAgreeLicense, Label: s.copy.AgreeLicenseLabel()}},
	})
	return result, nil
}

// HandleButtonAction applies the event behind a chat button. Agreeing to the
// license creates the record on first contact.
func (s *Service) HandleButtonAction(ctx context.Context, actionName, chatUserID string) (Result, error) {
	chatUserID = strings.TrimSpace(chatUserID)
	actionName = strings.TrimSpace(actionName)
	if chatUserID == "" {
		return Result{}, invalidArgument("chat user id is required")
	}

	var (
		event         Event
		createMissing bool
	)
	switch actionName {
	case ButtonAgreeLicense:
		event, createMissing = EventAgreeLicense, true
	case ButtonMarkComplete:
		event = EventCompleteTask
	default:
		result := Result{Outcome: OutcomeUnhandled, Reason: ErrUnknownAction}
		result.NotifyErr = s.sendDirect(ctx, chatUserID, s.copy.UnhandledAction(actionName))
		return result, nil
	}

	unlock := s.locks.Lock(chatUserID)
	current, err := s.store.GetContributor(ctx, chatUserID)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound) && createMissing:
		current = NewContributor(chatUserID, s.now())
		created = true
	case errors.Is(err, ErrNotFound):
		unlock()
		result := Result{Outcome: OutcomeNotApplicable, Reason: ErrUnknownContributor}
		result.NotifyErr = s.sendDirect(ctx, chatUserID, s.copy.ActionNotApplicable(actionName))
		return result, nil
	default:
		unlock()
		return Result{}, fmt.Errorf("load contributor: %w", err)
	}

	next, transition, err := Apply(current, event, LinkFacts{})
	if err != nil {
		unlock()
		result := Result{Outcome: OutcomeNotApplicable, Contributor: current, Reason: err}
		result.NotifyErr = s.sendDirect(ctx, chatUserID, s.copy.ActionNotApplicable(actionName))
		return result, nil
	}
	next.UpdatedAt = s.now()
	if created {
		err = s.store.CreateContributor(ctx, next)
	} else {
		err = s.store.PutContributor(ctx, next)
	}
	unlock()
	if err != nil {
		return Result{}, storeWriteFailed("save contributor", err)
	}

	result := Result{Outcome: OutcomeApplied, Contributor: next}
	result.NotifyErr = s.perform(ctx, next, transition.Action)
	return result, nil
}

// ConfirmAccountLink links proposedLogin to the contributor and fast-forwards
// to the first task. The code host is queried without holding the
// contributor lock; the record is re-read and re-validated afterwards.
func (s *Service) ConfirmAccountLink(ctx context.Context, chatUserID, proposedLogin string) (Result, error) {
	chatUserID = strings.TrimSpace(chatUserID)
	login := normalizeLogin(proposedLogin)
	if chatUserID == "" {
		return Result{}, invalidArgument("chat user id is required")
	}
	if login == "" {
		return Result{}, invalidArgument("account login is required")
	}

	unlock := s.locks.Lock(chatUserID)
	current, err := s.store.GetContributor(ctx, chatUserID)
	unlock()
	if result, done, err := checkLinkable(current, err); done {
		return s.linkNotApplicable(ctx, chatUserID, result, err)
	}

	exists, err := s.accountExists(ctx, login)
	if err != nil {
		return Result{}, err
	}

	unlock = s.locks.Lock(chatUserID)
	current, err = s.store.GetContributor(ctx, chatUserID)
	if result, done, err := checkLinkable(current, err); done {
		unlock()
		return s.linkNotApplicable(ctx, chatUserID, result, err)
	}

	facts := LinkFacts{Login: login, AccountExists: exists}
	holder, err := s.store.GetContributorByLinkedAccount(ctx, login)
	switch {
	case err == nil:
		facts.HeldBy = holder.ChatUserID
	case !errors.Is(err, ErrNotFound):
		unlock()
		return Result{}, fmt.Errorf("load linked account holder: %w", err)
	}

	linked, _, err := Apply(current, EventLinkAccount, facts)
	if err != nil {
		unlock()
		return s.rejectLink(ctx, current, login, err), nil
	}
	assigned, transition, err := Apply(linked, EventAssignFirstTask, LinkFacts{})
	if err != nil {
		unlock()
		return Result{}, fmt.Errorf("assign first task: %w", err)
	}
	assigned.UpdatedAt = s.now()
	if err := s.store.PutContributor(ctx, assigned); err != nil {
		unlock()
		if errors.Is(err, ErrConflict) {
			return s.rejectLink(ctx, current, login, conflictingLinkedAccount(login)), nil
		}
		return Result{}, storeWriteFailed("save contributor", err)
	}
	unlock()

	result := Result{Outcome: OutcomeApplied, Contributor: assigned}
	result.NotifyErr = s.perform(ctx, assigned, transition.Action)
	return result, nil
}

// checkLinkable reports done when the loaded record cannot accept a link.
func checkLinkable(current Contributor, loadErr error) (Result, bool, error) {
	switch {
	case loadErr == nil:
	case errors.Is(loadErr, ErrNotFound):
		return Result{Outcome: OutcomeNotApplicable, Reason: ErrUnknownContributor}, true, nil
	default:
		return Result{}, true, fmt.Errorf("load contributor: %w", loadErr)
	}
	if current.Milestone != StateLicenseAgreed {
		return Result{
			Outcome:     OutcomeNotApplicable,
			Contributor: current,
			Reason:      illegalTransition(current.Milestone, EventLinkAccount),
		}, true, nil
	}
	return Result{}, false, nil
}

func (s *Service) linkNotApplicable(ctx context.Context, chatUserID string, result Result, err error) (Result, error) {
	if err != nil {
		return result, err
	}
	result.NotifyErr = s.sendDirect(ctx, chatUserID, s.copy.LinkNotApplicable())
	return result, nil
}

func (s *Service) rejectLink(ctx context.Context, current Contributor, login string, reason error) Result {
	result := Result{Outcome: OutcomeRejected, Contributor: current, Reason: reason}
	text := s.copy.AccountMissing(login)
	if errors.Is(reason, ErrConflictingLinkedAccount) {
		text = s.copy.AccountTaken(login)
	}
	result.NotifyErr = s.sendDirect(ctx, current.ChatUserID, text)
	return result
}

// ResolveStateByLinkedAccount returns the contributor holding login.
func (s *Service) ResolveStateByLinkedAccount(ctx context.Context, login string) (Contributor, error) {
	login = normalizeLogin(login)
	if login == "" {
		return Contributor{}, invalidArgument("account login is required")
	}
	contributor, err := s.store.GetContributorByLinkedAccount(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return Contributor{}, unknownAccount(login)
	}
	if err != nil {
		return Contributor{}, fmt.Errorf("load contributor by linked account: %w", err)
	}
	return contributor, nil
}

// GetContributor returns the record for chatUserID.
func (s *Service) GetContributor(ctx context.Context, chatUserID string) (Contributor, error) {
	chatUserID = strings.TrimSpace(chatUserID)
	if chatUserID == "" {
		return Contributor{}, invalidArgument("chat user id is required")
	}
	contributor, err := s.store.GetContributor(ctx, chatUserID)
	if errors.Is(err, ErrNotFound) {
		return Contributor{}, ErrUnknownContributor
	}
	if err != nil {
		return Contributor{}, fmt.Errorf("load contributor: %w", err)
	}
	return contributor, nil
}

func (s *Service) perform(ctx context.Context, c Contributor, action Action) error {
	switch action {
	case ActionRequestAccountLogin:
		return s.sendDirect(ctx, c.ChatUserID, s.copy.AskAccountLogin(s.displayName(ctx, c.ChatUserID)))
	case ActionAnnounceTask:
		return s.sendInteractive(ctx, c.ChatUserID, InteractiveMessage{
			Text:    s.copy.TaskAssigned(c.LinkedAccountLogin, c.TaskNumber),
			Actions: []ButtonAction{{Name: ButtonMarkComplete, Label: s.copy.MarkCompleteLabel()}},
		})
	case ActionCongratulate:
		return s.sendDirect(ctx, c.ChatUserID, s.copy.TaskCompleted(s.displayName(ctx, c.ChatUserID), c.TaskNumber))
	default:
		return nil
	}
}

func (s *Service) accountExists(ctx context.Context, login string) (bool, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	exists, err := s.codeHost.AccountExists(callCtx, login)
	if err != nil {
		return false, unavailable("check code host account", err)
	}
	return exists, nil
}

// displayName falls back to the chat identity when the lookup fails so a
// notification can still be sent.
func (s *Service) displayName(ctx context.Context, chatUserID string) string {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	name, err := s.chat.ResolveDisplayName(callCtx, chatUserID)
	if err != nil || strings.TrimSpace(name) == "" {
		return chatUserID
	}
	return strings.TrimSpace(name)
}

func (s *Service) sendDirect(ctx context.Context, recipient, text string) error {
	if strings.TrimSpace(recipient) == "" {
		return invalidArgument("message recipient is required")
	}
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.chat.SendDirectMessage(callCtx, recipient, text); err != nil {
		return unavailable("send direct message", err)
	}
	return nil
}

func (s *Service) sendInteractive(ctx context.Context, recipient string, message InteractiveMessage) error {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.chat.SendInteractiveMessage(callCtx, recipient, message); err != nil {
		return unavailable("send interactive message", err)
	}
	return nil
}
