package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu           sync.Mutex
	contributors map[string]Contributor
	putErr       error
	createErr    error
	getErr       error
	puts         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{contributors: make(map[string]Contributor)}
}

func (s *fakeStore) GetContributor(_ context.Context, chatUserID string) (Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Contributor{}, s.getErr
	}
	c, ok := s.contributors[chatUserID]
	if !ok {
		return Contributor{}, ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) GetContributorByLinkedAccount(_ context.Context, login string) (Contributor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contributors {
		if c.LinkedAccountLogin != "" && strings.EqualFold(c.LinkedAccountLogin, login) {
			return c, nil
		}
	}
	return Contributor{}, ErrNotFound
}

func (s *fakeStore) CreateContributor(_ context.Context, c Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.contributors[c.ChatUserID]; ok {
		return ErrConflict
	}
	s.contributors[c.ChatUserID] = c
	return nil
}

func (s *fakeStore) PutContributor(_ context.Context, c Contributor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	for id, other := range s.contributors {
		if id != c.ChatUserID && c.LinkedAccountLogin != "" && strings.EqualFold(other.LinkedAccountLogin, c.LinkedAccountLogin) {
			return ErrConflict
		}
	}
	s.puts++
	s.contributors[c.ChatUserID] = c
	return nil
}

func (s *fakeStore) seed(c Contributor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributors[c.ChatUserID] = c
}

func (s *fakeStore) get(chatUserID string) (Contributor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contributors[chatUserID]
	return c, ok
}

type sentMessage struct {
	Recipient string
	Text      string
	Actions   []ButtonAction
}

type fakeChat struct {
	mu       sync.Mutex
	names    map[string]string
	sent     []sentMessage
	sendErr  error
	nameErr  error
	sequence int
}

func newFakeChat() *fakeChat {
	return &fakeChat{names: map[string]string{}}
}

func (c *fakeChat) ResolveDisplayName(_ context.Context, chatUserID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nameErr != nil {
		return "", c.nameErr
	}
	return c.names[chatUserID], nil
}

func (c *fakeChat) SendDirectMessage(_ context.Context, recipient, text string) (string, error) {
	return c.record(sentMessage{Recipient: recipient, Text: text})
}

func (c *fakeChat) SendInteractiveMessage(_ context.Context, recipient string, message InteractiveMessage) (string, error) {
	return c.record(sentMessage{Recipient: recipient, Text: message.Text, Actions: message.Actions})
}

func (c *fakeChat) record(message sentMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return "", c.sendErr
	}
	c.sequence++
	c.sent = append(c.sent, message)
	return fmt.Sprintf("msg-%d", c.sequence), nil
}

func (c *fakeChat) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

type fakeCodeHost struct {
	mu       sync.Mutex
	accounts map[string]bool
	pulls    []PullRequest
	err      error
	calls    int
	// onExists runs inside AccountExists, before it returns.
	onExists func(login string)
	delay    time.Duration
}

func newFakeCodeHost(accounts ...string) *fakeCodeHost {
	host := &fakeCodeHost{accounts: map[string]bool{}}
	for _, account := range accounts {
		host.accounts[strings.ToLower(account)] = true
	}
	return host
}

func (h *fakeCodeHost) AccountExists(ctx context.Context, login string) (bool, error) {
	h.mu.Lock()
	h.calls++
	err := h.err
	exists := h.accounts[strings.ToLower(login)]
	hook := h.onExists
	delay := h.delay
	h.mu.Unlock()

	if hook != nil {
		hook(login)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (h *fakeCodeHost) ListPullRequestsByState(_ context.Context, state string) ([]PullRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	var matched []PullRequest
	for _, pull := range h.pulls {
		if pull.State == state {
			matched = append(matched, pull)
		}
	}
	return matched, nil
}

func (h *fakeCodeHost) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type fakeMentors map[string]Mentor

func (m fakeMentors) GetMentor(_ context.Context, login string) (Mentor, error) {
	mentor, ok := m[strings.ToLower(login)]
	if !ok {
		return Mentor{}, ErrNotFound
	}
	return mentor, nil
}

type fakeCopy struct{}

func (fakeCopy) Welcome(name string) string { return "welcome " + name }
func (fakeCopy) AgreeLicenseLabel() string { return "I agree" }
func (fakeCopy) AskAccountLogin(name string) string { return "login please " + name }
func (fakeCopy) AccountMissing(login string) string { return "missing " + login }
func (fakeCopy) AccountTaken(login string) string { return "taken " + login }
func (fakeCopy) LinkNotApplicable() string { return "link not applicable" }
func (fakeCopy) MarkCompleteLabel() string { return "Done" }
func (fakeCopy) ActionNotApplicable(action string) string { return "not applicable " + action }
func (fakeCopy) UnhandledAction(action string) string { return "unhandled " + action }

func (fakeCopy) TaskAssigned(login string, taskNumber int) string {
	return fmt.Sprintf("task %d for %s", taskNumber, login)
}

func (fakeCopy) TaskCompleted(name string, taskNumber int) string {
	return fmt.Sprintf("congrats %s on task %d", name, taskNumber)
}

func (fakeCopy) MentorPullRequest(mentor Mentor, trainee, url string) string {
	return fmt.Sprintf("%s: %s opened %s", mentor.Login, trainee, url)
}

var errBoom = errors.New("boom")

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

type harness struct {
	svc      *Service
	store    *fakeStore
	chat     *fakeChat
	codeHost *fakeCodeHost
}

func newHarness(t testing.TB, mentors fakeMentors, accounts ...string) harness {
	store := newFakeStore()
	chat := newFakeChat()
	codeHost := newFakeCodeHost(accounts...)
	cfg := Config{
		Store:    store,
		Chat:     chat,
		CodeHost: codeHost,
		Copy:     fakeCopy{},
		Clock:    fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	if mentors != nil {
		cfg.Mentors = mentors
	}
	t.Helper()
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return harness{svc: svc, store: store, chat: chat, codeHost: codeHost}
}
