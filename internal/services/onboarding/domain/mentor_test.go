package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mentorRoster() fakeMentors {
	return fakeMentors{
		"m1": {Login: "M1", ChatUserID: "UM1"},
		"m2": {Login: "M2", ChatUserID: "UM2"},
	}
}

func seedTrainee(h harness) {
	h.store.seed(Contributor{ChatUserID: "U1", LinkedAccountLogin: "octocat", Milestone: StateTaskAssigned, TaskNumber: 1, MentorLogin: NoMentor})
}

func TestMentorScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, mentorRoster())
	seedTrainee(h)

	result, err := h.svc.AssignMentor(ctx, "M1", "octocat")
	if err != nil {
		t.Fatalf("assign mentor: %v", err)
	}
	if result.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeApplied)
	}
	hasMentor, err := h.svc.HasMentor(ctx, "octocat")
	if err != nil {
		t.Fatalf("has mentor: %v", err)
	}
	if !hasMentor {
		t.Fatal("expected trainee to have a mentor")
	}

	const url = "https://github.com/example/repo/pull/7"
	if err := h.svc.NotifyMentorOfPullRequest(ctx, "octocat", url); err != nil {
		t.Fatalf("notify mentor: %v", err)
	}
	messages := h.chat.messages()
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	msg := messages[0]
	if msg.Recipient != "UM1" {
		t.Fatalf("recipient = %q, want UM1", msg.Recipient)
	}
	for _, want := range []string{"M1", "octocat", url} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("message %q does not mention %q", msg.Text, want)
		}
	}
}

func TestAssignMentorIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, mentorRoster())
	seedTrainee(h)

	if _, err := h.svc.AssignMentor(ctx, "M1", "octocat"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	result, err := h.svc.AssignMentor(ctx, "M2", "octocat")
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if result.Outcome != OutcomeUnchanged {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeUnchanged)
	}
	stored, _ := h.store.get("U1")
	if stored.MentorLogin != "M1" {
		t.Fatalf("mentor = %q, want M1", stored.MentorLogin)
	}
}

func TestAssignMentorIgnoresNonRosterLogin(t *testing.T) {
	h := newHarness(t, mentorRoster())
	seedTrainee(h)

	result, err := h.svc.AssignMentor(context.Background(), "stranger", "octocat")
	if err != nil {
		t.Fatalf("assign mentor: %v", err)
	}
	if !errors.Is(result.Reason, ErrMentorNotEligible) {
		t.Fatalf("reason = %v, want %v", result.Reason, ErrMentorNotEligible)
	}
	stored, _ := h.store.get("U1")
	if stored.MentorLogin != NoMentor {
		t.Fatalf("mentor = %q, want %q", stored.MentorLogin, NoMentor)
	}
}

func TestAssignMentorUnknownTrainee(t *testing.T) {
	h := newHarness(t, mentorRoster())

	result, err := h.svc.AssignMentor(context.Background(), "M1", "ghost")
	if err != nil {
		t.Fatalf("assign mentor: %v", err)
	}
	if !errors.Is(result.Reason, ErrUnknownAccount) {
		t.Fatalf("reason = %v, want %v", result.Reason, ErrUnknownAccount)
	}
}

func TestAssignMentorRejectsSelfMentoring(t *testing.T) {
	h := newHarness(t, fakeMentors{"octocat": {Login: "octocat"}})
	seedTrainee(h)

	result, err := h.svc.AssignMentor(context.Background(), "octocat", "octocat")
	if err != nil {
		t.Fatalf("assign mentor: %v", err)
	}
	if result.Outcome != OutcomeNotApplicable {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeNotApplicable)
	}
}

func TestHasMentorUnknownTrainee(t *testing.T) {
	h := newHarness(t, mentorRoster())
	hasMentor, err := h.svc.HasMentor(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("has mentor: %v", err)
	}
	if hasMentor {
		t.Fatal("expected unknown trainee to have no mentor")
	}
}

func TestNotifyMentorFailsWithoutMentor(t *testing.T) {
	h := newHarness(t, mentorRoster())
	seedTrainee(h)

	if err := h.svc.NotifyMentorOfPullRequest(context.Background(), "octocat", "u"); !errors.Is(err, ErrMentorNotAssigned) {
		t.Fatalf("error = %v, want %v", err, ErrMentorNotAssigned)
	}
	if err := h.svc.NotifyMentorOfPullRequest(context.Background(), "ghost", "u"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("error = %v, want %v", err, ErrUnknownAccount)
	}
	if messages := h.chat.messages(); len(messages) != 0 {
		t.Fatalf("messages = %+v, want none", messages)
	}
}

func TestNotifyMentorUsesConfiguredChannel(t *testing.T) {
	h := newHarness(t, mentorRoster())
	h.svc.mentorChannel = "C-MENTORS"
	h.store.seed(Contributor{ChatUserID: "U1", LinkedAccountLogin: "octocat", Milestone: StateTaskAssigned, TaskNumber: 1, MentorLogin: "M1"})

	if err := h.svc.NotifyMentorOfPullRequest(context.Background(), "octocat", "u"); err != nil {
		t.Fatalf("notify mentor: %v", err)
	}
	if got := h.chat.messages()[0].Recipient; got != "C-MENTORS" {
		t.Fatalf("recipient = %q, want C-MENTORS", got)
	}
}

func TestHandlePullRequestEvent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, mentorRoster())
	seedTrainee(h)

	opened := PullRequestEvent{Action: PullRequestOpened, AuthorLogin: "octocat", URL: "https://example.test/pr/1"}
	result, err := h.svc.HandlePullRequestEvent(ctx, opened)
	if err != nil {
		t.Fatalf("opened without mentor: %v", err)
	}
	if result.Outcome != OutcomeUnchanged {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeUnchanged)
	}

	result, err = h.svc.HandlePullRequestEvent(ctx, PullRequestEvent{Action: PullRequestReviewRequested, AuthorLogin: "octocat", ReviewerLogin: "M2"})
	if err != nil {
		t.Fatalf("review requested: %v", err)
	}
	if result.Outcome != OutcomeApplied {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeApplied)
	}

	if _, err := h.svc.HandlePullRequestEvent(ctx, opened); err != nil {
		t.Fatalf("opened with mentor: %v", err)
	}
	messages := h.chat.messages()
	if len(messages) != 1 || messages[0].Recipient != "UM2" {
		t.Fatalf("messages = %+v, want one to UM2", messages)
	}

	result, err = h.svc.HandlePullRequestEvent(ctx, PullRequestEvent{Action: "labeled", AuthorLogin: "octocat"})
	if err != nil {
		t.Fatalf("labeled: %v", err)
	}
	if result.Outcome != OutcomeUnhandled {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeUnhandled)
	}
}
