// Package storagetest provides a conformance suite every onboarding storage
// backend must pass.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
)

// Opener returns a fresh, empty store for one subtest.
type Opener func(t *testing.T) storage.Store

// Run executes the conformance suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Helper()

	t.Run("contributor round trip", func(t *testing.T) { testContributorRoundTrip(t, open(t)) })
	t.Run("create rejects duplicate", func(t *testing.T) { testCreateRejectsDuplicate(t, open(t)) })
	t.Run("missing contributor", func(t *testing.T) { testMissingContributor(t, open(t)) })
	t.Run("linked account lookup", func(t *testing.T) { testLinkedAccountLookup(t, open(t)) })
	t.Run("linked account uniqueness", func(t *testing.T) { testLinkedAccountUniqueness(t, open(t)) })
	t.Run("concurrent linking", func(t *testing.T) { testConcurrentLinking(t, open(t)) })
	t.Run("put preserves created at", func(t *testing.T) { testPutPreservesCreatedAt(t, open(t)) })
	t.Run("mentor roster", func(t *testing.T) { testMentorRoster(t, open(t)) })
	t.Run("attempt log", func(t *testing.T) { testAttemptLog(t, open(t)) })
	t.Run("canceled context", func(t *testing.T) { testCanceledContext(t, open(t)) })
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newContributor(chatUserID string) storage.ContributorRecord {
	return storage.ContributorRecord{
		ChatUserID:  chatUserID,
		Milestone:   "NEW",
		TaskNumber:  1,
		MentorLogin: "NO_MENTOR",
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

func testContributorRoundTrip(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if err := store.CreateContributor(ctx, newContributor("U1")); err != nil {
		t.Fatalf("create contributor: %v", err)
	}

	got, err := store.GetContributor(ctx, "U1")
	if err != nil {
		t.Fatalf("get contributor: %v", err)
	}
	if got.Milestone != "NEW" || got.TaskNumber != 1 || got.MentorLogin != "NO_MENTOR" {
		t.Fatalf("contributor = %+v, want initial values", got)
	}
	if got.LinkedAccountLogin != "" {
		t.Fatalf("linked login = %q, want empty", got.LinkedAccountLogin)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, baseTime)
	}

	got.Milestone = "LICENSE_AGREED"
	got.UpdatedAt = baseTime.Add(time.Minute)
	if err := store.PutContributor(ctx, got); err != nil {
		t.Fatalf("put contributor: %v", err)
	}
	updated, err := store.GetContributor(ctx, "U1")
	if err != nil {
		t.Fatalf("get updated contributor: %v", err)
	}
	if updated.Milestone != "LICENSE_AGREED" {
		t.Fatalf("milestone = %q, want LICENSE_AGREED", updated.Milestone)
	}
	if !updated.UpdatedAt.Equal(baseTime.Add(time.Minute)) {
		t.Fatalf("updated at = %v, want %v", updated.UpdatedAt, baseTime.Add(time.Minute))
	}
}

func testCreateRejectsDuplicate(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if err := store.CreateContributor(ctx, newContributor("U1")); err != nil {
		t.Fatalf("create contributor: %v", err)
	}
	if err := store.CreateContributor(ctx, newContributor("U1")); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrConflict)
	}
}

func testMissingContributor(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if _, err := store.GetContributor(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetContributorByLinkedAccount(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing linked error = %v, want %v", err, storage.ErrNotFound)
	}
	if _, err := store.GetContributor(ctx, " "); err == nil {
		t.Fatal("expected error for blank chat user id")
	}
}

func testLinkedAccountLookup(t *testing.T, store storage.Store) {
	ctx := context.Background()
	record := newContributor("U1")
	record.LinkedAccountLogin = "Octocat"
	record.Milestone = "TASK_ASSIGNED"
	if err := store.PutContributor(ctx, record); err != nil {
		t.Fatalf("put contributor: %v", err)
	}

	got, err := store.GetContributorByLinkedAccount(ctx, "octocat")
	if err != nil {
		t.Fatalf("get by linked account: %v", err)
	}
	if got.ChatUserID != "U1" {
		t.Fatalf("chat user id = %q, want U1", got.ChatUserID)
	}
	if got.LinkedAccountLogin != "Octocat" {
		t.Fatalf("linked login = %q, want Octocat", got.LinkedAccountLogin)
	}
}

func testLinkedAccountUniqueness(t *testing.T, store storage.Store) {
	ctx := context.Background()
	first := newContributor("U1")
	first.LinkedAccountLogin = "octocat"
	if err := store.PutContributor(ctx, first); err != nil {
		t.Fatalf("put first: %v", err)
	}

	second := newContributor("U2")
	second.LinkedAccountLogin = "OCTOCAT"
	if err := store.PutContributor(ctx, second); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("put second error = %v, want %v", err, storage.ErrConflict)
	}
	if _, err := store.GetContributor(ctx, "U2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("rejected contributor lookup error = %v, want %v", err, storage.ErrNotFound)
	}

	// Re-saving the holder is not a conflict.
	first.Milestone = "TASK_ASSIGNED"
	if err := store.PutContributor(ctx, first); err != nil {
		t.Fatalf("re-put holder: %v", err)
	}
}

func testConcurrentLinking(t *testing.T, store storage.Store) {
	ctx := context.Background()
	const writers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record := newContributor(string(rune('A' + i)))
			record.LinkedAccountLogin = "shared-login"
			err := store.PutContributor(ctx, record)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, storage.ErrConflict) {
				t.Errorf("put contributor %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("successful links = %d, want 1", succeeded)
	}
}

func testPutPreservesCreatedAt(t *testing.T, store storage.Store) {
	ctx := context.Background()
	if err := store.CreateContributor(ctx, newContributor("U1")); err != nil {
		t.Fatalf("create contributor: %v", err)
	}
	record := newContributor("U1")
	record.CreatedAt = baseTime.Add(time.Hour)
	record.UpdatedAt = baseTime.Add(time.Hour)
	if err := store.PutContributor(ctx, record); err != nil {
		t.Fatalf("put contributor: %v", err)
	}
	got, err := store.GetContributor(ctx, "U1")
	if err != nil {
		t.Fatalf("get contributor: %v", err)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, baseTime)
	}
}

func testMentorRoster(t *testing.T, store storage.Store) {
	ctx := context.Background()
	for _, mentor := range []storage.MentorRecord{
		{Login: "zoe", ChatUserID: "UZ", UpdatedAt: baseTime},
		{Login: "alice", ChatUserID: "UA", UpdatedAt: baseTime},
	} {
		if err := store.PutMentor(ctx, mentor); err != nil {
			t.Fatalf("put mentor %s: %v", mentor.Login, err)
		}
	}

	got, err := store.GetMentor(ctx, "ALICE")
	if err != nil {
		t.Fatalf("get mentor: %v", err)
	}
	if got.ChatUserID != "UA" {
		t.Fatalf("mentor chat user id = %q, want UA", got.ChatUserID)
	}

	list, err := store.ListMentors(ctx)
	if err != nil {
		t.Fatalf("list mentors: %v", err)
	}
	if len(list) != 2 || list[0].Login != "alice" || list[1].Login != "zoe" {
		t.Fatalf("mentors = %+v, want alice then zoe", list)
	}

	if err := store.DeleteMentor(ctx, "zoe"); err != nil {
		t.Fatalf("delete mentor: %v", err)
	}
	if _, err := store.GetMentor(ctx, "zoe"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted mentor error = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteMentor(ctx, "zoe"); err != nil {
		t.Fatalf("delete missing mentor: %v", err)
	}
}

func testAttemptLog(t *testing.T, store storage.Store) {
	ctx := context.Background()
	for i, outcome := range []string{"applied", "rejected", "failed"} {
		err := store.RecordAttempt(ctx, storage.AttemptRecord{
			EventID:    "evt-" + outcome,
			EventType:  "button-action",
			ChatUserID: "U1",
			Outcome:    outcome,
			CreatedAt:  baseTime.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("record attempt %s: %v", outcome, err)
		}
	}

	records, err := store.ListAttempts(ctx, 2)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("attempt count = %d, want 2", len(records))
	}
	if records[0].Outcome != "failed" || records[1].Outcome != "rejected" {
		t.Fatalf("attempt order = %q, %q, want failed, rejected", records[0].Outcome, records[1].Outcome)
	}
	if records[0].ID == 0 {
		t.Fatal("expected attempt id to be assigned")
	}

	if err := store.RecordAttempt(ctx, storage.AttemptRecord{EventType: "x", Outcome: "applied"}); err == nil {
		t.Fatal("expected error for missing event id")
	}
	if _, err := store.ListAttempts(ctx, 0); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
}

func testCanceledContext(t *testing.T, store storage.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetContributor(ctx, "U1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get with canceled context error = %v, want %v", err, context.Canceled)
	}
	if err := store.PutContributor(ctx, newContributor("U1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("put with canceled context error = %v, want %v", err, context.Canceled)
	}
}
