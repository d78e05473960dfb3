package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
	onboardingsqlite "github.com/louisbranch/onboarding.space/internal/services/onboarding/storage/sqlite"
)

func openSQLiteStore(t *testing.T) *onboardingsqlite.Store {
	t.Helper()
	store, err := onboardingsqlite.Open(filepath.Join(t.TempDir(), "onboarding.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDomainStoreAdapterRoundTrip(t *testing.T) {
	adapter := newDomainStoreAdapter(openSQLiteStore(t))
	ctx := context.Background()
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	contributor := domain.NewContributor("U1", now)
	if err := adapter.CreateContributor(ctx, contributor); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := adapter.CreateContributor(ctx, contributor); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate create err = %v, want %v", err, domain.ErrConflict)
	}

	contributor.Milestone = domain.StateAccountLinked
	contributor.LinkedAccountLogin = "octocat"
	contributor.UpdatedAt = now.Add(time.Minute)
	if err := adapter.PutContributor(ctx, contributor); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := adapter.GetContributorByLinkedAccount(ctx, "OctoCat")
	if err != nil {
		t.Fatalf("get by linked account: %v", err)
	}
	if got.ChatUserID != "U1" || got.Milestone != domain.StateAccountLinked || got.MentorLogin != domain.NoMentor {
		t.Fatalf("contributor = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}

	if _, err := adapter.GetContributor(ctx, "U404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, domain.ErrNotFound)
	}
}

func TestDomainStoreAdapterRequiresStore(t *testing.T) {
	var adapter *domainStoreAdapter
	if _, err := adapter.GetContributor(context.Background(), "U1"); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("err = %v, want %v", err, domain.ErrStoreNotConfigured)
	}
	if err := newDomainStoreAdapter(nil).PutContributor(context.Background(), domain.Contributor{}); !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("err = %v, want %v", err, domain.ErrStoreNotConfigured)
	}
}

func TestMentorDirectory(t *testing.T) {
	store := openSQLiteStore(t)
	ctx := context.Background()
	if err := store.PutMentor(ctx, storage.MentorRecord{Login: "Hubot", ChatUserID: "U9", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("put mentor: %v", err)
	}

	directory := mentorDirectory{store: store}
	mentor, err := directory.GetMentor(ctx, "hubot")
	if err != nil {
		t.Fatalf("get mentor: %v", err)
	}
	if mentor.Login != "Hubot" || mentor.ChatUserID != "U9" {
		t.Fatalf("mentor = %+v", mentor)
	}
	if _, err := directory.GetMentor(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, domain.ErrNotFound)
	}
}

func TestMapStorageError(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		in   error
		want error
	}{
		{in: nil, want: nil},
		{in: storage.ErrNotFound, want: domain.ErrNotFound},
		{in: storage.ErrConflict, want: domain.ErrConflict},
		{in: other, want: other},
	}
	for _, tc := range tests {
		if got := mapStorageError(tc.in); got != tc.want {
			t.Fatalf("mapStorageError(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
