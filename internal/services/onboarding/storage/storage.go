// Package storage defines persistence records and contracts for the
// onboarding service.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write would violate a uniqueness rule: a
	// duplicate chat identity on create, or a linked login held by another
	// contributor.
	ErrConflict = errors.New("record conflict")
)

// ContributorRecord stores one contributor's onboarding progress.
type ContributorRecord struct {
	ChatUserID         string
	LinkedAccountLogin string
	Milestone          string
	TaskNumber         int
	MentorLogin        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ContributorStore persists contributor records keyed by chat identity with a
// case-insensitive unique secondary index on the linked login.
type ContributorStore interface {
	GetContributor(ctx context.Context, chatUserID string) (ContributorRecord, error)
	GetContributorByLinkedAccount(ctx context.Context, login string) (ContributorRecord, error)
	CreateContributor(ctx context.Context, record ContributorRecord) error
	PutContributor(ctx context.Context, record ContributorRecord) error
}

// MentorRecord is one mentor roster entry.
type MentorRecord struct {
	Login      string
	ChatUserID string
	UpdatedAt  time.Time
}

// MentorStore persists the mentor roster.
type MentorStore interface {
	PutMentor(ctx context.Context, record MentorRecord) error
	GetMentor(ctx context.Context, login string) (MentorRecord, error)
	ListMentors(ctx context.Context) ([]MentorRecord, error)
	DeleteMentor(ctx context.Context, login string) error
}

// AttemptRecord is one durable inbound event processing outcome.
type AttemptRecord struct {
	ID         int64
	EventID    string
	EventType  string
	ChatUserID string
	Outcome    string
	LastError  string
	CreatedAt  time.Time
}

// AttemptStore persists event processing attempt records.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, attempt AttemptRecord) error
	ListAttempts(ctx context.Context, limit int) ([]AttemptRecord, error)
}

// Store groups every onboarding persistence contract behind one backend.
type Store interface {
	ContributorStore
	MentorStore
	AttemptStore
	Close() error
}
