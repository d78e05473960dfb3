package app

import (
	"context"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
)

// Attempt outcomes recorded beside the domain outcomes.
const (
	AttemptOutcomeRetry  = "retry"
	AttemptOutcomeFailed = "failed"
)

// Attempt records one dispatch of an inbound event.
type Attempt struct {
	EventID    string
	EventType  string
	ChatUserID string
	Outcome    string
	Error      string
	CreatedAt  time.Time
}

// AttemptRecorder persists dispatch attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

type attemptStoreRecorder struct {
	store storage.AttemptStore
}

func newAttemptStoreRecorder(store storage.AttemptStore) *attemptStoreRecorder {
	return &attemptStoreRecorder{store: store}
}

func (r *attemptStoreRecorder) RecordAttempt(ctx context.Context, attempt Attempt) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.RecordAttempt(ctx, storage.AttemptRecord{
		EventID:    attempt.EventID,
		EventType:  attempt.EventType,
		ChatUserID: attempt.ChatUserID,
		Outcome:    attempt.Outcome,
		LastError:  attempt.Error,
		CreatedAt:  attempt.CreatedAt,
	})
}

// attemptOutcome folds a handled result or failure into the stored outcome.
func attemptOutcome(result domain.Result, err error) string {
	switch {
	case err == nil:
		return string(result.Outcome)
	case domain.IsRetryable(err):
		return AttemptOutcomeRetry
	default:
		return AttemptOutcomeFailed
	}
}
