package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
	"go.etcd.io/bbolt"
)

type attemptValue struct {
	ID         int64  `json:"id"`
	EventID    string `json:"event_id"`
	EventType  string `json:"event_type"`
	ChatUserID string `json:"chat_user_id,omitempty"`
	Outcome    string `json:"outcome"`
	LastError  string `json:"last_error,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// RecordAttempt appends one event processing attempt under the next bucket
// sequence number.
func (s *Store) RecordAttempt(ctx context.Context, attempt storage.AttemptRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	attempt.EventID = strings.TrimSpace(attempt.EventID)
	attempt.EventType = strings.TrimSpace(attempt.EventType)
	attempt.ChatUserID = strings.TrimSpace(attempt.ChatUserID)
	attempt.Outcome = strings.TrimSpace(attempt.Outcome)
	attempt.LastError = strings.TrimSpace(attempt.LastError)
	if attempt.EventID == "" {
		return fmt.Errorf("event id is required")
	}
	if attempt.EventType == "" {
		return fmt.Errorf("event type is required")
	}
	if attempt.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		attempts, err := bucket(tx, attemptBucket)
		if err != nil {
			return err
		}
		seq, err := attempts.NextSequence()
		if err != nil {
			return fmt.Errorf("next attempt sequence: %w", err)
		}
		payload, err := json.Marshal(attemptValue{
			ID:         int64(seq),
			EventID:    attempt.EventID,
			EventType:  attempt.EventType,
			ChatUserID: attempt.ChatUserID,
			Outcome:    attempt.Outcome,
			LastError:  attempt.LastError,
			CreatedAt:  toMillis(attempt.CreatedAt),
		})
		if err != nil {
			return fmt.Errorf("marshal attempt: %w", err)
		}
		return attempts.Put(sequenceKey(seq), payload)
	})
}

// ListAttempts lists attempts newest first by insertion order.
func (s *Store) ListAttempts(ctx context.Context, limit int) ([]storage.AttemptRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	records := make([]storage.AttemptRecord, 0, limit)
	err := s.db.View(func(tx *bbolt.Tx) error {
		attempts, err := bucket(tx, attemptBucket)
		if err != nil {
			return err
		}
		cursor := attempts.Cursor()
		for key, payload := cursor.Last(); key != nil && len(records) < limit; key, payload = cursor.Prev() {
			var value attemptValue
			if err := decode(payload, &value, "attempt"); err != nil {
				return err
			}
			records = append(records, storage.AttemptRecord{
				ID:         value.ID,
				EventID:    value.EventID,
				EventType:  value.EventType,
				ChatUserID: value.ChatUserID,
				Outcome:    value.Outcome,
				LastError:  value.LastError,
				CreatedAt:  fromMillis(value.CreatedAt),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
