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

type mentorValue struct {
	Login      string `json:"login"`
	ChatUserID string `json:"chat_user_id"`
	UpdatedAt  int64  `json:"updated_at"`
}

func (v mentorValue) record() storage.MentorRecord {
	return storage.MentorRecord{
		Login:      v.Login,
		ChatUserID: v.ChatUserID,
		UpdatedAt:  fromMillis(v.UpdatedAt),
	}
}

// PutMentor upserts one roster entry.
func (s *Store) PutMentor(ctx context.Context, record storage.MentorRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record.Login = strings.TrimSpace(record.Login)
	record.ChatUserID = strings.TrimSpace(record.ChatUserID)
	if record.Login == "" {
		return fmt.Errorf("mentor login is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(mentorValue{
		Login:      record.Login,
		ChatUserID: record.ChatUserID,
		UpdatedAt:  toMillis(record.UpdatedAt),
	})
	if err != nil {
		return fmt.Errorf("marshal mentor: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		mentors, err := bucket(tx, mentorBucket)
		if err != nil {
			return err
		}
		return mentors.Put(loginKey(record.Login), payload)
	})
}

// GetMentor loads one roster entry by login, compared case-insensitively.
func (s *Store) GetMentor(ctx context.Context, login string) (storage.MentorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.MentorRecord{}, err
	}
	if strings.TrimSpace(login) == "" {
		return storage.MentorRecord{}, fmt.Errorf("mentor login is required")
	}

	var record storage.MentorRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		mentors, err := bucket(tx, mentorBucket)
		if err != nil {
			return err
		}
		payload := mentors.Get(loginKey(login))
		if payload == nil {
			return storage.ErrNotFound
		}
		var value mentorValue
		if err := decode(payload, &value, "mentor"); err != nil {
			return err
		}
		record = value.record()
		return nil
	})
	if err != nil {
		return storage.MentorRecord{}, err
	}
	return record, nil
}

// ListMentors lists roster entries ordered by folded login.
func (s *Store) ListMentors(ctx context.Context) ([]storage.MentorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var records []storage.MentorRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		mentors, err := bucket(tx, mentorBucket)
		if err != nil {
			return err
		}
		return mentors.ForEach(func(_, payload []byte) error {
			var value mentorValue
			if err := decode(payload, &value, "mentor"); err != nil {
				return err
			}
			records = append(records, value.record())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteMentor removes one roster entry. Missing entries are not an error.
func (s *Store) DeleteMentor(ctx context.Context, login string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(login) == "" {
		return fmt.Errorf("mentor login is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		mentors, err := bucket(tx, mentorBucket)
		if err != nil {
			return err
		}
		return mentors.Delete(loginKey(login))
	})
}
