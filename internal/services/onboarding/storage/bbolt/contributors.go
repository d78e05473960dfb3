package bbolt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
	"go.etcd.io/bbolt"
)

type contributorValue struct {
	ChatUserID         string `json:"chat_user_id"`
	LinkedAccountLogin string `json:"linked_account_login,omitempty"`
	Milestone          string `json:"milestone"`
	TaskNumber         int    `json:"task_number"`
	MentorLogin        string `json:"mentor_login"`
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
}

func contributorFromRecord(record storage.ContributorRecord) contributorValue {
	return contributorValue{
		ChatUserID:         record.ChatUserID,
		LinkedAccountLogin: record.LinkedAccountLogin,
		Milestone:          record.Milestone,
		TaskNumber:         record.TaskNumber,
		MentorLogin:        record.MentorLogin,
		CreatedAt:          toMillis(record.CreatedAt),
		UpdatedAt:          toMillis(record.UpdatedAt),
	}
}

func (v contributorValue) record() storage.ContributorRecord {
	return storage.ContributorRecord{
		ChatUserID:         v.ChatUserID,
		LinkedAccountLogin: v.LinkedAccountLogin,
		Milestone:          v.Milestone,
		TaskNumber:         v.TaskNumber,
		MentorLogin:        v.MentorLogin,
		CreatedAt:          fromMillis(v.CreatedAt),
		UpdatedAt:          fromMillis(v.UpdatedAt),
	}
}

// GetContributor loads one contributor by chat identity.
func (s *Store) GetContributor(ctx context.Context, chatUserID string) (storage.ContributorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContributorRecord{}, err
	}
	chatUserID = strings.TrimSpace(chatUserID)
	if chatUserID == "" {
		return storage.ContributorRecord{}, fmt.Errorf("chat user id is required")
	}

	var record storage.ContributorRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		contributors, err := bucket(tx, contributorBucket)
		if err != nil {
			return err
		}
		value, err := loadContributor(contributors, chatUserID)
		if err != nil {
			return err
		}
		record = value.record()
		return nil
	})
	if err != nil {
		return storage.ContributorRecord{}, err
	}
	return record, nil
}

// GetContributorByLinkedAccount resolves login through the index bucket.
func (s *Store) GetContributorByLinkedAccount(ctx context.Context, login string) (storage.ContributorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContributorRecord{}, err
	}
	if strings.TrimSpace(login) == "" {
		return storage.ContributorRecord{}, fmt.Errorf("linked account login is required")
	}

	var record storage.ContributorRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		index, err := bucket(tx, linkedAccountBucket)
		if err != nil {
			return err
		}
		holder := index.Get(loginKey(login))
		if holder == nil {
			return storage.ErrNotFound
		}
		contributors, err := bucket(tx, contributorBucket)
		if err != nil {
			return err
		}
		value, err := loadContributor(contributors, string(holder))
		if err != nil {
			return err
		}
		record = value.record()
		return nil
	})
	if err != nil {
		return storage.ContributorRecord{}, err
	}
	return record, nil
}

// CreateContributor inserts a new contributor or returns ErrConflict.
func (s *Store) CreateContributor(ctx context.Context, record storage.ContributorRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record, err := normalizeContributor(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		contributors, err := bucket(tx, contributorBucket)
		if err != nil {
			return err
		}
		if contributors.Get([]byte(record.ChatUserID)) != nil {
			return storage.ErrConflict
		}
		return writeContributor(tx, contributors, contributorFromRecord(record), "")
	})
}

// PutContributor upserts a contributor and its linked-account index entry in
// one transaction.
func (s *Store) PutContributor(ctx context.Context, record storage.ContributorRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record, err := normalizeContributor(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		contributors, err := bucket(tx, contributorBucket)
		if err != nil {
			return err
		}
		value := contributorFromRecord(record)
		previousLogin := ""
		existing, err := loadContributor(contributors, record.ChatUserID)
		switch {
		case err == nil:
			value.CreatedAt = existing.CreatedAt
			previousLogin = existing.LinkedAccountLogin
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		return writeContributor(tx, contributors, value, previousLogin)
	})
}

func writeContributor(tx *bbolt.Tx, contributors *bbolt.Bucket, value contributorValue, previousLogin string) error {
	index, err := bucket(tx, linkedAccountBucket)
	if err != nil {
		return err
	}
	if value.LinkedAccountLogin != "" {
		key := loginKey(value.LinkedAccountLogin)
		if holder := index.Get(key); holder != nil && !bytes.Equal(holder, []byte(value.ChatUserID)) {
			return storage.ErrConflict
		}
		if err := index.Put(key, []byte(value.ChatUserID)); err != nil {
			return fmt.Errorf("put linked account index: %w", err)
		}
	}
	if previousLogin != "" && !bytes.Equal(loginKey(previousLogin), loginKey(value.LinkedAccountLogin)) {
		if err := index.Delete(loginKey(previousLogin)); err != nil {
			return fmt.Errorf("delete linked account index: %w", err)
		}
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal contributor: %w", err)
	}
	if err := contributors.Put([]byte(value.ChatUserID), payload); err != nil {
		return fmt.Errorf("put contributor: %w", err)
	}
	return nil
}

func loadContributor(contributors *bbolt.Bucket, chatUserID string) (contributorValue, error) {
	payload := contributors.Get([]byte(chatUserID))
	if payload == nil {
		return contributorValue{}, storage.ErrNotFound
	}
	var value contributorValue
	if err := decode(payload, &value, "contributor"); err != nil {
		return contributorValue{}, err
	}
	return value, nil
}

func normalizeContributor(record storage.ContributorRecord) (storage.ContributorRecord, error) {
	record.ChatUserID = strings.TrimSpace(record.ChatUserID)
	record.LinkedAccountLogin = strings.TrimSpace(record.LinkedAccountLogin)
	record.Milestone = strings.TrimSpace(record.Milestone)
	record.MentorLogin = strings.TrimSpace(record.MentorLogin)
	if record.ChatUserID == "" {
		return storage.ContributorRecord{}, fmt.Errorf("chat user id is required")
	}
	if record.Milestone == "" {
		return storage.ContributorRecord{}, fmt.Errorf("milestone is required")
	}
	if record.TaskNumber < 1 {
		return storage.ContributorRecord{}, fmt.Errorf("task number must be at least 1")
	}
	if record.MentorLogin == "" {
		return storage.ContributorRecord{}, fmt.Errorf("mentor login is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}
