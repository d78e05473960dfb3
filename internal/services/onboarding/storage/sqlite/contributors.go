package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
)

const contributorColumns = `
	chat_user_id,
	linked_account_login,
	milestone,
	task_number,
	mentor_login,
	created_at,
	updated_at`

// GetContributor loads one contributor by chat identity.
func (s *Store) GetContributor(ctx context.Context, chatUserID string) (storage.ContributorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContributorRecord{}, err
	}
	chatUserID = strings.TrimSpace(chatUserID)
	if chatUserID == "" {
		return storage.ContributorRecord{}, fmt.Errorf("chat user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT`+contributorColumns+` FROM contributors WHERE chat_user_id = ?`,
		chatUserID,
	)
	record, err := scanContributor(row)
	if err != nil {
		return storage.ContributorRecord{}, fmt.Errorf("get contributor: %w", err)
	}
	return record, nil
}

// GetContributorByLinkedAccount loads the contributor holding login,
// compared case-insensitively.
func (s *Store) GetContributorByLinkedAccount(ctx context.Context, login string) (storage.ContributorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ContributorRecord{}, err
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return storage.ContributorRecord{}, fmt.Errorf("linked account login is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT`+contributorColumns+` FROM contributors WHERE linked_account_login = ? COLLATE NOCASE`,
		login,
	)
	record, err := scanContributor(row)
	if err != nil {
		return storage.ContributorRecord{}, fmt.Errorf("get contributor by linked account: %w", err)
	}
	return record, nil
}

// CreateContributor inserts a new contributor. It returns ErrConflict when the
// chat identity already has a record.
func (s *Store) CreateContributor(ctx context.Context, record storage.ContributorRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record, err := normalizeContributor(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO contributors (`+contributorColumns+`
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		record.ChatUserID,
		nullString(record.LinkedAccountLogin),
		record.Milestone,
		record.TaskNumber,
		record.MentorLogin,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("create contributor: %w", err)
	}
	return nil
}

// PutContributor upserts a contributor keyed by chat identity. It returns
// ErrConflict when the linked login is held by another contributor.
func (s *Store) PutContributor(ctx context.Context, record storage.ContributorRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record, err := normalizeContributor(record)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO contributors (`+contributorColumns+`
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chat_user_id) DO UPDATE SET
	linked_account_login = excluded.linked_account_login,
	milestone = excluded.milestone,
	task_number = excluded.task_number,
	mentor_login = excluded.mentor_login,
	updated_at = excluded.updated_at
`,
		record.ChatUserID,
		nullString(record.LinkedAccountLogin),
		record.Milestone,
		record.TaskNumber,
		record.MentorLogin,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put contributor: %w", err)
	}
	return nil
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
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	return record, nil
}

func scanContributor(row *sql.Row) (storage.ContributorRecord, error) {
	var (
		record    storage.ContributorRecord
		linked    sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&record.ChatUserID,
		&linked,
		&record.Milestone,
		&record.TaskNumber,
		&record.MentorLogin,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ContributorRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ContributorRecord{}, err
	}
	record.LinkedAccountLogin = linked.String
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
