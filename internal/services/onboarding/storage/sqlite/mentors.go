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

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO mentors (login, chat_user_id, updated_at) VALUES (?, ?, ?)
ON CONFLICT(login) DO UPDATE SET
	chat_user_id = excluded.chat_user_id,
	updated_at = excluded.updated_at
`, record.Login, record.ChatUserID, toMillis(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put mentor: %w", err)
	}
	return nil
}

// GetMentor loads one roster entry by login, compared case-insensitively.
func (s *Store) GetMentor(ctx context.Context, login string) (storage.MentorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.MentorRecord{}, err
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return storage.MentorRecord{}, fmt.Errorf("mentor login is required")
	}

	var (
		record    storage.MentorRecord
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT login, chat_user_id, updated_at FROM mentors WHERE login = ?`,
		login,
	).Scan(&record.Login, &record.ChatUserID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.MentorRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.MentorRecord{}, fmt.Errorf("get mentor: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// ListMentors lists roster entries ordered by login.
func (s *Store) ListMentors(ctx context.Context) ([]storage.MentorRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT login, chat_user_id, updated_at FROM mentors ORDER BY login`,
	)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	defer rows.Close()

	var records []storage.MentorRecord
	for rows.Next() {
		var (
			record    storage.MentorRecord
			updatedAt int64
		)
		if err := rows.Scan(&record.Login, &record.ChatUserID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan mentor: %w", err)
		}
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mentors: %w", err)
	}
	return records, nil
}

// DeleteMentor removes one roster entry. Missing entries are not an error.
func (s *Store) DeleteMentor(ctx context.Context, login string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return fmt.Errorf("mentor login is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM mentors WHERE login = ?`, login); err != nil {
		return fmt.Errorf("delete mentor: %w", err)
	}
	return nil
}
