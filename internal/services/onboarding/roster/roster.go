// Package roster loads the mentor roster file and mirrors it into storage.
//
// The file is YAML:
//
//	mentors:
//	  - login: octocat
//	    chat_user_id: U012AB3CD
package roster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
	"gopkg.in/yaml.v3"
)

// Entry is one mentor declared in the roster file.
type Entry struct {
	Login      string `yaml:"login"`
	ChatUserID string `yaml:"chat_user_id"`
}

type document struct {
	Mentors []Entry `yaml:"mentors"`
}

// Load reads and validates the roster at path.
func Load(path string) ([]Entry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("roster path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

// Parse decodes roster YAML. Logins are trimmed and must be unique,
// compared case-insensitively; unknown fields are rejected.
func Parse(data []byte) ([]Entry, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Mentors))
	entries := make([]Entry, 0, len(doc.Mentors))
	for i, entry := range doc.Mentors {
		entry.Login = strings.TrimPrefix(strings.TrimSpace(entry.Login), "@")
		entry.ChatUserID = strings.TrimSpace(entry.ChatUserID)
		if entry.Login == "" {
			return nil, fmt.Errorf("roster entry %d: login is required", i)
		}
		key := strings.ToLower(entry.Login)
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("roster entry %d: duplicate login %q", i, entry.Login)
		}
		seen[key] = struct{}{}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SyncResult counts the roster changes applied to storage.
type SyncResult struct {
	Upserted int
	Removed  int
}

// Sync makes the stored roster match entries: every entry is upserted and
// stored mentors missing from entries are removed.
func Sync(ctx context.Context, store storage.MentorStore, entries []Entry, now time.Time) (SyncResult, error) {
	if store == nil {
		return SyncResult{}, fmt.Errorf("mentor store is required")
	}

	wanted := make(map[string]struct{}, len(entries))
	var result SyncResult
	for _, entry := range entries {
		wanted[strings.ToLower(entry.Login)] = struct{}{}
		if err := store.PutMentor(ctx, storage.MentorRecord{
			Login:      entry.Login,
			ChatUserID: entry.ChatUserID,
			UpdatedAt:  now.UTC(),
		}); err != nil {
			return result, fmt.Errorf("put mentor %s: %w", entry.Login, err)
		}
		result.Upserted++
	}

	existing, err := store.ListMentors(ctx)
	if err != nil {
		return result, fmt.Errorf("list mentors: %w", err)
	}
	for _, record := range existing {
		if _, ok := wanted[strings.ToLower(record.Login)]; ok {
			continue
		}
		if err := store.DeleteMentor(ctx, record.Login); err != nil {
			return result, fmt.Errorf("delete mentor %s: %w", record.Login, err)
		}
		result.Removed++
	}
	return result, nil
}

// LoadAndSync reads path and mirrors it into store.
func LoadAndSync(ctx context.Context, store storage.MentorStore, path string) (SyncResult, error) {
	entries, err := Load(path)
	if err != nil {
		return SyncResult{}, err
	}
	return Sync(ctx, store, entries, time.Now())
}
