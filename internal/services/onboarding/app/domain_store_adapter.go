package app

import (
	"context"
	"errors"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
)

type domainStoreAdapter struct {
	store storage.ContributorStore
}

func newDomainStoreAdapter(store storage.ContributorStore) *domainStoreAdapter {
	return &domainStoreAdapter{store: store}
}

func (a *domainStoreAdapter) GetContributor(ctx context.Context, chatUserID string) (domain.Contributor, error) {
	if a == nil || a.store == nil {
		return domain.Contributor{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetContributor(ctx, chatUserID)
	if err != nil {
		return domain.Contributor{}, mapStorageError(err)
	}
	return toDomainContributor(record), nil
}

func (a *domainStoreAdapter) GetContributorByLinkedAccount(ctx context.Context, login string) (domain.Contributor, error) {
	if a == nil || a.store == nil {
		return domain.Contributor{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetContributorByLinkedAccount(ctx, login)
	if err != nil {
		return domain.Contributor{}, mapStorageError(err)
	}
	return toDomainContributor(record), nil
}

func (a *domainStoreAdapter) CreateContributor(ctx context.Context, contributor domain.Contributor) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.CreateContributor(ctx, toStorageContributor(contributor)))
}

func (a *domainStoreAdapter) PutContributor(ctx context.Context, contributor domain.Contributor) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.PutContributor(ctx, toStorageContributor(contributor)))
}

// mentorDirectory serves roster lookups from the mentor store.
type mentorDirectory struct {
	store storage.MentorStore
}

func (d mentorDirectory) GetMentor(ctx context.Context, login string) (domain.Mentor, error) {
	if d.store == nil {
		return domain.Mentor{}, domain.ErrStoreNotConfigured
	}
	record, err := d.store.GetMentor(ctx, login)
	if err != nil {
		return domain.Mentor{}, mapStorageError(err)
	}
	return domain.Mentor{Login: record.Login, ChatUserID: record.ChatUserID}, nil
}

func toStorageContributor(contributor domain.Contributor) storage.ContributorRecord {
	return storage.ContributorRecord{
		ChatUserID:         contributor.ChatUserID,
		LinkedAccountLogin: contributor.LinkedAccountLogin,
		Milestone:          string(contributor.Milestone),
		TaskNumber:         contributor.TaskNumber,
		MentorLogin:        contributor.MentorLogin,
		CreatedAt:          contributor.CreatedAt,
		UpdatedAt:          contributor.UpdatedAt,
	}
}

func toDomainContributor(record storage.ContributorRecord) domain.Contributor {
	return domain.Contributor{
		ChatUserID:         record.ChatUserID,
		LinkedAccountLogin: record.LinkedAccountLogin,
		Milestone:          domain.State(record.Milestone),
		TaskNumber:         record.TaskNumber,
		MentorLogin:        record.MentorLogin,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return domain.ErrConflict
	default:
		return err
	}
}
