package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AssignMentor binds mentorLogin to the contributor linked to traineeLogin.
// It is a no-op unless the mentor is on the roster, and the binding is
// written at most once.
func (s *Service) AssignMentor(ctx context.Context, mentorLogin, traineeLogin string) (Result, error) {
	mentorLogin = normalizeLogin(mentorLogin)
	traineeLogin = normalizeLogin(traineeLogin)
	if mentorLogin == "" || traineeLogin == "" {
		return Result{}, invalidArgument("mentor and trainee logins are required")
	}
	if s.mentors == nil {
		return Result{Outcome: OutcomeNotApplicable, Reason: ErrMentorNotEligible}, nil
	}

	mentor, err := s.mentors.GetMentor(ctx, mentorLogin)
	if errors.Is(err, ErrNotFound) {
		return Result{Outcome: OutcomeNotApplicable, Reason: ErrMentorNotEligible}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load mentor: %w", err)
	}

	if strings.EqualFold(mentor.Login, traineeLogin) {
		return Result{Outcome: OutcomeNotApplicable, Reason: ErrMentorNotEligible}, nil
	}

	trainee, err := s.store.GetContributorByLinkedAccount(ctx, traineeLogin)
	if errors.Is(err, ErrNotFound) {
		return Result{Outcome: OutcomeRejected, Reason: unknownAccount(traineeLogin)}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("load trainee: %w", err)
	}

	unlock := s.locks.Lock(trainee.ChatUserID)
	defer unlock()
	current, err := s.store.GetContributor(ctx, trainee.ChatUserID)
	if err != nil {
		return Result{}, fmt.Errorf("reload trainee: %w", err)
	}
	if current.HasMentor() {
		return Result{Outcome: OutcomeUnchanged, Contributor: current}, nil
	}
	current.MentorLogin = mentor.Login
	current.UpdatedAt = s.now()
	if err := s.store.PutContributor(ctx, current); err != nil {
		return Result{}, storeWriteFailed("save mentor binding", err)
	}
	return Result{Outcome: OutcomeApplied, Contributor: current}, nil
}

// HasMentor reports whether the contributor linked to traineeLogin has a
// mentor. Unknown logins have none.
func (s *Service) HasMentor(ctx context.Context, traineeLogin string) (bool, error) {
	trainee, err := s.ResolveStateByLinkedAccount(ctx, traineeLogin)
	if errors.Is(err, ErrUnknownAccount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return trainee.HasMentor(), nil
}

// NotifyMentorOfPullRequest sends one message naming the mentor, the trainee
// and the pull request. It fails when the trainee is unknown or has no
// mentor.
func (s *Service) NotifyMentorOfPullRequest(ctx context.Context, traineeLogin, pullRequestURL string) error {
	trainee, err := s.ResolveStateByLinkedAccount(ctx, traineeLogin)
	if err != nil {
		return err
	}
	if !trainee.HasMentor() {
		return ErrMentorNotAssigned
	}

	mentor := Mentor{Login: trainee.MentorLogin}
	if s.mentors != nil {
		entry, err := s.mentors.GetMentor(ctx, trainee.MentorLogin)
		switch {
		case err == nil:
			mentor = entry
		case !errors.Is(err, ErrNotFound):
			return fmt.Errorf("load mentor: %w", err)
		}
	}

	recipient := s.mentorChannel
	if recipient == "" {
		recipient = mentor.ChatUserID
	}
	if recipient == "" {
		return fmt.Errorf("mentor %s has no chat identity: %w", mentor.Login, ErrMentorNotEligible)
	}
	return s.sendDirect(ctx, recipient, s.copy.MentorPullRequest(mentor, trainee.LinkedAccountLogin, pullRequestURL))
}
