package domain

import (
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/onboarding.space/internal/platform/errors"
)

// Store-boundary sentinels. Adapters map backend errors onto these.
var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("onboarding record not found")
	// ErrConflict indicates a write violated a uniqueness rule.
	ErrConflict = errors.New("onboarding record conflict")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("onboarding store is not configured")
)

// Coded outcomes. Compare with errors.Is; matching is by code so values
// carrying metadata still match these.
var (
	ErrIllegalTransition        = apperrors.New(apperrors.CodeIllegalTransition, "event is not applicable in the current milestone")
	ErrUnknownContributor       = apperrors.New(apperrors.CodeUnknownContributor, "contributor is unknown")
	ErrUnknownAccount           = apperrors.New(apperrors.CodeUnknownAccount, "code host account is unknown")
	ErrConflictingLinkedAccount = apperrors.New(apperrors.CodeConflictingLinkedAccount, "code host account is linked to another contributor")
	ErrUnknownAction            = apperrors.New(apperrors.CodeUnknownAction, "button action is not handled")
	ErrMentorNotAssigned        = apperrors.New(apperrors.CodeMentorNotAssigned, "contributor has no mentor")
	ErrMentorNotEligible        = apperrors.New(apperrors.CodeMentorNotEligible, "login is not in the mentor roster")
	ErrCollaboratorUnavailable  = apperrors.New(apperrors.CodeCollaboratorUnavailable, "collaborator is unavailable")
	ErrStoreWriteFailed         = apperrors.New(apperrors.CodeStoreWriteFailed, "store write failed")
	ErrInvalidArgument          = apperrors.New(apperrors.CodeInvalidArgument, "invalid argument")
)

func invalidArgument(format string, args ...any) error {
	return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf(format, args...))
}

func unavailable(operation string, cause error) error {
	return apperrors.Wrap(apperrors.CodeCollaboratorUnavailable, operation, cause)
}

func storeWriteFailed(operation string, cause error) error {
	return apperrors.Wrap(apperrors.CodeStoreWriteFailed, operation, cause)
}

func illegalTransition(state State, event Event) error {
	return apperrors.WithMetadata(
		apperrors.CodeIllegalTransition,
		fmt.Sprintf("event %s is not applicable in milestone %s", event, state),
		map[string]string{"State": string(state), "Event": string(event)},
	)
}

func unknownAccount(login string) error {
	return apperrors.WithMetadata(
		apperrors.CodeUnknownAccount,
		fmt.Sprintf("code host account %q is unknown", login),
		map[string]string{"Login": login},
	)
}

func conflictingLinkedAccount(login string) error {
	return apperrors.WithMetadata(
		apperrors.CodeConflictingLinkedAccount,
		fmt.Sprintf("code host account %q is linked to another contributor", login),
		map[string]string{"Login": login},
	)
}

// IsRetryable reports whether redelivering the event that produced err may
// succeed.
func IsRetryable(err error) bool {
	return apperrors.CodeOf(err).Retryable()
}
