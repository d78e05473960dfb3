// Package errors provides coded errors shared by the onboarding service and
// its transports.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Workflow errors
	CodeIllegalTransition  Code = "ILLEGAL_TRANSITION"
	CodeUnknownContributor Code = "UNKNOWN_CONTRIBUTOR"
	CodeUnknownAction      Code = "UNKNOWN_ACTION"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"

	// Account linking errors
	CodeUnknownAccount           Code = "UNKNOWN_ACCOUNT"
	CodeConflictingLinkedAccount Code = "CONFLICTING_LINKED_ACCOUNT"

	// Mentor errors
	CodeMentorNotAssigned Code = "MENTOR_NOT_ASSIGNED"
	CodeMentorNotEligible Code = "MENTOR_NOT_ELIGIBLE"

	// Infrastructure errors
	CodeCollaboratorUnavailable Code = "COLLABORATOR_UNAVAILABLE"
	CodeStoreWriteFailed        Code = "STORE_WRITE_FAILED"
	CodeUnauthenticated         Code = "UNAUTHENTICATED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeUnknownAction:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnknownContributor:
		return http.StatusNotFound
	case CodeIllegalTransition, CodeUnknownAccount, CodeMentorNotAssigned, CodeMentorNotEligible:
		return http.StatusUnprocessableEntity
	case CodeConflictingLinkedAccount:
		return http.StatusConflict
	case CodeCollaboratorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the same event may succeed when delivered again.
func (c Code) Retryable() bool {
	switch c {
	case CodeCollaboratorUnavailable, CodeStoreWriteFailed:
		return true
	default:
		return false
	}
}
