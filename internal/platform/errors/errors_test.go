package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeUnknownAccount, "unknown account")
	err := WithMetadata(CodeUnknownAccount, "account octocat missing", map[string]string{"Login": "octocat"})

	if !stderrors.Is(err, sentinel) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeIllegalTransition, "other")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStoreWriteFailed, "save contributor", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if got, want := err.Error(), "save contributor: disk full"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Fatalf("CodeOf(nil) = %q, want empty", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
	wrapped := fmt.Errorf("handle: %w", New(CodeConflictingLinkedAccount, "taken"))
	if got := CodeOf(wrapped); got != CodeConflictingLinkedAccount {
		t.Fatalf("CodeOf(wrapped) = %q, want %q", got, CodeConflictingLinkedAccount)
	}
}

func TestMetadataOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", WithMetadata(CodeUnknownAccount, "missing", map[string]string{"Login": "octocat"}))
	if got := MetadataOf(err)["Login"]; got != "octocat" {
		t.Fatalf("MetadataOf()[Login] = %q, want octocat", got)
	}
	if MetadataOf(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestCodeHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidArgument:          http.StatusBadRequest,
		CodeUnauthenticated:          http.StatusUnauthorized,
		CodeUnknownContributor:       http.StatusNotFound,
		CodeIllegalTransition:        http.StatusUnprocessableEntity,
		CodeConflictingLinkedAccount: http.StatusConflict,
		CodeCollaboratorUnavailable:  http.StatusServiceUnavailable,
		CodeStoreWriteFailed:         http.StatusInternalServerError,
		CodeUnknown:                  http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", code, got, want)
		}
	}
}

func TestCodeRetryable(t *testing.T) {
	if !CodeCollaboratorUnavailable.Retryable() {
		t.Fatal("expected collaborator outage to be retryable")
	}
	if !CodeStoreWriteFailed.Retryable() {
		t.Fatal("expected store write failure to be retryable")
	}
	if CodeIllegalTransition.Retryable() {
		t.Fatal("expected illegal transition not to be retryable")
	}
}
