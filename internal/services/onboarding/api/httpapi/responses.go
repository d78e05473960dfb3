package httpapi

import (
	"net/http"
	"time"

	apperrors "github.com/louisbranch/onboarding.space/internal/platform/errors"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

type inboundEventRequest struct {
	ID         string            `json:"id,omitempty"`
	Type       string            `json:"type"`
	ChatUserID string            `json:"chatUserId"`
	Payload    map[string]string `json:"payload,omitempty"`
}

func (r inboundEventRequest) toDomain() domain.InboundEvent {
	return domain.InboundEvent{
		ID:         r.ID,
		Type:       r.Type,
		ChatUserID: r.ChatUserID,
		Payload:    r.Payload,
	}
}

type batchRequest struct {
	Events []inboundEventRequest `json:"events"`
}

type errorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error *errorBody `json:"error"`
}

type contributorResponse struct {
	ChatUserID         string    `json:"chatUserId"`
	LinkedAccountLogin string    `json:"linkedAccountLogin,omitempty"`
	Milestone          string    `json:"milestone"`
	TaskNumber         int       `json:"taskNumber"`
	MentorLogin        string    `json:"mentorLogin"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func contributorFromDomain(c domain.Contributor) *contributorResponse {
	if c.ChatUserID == "" {
		return nil
	}
	return &contributorResponse{
		ChatUserID:         c.ChatUserID,
		LinkedAccountLogin: c.LinkedAccountLogin,
		Milestone:          string(c.Milestone),
		TaskNumber:         c.TaskNumber,
		MentorLogin:        c.MentorLogin,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

type eventResponse struct {
	ID          string               `json:"id"`
	Status      int                  `json:"status,omitempty"`
	Outcome     string               `json:"outcome,omitempty"`
	Contributor *contributorResponse `json:"contributor,omitempty"`
	Reason      *errorBody           `json:"reason,omitempty"`
	NotifyError string               `json:"notifyError,omitempty"`
	Error       *errorBody           `json:"error,omitempty"`
}

// eventResponseFrom renders one handled event; status is the HTTP status
// the event alone would produce.
func eventResponseFrom(event domain.InboundEvent, result domain.Result, err error) (eventResponse, int) {
	response := eventResponse{ID: event.ID}
	if err != nil {
		response.Error = errorFromErr(err)
		return response, apperrors.CodeOf(err).HTTPStatus()
	}
	response.Outcome = string(result.Outcome)
	response.Contributor = contributorFromDomain(result.Contributor)
	if result.Reason != nil {
		response.Reason = errorFromErr(result.Reason)
	}
	if result.NotifyErr != nil {
		response.NotifyError = result.NotifyErr.Error()
	}
	return response, http.StatusOK
}

type batchResponse struct {
	Results []eventResponse `json:"results"`
}

type authorTasksResponse struct {
	Login  string   `json:"login"`
	Titles []string `json:"titles"`
}

type completedTasksResponse struct {
	Authors []authorTasksResponse `json:"authors"`
}
