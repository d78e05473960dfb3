package httpapi

import (
	"log"
	"net/http"

	apperrors "github.com/louisbranch/onboarding.space/internal/platform/errors"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
)

func (h *handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var request inboundEventRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, err)
		return
	}

	event, result, err := h.dispatcher.Dispatch(r.Context(), request.toDomain())
	if err != nil {
		log.Printf("onboarding: event %s (%s) failed: %v", event.ID, event.Type, err)
	}
	response, status := eventResponseFrom(event, result, err)
	writeJSON(w, status, response)
}

func (h *handler) handleEventBatch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var request batchRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, err)
		return
	}
	if len(request.Events) == 0 {
		writeError(w, apperrors.New(apperrors.CodeInvalidArgument, "batch has no events"))
		return
	}

	events := make([]domain.InboundEvent, 0, len(request.Events))
	for _, event := range request.Events {
		events = append(events, event.toDomain())
	}
	handled, err := h.dispatcher.DispatchBatch(r.Context(), events)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err))
		return
	}

	response := batchResponse{Results: make([]eventResponse, 0, len(handled))}
	for _, item := range handled {
		if item.Err != nil {
			log.Printf("onboarding: event %s (%s) failed: %v", item.Event.ID, item.Event.Type, item.Err)
		}
		result, status := eventResponseFrom(item.Event, item.Result, item.Err)
		result.Status = status
		response.Results = append(response.Results, result)
	}
	writeJSON(w, http.StatusOK, response)
}
