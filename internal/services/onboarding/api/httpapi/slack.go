package httpapi

import (
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/louisbranch/onboarding.space/internal/platform/hmacsig"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	slackintake "github.com/louisbranch/onboarding.space/internal/services/onboarding/integrations/slack"
)

// readSlackBody reads and authenticates a Slack callback body.
func (h *handler) readSlackBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if !allowMethod(w, r, http.MethodPost) {
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, hmacsig.DefaultMaxBodyBytes+1))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(body)) > hmacsig.DefaultMaxBodyBytes {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	if err := slackintake.Verify(r.Header, body, h.slackSecret); err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

func (h *handler) handleSlackInteraction(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readSlackBody(w, r)
	if !ok {
		return
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	events, err := slackintake.ParseInteraction([]byte(form.Get("payload")))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.dispatchSlack(r, events)
	w.WriteHeader(http.StatusOK)
}

func (h *handler) handleSlackEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readSlackBody(w, r)
	if !ok {
		return
	}
	request, err := slackintake.ParseEvents(body, h.welcomeChannel)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Challenge != "" {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, request.Challenge)
		return
	}
	h.dispatchSlack(r, request.Events)
	w.WriteHeader(http.StatusOK)
}

// dispatchSlack handles callback events. Slack only needs an acknowledgement,
// so failures are logged rather than returned.
func (h *handler) dispatchSlack(r *http.Request, events []domain.InboundEvent) {
	if len(events) == 0 {
		return
	}
	handled, err := h.dispatcher.DispatchBatch(r.Context(), events)
	if err != nil {
		log.Printf("onboarding: slack dispatch: %v", err)
		return
	}
	for _, item := range handled {
		if item.Err != nil {
			log.Printf("onboarding: slack event %s (%s) failed: %v", item.Event.ID, item.Event.Type, item.Err)
		}
	}
}
