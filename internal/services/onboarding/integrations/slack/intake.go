package slack

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Verify checks the Slack request signature headers against body.
func Verify(header http.Header, body []byte, signingSecret string) error {
	verifier, err := slack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return fmt.Errorf("slack signature: %w", err)
	}
	if _, err := verifier.Write(body); err != nil {
		return fmt.Errorf("slack signature: %w", err)
	}
	if err := verifier.Ensure(); err != nil {
		return fmt.Errorf("slack signature: %w", err)
	}
	return nil
}

// ParseInteraction turns a block_actions payload into button-action events.
// Buttons outside the onboarding action block are ignored.
func ParseInteraction(payload []byte) ([]domain.InboundEvent, error) {
	var callback slack.InteractionCallback
	if err := json.Unmarshal(payload, &callback); err != nil {
		return nil, fmt.Errorf("decode slack interaction: %w", err)
	}
	if callback.Type != slack.InteractionTypeBlockActions {
		return nil, nil
	}

	var events []domain.InboundEvent
	for i, action := range callback.ActionCallback.BlockActions {
		if action == nil || action.BlockID != actionBlockID {
			continue
		}
		id := ""
		if callback.TriggerID != "" {
			id = fmt.Sprintf("%s:%d", callback.TriggerID, i)
		}
		events = append(events, domain.InboundEvent{
			ID:         id,
			Type:       domain.EventTypeButtonAction,
			ChatUserID: callback.User.ID,
			Payload:    map[string]string{"action": action.ActionID},
		})
	}
	return events, nil
}

// EventsRequest is the decoded form of an Events API delivery.
type EventsRequest struct {
	// Challenge is set for url_verification handshakes.
	Challenge string
	Events    []domain.InboundEvent
}

// ParseEvents decodes an Events API body. Direct messages become link
// confirmations carrying the message text as the proposed login; joins to
// welcomeChannel (any channel when empty) become new-user events.
func ParseEvents(body []byte, welcomeChannel string) (EventsRequest, error) {
	outer, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return EventsRequest{}, fmt.Errorf("decode slack event: %w", err)
	}

	switch outer.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			return EventsRequest{}, fmt.Errorf("decode slack challenge: %w", err)
		}
		return EventsRequest{Challenge: challenge.Challenge}, nil
	case slackevents.CallbackEvent:
	default:
		return EventsRequest{}, nil
	}

	eventID := ""
	if callback, ok := outer.Data.(*slackevents.EventsAPICallbackEvent); ok {
		eventID = callback.EventID
	}

	switch inner := outer.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if inner.ChannelType != "im" || inner.BotID != "" || inner.SubType != "" {
			return EventsRequest{}, nil
		}
		login := strings.TrimSpace(inner.Text)
		if login == "" {
			return EventsRequest{}, nil
		}
		return EventsRequest{Events: []domain.InboundEvent{{
			ID:         eventID,
			Type:       domain.EventTypeConfirmLink,
			ChatUserID: inner.User,
			Payload:    map[string]string{"login": login},
		}}}, nil
	case *slackevents.MemberJoinedChannelEvent:
		if welcomeChannel != "" && inner.Channel != welcomeChannel {
			return EventsRequest{}, nil
		}
		return EventsRequest{Events: []domain.InboundEvent{{
			ID:         eventID,
			Type:       domain.EventTypeNewUser,
			ChatUserID: inner.User,
		}}}, nil
	default:
		return EventsRequest{}, nil
	}
}
