// Package slack adapts the Slack Web API to the onboarding chat collaborator.
package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/onboarding.space/internal/services/onboarding/domain"
	"github.com/slack-go/slack"
)

// actionBlockID groups onboarding buttons so interaction payloads can be
// recognized at intake.
const actionBlockID = "onboarding_actions"

// Config configures the Slack client.
type Config struct {
	Token string
	// APIURL overrides the Web API base URL; empty uses Slack's.
	APIURL string
}

// Client implements domain.Chat over the Slack Web API.
type Client struct {
	api *slack.Client
}

// New builds a Slack chat client.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	var opts []slack.Option
	if apiURL := strings.TrimSpace(cfg.APIURL); apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &Client{api: slack.New(token, opts...)}, nil
}

// ResolveDisplayName prefers the profile display name over the real name.
func (c *Client) ResolveDisplayName(ctx context.Context, chatUserID string) (string, error) {
	if c == nil || c.api == nil {
		return "", fmt.Errorf("slack client is not configured")
	}
	user, err := c.api.GetUserInfoContext(ctx, chatUserID)
	if err != nil {
		return "", fmt.Errorf("get slack user %s: %w", chatUserID, err)
	}
	if name := strings.TrimSpace(user.Profile.DisplayName); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(user.RealName); name != "" {
		return name, nil
	}
	return user.Name, nil
}

// SendDirectMessage posts text to a user or channel id and returns the
// message timestamp.
func (c *Client) SendDirectMessage(ctx context.Context, recipient, text string) (string, error) {
	return c.post(ctx, recipient, slack.MsgOptionText(text, false))
}

// SendInteractiveMessage posts text with one button per action.
func (c *Client) SendInteractiveMessage(ctx context.Context, recipient string, message domain.InteractiveMessage) (string, error) {
	return c.post(ctx, recipient,
		slack.MsgOptionText(message.Text, false),
		slack.MsgOptionBlocks(interactiveBlocks(message)...),
	)
}

func (c *Client) post(ctx context.Context, recipient string, options ...slack.MsgOption) (string, error) {
	if c == nil || c.api == nil {
		return "", fmt.Errorf("slack client is not configured")
	}
	if strings.TrimSpace(recipient) == "" {
		return "", fmt.Errorf("slack recipient is required")
	}
	_, timestamp, err := c.api.PostMessageContext(ctx, recipient, options...)
	if err != nil {
		return "", fmt.Errorf("post slack message to %s: %w", recipient, err)
	}
	return timestamp, nil
}

func interactiveBlocks(message domain.InteractiveMessage) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, message.Text, false, false), nil, nil),
	}
	if len(message.Actions) == 0 {
		return blocks
	}
	buttons := make([]slack.BlockElement, 0, len(message.Actions))
	for _, action := range message.Actions {
		label := slack.NewTextBlockObject(slack.PlainTextType, action.Label, false, false)
		buttons = append(buttons, slack.NewButtonBlockElement(action.Name, action.Name, label))
	}
	return append(blocks, slack.NewActionBlock(actionBlockID, buttons...))
}

var _ domain.Chat = (*Client)(nil)
