package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"postStreakAPI/internal/apperror"
)

const apiCallTimeout = 5 * time.Second

// SlackClient implements Client against the Slack Web API.
type SlackClient struct {
	api *slack.Client
}

func NewSlackClient(botToken string) *SlackClient {
	return &SlackClient{api: slack.New(botToken)}
}

func (c *SlackClient) ResolveUser(ctx context.Context, userID string) (*UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	defer cancel()

	info, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: users.info for %s: %v", apperror.ErrUpstreamLookup, userID, err)
	}

	username := info.Profile.DisplayName
	if username == "" {
		username = info.RealName
	}
	if username == "" {
		username = info.Name
	}

	return &UserProfile{
		UserID:       info.ID,
		Username:     username,
		ProfileImage: info.Profile.Image192,
	}, nil
}

func (c *SlackClient) OpenDM(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	defer cancel()

	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", fmt.Errorf("%w: conversations.open for %s: %v", apperror.ErrNotification, userID, err)
	}
	return channel.ID, nil
}

func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, apiCallTimeout)
	defer cancel()

	_, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("%w: chat.postMessage to %s: %v", apperror.ErrNotification, channelID, err)
	}
	return nil
}
