package chat

import "context"

// UserProfile is the display metadata resolved for an acting user.
type UserProfile struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image"`
}

// Client is the chat-platform capability the core consumes: resolve a user's
// display identity, open a DM channel, post a message. Implementations must
// bound their own call timeouts and never retry; a failed call is terminal
// for the event being processed.
type Client interface {
	ResolveUser(ctx context.Context, userID string) (*UserProfile, error)
	OpenDM(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channelID, text string) error
}
