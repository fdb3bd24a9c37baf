package event

// Message is the inbound chat event shape the intake pipeline consumes.
// ID and TS are both the Slack message timestamp, which is unique per channel.
type Message struct {
	ID       string `json:"id"`
	Channel  string `json:"channel"`
	UserID   string `json:"user"`
	Subtype  string `json:"subtype,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
	ThreadTS string `json:"thread_ts,omitempty"`
	TS       string `json:"ts"`
}
