package streak

import "time"

// UserStreak is one row per Slack user. The stable Slack user ID is the key;
// username and avatar are display attributes refreshed on every qualifying post.
type UserStreak struct {
	UserID       string     `json:"user_id" db:"user_id"`
	Username     string     `json:"username" db:"username"`
	Score        int        `json:"score" db:"score"`
	LastPostDate *time.Time `json:"last_post_date" db:"last_post_date"`
	ProfileImage string     `json:"profile_image" db:"profile_image"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
