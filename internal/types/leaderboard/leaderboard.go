package leaderboard

type Entry struct {
	Username       string `json:"username" db:"username"`
	Points         int    `json:"points" db:"points"`
	ProfilePicture string `json:"profile_picture" db:"profile_picture"`
	Rank           int    `json:"rank"`
}

type Leaderboard struct {
	Entries    []*Entry `json:"entries"`
	TotalUsers int      `json:"total_users"`
}
