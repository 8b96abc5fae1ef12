package entity

type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// PlayerScore - one leaderboard row.
type PlayerScore struct {
	Username string `json:"username"`
	Wins     int64  `json:"wins"`
}
