package domain

import "time"

type User struct {
	ID           int64      `db:"user_id" json:"userId"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password" json:"-"`
	Coins        int64      `db:"coins" json:"coins"`
	Wins         int64      `db:"wins" json:"wins"`
	Losses       int64      `db:"losses" json:"losses"`
	Draws        int64      `db:"draws" json:"draws"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
}

// one row of the leaderboard
type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
	Score    int64  `json:"score"`
}

// tally columns touched by finished games
type TallyField string

const (
	TallyWins   TallyField = "wins"
	TallyLosses TallyField = "losses"
	TallyDraws  TallyField = "draws"
)

// starting balance and per-game coin rewards
const (
	StartingCoins = 1000
	WinReward     = 50
	DrawReward    = 10
)
