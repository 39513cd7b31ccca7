package domain

import "time"

type Achievement struct {
	ID          int64      `db:"achievement_id" json:"achievementId"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Threshold   int64      `db:"threshold" json:"threshold"`
	UnlockedAt  *time.Time `db:"unlocked_at" json:"unlockedAt"`
}

// AchievementThreshold unlocks achievement ID once a player reaches Wins total wins.
type AchievementThreshold struct {
	ID   int64
	Wins int64
}

// win-count achievements, checked after every finished game
var WinAchievements = []AchievementThreshold{
	{ID: 1, Wins: 1},
	{ID: 2, Wins: 10},
	{ID: 3, Wins: 50},
}
