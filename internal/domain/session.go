package domain

import "time"

// durable status of a game_sessions row
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusDraw      SessionStatus = "draw"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

type GameSession struct {
	SessionID   string        `db:"session_id" json:"sessionId"`
	Player1ID   int64         `db:"player1_id" json:"player1Id"`
	Player2ID   int64         `db:"player2_id" json:"player2Id"`
	Status      SessionStatus `db:"status" json:"status"`
	WinnerID    *int64        `db:"winner_id" json:"winnerId,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time    `db:"completed_at" json:"completedAt,omitempty"`
}

// Outcome of a finished session.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeDraw      Outcome = "draw"
	OutcomeAbandoned Outcome = "abandoned"
)

// SessionResult is what the core hands to durable storage when a session ends.
// Winner and Loser are empty for draws and for sessions abandoned by both players.
type SessionResult struct {
	SessionID string
	Outcome   Outcome
	Players   [2]Identity
	Winner    Identity
	Loser     Identity
	EndedAt   time.Time
}

// HasWinner reports whether the result credits a win to someone.
func (r SessionResult) HasWinner() bool {
	return r.Winner != ""
}
