package domain

import "time"

type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	LineID    string    `db:"line_id" json:"lineId"`
	SessionID string    `db:"session_id" json:"sessionId"`
	UserID    Identity  `db:"user_id" json:"userId"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// MaxChatLength bounds a single chat line; longer lines are cut.
const MaxChatLength = 500
