package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/game"

	"github.com/redis/go-redis/v9"
)

type redisSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// SessionArchive keeps a final snapshot of evicted sessions in Redis.
type SessionArchive struct {
	rdb redisSetter
	ttl time.Duration
}

func NewSessionArchive(rdb redisSetter, ttl time.Duration) *SessionArchive {
	return &SessionArchive{rdb: rdb, ttl: ttl}
}

type sessionSnapshot struct {
	SessionID string             `json:"sessionId"`
	Players   [2]domain.Identity `json:"players"`
	Board     game.Board         `json:"board"`
	Status    game.Status        `json:"status"`
	Winner    *domain.Identity   `json:"winnerId"`
	Moves     int                `json:"moves"`
	CreatedAt time.Time          `json:"createdAt"`
	EndedAt   time.Time          `json:"endedAt"`
}

func archiveKey(sessionID string) string {
	return fmt.Sprintf("session:%s:final", sessionID)
}

func (a *SessionArchive) Save(ctx context.Context, sess game.Session) error {
	snap := sessionSnapshot{
		SessionID: sess.ID,
		Players:   sess.Players,
		Board:     sess.Board,
		Status:    sess.Status,
		Moves:     sess.Moves,
		CreatedAt: sess.CreatedAt,
		EndedAt:   sess.EndedAt,
	}
	if sess.Winner != "" {
		winner := sess.Winner
		snap.Winner = &winner
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return a.rdb.Set(ctx, archiveKey(sess.ID), data, a.ttl).Err()
}
