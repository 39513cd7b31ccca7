package repository

import (
	"context"
	"errors"
	"time"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameSessionRepository struct {
	db *pgxpool.Pool
}

func NewGameSessionRepository(db *pgxpool.Pool) *GameSessionRepository {
	return &GameSessionRepository{db: db}
}

// SessionFinish is everything written when a session ends: its final status
// and the tallies of both players, applied in one transaction.
type SessionFinish struct {
	SessionID   string
	Player1ID   int64
	Player2ID   int64
	Status      domain.SessionStatus
	WinnerID    *int64
	CompletedAt time.Time
	Tallies     []TallyUpdate
}

func (r *GameSessionRepository) Create(ctx context.Context, sessionID string, player1, player2 int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO game_sessions (session_id, player1_id, player2_id, status)
		VALUES ($1, $2, $3, $4)
	`, sessionID, player1, player2, domain.SessionStatusActive)
	return err
}

func (r *GameSessionRepository) Finish(ctx context.Context, f SessionFinish) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// the upsert covers a creation write that never landed
	tag, err := tx.Exec(ctx, `
		INSERT INTO game_sessions (session_id, player1_id, player2_id, status, winner_id, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE
		SET status = EXCLUDED.status, winner_id = EXCLUDED.winner_id, completed_at = EXCLUDED.completed_at
		WHERE game_sessions.status = $7
	`, f.SessionID, f.Player1ID, f.Player2ID, f.Status, f.WinnerID, f.CompletedAt, domain.SessionStatusActive)
	if err != nil {
		return err
	}
	// finished by an earlier attempt whose commit was acknowledged late
	if tag.RowsAffected() == 0 {
		return nil
	}

	for _, t := range f.Tallies {
		if err := addTally(ctx, tx, t); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// returns nil, nil when the session does not exist
func (r *GameSessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	var s domain.GameSession
	err := r.db.QueryRow(ctx, `
		SELECT session_id, player1_id, player2_id, status, winner_id, created_at, completed_at
		FROM game_sessions
		WHERE session_id = $1
	`, sessionID).Scan(&s.SessionID, &s.Player1ID, &s.Player2ID, &s.Status, &s.WinnerID, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// latest sessions a user took part in
func (r *GameSessionRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]*domain.GameSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, player1_id, player2_id, status, winner_id, created_at, completed_at
		FROM game_sessions
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.GameSession
	for rows.Next() {
		var s domain.GameSession
		if err := rows.Scan(&s.SessionID, &s.Player1ID, &s.Player2ID, &s.Status, &s.WinnerID, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
