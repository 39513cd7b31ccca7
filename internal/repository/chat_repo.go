package repository

import (
	"context"
	"fmt"

	"tictactoe_server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	userID, ok := m.UserID.UserID()
	if !ok {
		return fmt.Errorf("chat author %q is not a user id", m.UserID)
	}
	// a line already written by an earlier attempt is left alone
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages (line_id, session_id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (line_id) DO NOTHING
	`, m.LineID, m.SessionID, userID, m.Message, m.CreatedAt)
	return err
}

// chat history of a session, oldest first
func (r *ChatRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, line_id, session_id, user_id, message, created_at
		FROM (
			SELECT id, COALESCE(line_id, '') AS line_id, session_id, user_id, message, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) latest
		ORDER BY created_at, id
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var userID int64
		if err := rows.Scan(&m.ID, &m.LineID, &m.SessionID, &userID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.UserID = domain.IdentityFromUserID(userID)
		out = append(out, &m)
	}
	return out, rows.Err()
}
