package service

import (
	"context"
	"errors"

	"tictactoe_server/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	historyLimit     = 20
	historyChatLimit = 200
)

type SessionReader interface {
	GetByID(ctx context.Context, sessionID string) (*domain.GameSession, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]*domain.GameSession, error)
}

type ChatReader interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.ChatMessage, error)
}

// SessionDetail is a stored session with its chat transcript.
type SessionDetail struct {
	Session *domain.GameSession   `json:"session"`
	Chat    []*domain.ChatMessage `json:"chat"`
}

// HistoryService reads finished and running sessions back from storage.
type HistoryService struct {
	sessions SessionReader
	chat     ChatReader
}

func NewHistoryService(sessions SessionReader, chat ChatReader) *HistoryService {
	return &HistoryService{sessions: sessions, chat: chat}
}

// Recent lists the latest sessions the user played, newest first.
func (s *HistoryService) Recent(ctx context.Context, userID int64) ([]*domain.GameSession, error) {
	games, err := s.sessions.ListForUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []*domain.GameSession{}
	}
	return games, nil
}

// Session returns one session and its chat. Only participants may read it;
// anyone else gets ErrSessionNotFound.
func (s *HistoryService) Session(ctx context.Context, userID int64, sessionID string) (*SessionDetail, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || (sess.Player1ID != userID && sess.Player2ID != userID) {
		return nil, ErrSessionNotFound
	}

	chat, err := s.chat.ListBySession(ctx, sessionID, historyChatLimit)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		chat = []*domain.ChatMessage{}
	}
	return &SessionDetail{Session: sess, Chat: chat}, nil
}
