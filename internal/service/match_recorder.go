package service

import (
	"context"
	"errors"
	"fmt"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/logger"
	"tictactoe_server/internal/repository"

	"github.com/cenkalti/backoff/v5"
)

type SessionWriter interface {
	Create(ctx context.Context, sessionID string, player1, player2 int64) error
	Finish(ctx context.Context, f repository.SessionFinish) error
}

type ChatWriter interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
}

// MatchRecorder writes the session lifecycle to Postgres: creation, the final
// result with player tallies, achievements and chat lines.
type MatchRecorder struct {
	sessions     SessionWriter
	chat         ChatWriter
	achievements *AchievementService
}

func NewMatchRecorder(sessions SessionWriter, chat ChatWriter, achievements *AchievementService) *MatchRecorder {
	return &MatchRecorder{sessions: sessions, chat: chat, achievements: achievements}
}

// userIDOf fails permanently: no retry turns a guest identity into a user id.
func userIDOf(id domain.Identity) (int64, error) {
	uid, ok := id.UserID()
	if !ok {
		return 0, backoff.Permanent(fmt.Errorf("identity %q is not a user id", id))
	}
	return uid, nil
}

func (r *MatchRecorder) RecordSessionCreated(ctx context.Context, sessionID string, first, second domain.Identity) error {
	p1, err := userIDOf(first)
	if err != nil {
		return err
	}
	p2, err := userIDOf(second)
	if err != nil {
		return err
	}
	return r.sessions.Create(ctx, sessionID, p1, p2)
}

func (r *MatchRecorder) RecordSessionResult(ctx context.Context, result domain.SessionResult) error {
	finish, err := finishFor(result)
	if err != nil {
		return err
	}
	if err := r.sessions.Finish(ctx, finish); err != nil {
		return err
	}

	// achievement failures do not fail the result, which is already committed
	var errs []error
	for _, uid := range []int64{finish.Player1ID, finish.Player2ID} {
		if _, err := r.achievements.Evaluate(ctx, uid); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.WithContext(ctx).Error("achievement evaluation failed", "session_id", result.SessionID, "error", err)
	}
	return nil
}

// RecordChatLine stores a chat line. The line id makes a retried write of
// the same line a no-op.
func (r *MatchRecorder) RecordChatLine(ctx context.Context, line domain.ChatMessage) error {
	if line.LineID == "" {
		return backoff.Permanent(fmt.Errorf("chat line in %s has no line id", line.SessionID))
	}
	if _, err := userIDOf(line.UserID); err != nil {
		return err
	}
	return r.chat.Create(ctx, &line)
}

// finishFor maps a session result onto the status and tallies it writes.
func finishFor(result domain.SessionResult) (repository.SessionFinish, error) {
	f := repository.SessionFinish{
		SessionID:   result.SessionID,
		CompletedAt: result.EndedAt,
	}
	var err error
	if f.Player1ID, err = userIDOf(result.Players[0]); err != nil {
		return f, err
	}
	if f.Player2ID, err = userIDOf(result.Players[1]); err != nil {
		return f, err
	}

	switch result.Outcome {
	case domain.OutcomeWin:
		f.Status = domain.SessionStatusCompleted
	case domain.OutcomeDraw:
		f.Status = domain.SessionStatusDraw
		f.Tallies = []repository.TallyUpdate{
			{UserID: f.Player1ID, Field: domain.TallyDraws, Coins: domain.DrawReward},
			{UserID: f.Player2ID, Field: domain.TallyDraws, Coins: domain.DrawReward},
		}
		return f, nil
	case domain.OutcomeAbandoned:
		f.Status = domain.SessionStatusAbandoned
	default:
		return f, backoff.Permanent(fmt.Errorf("unknown outcome %q", result.Outcome))
	}

	if !result.HasWinner() {
		return f, nil
	}
	winner, err := userIDOf(result.Winner)
	if err != nil {
		return f, err
	}
	loser, err := userIDOf(result.Loser)
	if err != nil {
		return f, err
	}
	f.WinnerID = &winner
	f.Tallies = []repository.TallyUpdate{
		{UserID: winner, Field: domain.TallyWins, Coins: domain.WinReward},
		{UserID: loser, Field: domain.TallyLosses},
	}
	return f, nil
}
