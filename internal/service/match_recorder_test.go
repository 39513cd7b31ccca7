package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tictactoe_server/internal/domain"
	"tictactoe_server/internal/repository"

	"github.com/cenkalti/backoff/v5"
)

type fakeSessions struct {
	created  map[string][2]int64
	finished []repository.SessionFinish
}

func (f *fakeSessions) Create(_ context.Context, sessionID string, p1, p2 int64) error {
	if f.created == nil {
		f.created = map[string][2]int64{}
	}
	f.created[sessionID] = [2]int64{p1, p2}
	return nil
}

func (f *fakeSessions) Finish(_ context.Context, fin repository.SessionFinish) error {
	f.finished = append(f.finished, fin)
	return nil
}

type fakeChat struct{ lines []domain.ChatMessage }

func (f *fakeChat) Create(_ context.Context, m *domain.ChatMessage) error {
	f.lines = append(f.lines, *m)
	return nil
}

func newTestRecorder() (*MatchRecorder, *fakeSessions, *fakeChat, *fakeAchievements) {
	sessions, chat, ach := &fakeSessions{}, &fakeChat{}, newFakeAchievements()
	return NewMatchRecorder(sessions, chat, NewAchievementService(ach)), sessions, chat, ach
}

func TestRecordWin(t *testing.T) {
	r, sessions, _, ach := newTestRecorder()
	ctx := context.Background()
	ended := time.Unix(1_700_000_000, 0)

	if err := r.RecordSessionCreated(ctx, "session_a", "1", "2"); err != nil {
		t.Fatal(err)
	}
	if sessions.created["session_a"] != [2]int64{1, 2} {
		t.Fatalf("unexpected creation %v", sessions.created)
	}

	ach.wins[1] = 1
	err := r.RecordSessionResult(ctx, domain.SessionResult{
		SessionID: "session_a",
		Outcome:   domain.OutcomeWin,
		Players:   [2]domain.Identity{"1", "2"},
		Winner:    "1",
		Loser:     "2",
		EndedAt:   ended,
	})
	if err != nil {
		t.Fatal(err)
	}

	f := sessions.finished[0]
	if f.Status != domain.SessionStatusCompleted || f.WinnerID == nil || *f.WinnerID != 1 || !f.CompletedAt.Equal(ended) {
		t.Fatalf("unexpected finish %+v", f)
	}
	want := []repository.TallyUpdate{
		{UserID: 1, Field: domain.TallyWins, Coins: domain.WinReward},
		{UserID: 2, Field: domain.TallyLosses},
	}
	if len(f.Tallies) != 2 || f.Tallies[0] != want[0] || f.Tallies[1] != want[1] {
		t.Fatalf("unexpected tallies %+v", f.Tallies)
	}
	if !ach.unlocked[[2]int64{1, 1}] {
		t.Fatal("first win achievement not unlocked")
	}
}

func TestRecordDraw(t *testing.T) {
	r, sessions, _, _ := newTestRecorder()
	err := r.RecordSessionResult(context.Background(), domain.SessionResult{
		SessionID: "session_d",
		Outcome:   domain.OutcomeDraw,
		Players:   [2]domain.Identity{"4", "5"},
	})
	if err != nil {
		t.Fatal(err)
	}

	f := sessions.finished[0]
	if f.Status != domain.SessionStatusDraw || f.WinnerID != nil || len(f.Tallies) != 2 {
		t.Fatalf("unexpected finish %+v", f)
	}
	for _, tally := range f.Tallies {
		if tally.Field != domain.TallyDraws || tally.Coins != domain.DrawReward {
			t.Fatalf("unexpected tally %+v", tally)
		}
	}
}

func TestRecordAbandoned(t *testing.T) {
	r, sessions, _, _ := newTestRecorder()
	ctx := context.Background()

	r.RecordSessionResult(ctx, domain.SessionResult{
		SessionID: "session_w",
		Outcome:   domain.OutcomeAbandoned,
		Players:   [2]domain.Identity{"1", "2"},
		Winner:    "2",
		Loser:     "1",
	})
	r.RecordSessionResult(ctx, domain.SessionResult{
		SessionID: "session_n",
		Outcome:   domain.OutcomeAbandoned,
		Players:   [2]domain.Identity{"1", "2"},
	})

	withWinner, nobody := sessions.finished[0], sessions.finished[1]
	if withWinner.Status != domain.SessionStatusAbandoned || *withWinner.WinnerID != 2 || len(withWinner.Tallies) != 2 {
		t.Fatalf("unexpected forfeit %+v", withWinner)
	}
	if nobody.Status != domain.SessionStatusAbandoned || nobody.WinnerID != nil || len(nobody.Tallies) != 0 {
		t.Fatalf("unexpected double abandon %+v", nobody)
	}
}

func TestRecordRejectsForeignIdentity(t *testing.T) {
	r, sessions, chat, _ := newTestRecorder()
	ctx := context.Background()

	var permanent *backoff.PermanentError
	if err := r.RecordSessionCreated(ctx, "s", "guest-7", "2"); !errors.As(err, &permanent) {
		t.Fatalf("expected a permanent error for a non-numeric identity, got %v", err)
	}
	err := r.RecordSessionResult(ctx, domain.SessionResult{
		SessionID: "s",
		Outcome:   "forfeited",
		Players:   [2]domain.Identity{"1", "2"},
	})
	if !errors.As(err, &permanent) {
		t.Fatalf("expected a permanent error for an unknown outcome, got %v", err)
	}
	err = r.RecordChatLine(ctx, domain.ChatMessage{LineID: "l1", SessionID: "s", UserID: "guest-7", Message: "hi"})
	if !errors.As(err, &permanent) {
		t.Fatalf("expected a permanent error for a guest chat line, got %v", err)
	}
	if len(sessions.created) != 0 || len(sessions.finished) != 0 || len(chat.lines) != 0 {
		t.Fatal("nothing should reach storage")
	}
}

func TestRecordChatLine(t *testing.T) {
	r, _, chat, _ := newTestRecorder()
	line := domain.ChatMessage{LineID: "line-1", SessionID: "s", UserID: "1", Message: "gg", CreatedAt: time.Now()}
	if err := r.RecordChatLine(context.Background(), line); err != nil {
		t.Fatal(err)
	}
	if len(chat.lines) != 1 || chat.lines[0].Message != "gg" || chat.lines[0].LineID != "line-1" {
		t.Fatalf("unexpected chat %v", chat.lines)
	}

	line.LineID = ""
	var permanent *backoff.PermanentError
	if err := r.RecordChatLine(context.Background(), line); !errors.As(err, &permanent) {
		t.Fatalf("expected a permanent error for a line without id, got %v", err)
	}
}
