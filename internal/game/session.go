package game

import (
	"errors"
	"time"

	"tictactoe_server/internal/domain"
)

var (
	ErrGameOver        = errors.New("game is over")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidPosition = errors.New("invalid position")
	ErrCellTaken       = errors.New("position already taken")
	ErrNotParticipant  = errors.New("not a participant")
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// MoveKind tells the caller what an accepted move did to the session.
type MoveKind int

const (
	Advanced MoveKind = iota
	Won
	Drawn
)

type MoveResult struct {
	Kind   MoveKind
	Winner domain.Identity
	Loser  domain.Identity
}

// Session is the live state of one two-player match.
// It is not safe for concurrent use; the hub goroutine owns it.
type Session struct {
	ID            string
	Board         Board
	Players       [2]domain.Identity // Players[0] plays X and moves first
	CurrentPlayer domain.Identity
	Status        Status
	Winner        domain.Identity
	CreatedAt     time.Time
	EndedAt       time.Time
	Moves         int
}

// NewSession pairs first and second; first gets X and the opening turn.
func NewSession(id string, first, second domain.Identity, now time.Time) *Session {
	return &Session{
		ID:            id,
		Players:       [2]domain.Identity{first, second},
		CurrentPlayer: first,
		Status:        StatusActive,
		CreatedAt:     now,
	}
}

// MarkOf returns the mark of a participant, or Empty for outsiders.
func (s *Session) MarkOf(id domain.Identity) Mark {
	switch id {
	case s.Players[0]:
		return MarkX
	case s.Players[1]:
		return MarkO
	}
	return Empty
}

// OwnerOf returns the identity playing mark m.
func (s *Session) OwnerOf(m Mark) domain.Identity {
	switch m {
	case MarkX:
		return s.Players[0]
	case MarkO:
		return s.Players[1]
	}
	return ""
}

// Opponent returns the other participant.
func (s *Session) Opponent(id domain.Identity) domain.Identity {
	if id == s.Players[0] {
		return s.Players[1]
	}
	return s.Players[0]
}

func (s *Session) IsParticipant(id domain.Identity) bool {
	return id == s.Players[0] || id == s.Players[1]
}

func (s *Session) Active() bool {
	return s.Status == StatusActive
}

// ApplyMove places the caller's mark at position. On error nothing changes.
// A move that completes a line and fills the board is a win, not a draw.
func (s *Session) ApplyMove(id domain.Identity, position int, now time.Time) (MoveResult, error) {
	if s.Status != StatusActive {
		return MoveResult{}, ErrGameOver
	}
	if !s.IsParticipant(id) {
		return MoveResult{}, ErrNotParticipant
	}
	if id != s.CurrentPlayer {
		return MoveResult{}, ErrNotYourTurn
	}
	if position < 0 || position >= BoardSize {
		return MoveResult{}, ErrInvalidPosition
	}
	if s.Board[position] != Empty {
		return MoveResult{}, ErrCellTaken
	}

	s.Board[position] = s.MarkOf(id)
	s.Moves++

	if w := s.Board.Winner(); w != Empty {
		s.Status = StatusCompleted
		s.Winner = s.OwnerOf(w)
		s.EndedAt = now
		return MoveResult{Kind: Won, Winner: s.Winner, Loser: s.Opponent(s.Winner)}, nil
	}
	if s.Board.Full() {
		s.Status = StatusCompleted
		s.EndedAt = now
		return MoveResult{Kind: Drawn}, nil
	}

	s.CurrentPlayer = s.Opponent(id)
	return MoveResult{Kind: Advanced}, nil
}

// Abandon ends an active session after a participant left for good.
// stayed is the participant still connected, or empty if both are gone.
func (s *Session) Abandon(stayed domain.Identity, now time.Time) (MoveResult, error) {
	if s.Status != StatusActive {
		return MoveResult{}, ErrGameOver
	}
	if stayed != "" && !s.IsParticipant(stayed) {
		return MoveResult{}, ErrNotParticipant
	}
	s.Status = StatusAbandoned
	s.EndedAt = now
	if stayed == "" {
		return MoveResult{}, nil
	}
	s.Winner = stayed
	return MoveResult{Kind: Won, Winner: stayed, Loser: s.Opponent(stayed)}, nil
}

// Result converts a finished session into the record handed to storage.
func (s *Session) Result() domain.SessionResult {
	r := domain.SessionResult{
		SessionID: s.ID,
		Players:   s.Players,
		EndedAt:   s.EndedAt,
	}
	switch {
	case s.Status == StatusAbandoned:
		r.Outcome = domain.OutcomeAbandoned
	case s.Winner != "":
		r.Outcome = domain.OutcomeWin
	default:
		r.Outcome = domain.OutcomeDraw
	}
	if s.Winner != "" {
		r.Winner = s.Winner
		r.Loser = s.Opponent(s.Winner)
	}
	return r
}
